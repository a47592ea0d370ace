package bspgraph

import (
	"sync"
	"sync/atomic"

	"github.com/rankworks/graphrank/bspgraph/message"
	"github.com/rankworks/graphrank/graph"
	"golang.org/x/xerrors"
)

// ErrInvalidMessageDestination is returned by calls to SendMessage and
// BroadcastToNeighbors when the destination index does not resolve to a
// vertex of the underlying topology.
var ErrInvalidMessageDestination = xerrors.New("invalid message destination")

// Vertex is a handle to a topology vertex that is passed to compute
// functions while a superstep executes.
type Vertex struct {
	eng *Engine
	idx int
}

// ID returns the vertex id.
func (v *Vertex) ID() string { return v.eng.topo.VertexID(v.idx) }

// Index returns the dense index of the vertex in the underlying topology.
func (v *Vertex) Index() int { return v.idx }

// OutDegree returns the number of edges that originate from this vertex.
func (v *Vertex) OutDegree() int { return v.eng.topo.OutDegree(v.idx) }

// Freeze marks the vertex as inactive. Inactive vertices are skipped in the
// following supersteps unless they receive a message, in which case they are
// re-activated.
func (v *Vertex) Freeze() { v.eng.active[v.idx] = false }

// Engine executes compute functions over the vertices of an immutable
// topology as a sequence of supersteps separated by strict barriers,
// following the model described in the Pregel paper. Vertex state is owned
// by the algorithm driving the engine; the engine itself only tracks vertex
// activity and buffers messages between supersteps.
type Engine struct {
	superstep int

	topo        *graph.Graph
	computeFn   ComputeFunc
	aggregators map[string]Aggregator

	vertices []Vertex
	active   []bool
	queues   [2][]message.Queue

	wg              sync.WaitGroup
	vertexCh        chan *Vertex
	errCh           chan error
	stepCompletedCh chan struct{}
	activeInStep    int64
	pendingInStep   int64
}

// NewEngine creates a new Engine instance over the topology specified by the
// configuration. All vertices start out active. It is important for callers
// to invoke Close() on the returned engine instance when they are done using
// it.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("engine config validation failed: %w", err)
	}

	numVertices := cfg.Graph.NumVertices()
	eng := &Engine{
		topo:        cfg.Graph,
		computeFn:   cfg.ComputeFn,
		aggregators: make(map[string]Aggregator),
		vertices:    make([]Vertex, numVertices),
		active:      make([]bool, numVertices),
	}
	for i := 0; i < numVertices; i++ {
		eng.vertices[i] = Vertex{eng: eng, idx: i}
		eng.active[i] = true
	}
	for b := 0; b < 2; b++ {
		eng.queues[b] = make([]message.Queue, numVertices)
		for i := 0; i < numVertices; i++ {
			eng.queues[b][i] = cfg.QueueFactory()
		}
	}
	eng.startWorkers(cfg.ComputeWorkers)

	return eng, nil
}

// Close releases any resources associated with the engine.
func (e *Engine) Close() error {
	close(e.vertexCh)
	e.wg.Wait()

	for b := 0; b < 2; b++ {
		for i, q := range e.queues[b] {
			if err := q.Close(); err != nil {
				return xerrors.Errorf("closing message queue #%d for vertex %q: %w", b, e.topo.VertexID(i), err)
			}
		}
	}
	return nil
}

// Graph returns the topology the engine operates on.
func (e *Engine) Graph() *graph.Graph { return e.topo }

// Superstep returns the current superstep value.
func (e *Engine) Superstep() int { return e.superstep }

// RegisterAggregator adds an aggregator with the specified name to the
// engine.
func (e *Engine) RegisterAggregator(name string, aggr Aggregator) { e.aggregators[name] = aggr }

// Aggregator returns the aggregator with the specified name or nil if no
// such aggregator is registered.
func (e *Engine) Aggregator(name string) Aggregator { return e.aggregators[name] }

// Aggregators returns a map of all currently registered aggregators where
// the key is the aggregator's name.
func (e *Engine) Aggregators() map[string]Aggregator { return e.aggregators }

// BroadcastToNeighbors queues a copy of msg for delivery to each destination
// of the out-edges of vertex v, one per edge occurrence. Messages are
// processed by the recipients in the next superstep.
func (e *Engine) BroadcastToNeighbors(v *Vertex, msg message.Message) error {
	for _, dst := range e.topo.OutNeighbors(v.idx) {
		if err := e.SendMessage(dst, msg); err != nil {
			return err
		}
	}

	return nil
}

// SendMessage queues a message for delivery to the vertex with the specified
// dense index. Messages are processed by the recipient in the next
// superstep.
func (e *Engine) SendMessage(dst int, msg message.Message) error {
	if dst < 0 || dst >= len(e.vertices) {
		return xerrors.Errorf("message cannot be delivered to vertex index %d: %w", dst, ErrInvalidMessageDestination)
	}

	queueIndex := (e.superstep + 1) % 2
	return e.queues[queueIndex][dst].Enqueue(msg)
}

// step executes the next superstep and returns back the number of vertices
// that were processed either because they were still active or because they
// had pending messages.
func (e *Engine) step() (int, error) {
	e.activeInStep = 0
	e.pendingInStep = int64(len(e.vertices))

	// No work required.
	if e.pendingInStep == 0 {
		return 0, nil
	}

	for i := range e.vertices {
		e.vertexCh <- &e.vertices[i]
	}

	// Block until the worker pool has processed all vertices.
	<-e.stepCompletedCh

	// Dequeue any errors.
	var err error
	select {
	case err = <-e.errCh: // dequeued
	default: // no error available
	}

	return int(e.activeInStep), err
}

// startWorkers allocates the required channels and spins up numWorkers to
// execute each superstep.
func (e *Engine) startWorkers(numWorkers int) {
	e.vertexCh = make(chan *Vertex)
	e.errCh = make(chan error, 1)
	e.stepCompletedCh = make(chan struct{})

	e.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go e.stepWorker()
	}
}

// stepWorker polls vertexCh for incoming vertices and executes the
// configured ComputeFunc for each one that is active or has pending
// messages. The worker automatically exits when vertexCh gets closed.
func (e *Engine) stepWorker() {
	for v := range e.vertexCh {
		buffer := e.superstep % 2
		if e.active[v.idx] || e.queues[buffer][v.idx].PendingMessages() {
			_ = atomic.AddInt64(&e.activeInStep, 1)
			e.active[v.idx] = true
			if err := e.computeFn(e, v, e.queues[buffer][v.idx].Messages()); err != nil {
				tryEmitError(e.errCh, xerrors.Errorf("running compute function for vertex %q failed: %w", v.ID(), err))
			} else if err := e.queues[buffer][v.idx].DiscardMessages(); err != nil {
				tryEmitError(e.errCh, xerrors.Errorf("discarding unprocessed messages for vertex %q failed: %w", v.ID(), err))
			}
		}
		if atomic.AddInt64(&e.pendingInStep, -1) == 0 {
			e.stepCompletedCh <- struct{}{}
		}
	}
	e.wg.Done()
}

func tryEmitError(errCh chan<- error, err error) {
	select {
	case errCh <- err: // queued error
	default: // channel already contains another error
	}
}
