package pagerank

import (
	"context"

	"github.com/rankworks/graphrank/bspgraph"
	"github.com/rankworks/graphrank/bspgraph/aggregator"
	"github.com/rankworks/graphrank/graph"
	"golang.org/x/xerrors"
)

// Names of the aggregator instances maintained by each PageRank run.
const (
	aggMaxDelta      = "max_delta"
	aggSAD           = "SAD"
	aggDanglingCount = "dangling_count"
)

// Calculator executes the PageRank algorithm on an immutable graph topology
// either for a fixed number of rounds or until the ranks converge.
type Calculator struct {
	topo *graph.Graph
	opts Options

	// srcIdx is the dense index of the personalization source or -1 when
	// the run uses the uniform reset distribution.
	srcIdx int

	executorFactory bspgraph.ExecutorFactory
}

// NewCalculator returns a new Calculator for the provided topology using the
// specified run options. All option values are validated eagerly; no
// computation is attempted for an invalid configuration.
func NewCalculator(topo *graph.Graph, opts Options) (*Calculator, error) {
	opts, err := opts.validate()
	if err != nil {
		return nil, xerrors.Errorf("PageRank calculator config validation failed: %w", err)
	}
	if topo == nil {
		return nil, xerrors.Errorf("graph topology must be specified: %w", ErrInvalidArgument)
	}

	srcIdx := -1
	if opts.hasSource {
		idx, exists := topo.Index(opts.source)
		if !exists {
			return nil, xerrors.Errorf("personalization source %q is not part of the graph: %w", opts.source, ErrInvalidArgument)
		}
		srcIdx = idx
	}

	return &Calculator{
		topo:            topo,
		opts:            opts,
		srcIdx:          srcIdx,
		executorFactory: bspgraph.NewExecutor,
	}, nil
}

// SetExecutorFactory configures the calculator to use a custom executor
// factory for driving its supersteps.
func (c *Calculator) SetExecutorFactory(factory bspgraph.ExecutorFactory) {
	c.executorFactory = factory
}

// Graph returns the topology that the calculator operates on.
func (c *Calculator) Graph() *graph.Graph {
	return c.topo
}

// resetTermFor returns the reset term for the vertex with the given dense
// index. Personalized runs assign the full reset probability to the source
// vertex and zero to every other vertex.
func (c *Calculator) resetTermFor(idx int) float64 {
	if c.srcIdx < 0 || c.srcIdx == idx {
		return c.opts.resetProb
	}
	return 0
}

// Run executes the algorithm and returns the final ranks. The context is
// checked between supersteps so callers can cancel long runs cooperatively;
// a failed or cancelled run yields no result.
func (c *Calculator) Run(ctx context.Context) (*Result, error) {
	mode := c.opts.Mode()
	st := newRunState(c.topo.NumVertices(), mode)

	var computeFn bspgraph.ComputeFunc
	switch mode {
	case ModeUntilConvergence:
		computeFn = c.convergenceComputeFunc(st)
	default:
		computeFn = c.fixedComputeFunc(st)
	}

	eng, err := bspgraph.NewEngine(bspgraph.EngineConfig{
		Graph:          c.topo,
		ComputeFn:      computeFn,
		ComputeWorkers: c.opts.computeWorkers,
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = eng.Close() }()

	eng.RegisterAggregator(aggMaxDelta, new(aggregator.Float64MaxAccumulator))
	eng.RegisterAggregator(aggSAD, new(aggregator.Float64SumAccumulator))
	eng.RegisterAggregator(aggDanglingCount, new(aggregator.IntAccumulator))

	cb := bspgraph.ExecutorCallbacks{
		PreStep: func(_ context.Context, e *bspgraph.Engine) error {
			e.Aggregator(aggMaxDelta).Set(0.0)
			e.Aggregator(aggSAD).Set(0.0)
			return nil
		},
		PostStep: func(_ context.Context, e *bspgraph.Engine, activeInStep int) error {
			st.supersteps = e.Superstep() + 1
			st.maxDelta = e.Aggregator(aggMaxDelta).Get().(float64)
			st.sumAbsDelta = e.Aggregator(aggSAD).Get().(float64)
			st.activeInStep = activeInStep
			if mode == ModeFixedIterations {
				st.ranks, st.next = st.next, st.ranks
			}
			return nil
		},
	}
	if mode == ModeUntilConvergence {
		cb.PostStepKeepRunning = func(_ context.Context, e *bspgraph.Engine, _ int) (bool, error) {
			// Superstep 0 only publishes the initial ranks; the
			// termination predicate applies from round one onwards.
			if e.Superstep() > 0 && st.maxDelta <= c.opts.tolerance {
				st.converged = true
				return false, nil
			}
			if e.Superstep()+1 >= c.opts.maxSupersteps {
				return false, xerrors.Errorf("max rank delta %g still above tolerance %g after %d supersteps: %w",
					st.maxDelta, c.opts.tolerance, e.Superstep()+1, ErrNotConverged)
			}
			return true, nil
		}
	}

	ex := c.executorFactory(eng, cb)
	switch mode {
	case ModeUntilConvergence:
		err = ex.RunToCompletion(ctx)
	default:
		err = ex.RunSteps(ctx, c.opts.numIterations)
	}
	if err != nil {
		return nil, err
	}

	summary := Summary{
		Mode:             mode,
		Supersteps:       st.supersteps,
		Converged:        st.converged,
		MaxDelta:         st.maxDelta,
		SumAbsDelta:      st.sumAbsDelta,
		ActiveInLastStep: st.activeInStep,
		DanglingVertices: eng.Aggregator(aggDanglingCount).Get().(int),
	}
	for i, rank := range st.ranks {
		summary.TotalRank += rank
		if c.topo.OutDegree(i) == 0 {
			summary.DanglingRank += rank
		}
	}

	return &Result{
		topo:    c.topo,
		ranks:   st.ranks,
		summary: summary,
	}, nil
}

// Summary captures the execution statistics of a completed PageRank run.
type Summary struct {
	// Mode is the termination strategy the run followed.
	Mode Mode

	// Supersteps is the total number of supersteps that were executed,
	// including the contribution seeding step of convergence runs.
	Supersteps int

	// Converged indicates whether a convergence run terminated because
	// the maximum rank delta dropped to the configured tolerance. It is
	// always false for fixed iteration runs.
	Converged bool

	// MaxDelta is the maximum absolute rank change observed during the
	// final superstep.
	MaxDelta float64

	// SumAbsDelta is the sum of the absolute rank changes observed during
	// the final superstep.
	SumAbsDelta float64

	// ActiveInLastStep is the number of vertices that were processed
	// during the final superstep.
	ActiveInLastStep int

	// DanglingVertices is the number of vertices with no outgoing edges.
	DanglingVertices int

	// TotalRank is the sum of all final vertex ranks.
	TotalRank float64

	// DanglingRank is the portion of TotalRank held by dangling vertices.
	// That mass is not redistributed to other vertices.
	DanglingRank float64
}

// Result provides access to the vertex ranks and edge flows produced by a
// successful PageRank run.
type Result struct {
	topo    *graph.Graph
	ranks   []float64
	summary Summary
}

// Summary returns the execution statistics of the run.
func (r *Result) Summary() Summary {
	return r.summary
}

// Graph returns the topology the ranks were computed for.
func (r *Result) Graph() *graph.Graph {
	return r.topo
}

// Rank returns the final rank of the vertex with the specified id.
func (r *Result) Rank(id string) (float64, bool) {
	idx, exists := r.topo.Index(id)
	if !exists {
		return 0, false
	}
	return r.ranks[idx], true
}

// Ranks invokes the provided visitor function for each vertex in ascending
// vertex id order.
func (r *Result) Ranks(visitFn func(id string, rank float64) error) error {
	for i, rank := range r.ranks {
		if err := visitFn(r.topo.VertexID(i), rank); err != nil {
			return err
		}
	}
	return nil
}

// EdgeWeights invokes the provided visitor function for each edge together
// with the flow the edge carried in the final round, namely the final rank
// of its source divided by the source out-degree. The out-edge weights of a
// non-dangling vertex therefore sum to that vertex's final rank.
func (r *Result) EdgeWeights(visitFn func(srcID, dstID string, weight float64) error) error {
	for i := 0; i < r.topo.NumVertices(); i++ {
		outDegree := r.topo.OutDegree(i)
		if outDegree == 0 {
			continue
		}
		var (
			srcID  = r.topo.VertexID(i)
			weight = r.ranks[i] / float64(outDegree)
		)
		for _, j := range r.topo.OutNeighbors(i) {
			if err := visitFn(srcID, r.topo.VertexID(j), weight); err != nil {
				return err
			}
		}
	}
	return nil
}
