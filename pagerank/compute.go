package pagerank

import (
	"math"

	"github.com/rankworks/graphrank/bspgraph"
	"github.com/rankworks/graphrank/bspgraph/message"
)

// ContributionMessage carries a change in the rank contribution that a
// vertex forwards along each of its outgoing edges.
type ContributionMessage struct {
	Contribution float64
}

// Type returns the type of this message.
func (m ContributionMessage) Type() string { return "contribution" }

// runState tracks the mutable rank vectors for a single PageRank run. The
// per-vertex slices are only ever written by the worker that processes the
// owning vertex; the generation swap for fixed runs happens at the superstep
// barrier.
type runState struct {
	// ranks holds the rank of each vertex at the end of the last
	// completed round.
	ranks []float64

	// next buffers the ranks computed by the current round of a fixed
	// iteration run. It is swapped with ranks once the superstep
	// completes so that in-flight reads never observe partial updates.
	next []float64

	// sums accumulates the inbound rank contributions received by each
	// vertex of a convergence run.
	sums []float64

	// published holds the last rank value that each vertex of a
	// convergence run has broadcast to its out-neighbors.
	published []float64

	supersteps   int
	maxDelta     float64
	sumAbsDelta  float64
	activeInStep int
	converged    bool
}

func newRunState(numVertices int, mode Mode) *runState {
	st := &runState{ranks: make([]float64, numVertices)}
	for i := range st.ranks {
		st.ranks[i] = 1.0
	}
	switch mode {
	case ModeFixedIterations:
		st.next = make([]float64, numVertices)
	case ModeUntilConvergence:
		st.sums = make([]float64, numVertices)
		st.published = make([]float64, numVertices)
	}
	return st
}

// fixedComputeFunc returns a ComputeFunc that recalculates every vertex rank
// once per superstep by pulling the contributions of its in-neighbors from
// the previous rank generation. Vertices never freeze so each round performs
// a full sweep and the run is bit-for-bit reproducible regardless of the
// worker count.
func (c *Calculator) fixedComputeFunc(st *runState) bspgraph.ComputeFunc {
	keepProb := 1.0 - c.opts.resetProb
	return func(e *bspgraph.Engine, v *bspgraph.Vertex, _ message.Iterator) error {
		i := v.Index()
		if e.Superstep() == 0 && v.OutDegree() == 0 {
			e.Aggregator(aggDanglingCount).Aggregate(1)
		}

		topo := e.Graph()
		var sum float64
		for _, j := range topo.InNeighbors(i) {
			sum += st.ranks[j] / float64(topo.OutDegree(j))
		}

		newRank := c.resetTermFor(i) + keepProb*sum
		delta := math.Abs(newRank - st.ranks[i])
		e.Aggregator(aggMaxDelta).Aggregate(delta)
		e.Aggregator(aggSAD).Aggregate(delta)
		st.next[i] = newRank
		return nil
	}
}

// convergenceComputeFunc returns a ComputeFunc that keeps each vertex rank
// in sync with the contributions published by its in-neighbors. A vertex is
// only processed when a contribution update arrives for it, and it only
// publishes an update of its own when its rank has drifted from its last
// published value by more than the tolerance. The run reaches its fixed
// point once no vertex moves by more than the tolerance within a round.
func (c *Calculator) convergenceComputeFunc(st *runState) bspgraph.ComputeFunc {
	keepProb := 1.0 - c.opts.resetProb
	tol := c.opts.tolerance
	return func(e *bspgraph.Engine, v *bspgraph.Vertex, msgIt message.Iterator) error {
		i := v.Index()
		if e.Superstep() == 0 {
			// Publish the initial ranks so that round one observes
			// the same contribution sums as a full sweep. Vertices
			// stay active to guarantee that round one recomputes
			// every rank at least once.
			e.Aggregator(aggMaxDelta).Aggregate(st.ranks[i])
			e.Aggregator(aggSAD).Aggregate(st.ranks[i])
			st.published[i] = st.ranks[i]
			if v.OutDegree() == 0 {
				e.Aggregator(aggDanglingCount).Aggregate(1)
				return nil
			}
			return e.BroadcastToNeighbors(v, ContributionMessage{Contribution: st.ranks[i] / float64(v.OutDegree())})
		}

		for msgIt.Next() {
			st.sums[i] += msgIt.Message().(ContributionMessage).Contribution
		}

		newRank := c.resetTermFor(i) + keepProb*st.sums[i]
		delta := math.Abs(newRank - st.ranks[i])
		st.ranks[i] = newRank
		e.Aggregator(aggMaxDelta).Aggregate(delta)
		e.Aggregator(aggSAD).Aggregate(delta)
		v.Freeze()

		// The pending amount accumulates rank changes that were too
		// small to broadcast on their own. It is flushed as a single
		// correction once it exceeds the tolerance.
		pending := newRank - st.published[i]
		if math.Abs(pending) <= tol || v.OutDegree() == 0 {
			return nil
		}
		st.published[i] = newRank
		return e.BroadcastToNeighbors(v, ContributionMessage{Contribution: pending / float64(v.OutDegree())})
	}
}
