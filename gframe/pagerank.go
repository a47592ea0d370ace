package gframe

import (
	"context"

	"github.com/rankworks/graphrank/pagerank"
	"golang.org/x/xerrors"
)

// PageRankRun configures a PageRank execution over a frame. Run values are
// immutable; each chained method returns a modified copy. Exactly one of
// FixedIterations or UntilConvergence must be selected before calling Run;
// when both are selected the convergence tolerance takes precedence.
type PageRankRun struct {
	f    *Frame
	opts pagerank.Options

	srcKey    string
	srcErr    error
	hasSource bool
}

// PageRank returns a run description for executing PageRank over the frame.
func (f *Frame) PageRank() PageRankRun {
	return PageRankRun{f: f}
}

// FixedIterations requests exactly numIterations rank update rounds.
func (r PageRankRun) FixedIterations(numIterations int) PageRankRun {
	r.opts = r.opts.WithFixedIterations(numIterations)
	return r
}

// UntilConvergence requests rank update rounds until the maximum rank delta
// drops to tolerance.
func (r PageRankRun) UntilConvergence(tolerance float64) PageRankRun {
	r.opts = r.opts.WithTolerance(tolerance)
	return r
}

// ResetProbability overrides the default reset probability for the run.
func (r PageRankRun) ResetProbability(resetProb float64) PageRankRun {
	r.opts = r.opts.WithResetProbability(resetProb)
	return r
}

// Source requests the personalized variant of the algorithm using the vertex
// with the specified id as the reset target. The id value is checked against
// the frame's declared id type when Source is invoked; a mismatch is
// reported by Run before any computation starts.
func (r PageRankRun) Source(id interface{}) PageRankRun {
	r.srcKey, r.srcErr = r.f.idType.encodeID(id)
	r.hasSource = true
	return r
}

// ComputeWorkers overrides the number of workers used to execute each
// superstep.
func (r PageRankRun) ComputeWorkers(numWorkers int) PageRankRun {
	r.opts = r.opts.WithComputeWorkers(numWorkers)
	return r
}

// MaxSupersteps overrides the superstep allowance for convergence runs.
func (r PageRankRun) MaxSupersteps(numSupersteps int) PageRankRun {
	r.opts = r.opts.WithMaxSupersteps(numSupersteps)
	return r
}

// Run validates the configuration and executes the algorithm. The returned
// RankedFrame carries a single weight column for vertices and edges; the
// attribute columns of the input frame do not survive the projection.
func (r PageRankRun) Run(ctx context.Context) (*RankedFrame, error) {
	if r.srcErr != nil {
		return nil, r.srcErr
	}
	opts := r.opts
	if r.hasSource {
		opts = opts.WithSource(r.srcKey)
	}

	calc, err := pagerank.NewCalculator(r.f.topo, opts)
	if err != nil {
		return nil, err
	}
	res, err := calc.Run(ctx)
	if err != nil {
		return nil, err
	}
	return projectResult(r.f, res)
}

// RankedVertex is a vertex output row: the vertex id and the weight column
// holding its final rank.
type RankedVertex struct {
	ID     interface{}
	Weight float64
}

// RankedEdge is an edge output row: the edge endpoints and the weight column
// holding the rank flow the edge carried in the final round.
type RankedEdge struct {
	Src    interface{}
	Dst    interface{}
	Weight float64
}

// RankedFrame is the projection of a PageRank result back onto the id space
// of the frame it was computed for.
type RankedFrame struct {
	idType  IDType
	index   map[string]int
	verts   []RankedVertex
	edges   []RankedEdge
	summary pagerank.Summary
}

func projectResult(f *Frame, res *pagerank.Result) (*RankedFrame, error) {
	rf := &RankedFrame{
		idType: f.idType,
		index:  make(map[string]int, f.NumVertices()),
		verts:  make([]RankedVertex, 0, f.NumVertices()),
		edges:  make([]RankedEdge, 0, f.NumEdges()),
	}

	err := res.Ranks(func(id string, rank float64) error {
		rf.index[id] = len(rf.verts)
		rf.verts = append(rf.verts, RankedVertex{ID: f.idType.decodeID(id), Weight: rank})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = res.EdgeWeights(func(srcID, dstID string, weight float64) error {
		rf.edges = append(rf.edges, RankedEdge{
			Src:    f.idType.decodeID(srcID),
			Dst:    f.idType.decodeID(dstID),
			Weight: weight,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	rf.summary = res.Summary()
	return rf, nil
}

// IDType returns the vertex id type of the frame the ranks were computed
// for.
func (rf *RankedFrame) IDType() IDType { return rf.idType }

// Vertices returns the vertex output rows in ascending id key order.
func (rf *RankedFrame) Vertices() []RankedVertex { return rf.verts }

// Edges returns the edge output rows grouped by source vertex.
func (rf *RankedFrame) Edges() []RankedEdge { return rf.edges }

// Summary returns the execution statistics of the run.
func (rf *RankedFrame) Summary() pagerank.Summary { return rf.summary }

// VertexWeight returns the weight column value for the vertex with the
// specified id.
func (rf *RankedFrame) VertexWeight(id interface{}) (float64, error) {
	key, err := rf.idType.encodeID(id)
	if err != nil {
		return 0, err
	}
	idx, exists := rf.index[key]
	if !exists {
		return 0, xerrors.Errorf("result does not contain vertex %v: %w", id, ErrUnknownVertex)
	}
	return rf.verts[idx].Weight, nil
}
