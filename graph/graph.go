package graph

import (
	"sort"

	"golang.org/x/xerrors"
)

// ErrUnknownEdgeVertex is returned by Build calls when an edge references a
// vertex id that is not part of the vertex set.
var ErrUnknownEdgeVertex = xerrors.New("edge references a vertex that is not part of the graph")

// Edge describes a directed graph edge that originates from Src and
// terminates at Dst.
type Edge struct {
	// The id of the origin vertex.
	Src string

	// The id of the destination vertex.
	Dst string
}

// Builder accumulates a vertex set and an edge list and assembles them into
// an immutable Graph value.
type Builder struct {
	vertices map[string]struct{}
	edges    []Edge
}

// NewBuilder returns a Builder with empty vertex and edge sets.
func NewBuilder() *Builder {
	return &Builder{
		vertices: make(map[string]struct{}),
	}
}

// AddVertex inserts a new vertex with the specified id. Adding the same id
// multiple times is a no-op; vertex ids are treated as opaque values.
func (b *Builder) AddVertex(id string) {
	b.vertices[id] = struct{}{}
}

// HasVertex returns true if a vertex with the specified id has been added
// to the builder.
func (b *Builder) HasVertex(id string) bool {
	_, exists := b.vertices[id]
	return exists
}

// AddEdge appends a directed edge from srcID to dstID. Endpoints are not
// implicitly added to the vertex set; an edge whose endpoints were never
// added causes the subsequent Build call to fail. Duplicate edges and
// self-loops are retained, with each occurrence contributing separately to
// any computation that runs over the graph.
func (b *Builder) AddEdge(srcID, dstID string) {
	b.edges = append(b.edges, Edge{Src: srcID, Dst: dstID})
}

// Build validates the accumulated vertex and edge sets and returns an
// immutable Graph. It fails with an error that wraps ErrUnknownEdgeVertex if
// any edge references an id outside the vertex set.
func (b *Builder) Build() (*Graph, error) {
	ids := make([]string, 0, len(b.vertices))
	for id := range b.vertices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	type edgePair struct{ src, dst int }
	pairs := make([]edgePair, len(b.edges))
	for i, e := range b.edges {
		srcIdx, exists := index[e.Src]
		if !exists {
			return nil, xerrors.Errorf("build graph: edge (%q -> %q): source: %w", e.Src, e.Dst, ErrUnknownEdgeVertex)
		}
		dstIdx, exists := index[e.Dst]
		if !exists {
			return nil, xerrors.Errorf("build graph: edge (%q -> %q): destination: %w", e.Src, e.Dst, ErrUnknownEdgeVertex)
		}
		pairs[i] = edgePair{src: srcIdx, dst: dstIdx}
	}

	g := &Graph{
		ids:        ids,
		index:      index,
		outOffsets: make([]int, len(ids)+1),
		outTargets: make([]int, len(pairs)),
		inOffsets:  make([]int, len(ids)+1),
		inSources:  make([]int, len(pairs)),
	}

	// Out-adjacency, grouped by source and ordered by (src, dst) so that
	// edge enumeration is reproducible across runs.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].src != pairs[j].src {
			return pairs[i].src < pairs[j].src
		}
		return pairs[i].dst < pairs[j].dst
	})
	for _, p := range pairs {
		g.outOffsets[p.src+1]++
	}
	for i := 0; i < len(ids); i++ {
		g.outOffsets[i+1] += g.outOffsets[i]
	}
	for i, p := range pairs {
		g.outTargets[i] = p.dst
	}

	// In-adjacency, grouped by destination and ordered by (dst, src).
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].dst != pairs[j].dst {
			return pairs[i].dst < pairs[j].dst
		}
		return pairs[i].src < pairs[j].src
	})
	for _, p := range pairs {
		g.inOffsets[p.dst+1]++
	}
	for i := 0; i < len(ids); i++ {
		g.inOffsets[i+1] += g.inOffsets[i]
	}
	for i, p := range pairs {
		g.inSources[i] = p.src
	}

	return g, nil
}

// Graph is an immutable directed graph topology. Vertices are assigned dense
// indices in the range [0, NumVertices) following the lexicographic order of
// their ids; adjacency is stored in compressed sparse row form for both edge
// directions. A Graph holds no per-vertex computation state: algorithms keep
// their own vectors aligned with the dense index.
type Graph struct {
	ids   []string
	index map[string]int

	outOffsets []int
	outTargets []int
	inOffsets  []int
	inSources  []int
}

// NumVertices returns the number of vertices in the graph.
func (g *Graph) NumVertices() int { return len(g.ids) }

// NumEdges returns the number of edges in the graph, counting duplicates.
func (g *Graph) NumEdges() int { return len(g.outTargets) }

// VertexID returns the id of the vertex with dense index i.
func (g *Graph) VertexID(i int) string { return g.ids[i] }

// Index returns the dense index assigned to the specified vertex id and a
// boolean flag indicating whether the id is part of the graph.
func (g *Graph) Index(id string) (int, bool) {
	i, exists := g.index[id]
	return i, exists
}

// OutDegree returns the number of edges that originate from the vertex with
// dense index i. Vertices with an out-degree of zero are dangling.
func (g *Graph) OutDegree(i int) int {
	return g.outOffsets[i+1] - g.outOffsets[i]
}

// OutNeighbors returns the dense indices of the destinations of the edges
// that originate from vertex i, one entry per edge occurrence and ordered by
// destination index. The returned slice aliases internal storage and must
// not be mutated by callers.
func (g *Graph) OutNeighbors(i int) []int {
	return g.outTargets[g.outOffsets[i]:g.outOffsets[i+1]]
}

// InNeighbors returns the dense indices of the origins of the edges that
// terminate at vertex i, one entry per edge occurrence and ordered by source
// index. The returned slice aliases internal storage and must not be mutated
// by callers.
func (g *Graph) InNeighbors(i int) []int {
	return g.inSources[g.inOffsets[i]:g.inOffsets[i+1]]
}
