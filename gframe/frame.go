package gframe

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/rankworks/graphrank/graph"
	"golang.org/x/xerrors"
)

// IDType enumerates the vertex id types that a frame can be declared with.
// The id type is fixed when the frame is built; every vertex and edge row as
// well as any personalization source must use matching id values.
type IDType uint8

const (
	// IDTypeString declares frames whose vertex ids are string values.
	IDTypeString IDType = iota

	// IDTypeInt64 declares frames whose vertex ids are int64 values. For
	// convenience, untyped int values are accepted and widened.
	IDTypeInt64

	// IDTypeUUID declares frames whose vertex ids are uuid.UUID values.
	IDTypeUUID
)

// String implements fmt.Stringer for IDType values.
func (t IDType) String() string {
	switch t {
	case IDTypeString:
		return "string"
	case IDTypeInt64:
		return "int64"
	case IDTypeUUID:
		return "uuid"
	default:
		return fmt.Sprintf("id-type(%d)", t)
	}
}

// encodeID maps a typed id value to the canonical string key used by the
// underlying topology.
func (t IDType) encodeID(id interface{}) (string, error) {
	switch t {
	case IDTypeString:
		if v, ok := id.(string); ok {
			return v, nil
		}
	case IDTypeInt64:
		switch v := id.(type) {
		case int64:
			return strconv.FormatInt(v, 10), nil
		case int:
			return strconv.FormatInt(int64(v), 10), nil
		}
	case IDTypeUUID:
		if v, ok := id.(uuid.UUID); ok {
			return v.String(), nil
		}
	}
	return "", xerrors.Errorf("id value %v of type %T does not match the frame id type %s: %w", id, id, t, ErrIDTypeMismatch)
}

// decodeID maps a canonical string key back to the typed id value it was
// encoded from.
func (t IDType) decodeID(key string) interface{} {
	switch t {
	case IDTypeInt64:
		v, _ := strconv.ParseInt(key, 10, 64)
		return v
	case IDTypeUUID:
		return uuid.MustParse(key)
	default:
		return key
	}
}

// VertexRow describes a single vertex of a frame together with its attribute
// columns.
type VertexRow struct {
	ID    interface{}
	Attrs map[string]interface{}
}

// EdgeRow describes a single directed edge of a frame together with its
// attribute columns.
type EdgeRow struct {
	Src   interface{}
	Dst   interface{}
	Attrs map[string]interface{}
}

// Builder assembles the vertex and edge rows for a new Frame. Builder
// instances are not safe for concurrent use.
type Builder struct {
	idType IDType
	tb     *graph.Builder

	vertexRows map[string]VertexRow
	edgeRows   []EdgeRow
}

// NewBuilder creates a frame builder whose vertex ids must match the
// specified id type.
func NewBuilder(idType IDType) *Builder {
	return &Builder{
		idType:     idType,
		tb:         graph.NewBuilder(),
		vertexRows: make(map[string]VertexRow),
	}
}

// AddVertex inserts a vertex row into the frame. Adding a row whose id is
// already present replaces the stored attributes for that vertex.
func (b *Builder) AddVertex(row VertexRow) error {
	key, err := b.idType.encodeID(row.ID)
	if err != nil {
		return err
	}
	b.tb.AddVertex(key)
	b.vertexRows[key] = row
	return nil
}

// AddEdge inserts a directed edge row into the frame. Both endpoints must be
// added as vertex rows before the frame is built.
func (b *Builder) AddEdge(row EdgeRow) error {
	srcKey, err := b.idType.encodeID(row.Src)
	if err != nil {
		return err
	}
	dstKey, err := b.idType.encodeID(row.Dst)
	if err != nil {
		return err
	}
	b.tb.AddEdge(srcKey, dstKey)
	b.edgeRows = append(b.edgeRows, row)
	return nil
}

// Build validates the accumulated rows and returns an immutable Frame. An
// edge row that references an id without a matching vertex row causes the
// build to fail.
func (b *Builder) Build() (*Frame, error) {
	topo, err := b.tb.Build()
	if err != nil {
		return nil, err
	}
	return &Frame{
		idType:     b.idType,
		topo:       topo,
		vertexRows: b.vertexRows,
		edgeRows:   b.edgeRows,
	}, nil
}

// Frame is an immutable property graph whose vertex ids share a single
// declared type. Frames are safe for concurrent use.
type Frame struct {
	idType IDType
	topo   *graph.Graph

	vertexRows map[string]VertexRow
	edgeRows   []EdgeRow
}

// IDType returns the vertex id type the frame was declared with.
func (f *Frame) IDType() IDType { return f.idType }

// NumVertices returns the number of vertices in the frame.
func (f *Frame) NumVertices() int { return f.topo.NumVertices() }

// NumEdges returns the number of edges in the frame.
func (f *Frame) NumEdges() int { return f.topo.NumEdges() }

// Topology returns the underlying dense topology for the frame.
func (f *Frame) Topology() *graph.Graph { return f.topo }

// Vertices returns the frame's vertex rows in ascending id key order.
func (f *Frame) Vertices() []VertexRow {
	rows := make([]VertexRow, 0, len(f.vertexRows))
	for i := 0; i < f.topo.NumVertices(); i++ {
		rows = append(rows, f.vertexRows[f.topo.VertexID(i)])
	}
	return rows
}

// Edges returns the frame's edge rows in insertion order.
func (f *Frame) Edges() []EdgeRow {
	rows := make([]EdgeRow, len(f.edgeRows))
	copy(rows, f.edgeRows)
	return rows
}

// VertexAttrs returns the attribute columns stored for the vertex with the
// specified id.
func (f *Frame) VertexAttrs(id interface{}) (map[string]interface{}, error) {
	key, err := f.idType.encodeID(id)
	if err != nil {
		return nil, err
	}
	row, exists := f.vertexRows[key]
	if !exists {
		return nil, xerrors.Errorf("frame does not contain vertex %v: %w", id, ErrUnknownVertex)
	}
	return row.Attrs, nil
}
