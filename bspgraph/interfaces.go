package bspgraph

import (
	"github.com/rankworks/graphrank/bspgraph/message"
)

// Aggregator is implemented by types that provide concurrent-safe aggregation
// primitives (e.g. counters, min/max, topN).
type Aggregator interface {
	// Type returns the type of this aggregator.
	Type() string

	// Set the aggregator to the specified value.
	Set(val interface{})

	// Get the current aggregator value.
	Get() interface{}

	// Aggregate updates the aggregator's value based on the provided value.
	Aggregate(val interface{})

	// Delta returns the change in the aggregator's value since the last
	// call to Delta. Delta values allow partially-aggregated values kept
	// by independent engine instances to be folded into a single top-level
	// aggregator by feeding them into its Aggregate method.
	Delta() interface{}
}

// ComputeFunc is a function that an engine instance invokes on each vertex
// when executing a superstep.
type ComputeFunc func(e *Engine, v *Vertex, msgIt message.Iterator) error
