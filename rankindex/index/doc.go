package index

import (
	"time"

	"github.com/google/uuid"
)

// RankedNode describes a rank graph node whose rank has been catalogued by
// the indexer.
type RankedNode struct {
	// The ID of the nodegraph entry that this rank belongs to.
	NodeID uuid.UUID

	// The label of the node.
	Label string

	// The rank assigned to this node by the last PageRank pass.
	Rank float64

	// The last time this entry was updated.
	UpdatedAt time.Time
}
