package graph

import "golang.org/x/xerrors"

var (
	// ErrNotFound is returned when a node or edge lookup fails.
	ErrNotFound = xerrors.New("not found")

	// ErrUnknownEdgeNodes is returned when attempting to create an edge
	// with an invalid source and/or destination ID.
	ErrUnknownEdgeNodes = xerrors.New("unknown source and/or destination for edge")
)
