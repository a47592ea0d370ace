package index

import "golang.org/x/xerrors"

var (
	// ErrNotFound is returned by the indexer when attempting to look up
	// an entry that does not exist.
	ErrNotFound = xerrors.New("not found")

	// ErrMissingNodeID is returned when attempting to index an entry
	// that does not specify a valid node ID.
	ErrMissingNodeID = xerrors.New("entry does not provide a valid node ID")
)
