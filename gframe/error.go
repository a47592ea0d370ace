package gframe

import "golang.org/x/xerrors"

var (
	// ErrIDTypeMismatch is returned when a vertex id value does not match
	// the id type that the frame was declared with.
	ErrIDTypeMismatch = xerrors.New("id type mismatch")

	// ErrUnknownVertex is returned when a lookup references a vertex id
	// that is not part of the frame.
	ErrUnknownVertex = xerrors.New("unknown vertex")
)
