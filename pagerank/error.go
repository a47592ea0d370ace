package pagerank

import "golang.org/x/xerrors"

var (
	// ErrInvalidArgument is returned when a run option is assigned a value
	// outside its documented range.
	ErrInvalidArgument = xerrors.New("invalid argument")

	// ErrMissingConfiguration is returned when neither a fixed iteration
	// count nor a convergence tolerance has been specified for a run.
	ErrMissingConfiguration = xerrors.New("missing configuration")

	// ErrNotConverged is returned when a convergence run exhausts its
	// superstep allowance before the maximum rank delta drops to the
	// requested tolerance.
	ErrNotConverged = xerrors.New("not converged")
)
