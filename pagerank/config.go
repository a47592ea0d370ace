package pagerank

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

const (
	// DefaultResetProbability is the reset probability used for runs that
	// do not explicitly specify one.
	DefaultResetProbability = 0.15

	// DefaultMaxSupersteps is the superstep allowance for convergence runs
	// that do not explicitly specify one. Runs that fail to converge
	// within the allowance are aborted with ErrNotConverged.
	DefaultMaxSupersteps = 1000
)

// Mode describes the strategy that a PageRank run uses to decide when to
// stop executing supersteps.
type Mode uint8

const (
	// ModeFixedIterations executes a predetermined number of rank update
	// rounds regardless of how much the ranks keep changing.
	ModeFixedIterations Mode = iota

	// ModeUntilConvergence keeps executing rank update rounds until the
	// maximum rank delta across all vertices drops to the configured
	// tolerance.
	ModeUntilConvergence
)

// String implements fmt.Stringer for Mode values.
func (m Mode) String() string {
	switch m {
	case ModeFixedIterations:
		return "fixed-iterations"
	case ModeUntilConvergence:
		return "until-convergence"
	default:
		return fmt.Sprintf("mode(%d)", m)
	}
}

// Options encapsulates the parameters for a PageRank run. Options values are
// immutable; they are obtained via the FixedIterations or UntilConvergence
// constructors and refined with the With* methods, each of which returns a
// modified copy of its receiver.
type Options struct {
	resetProb float64

	numIterations int
	hasIterations bool

	tolerance    float64
	hasTolerance bool

	source    string
	hasSource bool

	computeWorkers int
	maxSupersteps  int
}

// FixedIterations returns an Options value for a run that executes exactly
// numIterations rank update rounds.
func FixedIterations(numIterations int) Options {
	return Options{}.WithFixedIterations(numIterations)
}

// UntilConvergence returns an Options value for a run that keeps executing
// rank update rounds until the maximum rank delta across all vertices drops
// to tolerance.
func UntilConvergence(tolerance float64) Options {
	return Options{}.WithTolerance(tolerance)
}

// WithFixedIterations returns a copy of the options that requests exactly
// numIterations rank update rounds. If a convergence tolerance has also been
// specified, the tolerance takes precedence and the iteration count is
// ignored; the selected strategy is reported by Mode and by the Summary of
// the run.
func (o Options) WithFixedIterations(numIterations int) Options {
	o.numIterations = numIterations
	o.hasIterations = true
	return o
}

// WithTolerance returns a copy of the options that requests rank update
// rounds to be executed until the maximum rank delta drops to tolerance.
// The tolerance takes precedence over any fixed iteration count that may
// also have been specified.
func (o Options) WithTolerance(tolerance float64) Options {
	o.tolerance = tolerance
	o.hasTolerance = true
	return o
}

// WithResetProbability returns a copy of the options using the specified
// reset probability. The reset probability is the chance that a random
// surfer stops following links and teleports to a vertex selected by the
// reset distribution; it must lie in the range (0, 1).
//
// If not specified, DefaultResetProbability will be used instead.
func (o Options) WithResetProbability(resetProb float64) Options {
	o.resetProb = resetProb
	return o
}

// WithSource returns a copy of the options that requests the personalized
// variant of the algorithm. The reset term is applied only to the vertex
// with the specified id; every other vertex uses a reset term of zero.
func (o Options) WithSource(id string) Options {
	o.source = id
	o.hasSource = true
	return o
}

// WithComputeWorkers returns a copy of the options using the specified
// number of workers for executing each superstep; it must not be negative.
// If not specified, a single worker will be used instead.
func (o Options) WithComputeWorkers(numWorkers int) Options {
	o.computeWorkers = numWorkers
	return o
}

// WithMaxSupersteps returns a copy of the options using the specified
// superstep allowance for convergence runs; it must not be negative. If
// not specified, DefaultMaxSupersteps will be used instead.
func (o Options) WithMaxSupersteps(numSupersteps int) Options {
	o.maxSupersteps = numSupersteps
	return o
}

// Mode returns the termination strategy that a run with these options will
// follow. When both a fixed iteration count and a convergence tolerance have
// been specified, the tolerance takes precedence.
func (o Options) Mode() Mode {
	if o.hasTolerance {
		return ModeUntilConvergence
	}
	return ModeFixedIterations
}

// validate checks whether the run options are valid and returns a copy with
// the default values filled in where required.
func (o Options) validate() (Options, error) {
	var err error
	if !o.hasIterations && !o.hasTolerance {
		err = multierror.Append(err, xerrors.Errorf("either a fixed iteration count or a convergence tolerance must be specified: %w", ErrMissingConfiguration))
	}
	if o.hasIterations && o.numIterations <= 0 {
		err = multierror.Append(err, xerrors.Errorf("iteration count must be a positive integer: %w", ErrInvalidArgument))
	}
	if o.hasTolerance && o.tolerance <= 0 {
		err = multierror.Append(err, xerrors.Errorf("convergence tolerance must be greater than zero: %w", ErrInvalidArgument))
	}

	if o.resetProb < 0 || o.resetProb >= 1.0 {
		err = multierror.Append(err, xerrors.Errorf("reset probability must lie in the range (0, 1): %w", ErrInvalidArgument))
	} else if o.resetProb == 0 {
		o.resetProb = DefaultResetProbability
	}

	if o.computeWorkers < 0 {
		err = multierror.Append(err, xerrors.Errorf("compute worker count must be a positive integer: %w", ErrInvalidArgument))
	} else if o.computeWorkers == 0 {
		o.computeWorkers = 1
	}

	if o.maxSupersteps < 0 {
		err = multierror.Append(err, xerrors.Errorf("maximum superstep count must be a positive integer: %w", ErrInvalidArgument))
	} else if o.maxSupersteps == 0 {
		o.maxSupersteps = DefaultMaxSupersteps
	}

	return o, err
}
