package bspgraph

import (
	"github.com/rankworks/graphrank/bspgraph/message"
	"github.com/rankworks/graphrank/graph"
	multierror "github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"
)

// EngineConfig encapsulates the configuration options for creating engines.
type EngineConfig struct {
	// Graph specifies the immutable topology that the engine supersteps
	// execute over. A valid Graph instance is required for the config to
	// be valid.
	Graph *graph.Graph

	// QueueFactory is used by the engine to create the pair of message
	// queue instances backing each vertex. If not specified, the default
	// in-memory queue will be used instead.
	QueueFactory message.QueueFactory

	// ComputeFn is the compute function that will be invoked for each
	// vertex when executing a superstep. A valid ComputeFunc instance is
	// required for the config to be valid.
	ComputeFn ComputeFunc

	// ComputeWorkers specifies the number of workers to use for invoking
	// the registered ComputeFunc when executing each superstep. If not
	// specified, a single worker will be used.
	ComputeWorkers int
}

// validate checks whether an engine configuration is valid and sets the
// default values where required.
func (cfg *EngineConfig) validate() error {
	var err error
	if cfg.QueueFactory == nil {
		cfg.QueueFactory = message.NewInMemoryQueue
	}
	if cfg.ComputeWorkers <= 0 {
		cfg.ComputeWorkers = 1
	}

	if cfg.Graph == nil {
		err = multierror.Append(err, xerrors.New("topology not specified"))
	}
	if cfg.ComputeFn == nil {
		err = multierror.Append(err, xerrors.New("compute function not specified"))
	}

	return err
}
