package pagerank

import (
	"context"
	"io/ioutil"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/juju/clock"
	"github.com/opentracing/opentracing-go"
	topo "github.com/rankworks/graphrank/graph"
	"github.com/rankworks/graphrank/nodegraph/graph"
	pr "github.com/rankworks/graphrank/pagerank"
	"github.com/rankworks/graphrank/partition"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/rankworks/graphrank/service/pagerank GraphAPI,IndexAPI
//go:generate mockgen -package mocks -destination mocks/mock_iterator.go github.com/rankworks/graphrank/nodegraph/graph NodeIterator,EdgeIterator

// GraphAPI defines as set of API methods for fetching the nodes and edges
// from the node graph.
type GraphAPI interface {
	Nodes(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.NodeIterator, error)
	Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.EdgeIterator, error)
}

// IndexAPI defines a set of API methods for updating the PageRank value of
// indexed nodes.
type IndexAPI interface {
	UpdateRank(nodeID uuid.UUID, rank float64) error
}

// Config encapsulates the settings for configuring the PageRank calculator
// service.
type Config struct {
	// An API for iterating the nodes and edges of the node graph.
	GraphAPI GraphAPI

	// An API for updating the rank of indexed nodes.
	IndexAPI IndexAPI

	// An API for detecting the partition assignments for this service.
	PartitionDetector partition.Detector

	// A clock instance for generating time-related events. If not specified,
	// the default wall-clock will be used instead.
	Clock clock.Clock

	// The number of workers to spin up for computing PageRank scores.
	ComputeWorkers int

	// The number of rank update rounds to execute for each pass. If a
	// convergence tolerance has also been specified, the tolerance takes
	// precedence and the iteration count is ignored.
	FixedIterations int

	// When set, each pass keeps executing rank update rounds until the
	// maximum rank change across all nodes drops to this value.
	ConvergenceTolerance float64

	// The probability that a random surfer stops following edges and
	// teleports to another node. If not specified, a default value of
	// 0.15 will be used instead.
	ResetProbability float64

	// The maximum number of supersteps a convergence pass may execute
	// before it is aborted. If not specified, a default value of 1000
	// will be used instead.
	MaxSupersteps int

	// The time between subsequent rank update passes.
	UpdateInterval time.Duration

	// The tracer to use for emitting a span that covers each rank update
	// pass. If not defined, a no-op tracer will be used instead.
	Tracer opentracing.Tracer

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.GraphAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("graph API has not been provided"))
	}
	if cfg.IndexAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("index API has not been provided"))
	}
	if cfg.PartitionDetector == nil {
		err = multierror.Append(err, xerrors.Errorf("partition detector has not been provided"))
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.WallClock
	}
	if cfg.ComputeWorkers <= 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for compute workers"))
	}
	if cfg.FixedIterations < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for fixed iterations"))
	}
	if cfg.ConvergenceTolerance < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for convergence tolerance"))
	}
	if cfg.FixedIterations == 0 && cfg.ConvergenceTolerance == 0 {
		err = multierror.Append(err, xerrors.Errorf("either a fixed iteration count or a convergence tolerance must be specified"))
	}
	if cfg.ResetProbability < 0 || cfg.ResetProbability >= 1 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for reset probability"))
	}
	if cfg.MaxSupersteps < 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for max supersteps"))
	}
	if cfg.UpdateInterval == 0 {
		err = multierror.Append(err, xerrors.Errorf("invalid value for update interval"))
	}
	if cfg.Tracer == nil {
		cfg.Tracer = opentracing.NoopTracer{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service implements the PageRank calculator component for the GraphRank
// project. Each update pass snapshots the node graph into an immutable
// topology, runs the calculator over it and persists the resulting ranks to
// the rank index.
type Service struct {
	cfg       Config
	runOpts   pr.Options
	fullRange partition.Range
}

// NewService creates a new PageRank calculator service instance with the
// specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("pagerank service: config validation failed: %w", err)
	}

	fullRange, err := partition.NewFullRange(1)
	if err != nil {
		return nil, xerrors.Errorf("pagerank service: %w", err)
	}

	var runOpts pr.Options
	if cfg.FixedIterations > 0 {
		runOpts = runOpts.WithFixedIterations(cfg.FixedIterations)
	}
	if cfg.ConvergenceTolerance > 0 {
		runOpts = runOpts.WithTolerance(cfg.ConvergenceTolerance)
	}
	runOpts = runOpts.
		WithResetProbability(cfg.ResetProbability).
		WithComputeWorkers(cfg.ComputeWorkers).
		WithMaxSupersteps(cfg.MaxSupersteps)

	return &Service{
		cfg:       cfg,
		runOpts:   runOpts,
		fullRange: fullRange,
	}, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "PageRank calculator" }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	svc.cfg.Logger.WithField("update_interval", svc.cfg.UpdateInterval.String()).Info("starting service")
	defer svc.cfg.Logger.Info("stopped service")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-svc.cfg.Clock.After(svc.cfg.UpdateInterval):
			curPartition, _, err := svc.cfg.PartitionDetector.PartitionInfo()
			if err != nil {
				if xerrors.Is(err, partition.ErrNoPartitionDataAvailableYet) {
					svc.cfg.Logger.Warn("deferring PageRank update pass: partition data not yet available")
					continue
				}
				return err
			}

			if curPartition != 0 {
				svc.cfg.Logger.Info("service can only run on the leader of the application cluster")
				return nil
			}

			if err := svc.updateGraphRanks(ctx); err != nil {
				return err
			}
		}
	}
}

func (svc *Service) updateGraphRanks(ctx context.Context) error {
	svc.cfg.Logger.Info("starting PageRank update pass")
	span := svc.cfg.Tracer.StartSpan("UpdateGraphRanks")
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	startAt := svc.cfg.Clock.Now()
	fromID, toID, err := svc.fullRange.PartitionExtents(0)
	if err != nil {
		return err
	}

	tick := startAt
	b := topo.NewBuilder()
	if err := svc.loadNodes(b, fromID, toID, startAt); err != nil {
		return err
	} else if err := svc.loadEdges(b, fromID, toID, startAt); err != nil {
		return err
	}
	g, err := b.Build()
	if err != nil {
		return err
	}
	graphPopulateTime := svc.cfg.Clock.Now().Sub(tick)

	tick = svc.cfg.Clock.Now()
	calculator, err := pr.NewCalculator(g, svc.runOpts)
	if err != nil {
		return err
	}
	res, err := calculator.Run(ctx)
	if err != nil {
		return err
	}
	rankCalculationTime := svc.cfg.Clock.Now().Sub(tick)

	tick = svc.cfg.Clock.Now()
	if err := res.Ranks(svc.persistRank); err != nil {
		return err
	}
	rankPersistTime := svc.cfg.Clock.Now().Sub(tick)

	summary := res.Summary()
	passesTotal.Inc()
	passDuration.Observe(svc.cfg.Clock.Now().Sub(startAt).Seconds())
	processedNodes.Set(float64(g.NumVertices()))
	processedEdges.Set(float64(g.NumEdges()))
	passSupersteps.Set(float64(summary.Supersteps))
	danglingRank.Set(summary.DanglingRank)

	svc.cfg.Logger.WithFields(logrus.Fields{
		"processed_nodes":       g.NumVertices(),
		"processed_edges":       g.NumEdges(),
		"supersteps":            summary.Supersteps,
		"graph_populate_time":   graphPopulateTime.String(),
		"rank_calculation_time": rankCalculationTime.String(),
		"rank_persist_time":     rankPersistTime.String(),
		"total_pass_time":       svc.cfg.Clock.Now().Sub(startAt).String(),
	}).Info("completed PageRank update pass")
	return nil
}

func (svc *Service) persistRank(vertexID string, rank float64) error {
	nodeID, err := uuid.Parse(vertexID)
	if err != nil {
		return err
	}

	return svc.cfg.IndexAPI.UpdateRank(nodeID, rank)
}

func (svc *Service) loadNodes(b *topo.Builder, fromID, toID uuid.UUID, filter time.Time) error {
	nodeIt, err := svc.cfg.GraphAPI.Nodes(fromID, toID, filter)
	if err != nil {
		return err
	}

	for nodeIt.Next() {
		b.AddVertex(nodeIt.Node().ID.String())
	}
	if err = nodeIt.Error(); err != nil {
		_ = nodeIt.Close()
		return err
	}

	return nodeIt.Close()
}

func (svc *Service) loadEdges(b *topo.Builder, fromID, toID uuid.UUID, filter time.Time) error {
	edgeIt, err := svc.cfg.GraphAPI.Edges(fromID, toID, filter)
	if err != nil {
		return err
	}

	for edgeIt.Next() {
		edge := edgeIt.Edge()
		src, dst := edge.Src.String(), edge.Dst.String()
		// New edges may have been inserted since the nodes were loaded;
		// skip any edge that refers to a node outside the loaded set.
		if !b.HasVertex(src) || !b.HasVertex(dst) {
			continue
		}
		b.AddEdge(src, dst)
	}
	if err = edgeIt.Error(); err != nil {
		_ = edgeIt.Close()
		return err
	}
	return edgeIt.Close()
}
