package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rankworks/graphrank/nodegraph/graph"
	"github.com/rankworks/graphrank/nodegraph/store/cdb"
	memgraph "github.com/rankworks/graphrank/nodegraph/store/memory"
	"github.com/rankworks/graphrank/partition"
	"github.com/rankworks/graphrank/rankindex/index"
	"github.com/rankworks/graphrank/rankindex/store/es"
	memindex "github.com/rankworks/graphrank/rankindex/store/memory"
	"github.com/rankworks/graphrank/service"
	"github.com/rankworks/graphrank/service/pagerank"
	"github.com/rankworks/graphrank/service/rankapi"
	"github.com/rankworks/graphrank/tracer"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/xerrors"
)

var (
	appName = "graphrankd"
	appSha  = "populated-at-link-time"
	logger  *logrus.Entry
)

func main() {
	host, _ := os.Hostname()
	rootLogger := logrus.New()
	rootLogger.SetFormatter(new(logrus.JSONFormatter))
	logger = rootLogger.WithFields(logrus.Fields{
		"app":  appName,
		"sha":  appSha,
		"host": host,
	})

	if err := makeApp().Run(os.Args); err != nil {
		logger.WithField("err", err).Error("shutting down due to error")
		_ = os.Stderr.Sync()
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Version = appSha
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "node-graph-uri",
			Value:  "in-memory://",
			EnvVar: "NODE_GRAPH_URI",
			Usage:  "The URI for connecting to the node graph (supported URIs: in-memory://, postgresql://user@host:26257/nodegraph?sslmode=disable)",
		},
		cli.StringFlag{
			Name:   "rank-index-uri",
			Value:  "in-memory://",
			EnvVar: "RANK_INDEX_URI",
			Usage:  "The URI for connecting to the rank index (supported URIs: in-memory://, es://node1:9200,...,nodeN:9200)",
		},
		cli.StringFlag{
			Name:   "partition-detection-mode",
			Value:  "single",
			EnvVar: "PARTITION_DETECTION_MODE",
			Usage:  "The partition detection mode to use. Supported values are 'dns=HEADLESS_SERVICE_NAME' (k8s) and 'single' (local dev mode)",
		},
		cli.IntFlag{
			Name:   "pagerank-num-workers",
			Value:  runtime.NumCPU(),
			EnvVar: "PAGERANK_NUM_WORKERS",
			Usage:  "The number of workers to use for calculating PageRank scores",
		},
		cli.DurationFlag{
			Name:   "pagerank-update-interval",
			Value:  time.Hour,
			EnvVar: "PAGERANK_UPDATE_INTERVAL",
			Usage:  "The time between subsequent PageRank score updates",
		},
		cli.IntFlag{
			Name:   "pagerank-fixed-iterations",
			EnvVar: "PAGERANK_FIXED_ITERATIONS",
			Usage:  "The number of rank update rounds per pass; ignored when a tolerance is set",
		},
		cli.Float64Flag{
			Name:   "pagerank-tolerance",
			Value:  0.001,
			EnvVar: "PAGERANK_TOLERANCE",
			Usage:  "Keep executing rank update rounds until the maximum rank change drops to this value",
		},
		cli.Float64Flag{
			Name:   "pagerank-reset-probability",
			EnvVar: "PAGERANK_RESET_PROBABILITY",
			Usage:  "The probability that a random surfer teleports to another node (defaults to 0.15)",
		},
		cli.StringFlag{
			Name:   "rank-api-listen-addr",
			Value:  ":8080",
			EnvVar: "RANK_API_LISTEN_ADDR",
			Usage:  "The address to listen for incoming rank API requests",
		},
		cli.IntFlag{
			Name:   "rank-api-max-results",
			Value:  100,
			EnvVar: "RANK_API_MAX_RESULTS",
			Usage:  "The maximum number of entries a single ranking request may return",
		},
		cli.IntFlag{
			Name:   "pprof-port",
			Value:  6060,
			EnvVar: "PPROF_PORT",
			Usage:  "The port for exposing pprof endpoints",
		},
	}
	app.Action = runMain
	return app
}

func runMain(appCtx *cli.Context) error {
	var wg sync.WaitGroup
	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()
	defer func() { _ = tracer.Pool.Close() }()

	svcGroup, err := setupServices(appCtx)
	if err != nil {
		return err
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := svcGroup.Run(ctx); err != nil {
			logger.WithField("err", err).Error("service group exited with error")
			cancelFn()
		}
	}()

	// Start pprof server
	pprofListener, err := net.Listen("tcp", fmt.Sprintf(":%d", appCtx.Int("pprof-port")))
	if err != nil {
		return err
	}
	defer func() { _ = pprofListener.Close() }()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.WithField("port", appCtx.Int("pprof-port")).Info("listening for pprof requests")
		srv := new(http.Server)
		_ = srv.Serve(pprofListener)
	}()

	// Start signal watcher
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			logger.WithField("signal", s.String()).Infof("shutting down due to signal")
			_ = pprofListener.Close()
			cancelFn()
		case <-ctx.Done():
		}
	}()

	// Keep running until we receive a signal
	wg.Wait()
	return nil
}

func setupServices(appCtx *cli.Context) (service.Group, error) {
	nodeGraph, err := getNodeGraph(appCtx.String("node-graph-uri"))
	if err != nil {
		return nil, err
	}
	rankIndex, err := getRankIndex(appCtx.String("rank-index-uri"))
	if err != nil {
		return nil, err
	}

	// Create a helper for detecting the partition assigned to this instance.
	partDet, err := getPartitionDetector(appCtx.String("partition-detection-mode"))
	if err != nil {
		return nil, err
	}

	passTracer, err := tracer.GetTracer(appName)
	if err != nil {
		return nil, err
	}

	var svcGroup service.Group

	var pageRankCfg pagerank.Config
	pageRankCfg.GraphAPI = nodeGraph
	pageRankCfg.IndexAPI = rankIndex
	pageRankCfg.PartitionDetector = partDet
	pageRankCfg.ComputeWorkers = appCtx.Int("pagerank-num-workers")
	pageRankCfg.FixedIterations = appCtx.Int("pagerank-fixed-iterations")
	pageRankCfg.ConvergenceTolerance = appCtx.Float64("pagerank-tolerance")
	pageRankCfg.ResetProbability = appCtx.Float64("pagerank-reset-probability")
	pageRankCfg.UpdateInterval = appCtx.Duration("pagerank-update-interval")
	pageRankCfg.Tracer = passTracer
	pageRankCfg.Logger = logger.WithField("service", "pagerank-calculator")
	prSvc, err := pagerank.NewService(pageRankCfg)
	if err != nil {
		return nil, err
	}
	svcGroup = append(svcGroup, prSvc)

	var rankAPICfg rankapi.Config
	rankAPICfg.IndexAPI = rankIndex
	rankAPICfg.ListenAddr = appCtx.String("rank-api-listen-addr")
	rankAPICfg.MaxResults = appCtx.Int("rank-api-max-results")
	rankAPICfg.Logger = logger.WithField("service", "rank-api")
	apiSvc, err := rankapi.NewService(rankAPICfg)
	if err != nil {
		return nil, err
	}
	svcGroup = append(svcGroup, apiSvc)

	return svcGroup, nil
}

type nodeGraph interface {
	Nodes(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.NodeIterator, error)
	Edges(fromID, toID uuid.UUID, updatedBefore time.Time) (graph.EdgeIterator, error)
}

func getNodeGraph(nodeGraphURI string) (nodeGraph, error) {
	if nodeGraphURI == "" {
		return nil, xerrors.Errorf("node graph URI must be specified with --node-graph-uri")
	}

	uri, err := url.Parse(nodeGraphURI)
	if err != nil {
		return nil, xerrors.Errorf("could not parse node graph URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory graph")
		return memgraph.NewInMemoryGraph(), nil
	case "postgresql":
		logger.Info("using CDB graph")
		return cdb.NewCockroachDBGraph(nodeGraphURI)
	default:
		return nil, xerrors.Errorf("unsupported node graph URI scheme: %q", uri.Scheme)
	}
}

type rankIndex interface {
	FindByID(nodeID uuid.UUID) (*index.RankedNode, error)
	TopRanked(offset uint64) (index.Iterator, error)
	UpdateRank(nodeID uuid.UUID, rank float64) error
}

func getRankIndex(rankIndexURI string) (rankIndex, error) {
	if rankIndexURI == "" {
		return nil, xerrors.Errorf("rank index URI must be specified with --rank-index-uri")
	}

	uri, err := url.Parse(rankIndexURI)
	if err != nil {
		return nil, xerrors.Errorf("could not parse rank index URI: %w", err)
	}

	switch uri.Scheme {
	case "in-memory":
		logger.Info("using in-memory index")
		return memindex.NewInMemoryBleveIndexer()
	case "es":
		nodes := strings.Split(uri.Host, ",")
		for i := 0; i < len(nodes); i++ {
			nodes[i] = "http://" + nodes[i]
		}
		logger.Info("using ES index")
		return es.NewElasticSearchIndexer(nodes, false)
	default:
		return nil, xerrors.Errorf("unsupported rank index URI scheme: %q", uri.Scheme)
	}
}

func getPartitionDetector(mode string) (partition.Detector, error) {
	switch {
	case mode == "single":
		return partition.Fixed{Partition: 0, NumPartitions: 1}, nil
	case strings.HasPrefix(mode, "dns="):
		tokens := strings.Split(mode, "=")
		return partition.DetectFromSRVRecords(tokens[1]), nil
	default:
		return nil, xerrors.Errorf("unsupported partition detection mode: %q", mode)
	}
}
