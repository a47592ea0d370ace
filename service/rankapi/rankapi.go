package rankapi

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rankworks/graphrank/rankindex/index"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

//go:generate mockgen -package mocks -destination mocks/mocks.go github.com/rankworks/graphrank/service/rankapi IndexAPI
//go:generate mockgen -package mocks -destination mocks/mock_iterator.go github.com/rankworks/graphrank/rankindex/index Iterator

const (
	healthEndpoint   = "/healthz"
	rankingEndpoint  = "/v1/ranks"
	nodeRankEndpoint = "/v1/ranks/{id}"
	metricsEndpoint  = "/metrics"

	defaultMaxResults = 100
)

// IndexAPI defines a set of API methods for querying the rank index.
type IndexAPI interface {
	FindByID(nodeID uuid.UUID) (*index.RankedNode, error)
	TopRanked(offset uint64) (index.Iterator, error)
}

// Config encapsulates the settings for configuring the rank API service.
type Config struct {
	// An API for executing queries against the rank index.
	IndexAPI IndexAPI

	// The port to listen for incoming requests.
	ListenAddr string

	// The maximum number of entries a single ranking request may return.
	// If not specified, a default value of 100 entries will be used
	// instead.
	MaxResults int

	// The logger to use. If not defined an output-discarding logger will
	// be used instead.
	Logger *logrus.Entry
}

func (cfg *Config) validate() error {
	var err error
	if cfg.ListenAddr == "" {
		err = multierror.Append(err, xerrors.Errorf("listen address has not been specified"))
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}
	if cfg.IndexAPI == nil {
		err = multierror.Append(err, xerrors.Errorf("index API has not been provided"))
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.NewEntry(&logrus.Logger{Out: ioutil.Discard})
	}
	return err
}

// Service implements the rank query API component for the GraphRank project.
// It exposes the contents of the rank index over HTTP together with the
// prometheus metrics of the application.
type Service struct {
	cfg    Config
	router *mux.Router
}

// NewService creates a new rank API service instance with the specified config.
func NewService(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Errorf("rank API service: config validation failed: %w", err)
	}

	svc := &Service{
		router: mux.NewRouter(),
		cfg:    cfg,
	}

	svc.router.HandleFunc(healthEndpoint, svc.serveHealth).Methods("GET")
	svc.router.HandleFunc(rankingEndpoint, svc.serveRanking).Methods("GET")
	svc.router.HandleFunc(nodeRankEndpoint, svc.serveNodeRank).Methods("GET")
	svc.router.Handle(metricsEndpoint, promhttp.Handler()).Methods("GET")
	return svc, nil
}

// Name implements service.Service
func (svc *Service) Name() string { return "rank API" }

// Run implements service.Service
func (svc *Service) Run(ctx context.Context) error {
	l, err := net.Listen("tcp", svc.cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	srv := &http.Server{
		Addr:    svc.cfg.ListenAddr,
		Handler: svc.router,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	svc.cfg.Logger.WithField("addr", svc.cfg.ListenAddr).Info("starting rank API server")
	if err = srv.Serve(l); err == http.ErrServerClosed {
		// Ignore error when the server shuts down.
		err = nil
	}

	return err
}

// rankedNode describes a single entry of a ranking or node lookup response.
type rankedNode struct {
	NodeID    string    `json:"node_id"`
	Label     string    `json:"label"`
	Rank      float64   `json:"rank"`
	UpdatedAt time.Time `json:"updated_at"`
}

// rankingRes encapsulates a page of ranking results.
type rankingRes struct {
	Total  uint64       `json:"total"`
	Offset uint64       `json:"offset"`
	Nodes  []rankedNode `json:"nodes"`
}

func (svc *Service) serveHealth(w http.ResponseWriter, _ *http.Request) {
	svc.writeJSON(w, map[string]string{"status": "ok"})
}

func (svc *Service) serveNodeRank(w http.ResponseWriter, r *http.Request) {
	nodeID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid node ID", http.StatusBadRequest)
		return
	}

	node, err := svc.cfg.IndexAPI.FindByID(nodeID)
	if err != nil {
		if xerrors.Is(err, index.ErrNotFound) {
			http.Error(w, "node not found", http.StatusNotFound)
			return
		}
		svc.cfg.Logger.WithField("err", err).Errorf("node rank lookup failed")
		http.Error(w, "an error occurred; please try again later", http.StatusInternalServerError)
		return
	}

	svc.writeJSON(w, makeRankedNode(node))
}

func (svc *Service) serveRanking(w http.ResponseWriter, r *http.Request) {
	count := svc.cfg.MaxResults
	if rawCount := r.URL.Query().Get("count"); rawCount != "" {
		parsed, err := strconv.Atoi(rawCount)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid value for count", http.StatusBadRequest)
			return
		}
		if parsed < count {
			count = parsed
		}
	}
	offset, _ := strconv.ParseUint(r.URL.Query().Get("offset"), 10, 64)

	it, err := svc.cfg.IndexAPI.TopRanked(offset)
	if err != nil {
		svc.cfg.Logger.WithField("err", err).Errorf("ranking query execution failed")
		http.Error(w, "an error occurred; please try again later", http.StatusInternalServerError)
		return
	}
	defer func() { _ = it.Close() }()

	nodes := make([]rankedNode, 0, count)
	for resCount := 0; it.Next() && resCount < count; resCount++ {
		nodes = append(nodes, makeRankedNode(it.Node()))
	}
	if err = it.Error(); err != nil {
		svc.cfg.Logger.WithField("err", err).Errorf("ranking query execution failed")
		http.Error(w, "an error occurred; please try again later", http.StatusInternalServerError)
		return
	}

	svc.writeJSON(w, rankingRes{
		Total:  it.TotalCount(),
		Offset: offset,
		Nodes:  nodes,
	})
}

func (svc *Service) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		svc.cfg.Logger.WithField("err", err).Errorf("encoding response failed")
	}
}

func makeRankedNode(node *index.RankedNode) rankedNode {
	return rankedNode{
		NodeID:    node.NodeID.String(),
		Label:     node.Label,
		Rank:      node.Rank,
		UpdatedAt: node.UpdatedAt,
	}
}
