package pagerank

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	passesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "graphrank_pagerank_passes_total",
		Help: "The total number of completed PageRank update passes",
	})

	passDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "graphrank_pagerank_pass_duration_seconds",
		Help:    "The end-to-end duration of each PageRank update pass",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 14),
	})

	processedNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphrank_pagerank_graph_nodes",
		Help: "The number of nodes processed by the last PageRank update pass",
	})

	processedEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphrank_pagerank_graph_edges",
		Help: "The number of edges processed by the last PageRank update pass",
	})

	passSupersteps = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphrank_pagerank_supersteps",
		Help: "The number of supersteps executed by the last PageRank update pass",
	})

	danglingRank = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "graphrank_pagerank_dangling_rank",
		Help: "The amount of rank held by dangling nodes after the last PageRank update pass",
	})
)
