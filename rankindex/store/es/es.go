package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch"
	"github.com/elastic/go-elasticsearch/esapi"
	"github.com/google/uuid"
	"github.com/rankworks/graphrank/rankindex/index"
	"golang.org/x/xerrors"
)

// The name of the elasticsearch index to use.
const indexName = "rankindex"

// The size of each page of results that is cached locally by the iterator.
const batchSize = 10

var esMappings = `
{
  "mappings" : {
    "properties": {
      "NodeID": {"type": "keyword"},
      "Label": {"type": "keyword"},
      "UpdatedAt": {"type": "date"},
      "Rank": {"type": "double"}
    }
  }
}`

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	Total   esTotal        `json:"total"`
	HitList []esHitWrapper `json:"hits"`
}

type esTotal struct {
	Count uint64 `json:"value"`
}

type esHitWrapper struct {
	DocSource esDoc `json:"_source"`
}

type esDoc struct {
	NodeID    string    `json:"NodeID"`
	Label     string    `json:"Label"`
	UpdatedAt time.Time `json:"UpdatedAt"`
	Rank      float64   `json:"Rank,omitempty"`
}

type esUpdateRes struct {
	Result string `json:"result"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// Compile-time check to ensure ElasticSearchIndexer implements Indexer.
var _ index.Indexer = (*ElasticSearchIndexer)(nil)

// ElasticSearchIndexer is an Indexer implementation that uses an elastic
// search instance to catalogue node ranks.
type ElasticSearchIndexer struct {
	es         *elasticsearch.Client
	refreshOpt func(*esapi.UpdateRequest)
}

// NewElasticSearchIndexer creates a rank indexer that uses the elastic
// search instance(s) specified by esNodes.
func NewElasticSearchIndexer(esNodes []string, syncUpdates bool) (*ElasticSearchIndexer, error) {
	cfg := elasticsearch.Config{
		Addresses: esNodes,
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err = ensureIndex(es); err != nil {
		return nil, err
	}

	refreshOpt := es.Update.WithRefresh("false")
	if syncUpdates {
		refreshOpt = es.Update.WithRefresh("true")
	}

	return &ElasticSearchIndexer{
		es:         es,
		refreshOpt: refreshOpt,
	}, nil
}

// Index inserts a new ranked-node entry or updates the entry for an
// existing node.
func (i *ElasticSearchIndexer) Index(node *index.RankedNode) error {
	if node.NodeID == uuid.Nil {
		return xerrors.Errorf("index: %w", index.ErrMissingNodeID)
	}

	var (
		buf   bytes.Buffer
		esDoc = makeEsDoc(node)
	)
	update := map[string]interface{}{
		"doc":           esDoc,
		"doc_as_upsert": true,
	}
	if err := json.NewEncoder(&buf).Encode(update); err != nil {
		return xerrors.Errorf("index: %w", err)
	}

	res, err := i.es.Update(indexName, esDoc.NodeID, &buf, i.refreshOpt)
	if err != nil {
		return xerrors.Errorf("index: %w", err)
	}

	var updateRes esUpdateRes
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return xerrors.Errorf("index: %w", err)
	}

	return nil
}

// FindByID looks up an entry by its node ID.
func (i *ElasticSearchIndexer) FindByID(nodeID uuid.UUID) (*index.RankedNode, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"NodeID": nodeID.String(),
			},
		},
		"from": 0,
		"size": 1,
	}

	searchRes, err := runSearch(i.es, query)
	if err != nil {
		return nil, xerrors.Errorf("find by ID: %w", err)
	}

	if len(searchRes.Hits.HitList) != 1 {
		return nil, xerrors.Errorf("find by ID: %w", index.ErrNotFound)
	}

	return mapEsDoc(&searchRes.Hits.HitList[0].DocSource), nil
}

// TopRanked returns an iterator that yields the indexed entries ordered by
// descending rank, skipping the first offset results.
func (i *ElasticSearchIndexer) TopRanked(offset uint64) (index.Iterator, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"match_all": map[string]interface{}{},
		},
		"sort": []interface{}{
			map[string]interface{}{"Rank": "desc"},
			map[string]interface{}{"NodeID": "asc"},
		},
		"from": offset,
		"size": batchSize,
	}

	searchRes, err := runSearch(i.es, query)
	if err != nil {
		return nil, xerrors.Errorf("top ranked: %w", err)
	}

	return &esIterator{es: i.es, searchReq: query, rs: searchRes, cumIdx: offset}, nil
}

// UpdateRank updates the rank for the entry with the specified node ID. If
// no such entry exists, a placeholder entry with the provided rank will be
// created.
func (i *ElasticSearchIndexer) UpdateRank(nodeID uuid.UUID, rank float64) error {
	var buf bytes.Buffer
	update := map[string]interface{}{
		"doc": map[string]interface{}{
			"NodeID": nodeID.String(),
			"Rank":   rank,
		},
		"doc_as_upsert": true,
	}
	if err := json.NewEncoder(&buf).Encode(update); err != nil {
		return xerrors.Errorf("update rank: %w", err)
	}

	res, err := i.es.Update(indexName, nodeID.String(), &buf, i.refreshOpt)
	if err != nil {
		return xerrors.Errorf("update rank: %w", err)
	}

	var updateRes esUpdateRes
	if err = unmarshalResponse(res, &updateRes); err != nil {
		return xerrors.Errorf("update rank: %w", err)
	}

	return nil
}

func ensureIndex(es *elasticsearch.Client) error {
	mappingsReader := strings.NewReader(esMappings)
	res, err := es.Indices.Create(indexName, es.Indices.Create.WithBody(mappingsReader))
	if err != nil {
		return xerrors.Errorf("cannot create ES index: %w", err)
	} else if res.IsError() {
		err := unmarshalError(res)
		if esErr, valid := err.(esError); valid && esErr.Type == "resource_already_exists_exception" {
			return nil
		}
		return xerrors.Errorf("cannot create ES index: %w", err)
	}

	return nil
}

func runSearch(es *elasticsearch.Client, searchQuery map[string]interface{}) (*esSearchRes, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery); err != nil {
		return nil, xerrors.Errorf("run search: %w", err)
	}

	// Perform the search request.
	res, err := es.Search(
		es.Search.WithContext(context.Background()),
		es.Search.WithIndex(indexName),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, err
	}

	return &esRes, nil
}

func unmarshalError(res *esapi.Response) error {
	return unmarshalResponse(res, nil)
}

func unmarshalResponse(res *esapi.Response, to interface{}) error {
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		return errRes.Error
	}

	return json.NewDecoder(res.Body).Decode(to)
}

func mapEsDoc(d *esDoc) *index.RankedNode {
	return &index.RankedNode{
		NodeID:    uuid.MustParse(d.NodeID),
		Label:     d.Label,
		UpdatedAt: d.UpdatedAt.UTC(),
		Rank:      d.Rank,
	}
}

func makeEsDoc(d *index.RankedNode) esDoc {
	// Note: we intentionally skip Rank as we don't want updates to
	// overwrite existing rank values.
	return esDoc{
		NodeID:    d.NodeID.String(),
		Label:     d.Label,
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}
