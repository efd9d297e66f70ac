package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"finwise-backend/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchConfig configures the Elasticsearch index backend
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// ElasticsearchIndex stores documents as dense_vector fields with l2_norm similarity
// and answers queries with approximate kNN search
type ElasticsearchIndex struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticsearchIndex creates the Elasticsearch client
func NewElasticsearchIndex(cfg ElasticsearchConfig) (*ElasticsearchIndex, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = "market_documents"
	}
	return &ElasticsearchIndex{client: es, index: index}, nil
}

func (e *ElasticsearchIndex) Name() string { return "elasticsearch" }

type esDocument struct {
	Description string    `json:"description"`
	RiskLabel   string    `json:"risk_label"`
	Position    int       `json:"position"`
	Embedding   []float64 `json:"embedding"`
}

// Build drops and recreates the index, then indexes every document
func (e *ElasticsearchIndex) Build(ctx context.Context, docs []models.MarketDocument, vectors [][]float64) error {
	dim, err := validateBuild(docs, vectors)
	if err != nil {
		return err
	}

	res, err := e.client.Indices.Delete([]string{e.index},
		e.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch delete index error: %s", res.Status())
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"description": map[string]interface{}{"type": "text"},
				"risk_label":  map[string]interface{}{"type": "keyword"},
				"position":    map[string]interface{}{"type": "integer"},
				"embedding": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dim,
					"index":      true,
					"similarity": "l2_norm",
				},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithContext(ctx),
		e.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch create index error: %s", res.Status())
	}

	for i, doc := range docs {
		docJSON, err := json.Marshal(esDocument{
			Description: doc.Description,
			RiskLabel:   string(doc.RiskLabel),
			Position:    i,
			Embedding:   vectors[i],
		})
		if err != nil {
			return fmt.Errorf("failed to marshal document %d: %w", i, err)
		}

		id := doc.ID
		if id == "" {
			id = fmt.Sprintf("%d", i)
		}
		res, err := e.client.Index(e.index, bytes.NewReader(docJSON),
			e.client.Index.WithContext(ctx),
			e.client.Index.WithDocumentID(id),
			e.client.Index.WithRefresh("wait_for"),
		)
		if err != nil {
			return fmt.Errorf("failed to index document %s: %w", id, err)
		}
		res.Body.Close()
		if res.IsError() {
			return fmt.Errorf("elasticsearch index document %s error: %s", id, res.Status())
		}
	}
	return nil
}

// maxDocuments caps a single Documents read, which is the default index.max_result_window
const maxDocuments = 10000

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Score  float64    `json:"_score"`
			Source esDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a kNN query. Elasticsearch scores l2_norm hits as 1/(1+d²), so the squared
// distance is recovered as 1/score - 1.
func (e *ElasticsearchIndex) Search(ctx context.Context, vector []float64, k int) ([]models.Candidate, error) {
	if k <= 0 {
		return nil, ErrInvalidK
	}

	numCandidates := k * 10
	if numCandidates < 10 {
		numCandidates = 10
	}
	query := map[string]interface{}{
		"knn": map[string]interface{}{
			"field":          "embedding",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": numCandidates,
		},
		"_source": []string{"description", "risk_label", "position"},
		"size":    k,
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(parsed.Hits.Hits) == 0 {
		return nil, ErrEmptyIndex
	}

	candidates := make([]models.Candidate, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		distance := 0.0
		if hit.Score > 0 {
			distance = 1/hit.Score - 1
		}
		if distance < 0 {
			distance = 0
		}
		candidates = append(candidates, models.Candidate{
			Document: models.MarketDocument{
				ID:          hit.ID,
				Description: hit.Source.Description,
				RiskLabel:   models.RiskTolerance(hit.Source.RiskLabel),
			},
			Distance: distance,
		})
	}
	return candidates, nil
}

// Documents reads every stored document sorted by position. A missing index is empty.
func (e *ElasticsearchIndex) Documents(ctx context.Context) ([]models.MarketDocument, error) {
	query := map[string]interface{}{
		"query":   map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":    []interface{}{map[string]interface{}{"position": "asc"}},
		"_source": []string{"description", "risk_label", "position"},
		"size":    maxDocuments,
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil, ErrEmptyIndex
	}
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.Status())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if len(parsed.Hits.Hits) == 0 {
		return nil, ErrEmptyIndex
	}

	docs := make([]models.MarketDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, models.MarketDocument{
			ID:          hit.ID,
			Description: hit.Source.Description,
			RiskLabel:   models.RiskTolerance(hit.Source.RiskLabel),
		})
	}
	return docs, nil
}
