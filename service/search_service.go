package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	model "github.com/Itish41/Poligap/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"
)

// Elasticsearch indices.
const (
	AssetIndex    = "assets"
	AuditLogIndex = "audit_logs"
)

// Indexer keeps the search index in step with the database. Failures are
// logged and never break the write that triggered them.
type Indexer interface {
	Index(ctx context.Context, index, id string, doc map[string]interface{})
	Delete(ctx context.Context, index, id string)
}

// SearchHit is one enterprise-search result.
type SearchHit struct {
	Index  string                 `json:"index"`
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

// SearchService indexes and queries assets and audit logs.
type SearchService struct {
	esClient *elasticsearch.Client
}

// NewSearchService connects to Elasticsearch when esURL is set. Without it
// indexing is skipped and Search reports ErrSearchUnavailable.
func NewSearchService(esURL string) *SearchService {
	if esURL == "" {
		log.Warn().Msg("[SearchService] ELASTICSEARCH_URL not set, search disabled")
		return &SearchService{}
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{esURL}})
	if err != nil {
		log.Warn().Err(err).Msg("[SearchService] failed to create Elasticsearch client, search disabled")
		return &SearchService{}
	}
	return &SearchService{esClient: client}
}

func (s *SearchService) Enabled() bool { return s.esClient != nil }

func (s *SearchService) Index(ctx context.Context, index, id string, doc map[string]interface{}) {
	if s.esClient == nil {
		return
	}
	body, err := json.Marshal(doc)
	if err != nil {
		log.Error().Err(err).Str("index", index).Str("id", id).Msg("[SearchService] failed to marshal document")
		return
	}

	res, err := s.esClient.Index(
		index,
		bytes.NewReader(body),
		s.esClient.Index.WithDocumentID(id),
		s.esClient.Index.WithContext(ctx),
	)
	if err != nil {
		log.Error().Err(err).Str("index", index).Str("id", id).Msg("[SearchService] indexing error")
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Error().Str("index", index).Str("id", id).Msg("[SearchService] indexing failed: " + res.String())
	}
}

func (s *SearchService) Delete(ctx context.Context, index, id string) {
	if s.esClient == nil {
		return
	}
	res, err := s.esClient.Delete(index, id, s.esClient.Delete.WithContext(ctx))
	if err != nil {
		log.Error().Err(err).Str("index", index).Str("id", id).Msg("[SearchService] delete error")
		return
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		log.Error().Str("index", index).Str("id", id).Msg("[SearchService] delete failed: " + res.String())
	}
}

// Search runs a multi_match query across assets and audit logs.
func (s *SearchService) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if s.esClient == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("Query parameter 'q' is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	searchQuery := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"search_content^2", "name", "file_name", "standard_names", "tags", "category"},
			},
		},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := s.esClient.Search(
		s.esClient.Search.WithContext(ctx),
		s.esClient.Search.WithIndex(AssetIndex, AuditLogIndex),
		s.esClient.Search.WithBody(bytes.NewReader(body)),
		s.esClient.Search.WithIgnoreUnavailable(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Index  string                 `json:"_index"`
				ID     string                 `json:"_id"`
				Score  float64                `json:"_score"`
				Source map[string]interface{} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, SearchHit{Index: h.Index, ID: h.ID, Score: h.Score, Source: h.Source})
	}
	return hits, nil
}

func auditLogDocument(entry *model.AuditLog) map[string]interface{} {
	return map[string]interface{}{
		"id":             entry.ID,
		"file_name":      entry.FileName,
		"standards":      []string(entry.Standards),
		"standard_names": entry.StandardNames,
		"status":         entry.Status,
		"score":          entry.Score,
		"gap_count":      entry.GapCount,
		"search_content": entry.FileName + " " + entry.StandardNames + " " + entry.Status,
		"created_at":     entry.CreatedAt,
	}
}

func assetDocument(asset *model.Asset) map[string]interface{} {
	return map[string]interface{}{
		"id":             asset.ID,
		"name":           asset.Name,
		"category":       asset.Category,
		"tags":           []string(asset.Tags),
		"mimetype":       asset.MimeType,
		"url":            asset.URL,
		"search_content": asset.Name + " " + asset.Category + " " + strings.Join(asset.Tags, " "),
		"upload_date":    asset.UploadDate,
	}
}
