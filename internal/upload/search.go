// File: internal/upload/search.go
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	platformes "ecowas_fisheries_backend/internal/platform/elasticsearch"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSearchLimit caps search hits when the caller does not.
const DefaultSearchLimit = 50

// Indexer keeps the report search index in step with the uploads table.
type Indexer interface {
	Index(ctx context.Context, record *Record) error
	Search(ctx context.Context, query SearchQuery) ([]uuid.UUID, error)
	BulkIndex(ctx context.Context, records []Record) (indexed, failed int, err error)
}

// SearchQuery filters the index. Empty fields do not filter.
type SearchQuery struct {
	Text    string
	Status  Status
	Country string
	Limit   int
}

// ESIndexer is the Elasticsearch implementation of Indexer.
type ESIndexer struct {
	client *platformes.ESClientWrapper
	index  string
	logger *zap.Logger
}

// NewIndexer returns nil when search is disabled, so callers can compare against nil.
func NewIndexer(client *platformes.ESClientWrapper, logger *zap.Logger) Indexer {
	if client == nil || client.Client == nil {
		return nil
	}
	return &ESIndexer{
		client: client,
		index:  platformes.UploadsIndexName,
		logger: logger.Named("UploadIndexer"),
	}
}

// toDocument converts a record to its index document.
func toDocument(r *Record) map[string]interface{} {
	return map[string]interface{}{
		"title":          r.Title,
		"country":        r.Country,
		"status":         string(r.Status),
		"uploader_email": r.UploaderEmail,
		"period":         r.Period,
		"created_at":     r.CreatedAt,
		"updated_at":     r.UpdatedAt,
	}
}

// Index writes one record document.
func (i *ESIndexer) Index(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	body, err := json.Marshal(toDocument(record))
	if err != nil {
		return fmt.Errorf("marshal upload document: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: record.ID.String(),
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}.Do(ctx, i.client.Client)
	if err != nil {
		return fmt.Errorf("index upload %s: %w", record.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index upload %s: status %s", record.ID, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func buildSearchBody(q SearchQuery) ([]byte, error) {
	var must []interface{}
	if text := strings.TrimSpace(q.Text); text != "" {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{
				"title": map[string]interface{}{"query": text, "operator": "and", "fuzziness": "AUTO"},
			},
		})
	} else {
		must = append(must, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	var filter []interface{}
	if q.Status != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"status": string(q.Status)}})
	}
	if q.Country != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"country": q.Country}})
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	boolQuery := map[string]interface{}{"must": must}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}
	return json.Marshal(map[string]interface{}{
		"size":    limit,
		"_source": false,
		"query":   map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	})
}

// Search returns the ids of matching records, best match first.
func (i *ESIndexer) Search(ctx context.Context, q SearchQuery) ([]uuid.UUID, error) {
	body, err := buildSearchBody(q)
	if err != nil {
		return nil, fmt.Errorf("build search body: %w", err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
	}.Do(ctx, i.client.Client)
	if err != nil {
		return nil, fmt.Errorf("search uploads: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		i.logger.Error("Upload search failed", zap.String("status", res.Status()), zap.ByteString("body", raw))
		return nil, fmt.Errorf("search uploads: status %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			i.logger.Warn("Skipping search hit with malformed id", zap.String("id", hit.ID))
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkIndex writes records through the _bulk API and counts per-item outcomes.
func (i *ESIndexer) BulkIndex(ctx context.Context, records []Record) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	var buf bytes.Buffer
	for idx := range records {
		rec := &records[idx]
		meta := map[string]interface{}{
			"index": map[string]interface{}{"_index": i.index, "_id": rec.ID.String()},
		}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return 0, 0, fmt.Errorf("marshal bulk meta for %s: %w", rec.ID, err)
		}
		docLine, err := json.Marshal(toDocument(rec))
		if err != nil {
			return 0, 0, fmt.Errorf("marshal bulk document for %s: %w", rec.ID, err)
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}.Do(ctx, i.client.Client)
	if err != nil {
		return 0, len(records), fmt.Errorf("bulk index uploads: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, len(records), fmt.Errorf("bulk index uploads: status %s", res.Status())
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, len(records), fmt.Errorf("decode bulk response: %w", err)
	}
	if !parsed.Errors {
		return len(records), 0, nil
	}

	failed := 0
	for _, item := range parsed.Items {
		for op, detail := range item {
			if detail.Error != nil {
				failed++
				i.logger.Error("Bulk item failed",
					zap.String("operation", op),
					zap.String("id", detail.ID),
					zap.Int("status", detail.Status),
					zap.String("type", detail.Error.Type),
					zap.String("reason", detail.Error.Reason),
				)
			}
		}
	}
	return len(records) - failed, failed, nil
}
