// File: internal/platform/elasticsearch/index.go
package elasticsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

const UploadsIndexName = "uploads"

func uploadsMapping() (string, error) {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"title":          map[string]interface{}{"type": "text"},
				"country":        map[string]interface{}{"type": "keyword"},
				"status":         map[string]interface{}{"type": "keyword"},
				"uploader_email": map[string]interface{}{"type": "keyword"},
				"period":         map[string]interface{}{"type": "keyword"},
				"created_at":     map[string]interface{}{"type": "date"},
				"updated_at":     map[string]interface{}{"type": "date"},
			},
		},
	}
	b, err := json.Marshal(mapping)
	if err != nil {
		return "", fmt.Errorf("error marshalling uploads mapping to JSON: %w", err)
	}
	return string(b), nil
}

// CreateUploadsIndexIfNotExists creates the uploads index with its mapping
// if it does not already exist.
func CreateUploadsIndexIfNotExists(ctx context.Context, client *ESClientWrapper, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup")

	res, err := esapi.IndicesExistsRequest{Index: []string{UploadsIndexName}}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error checking if uploads index exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Uploads index already exists", zap.String("index_name", UploadsIndexName))
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("error checking if uploads index exists: status %s", res.Status())
	}

	mappingJSON, err := uploadsMapping()
	if err != nil {
		return err
	}

	createRes, err := esapi.IndicesCreateRequest{
		Index: UploadsIndexName,
		Body:  strings.NewReader(mappingJSON),
	}.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error creating uploads index %s: %w", UploadsIndexName, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		var errorBody map[string]interface{}
		if err := json.NewDecoder(createRes.Body).Decode(&errorBody); err == nil {
			log.Error("Failed to create uploads index",
				zap.String("status", createRes.Status()),
				zap.Any("error_details", errorBody),
			)
		}
		return fmt.Errorf("failed to create uploads index %s: status %s", UploadsIndexName, createRes.Status())
	}

	log.Info("Uploads index created successfully", zap.String("index_name", UploadsIndexName))
	return nil
}
