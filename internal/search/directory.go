package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
)

// LocalityDirectory is the Meilisearch-backed directory of US places. The
// admin API seeds it from locality reference data and the audit tooling
// queries it to cross-check parsed city/state pairs. The cleansing pipeline
// itself never touches it.
type LocalityDirectory struct {
	client     *ClientWrapper
	logger     *zap.Logger
	indexName  string
	maxResults int
}

// SearchConfig configures the Meilisearch connection.
type SearchConfig struct {
	Host       string
	APIKey     string
	IndexName  string
	MaxResults int
}

// NewLocalityDirectory connects to Meilisearch and verifies it is reachable.
func NewLocalityDirectory(config SearchConfig, logger *zap.Logger) (*LocalityDirectory, error) {
	client := NewClientWrapper(config.Host, config.APIKey)

	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("meilisearch unreachable: %w", err)
	}

	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	return &LocalityDirectory{
		client:     client,
		logger:     logger,
		indexName:  config.IndexName,
		maxResults: maxResults,
	}, nil
}

// SearchLocalities finds places matching the query, optionally narrowed to one
// state. Typo tolerance is handled by the index settings.
func (ld *LocalityDirectory) SearchLocalities(query, stateCode string, limit int) ([]models.Locality, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query must not be empty")
	}
	if limit <= 0 || limit > ld.maxResults {
		limit = ld.maxResults
	}

	result, err := ld.client.SearchIndex(ld.indexName, query, FilterState(stateCode), int64(limit))
	if err != nil {
		return nil, fmt.Errorf("locality search: %w", err)
	}
	return ld.parseHits(result), nil
}

// LookupZip returns the localities known to serve a ZIP5.
func (ld *LocalityDirectory) LookupZip(zip5 string) ([]models.Locality, error) {
	if len(zip5) != 5 {
		return nil, fmt.Errorf("lookup wants a 5-digit zip, got %q", zip5)
	}

	result, err := ld.client.SearchIndex(ld.indexName, "", FilterZip(zip5), int64(ld.maxResults))
	if err != nil {
		return nil, fmt.Errorf("zip lookup: %w", err)
	}
	return ld.parseHits(result), nil
}

// GetLocality fetches one directory entry by its stable ID.
func (ld *LocalityDirectory) GetLocality(localityID string) (*models.Locality, error) {
	if localityID == "" {
		return nil, errors.New("locality id must not be empty")
	}

	filter := fmt.Sprintf("locality_id = %q", localityID)
	result, err := ld.client.SearchIndex(ld.indexName, "", filter, 1)
	if err != nil {
		return nil, fmt.Errorf("locality fetch: %w", err)
	}

	localities := ld.parseHits(result)
	if len(localities) == 0 {
		return nil, errors.New("locality not found")
	}
	return &localities[0], nil
}

// BuildIndexes applies the index settings: which attributes are searchable,
// which are filterable, and the USPS-style place-name synonyms.
func (ld *LocalityDirectory) BuildIndexes() error {
	index := ld.client.Index(ld.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"name", "normalized_name", "aliases"},
		FilterableAttributes: []string{"locality_id", "state_code", "zip_codes", "table_revision"},
		SortableAttributes:   []string{"state_code", "name"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		Synonyms: map[string][]string{
			"st":   {"saint"},
			"mt":   {"mount"},
			"ft":   {"fort"},
			"nyc":  {"new york"},
			"phil": {"philadelphia"},
		},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  4,
				TwoTypos: 8,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("index settings: %w", err)
	}

	ld.logger.Info("locality index configured", zap.Int64("task_uid", task.TaskUID))
	return nil
}

// SeedLocalities loads directory entries in chunks of 1000.
func (ld *LocalityDirectory) SeedLocalities(localities []models.Locality) error {
	if len(localities) == 0 {
		return errors.New("no localities to seed")
	}

	index := ld.client.Index(ld.indexName)

	documents := make([]map[string]interface{}, 0, len(localities))
	for _, loc := range localities {
		documents = append(documents, map[string]interface{}{
			"id":              loc.LocalityID,
			"locality_id":     loc.LocalityID,
			"name":            loc.Name,
			"normalized_name": loc.NormalizedName,
			"state_code":      loc.StateCode,
			"county":          loc.County,
			"zip_codes":       loc.ZipCodes,
			"aliases":         loc.Aliases,
			"table_revision":  loc.TableRevision,
		})
	}

	const batchSize = 1000
	for i := 0; i < len(documents); i += batchSize {
		end := i + batchSize
		if end > len(documents) {
			end = len(documents)
		}

		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return fmt.Errorf("seed documents %d-%d: %w", i, end, err)
		}
		ld.logger.Debug("locality batch queued",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	ld.logger.Info("locality directory seeded", zap.Int("total", len(documents)))
	return nil
}

// DropStaleRevisions removes entries whose table revision differs from the
// current one, mirroring the cache invalidation rule.
func (ld *LocalityDirectory) DropStaleRevisions(revision string) error {
	index := ld.client.Index(ld.indexName)

	task, err := index.DeleteDocumentsByFilter(fmt.Sprintf("table_revision != %q", revision))
	if err != nil {
		return fmt.Errorf("drop stale revisions: %w", err)
	}

	ld.logger.Info("stale locality revisions dropped",
		zap.String("revision", revision),
		zap.Int64("task_uid", task.TaskUID))
	return nil
}

func (ld *LocalityDirectory) parseHits(result *meilisearch.SearchResponse) []models.Locality {
	localities := make([]models.Locality, 0, len(result.Hits))

	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		loc := models.Locality{}
		if id, ok := hitMap["locality_id"].(string); ok {
			loc.LocalityID = id
		}
		if name, ok := hitMap["name"].(string); ok {
			loc.Name = name
		}
		if normalized, ok := hitMap["normalized_name"].(string); ok {
			loc.NormalizedName = normalized
		}
		if state, ok := hitMap["state_code"].(string); ok {
			loc.StateCode = state
		}
		if county, ok := hitMap["county"].(string); ok {
			loc.County = county
		}
		if revision, ok := hitMap["table_revision"].(string); ok {
			loc.TableRevision = revision
		}
		loc.ZipCodes = stringSlice(hitMap["zip_codes"])
		loc.Aliases = stringSlice(hitMap["aliases"])

		localities = append(localities, loc)
	}
	return localities
}

func stringSlice(raw interface{}) []string {
	values, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
