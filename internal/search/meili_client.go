// Package search holds the Meilisearch-backed locality directory.
package search

import (
	"fmt"

	ms "github.com/meilisearch/meilisearch-go"
)

// ClientWrapper narrows the Meilisearch client to what the directory needs.
type ClientWrapper struct {
	cli ms.ServiceManager
}

// NewClientWrapper creates a Meilisearch client wrapper.
func NewClientWrapper(url, key string) *ClientWrapper {
	return &ClientWrapper{
		cli: ms.New(url, ms.WithAPIKey(key)),
	}
}

// Health pings the server.
func (c *ClientWrapper) Health() (*ms.Health, error) {
	return c.cli.Health()
}

// Index returns the raw index manager for settings and document loads.
func (c *ClientWrapper) Index(index string) ms.IndexManager {
	return c.cli.Index(index)
}

// SearchIndex runs one filtered query against an index.
func (c *ClientWrapper) SearchIndex(index, q, filter string, limit int64) (*ms.SearchResponse, error) {
	req := &ms.SearchRequest{
		Limit:  limit,
		Filter: filter,
	}
	return c.cli.Index(index).Search(q, req)
}

// FilterState builds a state_code filter, empty state means no filter.
func FilterState(stateCode string) string {
	if stateCode == "" {
		return ""
	}
	return fmt.Sprintf("state_code = %q", stateCode)
}

// FilterZip builds a zip_codes membership filter.
func FilterZip(zip5 string) string {
	return fmt.Sprintf("zip_codes = %q", zip5)
}
