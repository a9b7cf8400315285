package requests

import "github.com/address-cleanser/app/models"

// CleanseAddressRequest cleanses one free-form address string.
type CleanseAddressRequest struct {
	Address string         `json:"address" binding:"required"`
	Options CleanseOptions `json:"options,omitempty"`
}

// CleanseOptions tunes one cleanse call. The return flags are pointers so an
// absent field means "include", matching the default response shape.
type CleanseOptions struct {
	// UseCache consults and populates the result cache.
	UseCache bool `json:"use_cache,omitempty"`

	ReturnParsed     *bool `json:"return_parsed,omitempty"`
	ReturnConfidence *bool `json:"return_confidence,omitempty"`
	ReturnOriginal   *bool `json:"return_original,omitempty"`
}

// WantParsed reports whether the parsed breakdown should be returned.
func (o *CleanseOptions) WantParsed() bool { return o.ReturnParsed == nil || *o.ReturnParsed }

// WantConfidence reports whether the confidence score should be returned.
func (o *CleanseOptions) WantConfidence() bool {
	return o.ReturnConfidence == nil || *o.ReturnConfidence
}

// WantOriginal reports whether the raw input should be echoed back.
func (o *CleanseOptions) WantOriginal() bool { return o.ReturnOriginal == nil || *o.ReturnOriginal }

// BatchCleanseRequest submits a batch job. Either Addresses (one string per
// row) or Rows+Columns (tabular input resolved by Mode) must be set.
type BatchCleanseRequest struct {
	Addresses []string `json:"addresses,omitempty" binding:"omitempty,min=1,max=20000"`

	Columns []string            `json:"columns,omitempty"`
	Rows    []map[string]string `json:"rows,omitempty" binding:"omitempty,max=20000"`

	// Mode is one of single-column, explicit-columns, auto-combine.
	// Defaults to single-column over Addresses input.
	Mode string `json:"mode,omitempty"`
	// ModeColumns names the column(s) the mode operates on.
	ModeColumns []string `json:"mode_columns,omitempty"`

	// PreserveColumns carries the original row fields into each output row.
	PreserveColumns bool `json:"preserve_columns,omitempty"`

	Options CleanseOptions `json:"options,omitempty"`
}

// SyncBatchRequest cleanses a short list of addresses in one call.
type SyncBatchRequest struct {
	Addresses []string       `json:"addresses" binding:"required,min=1,max=1000"`
	Options   CleanseOptions `json:"options,omitempty"`
}

// InvalidateCacheRequest drops cached results from other table revisions.
type InvalidateCacheRequest struct {
	TableRevision string `json:"table_revision" binding:"required"`
}

// SeedLocalitiesRequest loads locality reference data into the search index.
type SeedLocalitiesRequest struct {
	TableRevision  string            `json:"table_revision" binding:"required"`
	Data           []models.Locality `json:"data" binding:"required"`
	RebuildIndexes bool              `json:"rebuild_indexes,omitempty"`
}
