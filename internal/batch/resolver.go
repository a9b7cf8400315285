// Package batch drives the cleansing pipeline over tabular row streams:
// column resolution, chunked parallel processing and summary accounting.
package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Mode selects how an address string is derived from a row.
type Mode string

const (
	// ModeSingleColumn reads one named column (default "address").
	ModeSingleColumn Mode = "single-column"
	// ModeExplicitColumns joins named columns in caller order.
	ModeExplicitColumns Mode = "explicit-columns"
	// ModeAutoCombine detects address-like columns by synonym matching.
	ModeAutoCombine Mode = "auto-combine"
)

// DefaultAddressColumn is the column ModeSingleColumn falls back to when no
// name is given.
const DefaultAddressColumn = "address"

var (
	// ErrUnresolvedColumns marks one row the resolver could not derive an
	// address from. The batch continues.
	ErrUnresolvedColumns = errors.New("batch: could not resolve address columns")
	// ErrColumnNotFound means a required column is absent from the input
	// schema. This aborts the batch before any row is processed.
	ErrColumnNotFound = errors.New("batch: required column not found")
)

// Row is one input record. Columns preserves the source column order; Values
// maps column name to cell text.
type Row struct {
	Columns []string
	Values  map[string]string
}

// ColumnResolver derives the address text for each row under one of the
// three modes. It holds no per-row state.
type ColumnResolver struct {
	mode    Mode
	columns []string
}

// NewColumnResolver builds a resolver. For ModeSingleColumn, columns carries
// at most one name; for ModeExplicitColumns it is the join order. The column
// list is ignored under ModeAutoCombine.
func NewColumnResolver(mode Mode, columns ...string) *ColumnResolver {
	if mode == ModeSingleColumn && len(columns) == 0 {
		columns = []string{DefaultAddressColumn}
	}
	return &ColumnResolver{mode: mode, columns: columns}
}

// ValidateSchema checks the input schema up front so a structural mismatch
// fails the whole batch before any row is cleansed. Auto-combine has no fixed
// requirement, so it always passes here and flags rows individually instead.
func (r *ColumnResolver) ValidateSchema(columns []string) error {
	if r.mode == ModeAutoCombine {
		return nil
	}
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[c] = struct{}{}
	}
	for _, want := range r.columns {
		if _, ok := have[want]; !ok {
			return fmt.Errorf("%w: %q", ErrColumnNotFound, want)
		}
	}
	return nil
}

// Resolve returns the address text for one row.
func (r *ColumnResolver) Resolve(row Row) (string, error) {
	switch r.mode {
	case ModeSingleColumn:
		return row.Values[r.columns[0]], nil
	case ModeExplicitColumns:
		var parts []string
		for _, col := range r.columns {
			if v := strings.TrimSpace(row.Values[col]); v != "" {
				parts = append(parts, v)
			}
		}
		return strings.Join(parts, ", "), nil
	case ModeAutoCombine:
		return r.autoCombine(row)
	default:
		return "", fmt.Errorf("%w: unknown mode %q", ErrUnresolvedColumns, r.mode)
	}
}

// Address-part synonyms recognized by auto-combine, in output order. Column
// names are matched case-insensitively with one edit of slack, so "adress"
// or "Zip_Code" still bind.
var autoParts = []struct {
	name     string
	synonyms []string
}{
	{"street", []string{"street", "address", "addr", "street_address", "address_line_1", "address1", "line1"}},
	{"city", []string{"city", "town", "municipality"}},
	{"state", []string{"state", "province", "region"}},
	{"zip", []string{"zip", "zipcode", "zip_code", "postal_code", "postalcode", "postcode"}},
}

func (r *ColumnResolver) autoCombine(row Row) (string, error) {
	claimed := make(map[string]struct{}, len(autoParts))
	var parts []string
	matched := 0
	for _, part := range autoParts {
		col, ok := findColumn(row.Columns, part.synonyms, claimed)
		if !ok {
			continue
		}
		claimed[col] = struct{}{}
		matched++
		if v := strings.TrimSpace(row.Values[col]); v != "" {
			parts = append(parts, v)
		}
	}
	if matched < 2 {
		return "", fmt.Errorf("%w: matched %d address-like columns, need 2", ErrUnresolvedColumns, matched)
	}
	return strings.Join(parts, ", "), nil
}

func findColumn(columns, synonyms []string, claimed map[string]struct{}) (string, bool) {
	for _, col := range columns {
		if _, taken := claimed[col]; taken {
			continue
		}
		norm := normalizeColumn(col)
		for _, syn := range synonyms {
			if norm == syn || levenshtein.ComputeDistance(norm, syn) <= 1 {
				return col, true
			}
		}
	}
	return "", false
}

func normalizeColumn(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
