//go:build !cgo

package tagger

import "github.com/address-cleanser/internal/reference"

// FromConfig ignores the libpostal flag on builds without cgo.
func FromConfig(useLibpostal bool, tables *reference.Tables) Tagger {
	return NewRuleTagger(tables)
}
