//go:build cgo

package tagger

import "github.com/address-cleanser/internal/reference"

// FromConfig picks the libpostal tagger when asked for, falling back to the
// rule tagger otherwise.
func FromConfig(useLibpostal bool, tables *reference.Tables) Tagger {
	if useLibpostal {
		return NewLibpostalTagger()
	}
	return NewRuleTagger(tables)
}
