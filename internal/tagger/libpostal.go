//go:build cgo

package tagger

import (
	"context"
	"strings"

	"github.com/openvenues/gopostal/parser"
)

// LibpostalTagger classifies tokens with the libpostal statistical parser.
// Requires the native libpostal library at build time; the rule tagger stays
// the default so plain builds work everywhere.
type LibpostalTagger struct{}

func NewLibpostalTagger() *LibpostalTagger {
	return &LibpostalTagger{}
}

// libpostal emits one component per label, so per-token confidence is a fixed
// estimate for the whole parse rather than a per-word probability.
const libpostalConfidence = 0.9

var libpostalLabels = map[string]Tag{
	"house_number":  TagAddressNumber,
	"road":          TagStreetName,
	"unit":          TagOccupancyIdentifier,
	"level":         TagOccupancyIdentifier,
	"city":          TagPlaceName,
	"suburb":        TagPlaceName,
	"city_district": TagPlaceName,
	"state":         TagStateName,
	"postcode":      TagZipCode,
	"po_box":        TagUSPSBoxID,
}

func (lt *LibpostalTagger) Classify(ctx context.Context, text string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrTaggingFailed
	}

	comps := parser.ParseAddress(text)
	if len(comps) == 0 {
		return nil, ErrTaggingFailed
	}

	var tokens []Token
	for _, c := range comps {
		tag, ok := libpostalLabels[c.Label]
		if !ok {
			tag = TagOther
		}
		// Components can span several words; re-split so downstream sees
		// the same word granularity as the rule tagger.
		for _, w := range strings.Fields(c.Value) {
			conf := libpostalConfidence
			if tag == TagOther {
				conf = 0.5
			}
			tokens = append(tokens, Token{Text: w, Tag: tag, Confidence: conf})
		}
	}
	if len(tokens) == 0 {
		return nil, ErrTaggingFailed
	}
	return tokens, nil
}
