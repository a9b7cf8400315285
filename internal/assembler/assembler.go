// Package assembler folds a tagged token sequence into a structured address.
// It is a pure function of the token list: no lookups, no validation.
package assembler

import (
	"strings"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/tagger"
)

// Assembler turns tagger output into a ParsedAddress. Consecutive tokens with
// the same tag join into one field value; when a later run repeats a tag that
// is already filled, the first value wins and the repeat lands in
// UnclassifiedTokens. Unknown tags are routed there too, never rejected.
type Assembler struct{}

func New() *Assembler {
	return &Assembler{}
}

// Assemble builds the structured address for one raw input. raw is recorded
// verbatim on the result.
func (a *Assembler) Assemble(raw string, tokens []tagger.Token) models.ParsedAddress {
	pa := models.ParsedAddress{RawText: raw}

	var (
		runTag   tagger.Tag
		runParts []string
	)
	flush := func() {
		if len(runParts) > 0 {
			a.commit(&pa, runTag, runParts)
		}
		runParts = nil
	}
	for _, tk := range tokens {
		if tk.Tag != runTag {
			flush()
			runTag = tk.Tag
		}
		runParts = append(runParts, tk.Text)
	}
	flush()

	pa.AddressType = classify(&pa)
	return pa
}

func (a *Assembler) commit(pa *models.ParsedAddress, tag tagger.Tag, parts []string) {
	value := strings.Join(parts, " ")
	var field *string
	switch tag {
	case tagger.TagAddressNumber:
		field = &pa.AddressNumber
	case tagger.TagStreetNamePreDirectional:
		field = &pa.StreetPredirection
	case tagger.TagStreetName:
		field = &pa.StreetName
	case tagger.TagStreetNamePostType:
		field = &pa.StreetType
	case tagger.TagStreetNamePostDirectional:
		field = &pa.StreetPostdirection
	case tagger.TagOccupancyType:
		field = &pa.UnitType
	case tagger.TagOccupancyIdentifier:
		field = &pa.UnitNumber
		value = strings.TrimPrefix(value, "#")
	case tagger.TagPlaceName:
		field = &pa.City
	case tagger.TagStateName:
		field = &pa.State
	case tagger.TagZipCode:
		if pa.Zip5 != "" {
			pa.UnclassifiedTokens = append(pa.UnclassifiedTokens, parts...)
			return
		}
		zip5, zip4, _ := strings.Cut(value, "-")
		pa.Zip5, pa.Zip4 = zip5, zip4
		return
	case tagger.TagUSPSBoxType:
		field = &pa.POBoxType
	case tagger.TagUSPSBoxID:
		field = &pa.POBoxNumber
	default:
		pa.UnclassifiedTokens = append(pa.UnclassifiedTokens, parts...)
		return
	}
	if *field != "" {
		pa.UnclassifiedTokens = append(pa.UnclassifiedTokens, parts...)
		return
	}
	*field = value
}

// classify decides the delivery-point kind. A box number trumps everything,
// a unit on a street line is a unit, a number plus street name is a street,
// anything else is unknown.
func classify(pa *models.ParsedAddress) models.AddressType {
	switch {
	case pa.POBoxNumber != "" || pa.POBoxType != "":
		return models.AddressTypePOBox
	case pa.UnitNumber != "" && pa.HasStreet():
		return models.AddressTypeUnit
	case pa.AddressNumber != "" && pa.StreetName != "":
		return models.AddressTypeStreet
	default:
		return models.AddressTypeUnknown
	}
}
