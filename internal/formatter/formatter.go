// Package formatter renders a parsed address in USPS Publication 28 style.
// Formatting is total: any ParsedAddress, however sparse, yields a result.
package formatter

import (
	"strings"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/reference"
)

type Formatter struct {
	tables *reference.Tables
}

func New(t *reference.Tables) *Formatter {
	return &Formatter{tables: t}
}

// Format canonicalizes each component (Publication 28 abbreviation, then
// uppercase) and assembles the single-line and two-line renderings. Empty
// fields drop out; separators never double up.
func (f *Formatter) Format(pa *models.ParsedAddress) models.FormattedAddress {
	c := f.components(pa)

	streetLine := joinNonEmpty(" ",
		c["address_number"], c["street_predirection"], c["street_name"],
		c["street_type"], c["street_postdirection"])
	if pa.AddressType == models.AddressTypePOBox {
		streetLine = joinNonEmpty(" ", c["po_box_type"], c["po_box_number"])
	}
	unit := joinNonEmpty(" ", c["unit_type"], c["unit_number"])

	zip := c["zip5"]
	if zip != "" && c["zip4"] != "" {
		zip += "-" + c["zip4"]
	}

	single := joinNonEmpty(", ", streetLine, unit, c["city"], c["state"], zip)

	lastLine := joinNonEmpty(" ", joinNonEmpty(", ", c["city"], c["state"]), zip)
	var multi []string
	if line := joinNonEmpty(", ", streetLine, unit); line != "" {
		multi = append(multi, line)
	}
	if lastLine != "" {
		multi = append(multi, lastLine)
	}

	return models.FormattedAddress{
		SingleLine: single,
		MultiLine:  multi,
		Components: c,
	}
}

// components canonicalizes every populated field. The state passes through
// StateCode so full names collapse to their two-letter code; unmapped values
// elsewhere pass through uppercased.
func (f *Formatter) components(pa *models.ParsedAddress) map[string]string {
	t := f.tables
	state := strings.ToUpper(strings.TrimSpace(pa.State))
	if code := t.StateCode(state); code != "" {
		state = code
	}
	c := map[string]string{
		"address_number":       upper(pa.AddressNumber),
		"street_predirection":  mapNonEmpty(pa.StreetPredirection, t.AbbreviateDirectional),
		"street_name":          upper(pa.StreetName),
		"street_type":          mapNonEmpty(pa.StreetType, t.AbbreviateStreetType),
		"street_postdirection": mapNonEmpty(pa.StreetPostdirection, t.AbbreviateDirectional),
		"unit_type":            mapNonEmpty(pa.UnitType, t.AbbreviateUnitType),
		"unit_number":          upper(pa.UnitNumber),
		"city":                 upper(pa.City),
		"state":                state,
		"zip5":                 upper(pa.Zip5),
		"zip4":                 upper(pa.Zip4),
		"po_box_type":          upper(pa.POBoxType),
		"po_box_number":        upper(pa.POBoxNumber),
	}
	for k, v := range c {
		if v == "" {
			delete(c, k)
		}
	}
	return c
}

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func mapNonEmpty(s string, abbrev func(string) string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return abbrev(s)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
