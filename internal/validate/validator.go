// Package validate applies the offline structural rules to a parsed address.
// All rules are evaluated against static reference data; no rule can fail at
// runtime and findings are returned as data, never as errors.
package validate

import (
	"fmt"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/reference"
)

// suggestionFloor is the minimum Jaro-Winkler similarity for a state code
// suggestion. Below it a typo is more likely a different field entirely.
const suggestionFloor = 0.6

type Validator struct {
	tables *reference.Tables
}

func NewValidator(t *reference.Tables) *Validator {
	return &Validator{tables: t}
}

// Validate runs every rule even when an earlier one fails, so the issue list
// is always complete. The list is deterministic for a given input: state,
// then ZIP, then completeness.
//
// A missing ZIP is a completeness finding, not a format one: the ZIP format
// rule only judges a ZIP that is actually present, so is_zip_valid stays true
// for an address with no ZIP at all.
func (v *Validator) Validate(pa *models.ParsedAddress) models.ValidationResult {
	vr := models.ValidationResult{IsStateValid: true, IsZipValid: true, IsComplete: true}

	if v.tables.StateCode(pa.State) == "" {
		vr.IsStateValid = false
		vr.StateSuggestion = v.suggestState(pa.State)
		msg := "state is missing"
		if pa.State != "" {
			msg = fmt.Sprintf("%q is not a US state or territory code", pa.State)
		}
		vr.Issues = append(vr.Issues, models.Issue{Code: models.IssueInvalidState, Message: msg})
	}

	if badZip5(pa.Zip5) || badZip4(pa.Zip4) {
		vr.IsZipValid = false
		vr.Issues = append(vr.Issues, models.Issue{
			Code:    models.IssueInvalidZip,
			Message: fmt.Sprintf("ZIP %q is not 5 digits (plus optional 4-digit extension)", zipText(pa)),
		})
	}

	if missing := v.missingFields(pa); len(missing) > 0 {
		vr.IsComplete = false
		vr.Issues = append(vr.Issues, models.Issue{
			Code:          models.IssueMissingFields,
			Message:       "required fields are missing: " + strings.Join(missing, ", "),
			MissingFields: missing,
		})
	}
	return vr
}

// missingFields enumerates the absent required fields for the address type,
// in a fixed order. Unknown-type addresses are incomplete by definition.
func (v *Validator) missingFields(pa *models.ParsedAddress) []string {
	var required []struct{ name, value string }
	switch pa.AddressType {
	case models.AddressTypeStreet:
		required = []struct{ name, value string }{
			{"address_number", pa.AddressNumber},
			{"street_name", pa.StreetName},
			{"city", pa.City},
			{"state", pa.State},
			{"zip_code", pa.Zip5},
		}
	case models.AddressTypeUnit:
		required = []struct{ name, value string }{
			{"address_number", pa.AddressNumber},
			{"street_name", pa.StreetName},
			{"unit_number", pa.UnitNumber},
			{"city", pa.City},
			{"state", pa.State},
			{"zip_code", pa.Zip5},
		}
	case models.AddressTypePOBox:
		required = []struct{ name, value string }{
			{"po_box_number", pa.POBoxNumber},
			{"city", pa.City},
			{"state", pa.State},
			{"zip_code", pa.Zip5},
		}
	default:
		return []string{"address_type"}
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// suggestState returns the closest valid state code for a failed state check,
// or "" when nothing is close enough.
func (v *Validator) suggestState(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	if s == "" {
		return ""
	}
	best, bestScore := "", suggestionFloor
	for _, code := range v.tables.StateCodes() {
		if score := smetrics.JaroWinkler(s, code, 0.7, 4); score > bestScore {
			best, bestScore = code, score
		}
	}
	// A truncated or misspelled full name beats any two-letter comparison.
	for _, name := range v.tables.StateNames() {
		if score := smetrics.JaroWinkler(s, name, 0.7, 4); score > bestScore {
			best, bestScore = v.tables.StateCode(name), score
		}
	}
	return best
}

func badZip5(z string) bool {
	return z != "" && !allDigits(z, 5)
}

func badZip4(z string) bool {
	return z != "" && !allDigits(z, 4)
}

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < n; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func zipText(pa *models.ParsedAddress) string {
	if pa.Zip4 != "" {
		return pa.Zip5 + "-" + pa.Zip4
	}
	return pa.Zip5
}
