package models

// AddressType classifies what kind of delivery point a parsed address is.
type AddressType string

const (
	AddressTypeStreet  AddressType = "street"
	AddressTypePOBox   AddressType = "po_box"
	AddressTypeUnit    AddressType = "unit"
	AddressTypeUnknown AddressType = "unknown"
)

// ParsedAddress is the structured decomposition of one raw address string.
// It is assembled once from the tagger output and not mutated afterwards.
type ParsedAddress struct {
	AddressNumber       string `json:"address_number,omitempty" bson:"address_number,omitempty"`
	StreetPredirection  string `json:"street_predirection,omitempty" bson:"street_predirection,omitempty"`
	StreetName          string `json:"street_name,omitempty" bson:"street_name,omitempty"`
	StreetType          string `json:"street_type,omitempty" bson:"street_type,omitempty"`
	StreetPostdirection string `json:"street_postdirection,omitempty" bson:"street_postdirection,omitempty"`
	UnitType            string `json:"unit_type,omitempty" bson:"unit_type,omitempty"`
	UnitNumber          string `json:"unit_number,omitempty" bson:"unit_number,omitempty"`
	City                string `json:"city,omitempty" bson:"city,omitempty"`
	State               string `json:"state,omitempty" bson:"state,omitempty"`
	Zip5                string `json:"zip5,omitempty" bson:"zip5,omitempty"`
	Zip4                string `json:"zip4,omitempty" bson:"zip4,omitempty"`
	POBoxType           string `json:"po_box_type,omitempty" bson:"po_box_type,omitempty"`
	POBoxNumber         string `json:"po_box_number,omitempty" bson:"po_box_number,omitempty"`

	AddressType AddressType `json:"address_type" bson:"address_type"`

	// RawText is the verbatim input the tokens came from.
	RawText string `json:"raw_text" bson:"raw_text"`

	// UnclassifiedTokens holds tokens the tagger could not place, in
	// encounter order. They lower the confidence score.
	UnclassifiedTokens []string `json:"unclassified_tokens,omitempty" bson:"unclassified_tokens,omitempty"`
}

// HasStreet reports whether the street line carries any content.
func (pa *ParsedAddress) HasStreet() bool {
	return pa.AddressNumber != "" || pa.StreetName != ""
}

// IssueCode identifies one validation finding. Issues are data, not errors:
// an address with issues is still a normal (non-error) result.
type IssueCode string

const (
	IssueInvalidState  IssueCode = "invalid_state"
	IssueInvalidZip    IssueCode = "invalid_zip"
	IssueMissingFields IssueCode = "missing_fields"
)

// Issue is one validation finding. MissingFields carries the field list on a
// single issue instead of one issue per field.
type Issue struct {
	Code          IssueCode `json:"code" bson:"code"`
	Message       string    `json:"message" bson:"message"`
	MissingFields []string  `json:"missing_fields,omitempty" bson:"missing_fields,omitempty"`
}

// ValidationResult is derived deterministically from a ParsedAddress and the
// static reference tables. No network, no mutation of the input.
type ValidationResult struct {
	IsStateValid bool    `json:"is_state_valid" bson:"is_state_valid"`
	IsZipValid   bool    `json:"is_zip_valid" bson:"is_zip_valid"`
	IsComplete   bool    `json:"is_complete" bson:"is_complete"`
	Issues       []Issue `json:"issues" bson:"issues"`

	// StateSuggestion is the closest valid state code when the state check
	// fails, empty otherwise.
	StateSuggestion string `json:"state_suggestion,omitempty" bson:"state_suggestion,omitempty"`
}

// Valid is the conjunction of all three checks.
func (vr *ValidationResult) Valid() bool {
	return vr.IsStateValid && vr.IsZipValid && vr.IsComplete
}

// HasIssue reports whether a finding with the given code is present.
func (vr *ValidationResult) HasIssue(code IssueCode) bool {
	for _, is := range vr.Issues {
		if is.Code == code {
			return true
		}
	}
	return false
}

// FormattedAddress is the canonical USPS-style rendering of a ParsedAddress.
type FormattedAddress struct {
	SingleLine string            `json:"single_line" bson:"single_line"`
	MultiLine  []string          `json:"multi_line" bson:"multi_line"`
	Components map[string]string `json:"components" bson:"components"`
}

// CleanseResult bundles everything one pipeline pass produces for a single
// raw address: the parse, the offline validation, the confidence score in
// [0,100] and the canonical formatting.
type CleanseResult struct {
	Raw        string           `json:"raw" bson:"raw"`
	Parsed     ParsedAddress    `json:"parsed" bson:"parsed"`
	Validation ValidationResult `json:"validation" bson:"validation"`
	Confidence float64          `json:"confidence" bson:"confidence"`
	Formatted  FormattedAddress `json:"formatted" bson:"formatted"`
}

// Valid reports overall validity as exposed to callers.
func (cr *CleanseResult) Valid() bool {
	return cr.Validation.Valid()
}
