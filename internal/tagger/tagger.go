// Package tagger defines the token-classification boundary of the pipeline.
// A Tagger assigns a semantic label and a confidence to every word of a raw
// address string; everything downstream treats it as a black box.
package tagger

import (
	"context"
	"errors"
)

// Tag is the semantic label of one address token. The vocabulary follows the
// usaddress label set; consumers must route unknown tags to the unclassified
// bucket rather than fail.
type Tag string

const (
	TagAddressNumber             Tag = "AddressNumber"
	TagStreetNamePreDirectional  Tag = "StreetNamePreDirectional"
	TagStreetName                Tag = "StreetName"
	TagStreetNamePostType        Tag = "StreetNamePostType"
	TagStreetNamePostDirectional Tag = "StreetNamePostDirectional"
	TagOccupancyType             Tag = "OccupancyType"
	TagOccupancyIdentifier       Tag = "OccupancyIdentifier"
	TagPlaceName                 Tag = "PlaceName"
	TagStateName                 Tag = "StateName"
	TagZipCode                   Tag = "ZipCode"
	TagUSPSBoxType               Tag = "USPSBoxType"
	TagUSPSBoxID                 Tag = "USPSBoxID"
	TagOther                     Tag = "Other"
)

// Token is one classified word. Confidence is the tagger's own estimate in
// [0,1]; the pipeline averages these into the base confidence score.
type Token struct {
	Text       string  `json:"text"`
	Tag        Tag     `json:"tag"`
	Confidence float64 `json:"confidence"`
}

// ErrTaggingFailed is returned when the input cannot be tokenized at all
// (empty or garbled text). Batch processing surfaces it as a per-row error
// result; single-address callers receive it directly.
var ErrTaggingFailed = errors.New("tagger: cannot classify input")

// Tagger classifies one address string into an ordered token sequence.
// Implementations must be safe for concurrent use and keep no per-call state.
type Tagger interface {
	Classify(ctx context.Context, text string) ([]Token, error)
}
