package pipeline

import (
	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/tagger"
)

// Scoring starts from the mean tagger confidence scaled to [0,100] and only
// ever discounts from there, so a confidently tagged but invalid input cannot
// outrank validation evidence.
const (
	issuePenalty        = 15.0
	issuePenaltyCap     = 3
	unknownTypePenalty  = 20.0
	unclassifiedPenalty = 5.0
	unclassifiedCap     = 3
)

// Score combines tagger confidence with validation outcome into [0,100].
// Zero tokens score 0; that is a value, not an error.
func Score(tokens []tagger.Token, pa *models.ParsedAddress, vr *models.ValidationResult) float64 {
	if len(tokens) == 0 {
		return 0
	}

	sum := 0.0
	for _, tk := range tokens {
		sum += tk.Confidence
	}
	base := sum / float64(len(tokens)) * 100

	penalty := issuePenalty * float64(capped(len(vr.Issues), issuePenaltyCap))
	if pa.AddressType == models.AddressTypeUnknown {
		penalty += unknownTypePenalty
	}
	penalty += unclassifiedPenalty * float64(capped(len(pa.UnclassifiedTokens), unclassifiedCap))

	score := base - penalty
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func capped(n, cap int) int {
	if n > cap {
		return cap
	}
	return n
}
