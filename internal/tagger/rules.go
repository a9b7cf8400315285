package tagger

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/address-cleanser/internal/reference"
)

var zipPattern = regexp.MustCompile(`^\d{5}(?:-\d{4})?$`)

// RuleTagger classifies US addresses with positional heuristics and the USPS
// reference tables. It needs no external process or model, so it is the
// default tagger for the offline pipeline.
type RuleTagger struct {
	tables *reference.Tables
}

func NewRuleTagger(t *reference.Tables) *RuleTagger {
	return &RuleTagger{tables: t}
}

type word struct {
	text string
	seg  int
}

// Classify splits the input on commas and whitespace, then assigns labels in
// passes: PO Box sequence, ZIP from the end, street parts left to right in the
// first segment, state from the end, and city from whatever sits between the
// street and the state. Comma-delimited input earns higher confidences than
// free-form input because segment boundaries remove most of the guesswork.
func (rt *RuleTagger) Classify(ctx context.Context, text string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	words, segCount := splitWords(text)
	if len(words) == 0 || !hasAlnum(words) {
		return nil, ErrTaggingFailed
	}

	tokens := make([]Token, len(words))
	for i, w := range words {
		tokens[i] = Token{Text: w.text}
	}
	tagged := func(i int) bool { return tokens[i].Tag != "" }
	set := func(i int, tag Tag, conf float64) {
		tokens[i].Tag = tag
		tokens[i].Confidence = conf
	}

	boxSeg := rt.tagPOBox(words, tokens, set)

	zipIdx := -1
	for i := len(words) - 1; i >= 0; i-- {
		if !tagged(i) && zipPattern.MatchString(words[i].text) {
			set(i, TagZipCode, 0.98)
			zipIdx = i
			break
		}
	}

	streetEnd := -1
	if boxSeg != 0 {
		streetEnd = rt.tagStreet(words, tokens, tagged, set)
	}

	// Units can trail the street line in their own comma segment.
	rt.tagUnits(words, tokens, tagged, set)

	stateStart := rt.tagState(words, tokens, zipIdx, tagged, set)

	// Untagged tokens between the street portion and the state are the
	// locality. Anything else left over is unclassifiable.
	cityLimit := len(words)
	if stateStart >= 0 {
		cityLimit = stateStart
	} else if zipIdx >= 0 {
		cityLimit = zipIdx
	}
	for i := range words {
		if tagged(i) {
			continue
		}
		if i > streetEnd && i < cityLimit {
			set(i, TagPlaceName, 0.92)
		} else {
			set(i, TagOther, 0.5)
		}
	}

	factor := structureFactor(segCount)
	for i := range tokens {
		tokens[i].Confidence *= factor
	}
	return tokens, nil
}

// tagPOBox tags "PO BOX <id>" runs and returns the segment the first run was
// found in, or -1.
func (rt *RuleTagger) tagPOBox(words []word, tokens []Token, set func(int, Tag, float64)) int {
	for i := 0; i+1 < len(words); i++ {
		if words[i].seg != words[i+1].seg {
			continue
		}
		if !strings.EqualFold(words[i].text, "PO") || !strings.EqualFold(words[i+1].text, "BOX") {
			continue
		}
		set(i, TagUSPSBoxType, 0.95)
		set(i+1, TagUSPSBoxType, 0.95)
		if i+2 < len(words) && words[i+2].seg == words[i].seg {
			set(i+2, TagUSPSBoxID, 0.95)
		}
		return words[i].seg
	}
	return -1
}

// tagStreet parses the first segment positionally: house number, optional
// predirectional, street name words up to a known street type, optional
// postdirectional, then unit designator and identifier. Returns the highest
// index it consumed, -1 when nothing matched.
func (rt *RuleTagger) tagStreet(words []word, tokens []Token, tagged func(int) bool, set func(int, Tag, float64)) int {
	n := 0
	for n < len(words) && words[n].seg == 0 {
		n++
	}
	if n == 0 {
		return -1
	}

	i, end := 0, -1
	consume := func(tag Tag, conf float64) {
		set(i, tag, conf)
		end = i
		i++
	}

	if !tagged(i) && startsWithDigit(words[i].text) && !zipPattern.MatchString(words[i].text) {
		consume(TagAddressNumber, 0.95)
	}
	if i < n && !tagged(i) && i+1 < n && rt.tables.IsDirectional(words[i].text) {
		consume(TagStreetNamePreDirectional, 0.95)
	}

	nameStart := i
	typeIdx := -1
	for i < n && !tagged(i) {
		if i > nameStart && rt.tables.IsStreetType(words[i].text) {
			typeIdx = i
			break
		}
		if rt.tables.IsUnitType(words[i].text) || strings.HasPrefix(words[i].text, "#") {
			break
		}
		consume(TagStreetName, 0.90)
	}
	if typeIdx >= 0 {
		consume(TagStreetNamePostType, 0.95)
		if i < n && !tagged(i) && rt.tables.IsDirectional(words[i].text) {
			consume(TagStreetNamePostDirectional, 0.92)
		}
	} else {
		// No street type seen: give back a trailing name word that is
		// really a state, so the state pass can claim it.
		for end >= nameStart && rt.tables.StateCode(words[end].text) != "" {
			tokens[end] = Token{Text: words[end].text}
			end--
			i--
		}
	}

	for i < n && !tagged(i) {
		if rt.tables.IsUnitType(words[i].text) {
			consume(TagOccupancyType, 0.93)
			if i < n && !tagged(i) {
				consume(TagOccupancyIdentifier, 0.90)
			}
			continue
		}
		if strings.HasPrefix(words[i].text, "#") {
			consume(TagOccupancyIdentifier, 0.88)
			continue
		}
		break
	}
	return end
}

// tagUnits claims designator-identifier pairs anywhere in the input, so a
// unit in its own comma segment is not mistaken for the locality.
func (rt *RuleTagger) tagUnits(words []word, tokens []Token, tagged func(int) bool, set func(int, Tag, float64)) {
	for i := 0; i < len(words); i++ {
		if tagged(i) {
			continue
		}
		if rt.tables.IsUnitType(words[i].text) && i+1 < len(words) &&
			!tagged(i+1) && words[i+1].seg == words[i].seg {
			set(i, TagOccupancyType, 0.93)
			set(i+1, TagOccupancyIdentifier, 0.90)
			i++
			continue
		}
		if strings.HasPrefix(words[i].text, "#") && len(words[i].text) > 1 {
			set(i, TagOccupancyIdentifier, 0.88)
		}
	}
}

// tagState scans the last few untagged tokens before the ZIP for a state code
// or full state name, including two-word names. Returns the index of the
// first state token, -1 when none found.
func (rt *RuleTagger) tagState(words []word, tokens []Token, zipIdx int, tagged func(int) bool, set func(int, Tag, float64)) int {
	upper := len(words) - 1
	if zipIdx >= 0 {
		upper = zipIdx - 1
	}
	lower := upper - 3
	if lower < 0 {
		lower = 0
	}
	for i := upper; i >= lower; i-- {
		if tagged(i) {
			continue
		}
		w := words[i].text
		if len(w) == 2 && rt.tables.IsState(w) {
			set(i, TagStateName, 0.98)
			return i
		}
		if i > lower && !tagged(i-1) && rt.tables.StateCode(words[i-1].text+" "+w) != "" {
			set(i-1, TagStateName, 0.95)
			set(i, TagStateName, 0.95)
			return i - 1
		}
		if rt.tables.StateCode(w) != "" {
			set(i, TagStateName, 0.95)
			return i
		}
	}
	return -1
}

// structureFactor discounts confidences when the input lacks the comma
// structure the positional heuristics lean on.
func structureFactor(segments int) float64 {
	switch {
	case segments >= 3:
		return 1.0
	case segments == 2:
		return 0.95
	default:
		return 0.85
	}
}

func splitWords(text string) ([]word, int) {
	segs := strings.Split(text, ",")
	var words []word
	n := 0
	for _, seg := range segs {
		fields := strings.Fields(seg)
		if len(fields) == 0 {
			continue
		}
		for _, f := range fields {
			words = append(words, word{text: f, seg: n})
		}
		n++
	}
	return words, n
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func hasAlnum(words []word) bool {
	for _, w := range words {
		for _, r := range w.text {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return true
			}
		}
	}
	return false
}
