package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/reference"
	"github.com/address-cleanser/internal/tagger"
)

func newCleanser() *Cleanser {
	tables := reference.Default()
	return New(tagger.NewRuleTagger(tables), tables, nil)
}

func TestCleanseStructuredStreetAddress(t *testing.T) {
	c := newCleanser()

	res, err := c.Cleanse(context.Background(), "123 Main Street, Austin, TX 78701")
	if err != nil {
		t.Fatalf("Cleanse: %v", err)
	}

	if res.Formatted.SingleLine != "123 MAIN ST, AUSTIN, TX, 78701" {
		t.Errorf("single line = %q", res.Formatted.SingleLine)
	}
	v := res.Validation
	if !v.IsStateValid || !v.IsZipValid || !v.IsComplete {
		t.Errorf("validation flags = %v/%v/%v, want all true", v.IsStateValid, v.IsZipValid, v.IsComplete)
	}
	if res.Confidence < 90 {
		t.Errorf("confidence = %.1f, want >= 90", res.Confidence)
	}
}

func TestCleanseFreeFormMissingZip(t *testing.T) {
	c := newCleanser()

	res, err := c.Cleanse(context.Background(), "123 Main St Austin TX")
	if err != nil {
		t.Fatalf("Cleanse: %v", err)
	}

	if !res.Validation.IsZipValid {
		t.Error("IsZipValid = false, absent ZIP is a completeness issue")
	}
	if res.Validation.IsComplete {
		t.Error("IsComplete = true without ZIP")
	}
	if !res.Validation.HasIssue(models.IssueMissingFields) {
		t.Errorf("issues = %v, want missing_fields", res.Validation.Issues)
	}
	if res.Confidence < 55 || res.Confidence > 75 {
		t.Errorf("confidence = %.1f, want mid-range for free-form input without ZIP", res.Confidence)
	}
}

func TestCleansePOBox(t *testing.T) {
	c := newCleanser()

	res, err := c.Cleanse(context.Background(), "PO Box 123, Austin, TX 78701")
	if err != nil {
		t.Fatalf("Cleanse: %v", err)
	}

	if res.Parsed.AddressType != models.AddressTypePOBox {
		t.Errorf("type = %s, want %s", res.Parsed.AddressType, models.AddressTypePOBox)
	}
	if len(res.Formatted.MultiLine) == 0 || res.Formatted.MultiLine[0] != "PO BOX 123" {
		t.Errorf("multi line = %v", res.Formatted.MultiLine)
	}
	if !res.Validation.IsComplete {
		t.Errorf("incomplete: %v", res.Validation.Issues)
	}
}

func TestCleanseIdempotent(t *testing.T) {
	c := newCleanser()

	inputs := []string{
		"123 Main Street, Austin, TX 78701",
		"PO Box 123, Austin, TX 78701",
		"456 Oak Avenue Apt 2B, Denver, CO 80202-1234",
		"500 North Lamar Boulevard, Austin, TX 78703",
	}
	for _, in := range inputs {
		first, err := c.Cleanse(context.Background(), in)
		if err != nil {
			t.Fatalf("Cleanse(%q): %v", in, err)
		}
		second, err := c.Cleanse(context.Background(), first.Formatted.SingleLine)
		if err != nil {
			t.Fatalf("Cleanse(%q): %v", first.Formatted.SingleLine, err)
		}
		if second.Formatted.SingleLine != first.Formatted.SingleLine {
			t.Errorf("not idempotent: %q -> %q -> %q",
				in, first.Formatted.SingleLine, second.Formatted.SingleLine)
		}
	}
}

func TestCleanseDiacriticsAndBoxVariants(t *testing.T) {
	c := newCleanser()

	res, err := c.Cleanse(context.Background(), "123 Peña Street, San José, CA 95110")
	if err != nil {
		t.Fatalf("Cleanse: %v", err)
	}
	if res.Parsed.StreetName != "Pena" {
		t.Errorf("street name = %q, want diacritics stripped", res.Parsed.StreetName)
	}

	res, err = c.Cleanse(context.Background(), "P.O. Box 42, Austin, TX 78701")
	if err != nil {
		t.Fatalf("Cleanse: %v", err)
	}
	if res.Parsed.AddressType != models.AddressTypePOBox || res.Parsed.POBoxNumber != "42" {
		t.Errorf("box parse = %s %q", res.Parsed.AddressType, res.Parsed.POBoxNumber)
	}
}

func TestCleanseGarbledInput(t *testing.T) {
	c := newCleanser()

	_, err := c.Cleanse(context.Background(), "!!! ???")
	if !errors.Is(err, tagger.ErrTaggingFailed) {
		t.Errorf("err = %v, want ErrTaggingFailed", err)
	}
}

func TestScoreBounds(t *testing.T) {
	toks := func(confs ...float64) []tagger.Token {
		out := make([]tagger.Token, len(confs))
		for i, c := range confs {
			out[i] = tagger.Token{Text: "x", Tag: tagger.TagStreetName, Confidence: c}
		}
		return out
	}

	pa := &models.ParsedAddress{AddressType: models.AddressTypeStreet}
	ok := &models.ValidationResult{IsStateValid: true, IsZipValid: true, IsComplete: true}

	if got := Score(nil, pa, ok); got != 0 {
		t.Errorf("zero tokens score = %v, want 0", got)
	}
	if got := Score(toks(1, 1, 1), pa, ok); got != 100 {
		t.Errorf("perfect score = %v, want 100", got)
	}

	// Heavy penalties clamp at zero rather than going negative.
	bad := &models.ValidationResult{Issues: make([]models.Issue, 5)}
	low := &models.ParsedAddress{
		AddressType:        models.AddressTypeUnknown,
		UnclassifiedTokens: []string{"a", "b", "c", "d"},
	}
	if got := Score(toks(0.2, 0.2), low, bad); got != 0 {
		t.Errorf("clamped score = %v, want 0", got)
	}
}

func TestScoreMoreIssuesNeverRaise(t *testing.T) {
	toks := []tagger.Token{
		{Text: "a", Tag: tagger.TagStreetName, Confidence: 0.9},
		{Text: "b", Tag: tagger.TagStreetName, Confidence: 0.9},
	}
	pa := &models.ParsedAddress{AddressType: models.AddressTypeStreet}

	prev := Score(toks, pa, &models.ValidationResult{})
	for n := 1; n <= 5; n++ {
		vr := &models.ValidationResult{Issues: make([]models.Issue, n)}
		got := Score(toks, pa, vr)
		if got > prev {
			t.Fatalf("score rose from %v to %v with %d issues", prev, got, n)
		}
		prev = got
	}
}

func TestScorePenaltyCaps(t *testing.T) {
	toks := []tagger.Token{{Text: "a", Tag: tagger.TagStreetName, Confidence: 1.0}}
	pa := &models.ParsedAddress{AddressType: models.AddressTypeStreet}

	three := Score(toks, pa, &models.ValidationResult{Issues: make([]models.Issue, 3)})
	ten := Score(toks, pa, &models.ValidationResult{Issues: make([]models.Issue, 10)})
	if three != ten {
		t.Errorf("issue penalty not capped: 3 issues %v vs 10 issues %v", three, ten)
	}
	if three != 55 {
		t.Errorf("capped score = %v, want 55", three)
	}
}
