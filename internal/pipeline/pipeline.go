// Package pipeline runs the full cleansing pass for one raw address: clean,
// tag, assemble, validate, score, format. Everything after the tagger call is
// pure and deterministic, so a Cleanser is safe for concurrent use.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/assembler"
	"github.com/address-cleanser/internal/cleaner"
	"github.com/address-cleanser/internal/formatter"
	"github.com/address-cleanser/internal/reference"
	"github.com/address-cleanser/internal/tagger"
	"github.com/address-cleanser/internal/validate"
)

type Cleanser struct {
	tagger    tagger.Tagger
	assembler *assembler.Assembler
	validator *validate.Validator
	formatter *formatter.Formatter
	log       *zap.Logger
}

// New wires a Cleanser over the given tagger and reference tables. log may be
// nil.
func New(tg tagger.Tagger, tables *reference.Tables, log *zap.Logger) *Cleanser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cleanser{
		tagger:    tg,
		assembler: assembler.New(),
		validator: validate.NewValidator(tables),
		formatter: formatter.New(tables),
		log:       log,
	}
}

// Cleanse normalizes one raw address. The only error source is the tagger;
// validation findings come back as data on the result.
func (c *Cleanser) Cleanse(ctx context.Context, raw string) (*models.CleanseResult, error) {
	cleaned := cleaner.Clean(raw)

	tokens, err := c.tagger.Classify(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("cleanse: %w", err)
	}

	parsed := c.assembler.Assemble(raw, tokens)
	validation := c.validator.Validate(&parsed)
	confidence := Score(tokens, &parsed, &validation)
	formatted := c.formatter.Format(&parsed)

	c.log.Debug("address cleansed",
		zap.String("type", string(parsed.AddressType)),
		zap.Float64("confidence", confidence),
		zap.Int("issues", len(validation.Issues)),
	)

	return &models.CleanseResult{
		Raw:        raw,
		Parsed:     parsed,
		Validation: validation,
		Confidence: confidence,
		Formatted:  formatted,
	}, nil
}

// Fingerprint exposes the cache key for a raw address, so callers that cache
// results key them consistently.
func (c *Cleanser) Fingerprint(raw string) string {
	return cleaner.Fingerprint(raw)
}
