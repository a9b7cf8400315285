package batch

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/address-cleanser/app/models"
	"github.com/address-cleanser/internal/pipeline"
)

// CleansedPrefix marks the produced fields on an output row so they can never
// shadow a caller-supplied column.
const CleansedPrefix = "cleansed_"

const (
	defaultChunkSize = 500
	defaultWorkers   = 4
)

// RowSource yields input rows. Next returns io.EOF after the last row.
type RowSource interface {
	Next() (Row, error)
}

// RowResult is the outcome for one input row. Exactly one of Result and Error
// is set; an error row still occupies its position in the output order.
type RowResult struct {
	Index  int                   `json:"index"`
	Row    Row                   `json:"-"`
	Result *models.CleanseResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// OutputFields flattens the result into a field mapping for tabular sinks.
// With preserve set, the original columns come through untouched and the
// produced fields sit alongside them under CleansedPrefix.
func (rr *RowResult) OutputFields(preserve bool) map[string]string {
	out := make(map[string]string)
	if preserve {
		for k, v := range rr.Row.Values {
			out[k] = v
		}
	}
	put := func(key, value string) {
		key = CleansedPrefix + key
		if _, taken := out[key]; !taken {
			out[key] = value
		}
	}
	if rr.Error != "" {
		put("error", rr.Error)
		return out
	}
	res := rr.Result
	put("single_line", res.Formatted.SingleLine)
	put("address_type", string(res.Parsed.AddressType))
	put("confidence", strconv.FormatFloat(res.Confidence, 'f', 1, 64))
	put("valid", strconv.FormatBool(res.Valid()))
	for name, value := range res.Formatted.Components {
		put(name, value)
	}
	return out
}

// Summary accumulates batch counters. It belongs to one Run call and is only
// touched by the collector, never by workers.
type Summary struct {
	Total         int     `json:"total"`
	ValidCount    int     `json:"valid_count"`
	InvalidCount  int     `json:"invalid_count"`
	ErrorCount    int     `json:"error_count"`
	ConfidenceSum float64 `json:"-"`
}

func (s *Summary) observe(rr *RowResult) {
	s.Total++
	switch {
	case rr.Error != "":
		s.ErrorCount++
	case rr.Result.Valid():
		s.ValidCount++
		s.ConfidenceSum += rr.Result.Confidence
	default:
		s.InvalidCount++
		s.ConfidenceSum += rr.Result.Confidence
	}
}

// AverageConfidence is the mean over processed (non-error) rows.
func (s *Summary) AverageConfidence() float64 {
	processed := s.Total - s.ErrorCount
	if processed == 0 {
		return 0
	}
	return s.ConfidenceSum / float64(processed)
}

// Options tunes one Processor. Zero values pick the defaults.
type Options struct {
	ChunkSize int
	Workers   int
}

// Processor runs the per-row pipeline over a row stream in fixed-size chunks.
// Rows within a chunk are cleansed in parallel; emission order and summary
// accounting follow input order because the collector walks the chunk
// sequentially after the workers finish.
type Processor struct {
	cleanser  *pipeline.Cleanser
	resolver  *ColumnResolver
	chunkSize int
	workers   int
	log       *zap.Logger
}

func NewProcessor(c *pipeline.Cleanser, r *ColumnResolver, opts Options, log *zap.Logger) *Processor {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = defaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		cleanser:  c,
		resolver:  r,
		chunkSize: opts.ChunkSize,
		workers:   opts.Workers,
		log:       log,
	}
}

// Run consumes src to exhaustion, calling emit once per row in input order,
// and returns the finalized summary. Schema problems and emit failures abort
// the run; row-level failures become error results and the run continues.
// Cancellation is honored between chunks so a chunk is never half-emitted.
func (p *Processor) Run(ctx context.Context, src RowSource, emit func(RowResult) error) (*Summary, error) {
	summary := &Summary{}
	base := 0
	validated := false

	for {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		chunk, err := readChunk(src, p.chunkSize)
		if err != nil {
			return summary, err
		}
		if len(chunk) == 0 {
			break
		}
		if !validated {
			if err := p.resolver.ValidateSchema(chunk[0].Columns); err != nil {
				return summary, err
			}
			validated = true
		}

		results := p.processChunk(ctx, base, chunk)
		for i := range results {
			summary.observe(&results[i])
			if emit != nil {
				if err := emit(results[i]); err != nil {
					return summary, err
				}
			}
		}
		base += len(chunk)
		p.log.Debug("chunk processed", zap.Int("rows", len(chunk)), zap.Int("total", summary.Total))
	}
	return summary, nil
}

func (p *Processor) processChunk(ctx context.Context, base int, chunk []Row) []RowResult {
	results := make([]RowResult, len(chunk))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = p.processRow(ctx, base+i, chunk[i])
			}
		}()
	}
	for i := range chunk {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (p *Processor) processRow(ctx context.Context, index int, row Row) RowResult {
	rr := RowResult{Index: index, Row: row}

	text, err := p.resolver.Resolve(row)
	if err != nil {
		rr.Error = err.Error()
		return rr
	}

	res, err := p.cleanser.Cleanse(ctx, text)
	if err != nil {
		rr.Error = err.Error()
		return rr
	}
	rr.Result = res
	return rr
}

func readChunk(src RowSource, n int) ([]Row, error) {
	chunk := make([]Row, 0, n)
	for len(chunk) < n {
		row, err := src.Next()
		if errors.Is(err, io.EOF) {
			return chunk, nil
		}
		if err != nil {
			return chunk, err
		}
		chunk = append(chunk, row)
	}
	return chunk, nil
}
