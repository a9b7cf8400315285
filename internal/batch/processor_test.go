package batch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/address-cleanser/internal/pipeline"
	"github.com/address-cleanser/internal/reference"
	"github.com/address-cleanser/internal/tagger"
)

func newProcessor(t *testing.T, mode Mode, opts Options, columns ...string) *Processor {
	t.Helper()
	tables := reference.Default()
	cleanser := pipeline.New(tagger.NewRuleTagger(tables), tables, nil)
	return NewProcessor(cleanser, NewColumnResolver(mode, columns...), opts, nil)
}

func addressRows(addresses ...string) []Row {
	rows := make([]Row, len(addresses))
	for i, a := range addresses {
		rows[i] = Row{Columns: []string{"address"}, Values: map[string]string{"address": a}}
	}
	return rows
}

func TestRunCountsValidAndInvalid(t *testing.T) {
	p := newProcessor(t, ModeSingleColumn, Options{})

	src := NewSliceSource(addressRows(
		"123 Main Street, Austin, TX 78701",
		"456 Oak Avenue, Denver, ZZ 80202",
	))
	summary, err := p.Run(context.Background(), src, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Total != 2 || summary.ValidCount != 1 || summary.InvalidCount != 1 || summary.ErrorCount != 0 {
		t.Errorf("summary = %+v, want total=2 valid=1 invalid=1 errors=0", summary)
	}
	if summary.AverageConfidence() <= 0 {
		t.Errorf("average confidence = %v", summary.AverageConfidence())
	}
}

func TestRunIsolatesRowErrors(t *testing.T) {
	p := newProcessor(t, ModeSingleColumn, Options{})

	src := NewSliceSource(addressRows(
		"123 Main Street, Austin, TX 78701",
		"!!! ???",
		"PO Box 9, Austin, TX 78701",
	))
	var results []RowResult
	summary, err := p.Run(context.Background(), src, func(rr RowResult) error {
		results = append(results, rr)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Total != 3 || summary.ErrorCount != 1 {
		t.Errorf("summary = %+v, want total=3 errors=1", summary)
	}
	if len(results) != 3 {
		t.Fatalf("emitted %d rows, want 3", len(results))
	}
	if results[1].Error == "" || results[1].Result != nil {
		t.Errorf("row 1 = %+v, want error result", results[1])
	}
	if results[2].Result == nil {
		t.Error("batch did not continue past the failing row")
	}
}

func TestRunPreservesOrderAcrossChunks(t *testing.T) {
	p := newProcessor(t, ModeSingleColumn, Options{ChunkSize: 3, Workers: 4})

	addresses := make([]string, 20)
	for i := range addresses {
		addresses[i] = "123 Main Street, Austin, TX 78701"
	}
	src := NewSliceSource(addressRows(addresses...))

	var indices []int
	summary, err := p.Run(context.Background(), src, func(rr RowResult) error {
		indices = append(indices, rr.Index)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Total != 20 {
		t.Errorf("total = %d, want 20", summary.Total)
	}
	for i, idx := range indices {
		if idx != i {
			t.Fatalf("emission order broken at position %d: index %d", i, idx)
		}
	}
}

func TestRunSchemaErrorAbortsBeforeRows(t *testing.T) {
	p := newProcessor(t, ModeSingleColumn, Options{}, "location")

	emitted := 0
	src := NewSliceSource(addressRows("123 Main Street, Austin, TX 78701"))
	_, err := p.Run(context.Background(), src, func(RowResult) error {
		emitted++
		return nil
	})
	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("err = %v, want ErrColumnNotFound", err)
	}
	if emitted != 0 {
		t.Errorf("emitted %d rows before aborting", emitted)
	}
}

func TestRunCancelledBetweenChunks(t *testing.T) {
	p := newProcessor(t, ModeSingleColumn, Options{ChunkSize: 2})

	addresses := make([]string, 10)
	for i := range addresses {
		addresses[i] = "123 Main Street, Austin, TX 78701"
	}
	src := NewSliceSource(addressRows(addresses...))

	ctx, cancel := context.WithCancel(context.Background())
	seen := 0
	_, err := p.Run(ctx, src, func(RowResult) error {
		seen++
		if seen == 2 {
			cancel()
		}
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	// The in-flight chunk finishes; later chunks never start.
	if seen != 2 {
		t.Errorf("emitted %d rows after cancel, want 2", seen)
	}
}

func TestRunAutoCombineFlagsUnresolvedRows(t *testing.T) {
	p := newProcessor(t, ModeAutoCombine, Options{})

	rows := []Row{
		{
			Columns: []string{"street", "city", "state", "zip"},
			Values: map[string]string{
				"street": "123 Main St", "city": "Austin", "state": "TX", "zip": "78701",
			},
		},
		{
			Columns: []string{"street", "city", "state", "zip"},
			Values:  map[string]string{"street": "", "city": "", "state": "", "zip": ""},
		},
	}
	var results []RowResult
	summary, err := p.Run(context.Background(), NewSliceSource(rows), func(rr RowResult) error {
		results = append(results, rr)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.ErrorCount != 1 {
		t.Errorf("summary = %+v, want one error row", summary)
	}
	if !strings.Contains(results[1].Error, "cleanse") && !strings.Contains(results[1].Error, "resolve") {
		t.Logf("row error: %s", results[1].Error)
	}
}

func TestOutputFieldsPreserveColumns(t *testing.T) {
	p := newProcessor(t, ModeSingleColumn, Options{})

	row := Row{
		Columns: []string{"id", "address"},
		Values:  map[string]string{"id": "42", "address": "123 Main Street, Austin, TX 78701"},
	}
	var rr RowResult
	if _, err := p.Run(context.Background(), NewSliceSource([]Row{row}), func(r RowResult) error {
		rr = r
		return nil
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	fields := rr.OutputFields(true)
	if fields["id"] != "42" || fields["address"] != "123 Main Street, Austin, TX 78701" {
		t.Errorf("original columns lost: %v", fields)
	}
	if fields[CleansedPrefix+"single_line"] != "123 MAIN ST, AUSTIN, TX, 78701" {
		t.Errorf("cleansed fields = %v", fields)
	}
	if fields[CleansedPrefix+"valid"] != "true" {
		t.Errorf("valid flag = %q", fields[CleansedPrefix+"valid"])
	}

	bare := rr.OutputFields(false)
	if _, ok := bare["id"]; ok {
		t.Error("cleaned-only output carries original columns")
	}
}
