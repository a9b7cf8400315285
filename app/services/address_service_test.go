package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/address-cleanser/app/requests"
	"github.com/address-cleanser/internal/batch"
	"github.com/address-cleanser/internal/pipeline"
	"github.com/address-cleanser/internal/reference"
	"github.com/address-cleanser/internal/tagger"
)

func newAddressService(cache ICacheService) *AddressService {
	tables := reference.Default()
	cleanser := pipeline.New(tagger.NewRuleTagger(tables), tables, zap.NewNop())
	return NewAddressService(cleanser, cache, tables, batch.Options{ChunkSize: 10, Workers: 2}, zap.NewNop())
}

func TestCleanseAddress(t *testing.T) {
	svc := newAddressService(nil)

	result, cacheHit, err := svc.CleanseAddress(context.Background(), "123 Main Street, Austin, TX 78701", requests.CleanseOptions{})
	if err != nil {
		t.Fatalf("CleanseAddress: %v", err)
	}
	if cacheHit {
		t.Error("cache hit without a cache configured")
	}
	if !result.Valid() {
		t.Errorf("expected valid result, got issues %v", result.Validation.Issues)
	}

	stats := svc.GetStats()
	if stats.TotalProcessed != 1 || stats.ValidCount != 1 {
		t.Errorf("stats = %+v, want one valid result", stats)
	}
}

func TestCleanseAddressEmptyInput(t *testing.T) {
	svc := newAddressService(nil)

	if _, _, err := svc.CleanseAddress(context.Background(), "", requests.CleanseOptions{}); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestCleanseAddressCaching(t *testing.T) {
	cache := NewCacheService(time.Minute, "rev-1")
	svc := newAddressService(cache)
	opts := requests.CleanseOptions{UseCache: true}
	raw := "123 Main Street, Austin, TX 78701"

	_, hit, err := svc.CleanseAddress(context.Background(), raw, opts)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	if hit {
		t.Error("first call reported a cache hit")
	}

	_, hit, err = svc.CleanseAddress(context.Background(), raw, opts)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if !hit {
		t.Error("second call missed the cache")
	}

	stats := svc.GetStats()
	if stats.CacheHitRate != 0.5 {
		t.Errorf("cache hit rate = %v, want 0.5", stats.CacheHitRate)
	}
}

func TestBuildRowsFromAddresses(t *testing.T) {
	req := &requests.BatchCleanseRequest{
		Addresses: []string{"123 Main St, Austin, TX", "PO Box 42, Portland, OR 97201"},
	}

	rows, resolver, err := BuildRows(req)
	if err != nil {
		t.Fatalf("BuildRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Values[batch.DefaultAddressColumn] != "123 Main St, Austin, TX" {
		t.Errorf("row 0 = %+v", rows[0])
	}

	addr, err := resolver.Resolve(rows[1])
	if err != nil || addr != "PO Box 42, Portland, OR 97201" {
		t.Errorf("Resolve = %q, %v", addr, err)
	}
}

func TestBuildRowsTabular(t *testing.T) {
	req := &requests.BatchCleanseRequest{
		Columns: []string{"street", "city", "state"},
		Rows: []map[string]string{
			{"street": "123 Main St", "city": "Austin", "state": "TX"},
		},
		Mode:        "explicit-columns",
		ModeColumns: []string{"street", "city", "state"},
	}

	rows, resolver, err := BuildRows(req)
	if err != nil {
		t.Fatalf("BuildRows: %v", err)
	}
	addr, err := resolver.Resolve(rows[0])
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addr != "123 Main St, Austin, TX" {
		t.Errorf("resolved address = %q", addr)
	}
}

func TestBuildRowsRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		req  requests.BatchCleanseRequest
	}{
		{"empty", requests.BatchCleanseRequest{}},
		{"rows without columns", requests.BatchCleanseRequest{
			Rows: []map[string]string{{"address": "x"}},
		}},
		{"unknown mode", requests.BatchCleanseRequest{
			Columns: []string{"address"},
			Rows:    []map[string]string{{"address": "x"}},
			Mode:    "zip-only",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := BuildRows(&tc.req); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestProcessBatchJob(t *testing.T) {
	svc := newAddressService(nil)

	req := &requests.BatchCleanseRequest{
		Addresses: []string{
			"123 Main Street, Austin, TX 78701",
			"456 Oak Ave Apt 2B, Denver, CO 80202",
		},
	}
	rows, resolver, err := BuildRows(req)
	if err != nil {
		t.Fatalf("BuildRows: %v", err)
	}

	jobID := "job-test-1"
	svc.ProcessBatchJob(jobID, rows, resolver)

	status, err := svc.GetJobStatus(jobID)
	if err != nil {
		t.Fatalf("GetJobStatus: %v", err)
	}
	if status.Status != "done" {
		t.Fatalf("job status = %q (%s), want done", status.Status, status.Message)
	}
	if status.Progress != 1.0 || status.Processed != 2 {
		t.Errorf("progress = %v processed = %d", status.Progress, status.Processed)
	}

	summary, err := svc.GetJobSummary(jobID)
	if err != nil {
		t.Fatalf("GetJobSummary: %v", err)
	}
	if summary.Total != 2 || summary.ErrorCount != 0 {
		t.Errorf("summary = %+v", summary)
	}

	results, err := svc.GetJobResults(jobID)
	if err != nil {
		t.Fatalf("GetJobResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for i, rr := range results {
		if rr.Index != i {
			t.Errorf("result %d has index %d", i, rr.Index)
		}
	}
}

func TestGetJobResultsStream(t *testing.T) {
	svc := newAddressService(nil)

	req := &requests.BatchCleanseRequest{Addresses: []string{"123 Main St, Austin, TX 78701"}}
	rows, resolver, _ := BuildRows(req)
	svc.ProcessBatchJob("job-stream", rows, resolver)

	ch, err := svc.GetJobResultsStream("job-stream")
	if err != nil {
		t.Fatalf("GetJobResultsStream: %v", err)
	}

	count := 0
	for range ch {
		count++
	}
	if count != 1 {
		t.Errorf("streamed %d results, want 1", count)
	}
}

func TestJobNotFound(t *testing.T) {
	svc := newAddressService(nil)

	if _, err := svc.GetJobStatus("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("GetJobStatus err = %v, want ErrJobNotFound", err)
	}
	if _, err := svc.GetJobSummary("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("GetJobSummary err = %v, want ErrJobNotFound", err)
	}
	if _, err := svc.GetJobResults("nope"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("GetJobResults err = %v, want ErrJobNotFound", err)
	}
}
