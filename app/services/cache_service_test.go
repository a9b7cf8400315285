package services

import (
	"context"
	"testing"
	"time"

	"github.com/address-cleanser/app/models"
)

func sampleResult(confidence float64) *models.CleanseResult {
	return &models.CleanseResult{
		Raw:        "123 Main Street, Austin, TX 78701",
		Confidence: confidence,
	}
}

func TestCacheServiceGetSet(t *testing.T) {
	cs := NewCacheService(time.Minute, "rev-1")
	ctx := context.Background()

	if _, found, err := cs.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found=%v err=%v, want miss", found, err)
	}

	want := sampleResult(94.7)
	if err := cs.Set(ctx, "k1", want); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, found, err := cs.Get(ctx, "k1")
	if err != nil || !found {
		t.Fatalf("Get(k1) = found=%v err=%v, want hit", found, err)
	}
	if got.Confidence != want.Confidence {
		t.Errorf("cached confidence = %v, want %v", got.Confidence, want.Confidence)
	}

	exists, err := cs.Exists(ctx, "k1")
	if err != nil || !exists {
		t.Errorf("Exists(k1) = %v, %v", exists, err)
	}
}

func TestCacheServiceExpiry(t *testing.T) {
	cs := NewCacheService(10*time.Millisecond, "rev-1")
	ctx := context.Background()

	cs.Set(ctx, "k1", sampleResult(90))
	time.Sleep(30 * time.Millisecond)

	if _, found, _ := cs.Get(ctx, "k1"); found {
		t.Error("expired entry still served")
	}
	if ttl, _ := cs.GetTTL(ctx, "k1"); ttl != 0 {
		t.Errorf("GetTTL on expired entry = %v, want 0", ttl)
	}
}

func TestCacheServiceInvalidateByTableRevision(t *testing.T) {
	cs := NewCacheService(time.Minute, "rev-1")
	ctx := context.Background()

	cs.Set(ctx, "old", sampleResult(80))

	// Entries written from here on carry the new revision.
	cs.revision = "rev-2"
	cs.Set(ctx, "new", sampleResult(90))

	if err := cs.InvalidateByTableRevision(ctx, "rev-2"); err != nil {
		t.Fatalf("InvalidateByTableRevision: %v", err)
	}

	if _, found, _ := cs.Get(ctx, "old"); found {
		t.Error("stale-revision entry survived invalidation")
	}
	if _, found, _ := cs.Get(ctx, "new"); !found {
		t.Error("current-revision entry was dropped")
	}
}

func TestCacheServiceStats(t *testing.T) {
	cs := NewCacheService(time.Minute, "rev-1")
	ctx := context.Background()

	cs.Set(ctx, "k1", sampleResult(90))
	cs.Get(ctx, "k1")
	cs.Get(ctx, "k1")
	cs.Get(ctx, "nope")

	stats, err := cs.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalHits != 2 || stats.TotalMiss != 1 {
		t.Errorf("hits=%d misses=%d, want 2/1", stats.TotalHits, stats.TotalMiss)
	}
	if stats.TotalItems != 1 {
		t.Errorf("items=%d, want 1", stats.TotalItems)
	}
	wantRate := 2.0 / 3.0
	if stats.HitRate < wantRate-0.001 || stats.HitRate > wantRate+0.001 {
		t.Errorf("hit rate = %v, want ~%v", stats.HitRate, wantRate)
	}
}

func TestCacheServiceClear(t *testing.T) {
	cs := NewCacheService(time.Minute, "rev-1")
	ctx := context.Background()

	cs.Set(ctx, "k1", sampleResult(90))
	cs.Set(ctx, "k2", sampleResult(80))

	if err := cs.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	stats, _ := cs.GetStats(ctx)
	if stats.TotalItems != 0 {
		t.Errorf("items after clear = %d, want 0", stats.TotalItems)
	}
}
