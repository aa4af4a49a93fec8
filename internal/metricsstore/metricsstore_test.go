package metricsstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"tierroute/internal/contracts"
	"tierroute/internal/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"),
	)
}

func TestOpenCreatesSchemaAndRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	if store.Path() != path {
		t.Fatalf("expected Path() to return %q, got %q", path, store.Path())
	}

	snap := metrics.Snapshot{
		TotalClassifications: 10,
		CacheHits:             6,
		CacheMisses:           4,
		CacheHitRatio:         0.6,
		TierCounts:            map[contracts.Tier]int64{contracts.TierNative: 7},
		HandlerCounts:         map[contracts.Handler]int64{contracts.HandlerNative: 7},
	}
	if err := store.Record(context.Background(), snap); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	recent, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recorded snapshot, got %d", len(recent))
	}
	if diff := cmp.Diff(snap, recent[0]); diff != "" {
		t.Errorf("round-tripped snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestPruneRemovesOldSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer store.Close()

	if err := store.Record(context.Background(), metrics.Snapshot{TotalClassifications: 1}); err != nil {
		t.Fatalf("record failed: %v", err)
	}

	n, err := store.Prune(context.Background(), -time.Hour)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 row pruned, got %d", n)
	}

	recent, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected no snapshots after pruning, got %d", len(recent))
	}
}
