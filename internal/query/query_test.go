package query

import (
	"context"
	"testing"

	"surge/internal/diag"
	"surge/internal/source"
)

func TestQueryCachesUntilRevisionAdvances(t *testing.T) {
	e := NewEngine()
	runs := 0
	fn := func(bag *diag.Bag) any {
		runs++
		return 42
	}

	v, _ := e.Query("check-item", "foo", 1, fn)
	if v.(int) != 42 || runs != 1 {
		t.Fatalf("expected first call to compute, got v=%v runs=%d", v, runs)
	}

	v, _ = e.Query("check-item", "foo", 1, fn)
	if v.(int) != 42 || runs != 1 {
		t.Fatalf("expected second call at the same revision to hit cache, runs=%d", runs)
	}

	v, _ = e.Query("check-item", "foo", 2, fn)
	if v.(int) != 42 || runs != 2 {
		t.Fatalf("expected a higher input revision to force recomputation, runs=%d", runs)
	}
}

func TestQueryDiagnosticsReplayedOnCacheHit(t *testing.T) {
	e := NewEngine()
	span := source.Span{}
	fn := func(bag *diag.Bag) any {
		bag.Add(&diag.Diagnostic{Code: diag.PermSubtypeFailure, Primary: span, Message: "boom"})
		return nil
	}

	_, d1 := e.Query("check-item", "foo", 1, fn)
	_, d2 := e.Query("check-item", "foo", 1, fn)

	if len(d1) != 1 || len(d2) != 1 {
		t.Fatalf("expected one diagnostic both times, got %d and %d", len(d1), len(d2))
	}
}

func TestCollectDiagnosticsDedupsAcrossCells(t *testing.T) {
	e := NewEngine()
	span := source.Span{}
	fn := func(bag *diag.Bag) any {
		bag.Add(&diag.Diagnostic{Code: diag.PermSubtypeFailure, Primary: span, Message: "boom"})
		return nil
	}
	e.Query("check-item", "foo", 1, fn)
	e.Query("check-item", "bar", 1, fn) // same code+span, different key

	bag := diag.NewBag(100)
	e.CollectDiagnostics(bag)
	if bag.Len() != 1 {
		t.Fatalf("expected structurally-equal diagnostics across cells to dedup to 1, got %d", bag.Len())
	}
}

func TestInvalidateDropsOnlyMatchingKind(t *testing.T) {
	e := NewEngine()
	fn := func(bag *diag.Bag) any { return 1 }
	e.Query("check-item", "foo", 1, fn)
	e.Query("resolve-name", "foo", 1, fn)

	e.Invalidate("check-item")
	if e.Len() != 1 {
		t.Fatalf("expected only the invalidated kind's cell to be dropped, got %d remaining", e.Len())
	}
}

func TestRunParallelRunsEveryItem(t *testing.T) {
	n := 8
	seen := make([]bool, n)
	err := RunParallel(context.Background(), n, 4, func(_ context.Context, i int) error {
		seen[i] = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("expected item %d to run", i)
		}
	}
}
