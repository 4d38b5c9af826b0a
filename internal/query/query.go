// Package query implements component C: the incremental query engine
// (§4.C). Every derived fact is keyed by its query kind and input key;
// re-running a query with an unchanged input revision returns the cached
// result without re-executing, and a query may accumulate diagnostics as a
// side channel that is only re-collected when the query actually re-runs.
package query

import (
	"sync"

	"surge/internal/diag"
)

// Revision is a monotonically increasing stamp supplied by the caller; the
// Engine keeps no revision of its own. A cached cell is stale once its own
// builtAt is older than the revision the caller supplies for the inputs it read
// (§4.C: "downstream queries detect staleness lazily").
type Revision uint64

// Func computes a derived value, accumulating any diagnostics produced
// along the way into bag. It must be a pure function of whatever the
// caller's key and inputRevision capture.
type Func func(bag *diag.Bag) any

type cellKey struct {
	kind string
	key  string
}

type cell struct {
	builtAt Revision
	value   any
	diags   []*diag.Diagnostic
}

// Engine owns the memoization table for one compilation run. It is
// single-threaded from the core's point of view (§4.C) but safe to drive
// concurrently from multiple goroutines — the mutex only protects the
// cache table itself, mirroring internal/driver's ModuleCache (a per-run
// in-memory cache keyed by content hash) from the teacher's parallel
// diagnose path.
type Engine struct {
	mu    sync.Mutex
	cells map[cellKey]*cell
}

// NewEngine constructs an empty Engine.
func NewEngine() *Engine {
	return &Engine{cells: make(map[cellKey]*cell)}
}

// Query returns the cached result for (kind, key) if it was computed at or
// after inputRevision; otherwise it runs fn, stores the result tagged with
// inputRevision, and returns the freshly accumulated
// diagnostics. On a cache hit, the diagnostics accumulated at the original
// computation are replayed rather than fn running again (§4.C: "accumulated
// values are re-collected on every execution of a query that is not
// reused" — implying the converse: a reused query's diagnostics are not
// re-collected, just replayed).
func (e *Engine) Query(kind, key string, inputRevision Revision, fn Func) (any, []*diag.Diagnostic) {
	ck := cellKey{kind: kind, key: key}

	e.mu.Lock()
	if c, ok := e.cells[ck]; ok && c.builtAt >= inputRevision {
		value, diags := c.value, c.diags
		e.mu.Unlock()
		return value, diags
	}
	e.mu.Unlock()

	bag := diag.NewBag(maxQueryDiagnostics)
	value := fn(bag)
	diags := append([]*diag.Diagnostic(nil), bag.Items()...)

	e.mu.Lock()
	e.cells[ck] = &cell{builtAt: inputRevision, value: value, diags: diags}
	e.mu.Unlock()

	return value, diags
}

// maxQueryDiagnostics bounds any one query's per-run accumulator; the
// engine-wide view assembled by CollectDiagnostics has no such cap.
const maxQueryDiagnostics = 4096

// Invalidate drops every cached cell for kind (used when an input entity's
// setter can't cheaply compute a precise revision watermark — e.g. a whole
// symbol table reload — and a coarse invalidation is simpler than wiring a
// fine-grained dependency edge).
func (e *Engine) Invalidate(kind string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k := range e.cells {
		if k.kind == kind {
			delete(e.cells, k)
		}
	}
}

// CollectDiagnostics merges every cached cell's accumulated diagnostics
// into bag, then deduplicates with internal/diag's own Dedup rather than a
// second notion of equality. Dedup keeps one entry per (code, primary span)
// pair, so two entries that share both are collapsed to the first even when
// their messages or notes differ.
func (e *Engine) CollectDiagnostics(bag *diag.Bag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, c := range e.cells {
		for _, d := range c.diags {
			bag.Add(d)
		}
	}
	bag.Dedup()
}

// Len reports the number of memoized cells (for tests and metrics).
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cells)
}
