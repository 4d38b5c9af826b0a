package checkrt

import (
	"testing"

	"surge/internal/ir"
)

func TestSpawnRunsToCompletion(t *testing.T) {
	rt := NewRuntime(Config{})
	ran := false
	rt.Spawn("trivial", func() TaskResult {
		ran = true
		return Done()
	})
	if !rt.BlockUntilQuiescent() {
		t.Fatalf("expected a clean fixed point")
	}
	if !ran {
		t.Fatalf("expected the task to have run")
	}
	if !rt.Quiescent() {
		t.Fatalf("expected no remaining ready or parked work")
	}
}

func TestLoopOnInferenceVarSuspendsThenResumes(t *testing.T) {
	rt := NewRuntime(Config{})
	v := ir.InferID(1)
	resolved := false
	result := -1

	rt.Spawn("waits on v", func() TaskResult {
		return LoopOnInferenceVar(rt, v, func(final bool) (int, bool) {
			if resolved {
				return 42, true
			}
			if final {
				return 0, true // conservative default
			}
			return 0, false
		}, func(val int) TaskResult {
			result = val
			return Done()
		})
	})

	// v never resolves, so the fixed point is only reached by forcing the
	// conservative default on the last-chance re-drive.
	if rt.BlockUntilQuiescent() {
		t.Fatalf("expected a forced (non-clean) fixed point")
	}
	if result != 0 {
		t.Fatalf("expected the conservative default to have fired, got %d", result)
	}
}

func TestWakeRequeuesParkedTask(t *testing.T) {
	rt := NewRuntime(Config{})
	v := ir.InferID(7)
	resolved := false
	var result int

	rt.Spawn("waits on v", func() TaskResult {
		return LoopOnInferenceVar(rt, v, func(final bool) (int, bool) {
			if resolved {
				return 99, true
			}
			return 0, false
		}, func(val int) TaskResult {
			result = val
			return Done()
		})
	})

	rt.runReady() // first step: probe fails, task parks on v
	if rt.Quiescent() {
		t.Fatalf("expected the task to be parked, not quiescent")
	}

	resolved = true
	rt.Wake(v)
	rt.runReady()

	if result != 99 {
		t.Fatalf("expected the woken task to observe the resolved value, got %d", result)
	}
	if !rt.Quiescent() {
		t.Fatalf("expected the runtime to be quiescent after completion")
	}
}

func TestDeferIsSpawnUnderADifferentName(t *testing.T) {
	rt := NewRuntime(Config{})
	ran := false
	rt.Defer("fire and forget", func() TaskResult {
		ran = true
		return Done()
	})
	rt.BlockUntilQuiescent()
	if !ran {
		t.Fatalf("expected the deferred task to run")
	}
}
