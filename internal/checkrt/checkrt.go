// Package checkrt implements component D: the checking runtime, a
// single-threaded cooperative scheduler for tasks that may suspend awaiting
// new information about an inference variable (§4.D). It is adapted from
// internal/asyncrt's Executor — the ready queue, waiters-by-key map and
// parked-task map carry over directly — but traded asyncrt's
// generated-poll-function dispatch (a PollFuncID indexing into poll
// functions the surge compiler's own codegen emits for async bodies) for
// plain closures-as-continuations, since this checker has no codegen stage
// to assign poll-function ids to. It also drops everything asyncrt owns
// that has no counterpart here: channels, timers, select, net I/O and
// scope-based cancellation, none of which the checker's single-item
// fixed-point computation needs (§4.D: "there is no explicit
// cancellation").
package checkrt

import "surge/internal/ir"

// TaskID identifies a task registered with a Runtime.
type TaskID uint64

// TaskResult is what running one step of a Task produces: either
// completion, or a continuation plus the inference variable the task is
// now waiting on (§4.D: "requeued whenever v is updated").
type TaskResult struct {
	Done   bool
	Err    bool // the task reported an error via its own accumulator before finishing
	Next   Task
	ParkOn ir.InferID
}

// Done builds a completed result.
func Done() TaskResult { return TaskResult{Done: true} }

// DoneErr builds a completed result for a task that reported a diagnostic.
func DoneErr() TaskResult { return TaskResult{Done: true, Err: true} }

// Suspend builds a suspended result: next runs once v is signaled.
func Suspend(v ir.InferID, next Task) TaskResult {
	return TaskResult{Next: next, ParkOn: v}
}

// Task is one resumable step of a checking computation. Calling it performs
// work up to the next suspension point (or to completion).
type Task func() TaskResult

type taskEntry struct {
	id          TaskID
	description string
	step        Task
}

// Config configures a Runtime. There are currently no tunables; it exists
// so call sites don't need to change if one is added (the teacher's own
// asyncrt.Config is the same kind of forward-compatible placeholder).
type Config struct{}

// Runtime drives the ready queue and parked-task map described in §4.D.
type Runtime struct {
	nextID     TaskID
	tasks      map[TaskID]*taskEntry
	ready      []TaskID
	readySet   map[TaskID]struct{}
	waiters    map[ir.InferID][]TaskID
	parked     map[TaskID]ir.InferID
	current    TaskID
	finalizing bool // set during BlockUntilQuiescent's last-chance re-drive
}

// NewRuntime constructs an empty Runtime.
func NewRuntime(_ Config) *Runtime {
	return &Runtime{
		nextID:   1,
		tasks:    make(map[TaskID]*taskEntry),
		readySet: make(map[TaskID]struct{}),
		waiters:  make(map[ir.InferID][]TaskID),
		parked:   make(map[TaskID]ir.InferID),
	}
}

// Spawn registers task and enqueues it for execution (§4.D's `spawn`).
func (r *Runtime) Spawn(description string, task Task) TaskID {
	id := r.nextID
	r.nextID++
	r.tasks[id] = &taskEntry{id: id, description: description, step: task}
	r.enqueue(id)
	return id
}

// Defer is Spawn under a different name, matching §4.D's vocabulary for the
// call sites that proceed without awaiting a result already known to be
// trivially ok or an error — the scheduling behavior is identical; the
// distinct name documents caller intent, not a different mechanism.
func (r *Runtime) Defer(description string, task Task) TaskID {
	return r.Spawn(description, task)
}

// Current returns the id of the task presently being stepped, or 0 if none.
func (r *Runtime) Current() TaskID { return r.current }

// LoopOnInferenceVar implements §4.D's `loop_on_inference_var` as a helper
// a Task body calls: probe inspects v's current data and reports a result,
// or asks to suspend. On the scheduler's last-chance re-drive during
// BlockUntilQuiescent, probe is called with final=true so it can produce a
// conservative default instead of suspending forever.
func LoopOnInferenceVar[T any](rt *Runtime, v ir.InferID, probe func(final bool) (T, bool), cont func(T) TaskResult) TaskResult {
	if val, ok := probe(rt.finalizing); ok {
		return cont(val)
	}
	return Suspend(v, func() TaskResult {
		return LoopOnInferenceVar(rt, v, probe, cont)
	})
}

// Wake requeues every task parked on v (§4.E: "every signal marks all tasks
// parked on v as ready"). Satisfies infer.WakeFunc.
func (r *Runtime) Wake(v ir.InferID) {
	waiting := r.waiters[v]
	if len(waiting) == 0 {
		return
	}
	delete(r.waiters, v)
	for _, id := range waiting {
		delete(r.parked, id)
		r.enqueue(id)
	}
}

func (r *Runtime) enqueue(id TaskID) {
	if _, ok := r.readySet[id]; ok {
		return
	}
	r.ready = append(r.ready, id)
	r.readySet[id] = struct{}{}
}

func (r *Runtime) dequeue() (TaskID, bool) {
	if len(r.ready) == 0 {
		return 0, false
	}
	id := r.ready[0]
	r.ready = r.ready[1:]
	delete(r.readySet, id)
	return id, true
}

func (r *Runtime) park(id TaskID, v ir.InferID) {
	r.parked[id] = v
	r.waiters[v] = append(r.waiters[v], id)
}

// runReady steps every ready task to its next suspension point or
// completion, repeating until the ready queue is empty.
func (r *Runtime) runReady() {
	for {
		id, ok := r.dequeue()
		if !ok {
			return
		}
		entry := r.tasks[id]
		if entry == nil {
			continue
		}
		r.current = id
		result := entry.step()
		r.current = 0
		if result.Done {
			delete(r.tasks, id)
			continue
		}
		entry.step = result.Next
		r.park(id, result.ParkOn)
	}
}

// BlockUntilQuiescent drives the queue until no task is ready and no task
// is parked on progress that can still occur (§4.D). It returns whether the
// fixed point was reached cleanly: true if every task completed on its own,
// false if some tasks only finished because they were forced with the
// "no more bounds forthcoming" signal on the final re-drive.
func (r *Runtime) BlockUntilQuiescent() bool {
	r.runReady()
	if len(r.parked) == 0 {
		return true
	}
	r.finalizing = true
	defer func() { r.finalizing = false }()
	for v := range r.waiters {
		r.Wake(v)
	}
	r.runReady()
	return false // reached only by forcing conservative defaults, not cleanly
}

// Quiescent reports whether the runtime currently has no ready or parked
// work (useful for tests asserting a task tree has fully drained).
func (r *Runtime) Quiescent() bool {
	return len(r.ready) == 0 && len(r.parked) == 0
}
