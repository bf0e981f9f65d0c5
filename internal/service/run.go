package service

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the lifecycle phase of one correction run
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseFailed    Phase = "failed"
)

// Event is one timestamped lifecycle log line
type Event struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// RunState is the single mutable record of one correction run: phase,
// batch bookkeeping, progress percentage and the event log. It is owned by
// the run driver and updated synchronously at well-defined points.
type RunState struct {
	Phase        Phase   `json:"phase"`
	BatchesDone  int     `json:"batches_done"`
	BatchesTotal int     `json:"batches_total"`
	Progress     int     `json:"progress"`
	Error        string  `json:"error,omitempty"`
	Events       []Event `json:"events"`
}

// RunObserver receives each event as it is recorded. Used by presentation
// layers (log panel, SSE stream); may be nil.
type RunObserver func(Event)

// RunTracker guards RunState for concurrent snapshot readers. All writes
// come from the single run driver.
type RunTracker struct {
	mu       sync.Mutex
	state    RunState
	observer RunObserver
}

func NewRunTracker(observer RunObserver) *RunTracker {
	return &RunTracker{
		state:    RunState{Phase: PhaseIdle},
		observer: observer,
	}
}

// Start moves the run into the running phase
func (t *RunTracker) Start() {
	t.mu.Lock()
	t.state.Phase = PhaseRunning
	t.state.BatchesDone = 0
	t.state.BatchesTotal = 0
	t.state.Progress = 0
	t.state.Error = ""
	t.mu.Unlock()
}

// BatchDone records one completed batch. Progress never decreases.
func (t *RunTracker) BatchDone(done, total, percent int) {
	t.mu.Lock()
	t.state.BatchesDone = done
	t.state.BatchesTotal = total
	if percent > t.state.Progress {
		t.state.Progress = percent
	}
	t.mu.Unlock()
	t.Logf("Batch %d/%d completed (%d%%)", done, total, percent)
}

// Logf appends a timestamped event and forwards it to the observer
func (t *RunTracker) Logf(format string, args ...interface{}) {
	event := Event{
		Time:    time.Now(),
		Message: fmt.Sprintf(format, args...),
	}

	t.mu.Lock()
	t.state.Events = append(t.state.Events, event)
	observer := t.observer
	t.mu.Unlock()

	if observer != nil {
		observer(event)
	}
}

// Complete marks the run completed at full progress
func (t *RunTracker) Complete() {
	t.mu.Lock()
	t.state.Phase = PhaseCompleted
	t.state.Progress = 100
	t.mu.Unlock()
	t.Logf("Correction completed")
}

// Fail marks the run failed with the causal message
func (t *RunTracker) Fail(err error) {
	t.mu.Lock()
	t.state.Phase = PhaseFailed
	if err != nil {
		t.state.Error = err.Error()
	}
	t.mu.Unlock()
	t.Logf("Correction failed: %v", err)
}

// Snapshot returns a copy of the current state
func (t *RunTracker) Snapshot() RunState {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := t.state
	snapshot.Events = make([]Event, len(t.state.Events))
	copy(snapshot.Events, t.state.Events)
	return snapshot
}
