package metrics

import (
	"sync"
	"time"
)

// #region snapshot
// Snapshot is a point-in-time copy of the engine counters, safe to serialize.
type Snapshot struct {
	CyclesTotal        int64            `json:"cycles_total"`
	CyclesByTrigger    map[string]int64 `json:"cycles_by_trigger"`
	Chocs              int64            `json:"chocs"`
	ChocsResolved      int64            `json:"chocs_resolved"`
	DegenerateDeltas   int64            `json:"degenerate_deltas"`
	ReasoningDetected  int64            `json:"reasoning_detected"`
	Verbalizations     int64            `json:"verbalizations"`
	AbortedCycles      int64            `json:"aborted_cycles"`
	DriftWarnings      int64            `json:"drift_warnings"`
	DriftCriticals     int64            `json:"drift_criticals"`
	LastTriggerType    string           `json:"last_trigger_type,omitempty"`
	LastCycleAt        time.Time        `json:"last_cycle_at,omitzero"`
	Mode               string           `json:"mode"`
	LastCycleDurations []float64        `json:"last_cycle_durations_ms,omitempty"`
}

// #endregion snapshot

// #region recorder
const durationWindow = 32

// Recorder accumulates engine counters. All methods are safe for concurrent
// use; the daemon writes, the status surface reads.
type Recorder struct {
	mu   sync.Mutex
	snap Snapshot
	durs []float64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		snap: Snapshot{CyclesByTrigger: make(map[string]int64), Mode: "idle"},
	}
}

// CycleDone records a completed cycle and its wall-clock duration.
func (r *Recorder) CycleDone(triggerType string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.CyclesTotal++
	r.snap.CyclesByTrigger[triggerType]++
	r.snap.LastTriggerType = triggerType
	r.snap.LastCycleAt = time.Now().UTC()
	r.durs = append(r.durs, float64(d.Microseconds())/1000.0)
	if len(r.durs) > durationWindow {
		r.durs = r.durs[len(r.durs)-durationWindow:]
	}
}

// CycleAborted records a cycle abandoned before commit.
func (r *Recorder) CycleAborted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.AbortedCycles++
}

// Choc records a shock-level dissonance.
func (r *Recorder) Choc() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Chocs++
}

// ChocResolved records a rumination that worked through a pending impact.
func (r *Recorder) ChocResolved() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.ChocsResolved++
}

// DegenerateDelta records a segment update clamped back to its prior direction.
func (r *Recorder) DegenerateDelta(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.DegenerateDeltas += int64(n)
}

// Verbalized records an expressed translation; violated marks a reasoning
// contract breach (the text was withheld but the cycle stood).
func (r *Recorder) Verbalized(violated bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Verbalizations++
	if violated {
		r.snap.ReasoningDetected++
	}
}

// Drift records an alert level from the vigilance check.
func (r *Recorder) Drift(level string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch level {
	case "warning":
		r.snap.DriftWarnings++
	case "critical":
		r.snap.DriftCriticals++
	}
}

// SetMode records the current daemon mode.
func (r *Recorder) SetMode(mode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap.Mode = mode
}

// Snapshot returns a deep copy of the counters.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.snap
	out.CyclesByTrigger = make(map[string]int64, len(r.snap.CyclesByTrigger))
	for k, v := range r.snap.CyclesByTrigger {
		out.CyclesByTrigger[k] = v
	}
	out.LastCycleDurations = append([]float64(nil), r.durs...)
	return out
}

// #endregion recorder
