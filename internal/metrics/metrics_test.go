package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.CycleDone("user", 5*time.Millisecond)
	r.CycleDone("veille", 3*time.Millisecond)
	r.CycleDone("user", 4*time.Millisecond)
	r.Choc()
	r.ChocResolved()
	r.DegenerateDelta(2)
	r.Verbalized(false)
	r.Verbalized(true)
	r.CycleAborted()
	r.Drift("warning")
	r.Drift("critical")
	r.Drift("none")
	r.SetMode("autonomous")

	s := r.Snapshot()
	if s.CyclesTotal != 3 {
		t.Fatalf("cycles %d, want 3", s.CyclesTotal)
	}
	if s.CyclesByTrigger["user"] != 2 || s.CyclesByTrigger["veille"] != 1 {
		t.Fatalf("per-trigger counts %v", s.CyclesByTrigger)
	}
	if s.LastTriggerType != "user" {
		t.Fatalf("last trigger %q, want user", s.LastTriggerType)
	}
	if s.Chocs != 1 || s.ChocsResolved != 1 || s.DegenerateDeltas != 2 {
		t.Fatalf("choc/degenerate counters: %+v", s)
	}
	if s.Verbalizations != 2 || s.ReasoningDetected != 1 {
		t.Fatalf("verbalization counters: %+v", s)
	}
	if s.AbortedCycles != 1 || s.DriftWarnings != 1 || s.DriftCriticals != 1 {
		t.Fatalf("abort/drift counters: %+v", s)
	}
	if s.Mode != "autonomous" {
		t.Fatalf("mode %q", s.Mode)
	}
	if len(s.LastCycleDurations) != 3 {
		t.Fatalf("durations %v", s.LastCycleDurations)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRecorder()
	r.CycleDone("user", time.Millisecond)
	s := r.Snapshot()
	s.CyclesByTrigger["user"] = 99
	s.LastCycleDurations[0] = -1

	again := r.Snapshot()
	if again.CyclesByTrigger["user"] != 1 {
		t.Fatal("snapshot map aliases recorder state")
	}
	if again.LastCycleDurations[0] < 0 {
		t.Fatal("snapshot durations alias recorder state")
	}
}

func TestRecorderConcurrentUse(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.CycleDone("corpus", time.Millisecond)
				r.Snapshot()
			}
		}()
	}
	wg.Wait()
	if got := r.Snapshot().CyclesTotal; got != 800 {
		t.Fatalf("cycles %d, want 800", got)
	}
}

func TestDurationWindowBounded(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < durationWindow*3; i++ {
		r.CycleDone("veille", time.Millisecond)
	}
	if got := len(r.Snapshot().LastCycleDurations); got != durationWindow {
		t.Fatalf("window length %d, want %d", got, durationWindow)
	}
}
