package history

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "ticks.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func genesis(t *testing.T, s *Store, seed int64) tensor.StateTensor {
	t.Helper()
	x := tensor.RandomGenesis(tensor.DefaultSegmentMap(), rand.New(rand.NewSource(seed)))
	if err := s.CommitGenesis(x); err != nil {
		t.Fatalf("CommitGenesis: %v", err)
	}
	return x
}

func tickFrom(x tensor.StateTensor, parent int64) TickRecord {
	return TickRecord{
		StateID:       x.StateID,
		CycleID:       uuid.New().String(),
		ParentStateID: parent,
		Vector:        x.Vector,
		Segments:      x.Segments,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestGenesisRoundTrip(t *testing.T) {
	s := newTestStore(t)
	x := genesis(t, s, 1)

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.StateID != x.StateID {
		t.Fatalf("active state %d, want %d", cur.StateID, x.StateID)
	}
	if cur.Vector != x.Vector {
		t.Fatal("vector did not survive the round trip")
	}
	if cur.Segments != x.Segments {
		t.Fatalf("segment map changed: %+v", cur.Segments)
	}
}

func TestGenesisOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	genesis(t, s, 2)
	x := tensor.RandomGenesis(tensor.DefaultSegmentMap(), rand.New(rand.NewSource(3)))
	if err := s.CommitGenesis(x); err == nil {
		t.Fatal("second genesis must be rejected")
	}
}

func TestCurrentWithoutGenesis(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Current()
	if !errors.Is(err, ErrNoGenesis) {
		t.Fatalf("expected ErrNoGenesis, got %v", err)
	}
}

func TestCommitTickAdvancesActivePointer(t *testing.T) {
	s := newTestStore(t)
	x0 := genesis(t, s, 4)

	x1 := x0
	x1.StateID = x0.StateID + 1
	rec := tickFrom(x1, x0.StateID)
	entry := CycleEntry{CycleID: rec.CycleID, TriggerType: "user", Dissonance: 0.12, Verbalized: true}
	if err := s.CommitTick(rec, entry, nil); err != nil {
		t.Fatalf("CommitTick: %v", err)
	}

	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.StateID != x1.StateID {
		t.Fatalf("active %d, want %d", cur.StateID, x1.StateID)
	}
	if cur.ParentStateID != x0.StateID {
		t.Fatalf("parent %d, want %d", cur.ParentStateID, x0.StateID)
	}

	cycles, err := s.ListCycles(10)
	if err != nil {
		t.Fatalf("ListCycles: %v", err)
	}
	if len(cycles) != 1 || cycles[0].Action != "committed" || cycles[0].TriggerType != "user" {
		t.Fatalf("unexpected cycle log: %+v", cycles)
	}
	if !cycles[0].Verbalized {
		t.Fatal("verbalized flag lost")
	}
}

func TestCommitTickWithImpact(t *testing.T) {
	s := newTestStore(t)
	x0 := genesis(t, s, 5)

	x1 := x0
	x1.StateID = x0.StateID + 1
	rec := tickFrom(x1, x0.StateID)
	impact := &PendingImpact{ID: uuid.New().String(), Content: "everything you believe is wrong", Dissonance: 0.91}
	entry := CycleEntry{CycleID: rec.CycleID, TriggerType: "user", Dissonance: 0.91, IsChoc: true}
	if err := s.CommitTick(rec, entry, impact); err != nil {
		t.Fatalf("CommitTick: %v", err)
	}

	pending, err := s.PendingImpacts()
	if err != nil {
		t.Fatalf("PendingImpacts: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != impact.ID {
		t.Fatalf("pending impacts: %+v", pending)
	}
	if n, _ := s.CountPendingImpacts(); n != 1 {
		t.Fatalf("count %d, want 1", n)
	}

	if err := s.ResolveImpact(impact.ID, x1.StateID); err != nil {
		t.Fatalf("ResolveImpact: %v", err)
	}
	if n, _ := s.CountPendingImpacts(); n != 0 {
		t.Fatalf("count %d after resolve, want 0", n)
	}
	if err := s.ResolveImpact(impact.ID, x1.StateID); err == nil {
		t.Fatal("double resolve must fail")
	}
}

func TestDuplicateStateIDRejected(t *testing.T) {
	s := newTestStore(t)
	x0 := genesis(t, s, 6)

	rec := tickFrom(x0, 0) // same state_id as genesis
	entry := CycleEntry{CycleID: rec.CycleID, TriggerType: "veille"}
	if err := s.CommitTick(rec, entry, nil); err == nil {
		t.Fatal("duplicate state_id must be rejected")
	}

	// The failed commit must leave no trace: pointer and log untouched.
	cur, err := s.Current()
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.StateID != x0.StateID {
		t.Fatalf("active pointer moved to %d", cur.StateID)
	}
	cycles, err := s.ListCycles(10)
	if err != nil {
		t.Fatalf("ListCycles: %v", err)
	}
	if len(cycles) != 0 {
		t.Fatalf("rolled-back commit left %d log rows", len(cycles))
	}
}

func TestLogAbort(t *testing.T) {
	s := newTestStore(t)
	genesis(t, s, 7)

	if err := s.LogAbort(uuid.New().String(), "corpus", "embedding timeout"); err != nil {
		t.Fatalf("LogAbort: %v", err)
	}
	cycles, err := s.ListCycles(10)
	if err != nil {
		t.Fatalf("ListCycles: %v", err)
	}
	if len(cycles) != 1 || cycles[0].Action != "aborted" || cycles[0].Reason != "embedding timeout" {
		t.Fatalf("abort entry: %+v", cycles)
	}
	if cycles[0].StateID != 0 {
		t.Fatalf("aborted cycle carries state_id %d", cycles[0].StateID)
	}
}

func TestListTicksNewestFirst(t *testing.T) {
	s := newTestStore(t)
	x := genesis(t, s, 8)

	for i := 0; i < 3; i++ {
		next := x
		next.StateID = x.StateID + 1
		rec := tickFrom(next, x.StateID)
		if err := s.CommitTick(rec, CycleEntry{CycleID: rec.CycleID, TriggerType: "veille"}, nil); err != nil {
			t.Fatalf("CommitTick %d: %v", i, err)
		}
		x = next
	}

	ticks, err := s.ListTicks(2)
	if err != nil {
		t.Fatalf("ListTicks: %v", err)
	}
	if len(ticks) != 2 {
		t.Fatalf("got %d ticks, want 2", len(ticks))
	}
	if ticks[0].StateID <= ticks[1].StateID {
		t.Fatalf("not newest-first: %d then %d", ticks[0].StateID, ticks[1].StateID)
	}
}
