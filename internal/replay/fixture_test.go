package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
)

// TestFixture_IdentitySession loads the identity_session fixture, replays it,
// and compares each cycle's choc flag and drift level against the expected
// outcomes. This is the primary regression baseline: if dissonance weights,
// fixation deltas, or vigilance thresholds change behavior, this catches it.
func TestFixture_IdentitySession(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "identity_session.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	dirs := axes.Deterministic(f.Start.DirectionSeed)
	start, err := BuildStart(f.Start.ToStartSpec(), dirs)
	if err != nil {
		t.Fatalf("BuildStart: %v", err)
	}

	interactions := make([]Interaction, len(f.Interactions))
	for i := range f.Interactions {
		interactions[i] = f.Interactions[i].ToInteraction()
	}

	results, final, err := Replay(start, interactions, f.Config.ToConfig(), f.Profile, dirs)
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if len(results) != len(f.ExpectedResults) {
		t.Fatalf("expected %d results, got %d", len(f.ExpectedResults), len(results))
	}

	for i, expected := range f.ExpectedResults {
		actual := results[i]
		if actual.ID != expected.ID {
			t.Errorf("cycle %d: expected id=%s, got %s", i, expected.ID, actual.ID)
		}
		if actual.IsChoc != expected.IsChoc {
			t.Errorf("cycle %s: expected is_choc=%v, got %v (dissonance %.3f)",
				expected.ID, expected.IsChoc, actual.IsChoc, actual.Dissonance)
		}
		if actual.DriftLevel != expected.DriftLevel {
			t.Errorf("cycle %s: expected drift=%s, got %s",
				expected.ID, expected.DriftLevel, actual.DriftLevel)
		}
	}

	summary := Summarize(results, final)
	if summary.Chocs != 2 {
		t.Errorf("expected 2 chocs across the session, got %d", summary.Chocs)
	}
	if final.StateID != start.StateID+int64(len(interactions)) {
		t.Errorf("final state_id %d, want %d", final.StateID, start.StateID+int64(len(interactions)))
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join("testdata", "absent.json")); err == nil {
		t.Fatal("missing fixture must fail")
	}
}

func TestLoadFixtureRejectsEmptyInteractions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"description":"x","interactions":[]}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFixture(path); err == nil {
		t.Fatal("empty fixture must fail")
	}
}
