package vigilance

import (
	"math"
	"math/rand"
	"testing"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/profile"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

func testProfile() *profile.Store {
	p := &profile.Profile{
		Version: 1,
		Categories: map[string][]profile.Declaration{
			"epistemic": {{Axis: "curiosity", Value: 10}},
		},
	}
	return profile.NewStore(p)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.ObservedWeight = 0 // declared reference only, deterministic
	return cfg
}

// stateWithThirdness builds a tensor whose thirdness equals the given unit
// vector and whose other segments are fixed random units.
func stateWithThirdness(t *testing.T, third []float32, seed int64) tensor.StateTensor {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	dims := make(map[string][]float32)
	for _, name := range tensor.SegmentNames {
		v := make([]float32, tensor.SegmentWidth)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		dims[name] = v
	}
	dims["thirdness"] = third
	x, err := tensor.Genesis(tensor.DefaultSegmentMap(), dims)
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}
	return x
}

func orthogonalTo(ref []float32, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	u := make([]float32, len(ref))
	for i := range u {
		u[i] = float32(rng.NormFloat64())
	}
	d := tensor.Dot(u, ref)
	for i := range u {
		u[i] -= d * ref[i]
	}
	tensor.Normalize(u)
	return u
}

func rotated(ref, u []float32, theta float64) []float32 {
	out := make([]float32, len(ref))
	c, s := float32(math.Cos(theta)), float32(math.Sin(theta))
	for i := range out {
		out[i] = c*ref[i] + s*u[i]
	}
	return out
}

func TestNoOpCumulativeDoesNotIncrease(t *testing.T) {
	dirs := axes.Deterministic(1)
	v := New(testConfig(), testProfile(), dirs, nil)

	ref := dirs.Vector("curiosity")
	x := stateWithThirdness(t, append([]float32(nil), ref...), 10)

	first := v.Check(x, x)
	for i := 0; i < 50; i++ {
		a := v.Check(x, x)
		if a.Cumulative != first.Cumulative {
			t.Fatalf("cumulative drifted on no-op cycle %d: %f vs %f", i, a.Cumulative, first.Cumulative)
		}
		if a.PerCycle != 0 {
			t.Fatalf("per-cycle drift %f on identical states, want 0", a.PerCycle)
		}
		if a.Level != SeverityNone {
			t.Fatalf("level %s on no-op, want none", a.Level)
		}
	}
}

func TestDriftEscalatesMonotonically(t *testing.T) {
	dirs := axes.Deterministic(2)
	v := New(testConfig(), testProfile(), dirs, nil)

	ref := dirs.Vector("curiosity")
	u := orthogonalTo(ref, 20)

	rank := map[Severity]int{SeverityNone: 0, SeverityWarning: 1, SeverityCritical: 2}
	prev := stateWithThirdness(t, append([]float32(nil), ref...), 30)
	v.Check(prev, prev) // establish baseline

	lastRank := 0
	sawCritical := false
	for k := 1; k <= 40; k++ {
		x := stateWithThirdness(t, rotated(ref, u, float64(k)*0.02), 30)
		a := v.Check(x, prev)
		if rank[a.Level] < lastRank {
			t.Fatalf("severity regressed at step %d: %s", k, a.Level)
		}
		lastRank = rank[a.Level]
		if a.Level == SeverityCritical {
			sawCritical = true
		}
		prev = x
	}
	if !sawCritical {
		t.Fatal("sustained drift never reached critical")
	}
}

func TestAlertNamesTopSegments(t *testing.T) {
	dirs := axes.Deterministic(3)
	v := New(testConfig(), testProfile(), dirs, nil)

	ref := dirs.Vector("curiosity")
	u := orthogonalTo(ref, 40)
	x := stateWithThirdness(t, rotated(ref, u, 0.5), 50)

	a := v.Check(x, x)
	if len(a.TopSegments) == 0 {
		t.Fatal("expected top contributing segments")
	}
	if a.TopSegments[0] != "thirdness" {
		t.Fatalf("top segment %q, want thirdness", a.TopSegments[0])
	}
}

func TestCheckIsPureOnState(t *testing.T) {
	dirs := axes.Deterministic(4)
	v := New(testConfig(), testProfile(), dirs, nil)

	ref := dirs.Vector("curiosity")
	x := stateWithThirdness(t, append([]float32(nil), ref...), 60)
	before := x.Vector

	v.Check(x, x)
	if x.Vector != before {
		t.Fatal("vigilance must never modify the state")
	}
}

func TestRebuildOnRedeclaration(t *testing.T) {
	dirs := axes.Deterministic(5)
	store := testProfile()
	v := New(testConfig(), store, dirs, nil)

	ref := dirs.Vector("curiosity")
	x := stateWithThirdness(t, append([]float32(nil), ref...), 70)
	a := v.Check(x, x)
	if d := a.PerSegment["thirdness"]; d > 1e-5 {
		t.Fatalf("aligned state has thirdness distance %f, want ~0", d)
	}

	// Re-declare with the opposite pole: same state is now maximally adrift.
	next := &profile.Profile{
		Version: 2,
		Categories: map[string][]profile.Declaration{
			"epistemic": {{Axis: "curiosity", Value: -10}},
		},
	}
	if err := store.Redeclare(next); err != nil {
		t.Fatalf("Redeclare: %v", err)
	}
	a = v.Check(x, x)
	if d := a.PerSegment["thirdness"]; d < 1.5 {
		t.Fatalf("inverted declaration should flip the reference: distance %f", d)
	}
}
