package tensor

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"
)

func unitVec(fill func(i int) float32) []float32 {
	v := make([]float32, SegmentWidth)
	for i := range v {
		v[i] = fill(i)
	}
	Normalize(v)
	return v
}

func TestRandomGenesisNormsAndID(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	x := RandomGenesis(DefaultSegmentMap(), rng)

	if x.StateID != 0 {
		t.Fatalf("expected state_id 0, got %d", x.StateID)
	}
	for name, n := range x.SegmentNorms() {
		if math.Abs(n-1.0) > 1e-5 {
			t.Fatalf("segment %s norm %f, want 1.0", name, n)
		}
	}
}

func TestRandomGenesisDeterministic(t *testing.T) {
	a := RandomGenesis(DefaultSegmentMap(), rand.New(rand.NewSource(7)))
	b := RandomGenesis(DefaultSegmentMap(), rand.New(rand.NewSource(7)))
	if a.Vector != b.Vector {
		t.Fatal("same seed should produce identical genesis vectors")
	}
}

func TestGenesisExplicitVectors(t *testing.T) {
	dims := make(map[string][]float32)
	for _, name := range SegmentNames {
		dims[name] = unitVec(func(i int) float32 { return float32(i%7) + 1 })
	}
	x, err := Genesis(DefaultSegmentMap(), dims)
	if err != nil {
		t.Fatalf("Genesis: %v", err)
	}
	for name, n := range x.SegmentNorms() {
		if math.Abs(n-1.0) > 1e-5 {
			t.Fatalf("segment %s norm %f, want 1.0", name, n)
		}
	}
}

func TestGenesisRejectsDegenerateSegment(t *testing.T) {
	dims := make(map[string][]float32)
	for _, name := range SegmentNames {
		dims[name] = unitVec(func(i int) float32 { return 1 })
	}
	dims["thirdness"] = make([]float32, SegmentWidth) // zero vector

	_, err := Genesis(DefaultSegmentMap(), dims)
	if !errors.Is(err, ErrDegenerateVector) {
		t.Fatalf("expected ErrDegenerateVector, got %v", err)
	}
}

func TestGenesisRejectsWrongDimension(t *testing.T) {
	dims := make(map[string][]float32)
	for _, name := range SegmentNames {
		dims[name] = unitVec(func(i int) float32 { return 1 })
	}
	dims["valeurs"] = []float32{1, 2, 3}

	_, err := Genesis(DefaultSegmentMap(), dims)
	if !errors.Is(err, ErrWrongDimension) {
		t.Fatalf("expected ErrWrongDimension, got %v", err)
	}
}

func TestSegmentReturnsCopy(t *testing.T) {
	x := RandomGenesis(DefaultSegmentMap(), rand.New(rand.NewSource(1)))
	seg := x.Segment("firstness")
	seg[0] = 99

	if x.Vector[0] == 99 {
		t.Fatal("mutating Segment() result must not touch the tensor")
	}
}

func TestNextIncrementsStateID(t *testing.T) {
	x := RandomGenesis(DefaultSegmentMap(), rand.New(rand.NewSource(2)))
	y := x.Next(x.Vector)

	if y.StateID != x.StateID+1 {
		t.Fatalf("expected state_id %d, got %d", x.StateID+1, y.StateID)
	}
	if x.StateID != 0 {
		t.Fatal("Next must not mutate the original tensor")
	}
}

func TestFromFlatRenormalizes(t *testing.T) {
	x := RandomGenesis(DefaultSegmentMap(), rand.New(rand.NewSource(3)))
	flat := x.Flat()
	// Scale one segment so storage drift is simulated
	for i := 0; i < SegmentWidth; i++ {
		flat[i] *= 1.5
	}

	y, err := FromFlat(12, DefaultSegmentMap(), flat, time.Now())
	if err != nil {
		t.Fatalf("FromFlat: %v", err)
	}
	if y.StateID != 12 {
		t.Fatalf("expected state_id 12, got %d", y.StateID)
	}
	n := float64(Norm(y.Vector[0:SegmentWidth]))
	if math.Abs(n-1.0) > 1e-5 {
		t.Fatalf("renormalized segment norm %f, want 1.0", n)
	}
}

func TestFromFlatRejectsDegenerateSegment(t *testing.T) {
	x := RandomGenesis(DefaultSegmentMap(), rand.New(rand.NewSource(4)))
	flat := x.Flat()
	for i := 0; i < SegmentWidth; i++ {
		flat[i] = 0
	}

	_, err := FromFlat(1, DefaultSegmentMap(), flat, time.Now())
	if !errors.Is(err, ErrDegenerateVector) {
		t.Fatalf("expected ErrDegenerateVector, got %v", err)
	}
}

func TestCosine(t *testing.T) {
	a := []float32{1, 0, 0}
	b := []float32{0, 1, 0}
	if c := Cosine(a, a); math.Abs(float64(c)-1.0) > 1e-6 {
		t.Fatalf("cosine(a,a) = %f, want 1", c)
	}
	if c := Cosine(a, b); math.Abs(float64(c)) > 1e-6 {
		t.Fatalf("cosine(a,b) = %f, want 0", c)
	}
	if c := Cosine(a, []float32{0, 0, 0}); c != 0 {
		t.Fatalf("cosine with zero vector = %f, want 0", c)
	}
}
