package seed

import (
	"math"
	"math/rand"
	"testing"

	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

func basis(i int) []float32 {
	v := make([]float32, tensor.SegmentWidth)
	v[i] = 1
	return v
}

func TestAggregateWeightedMean(t *testing.T) {
	materials := []Material{
		{Segment: "thirdness", Vector: basis(0), Weight: 3},
		{Segment: "thirdness", Vector: basis(1), Weight: 1},
	}
	x, err := Aggregate(materials, tensor.DefaultSegmentMap(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	third := x.Segment("thirdness")
	// 3:1 blend of two orthogonal units, normalized: components 3/sqrt(10), 1/sqrt(10).
	want0 := float32(3.0 / math.Sqrt(10))
	want1 := float32(1.0 / math.Sqrt(10))
	if math.Abs(float64(third[0]-want0)) > 1e-5 || math.Abs(float64(third[1]-want1)) > 1e-5 {
		t.Fatalf("blend components %f, %f; want %f, %f", third[0], third[1], want0, want1)
	}
}

func TestAggregateAllSegmentsUnitNorm(t *testing.T) {
	materials := []Material{
		{Segment: "valeurs", Vector: basis(5), Weight: 1},
	}
	x, err := Aggregate(materials, tensor.DefaultSegmentMap(), rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	for name, n := range x.SegmentNorms() {
		if math.Abs(n-1.0) > 1e-4 {
			t.Fatalf("segment %s norm %f", name, n)
		}
	}
}

func TestAggregateFallbackIsDeterministic(t *testing.T) {
	a, err := Aggregate(nil, tensor.DefaultSegmentMap(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	b, err := Aggregate(nil, tensor.DefaultSegmentMap(), rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if a.Vector != b.Vector {
		t.Fatal("same seed must yield the same fallback genesis")
	}
}

func TestAggregateSkipsBadMaterial(t *testing.T) {
	materials := []Material{
		{Segment: "thirdness", Vector: basis(0), Weight: 1},
		{Segment: "thirdness", Vector: []float32{1, 2, 3}, Weight: 1}, // wrong width
		{Segment: "thirdness", Vector: basis(1), Weight: 0},           // zero weight
		{Segment: "thirdness", Vector: basis(2), Weight: -1},          // negative weight
	}
	x, err := Aggregate(materials, tensor.DefaultSegmentMap(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	third := x.Segment("thirdness")
	if math.Abs(float64(third[0]-1)) > 1e-5 {
		t.Fatalf("bad material leaked into the blend: %f", third[0])
	}
}

func TestAggregateOpposedMaterialFallsBack(t *testing.T) {
	pos := basis(0)
	neg := make([]float32, tensor.SegmentWidth)
	neg[0] = -1
	materials := []Material{
		{Segment: "firstness", Vector: pos, Weight: 1},
		{Segment: "firstness", Vector: neg, Weight: 1},
	}
	// The sum cancels to zero; the dimension must come from the fallback, not fail.
	x, err := Aggregate(materials, tensor.DefaultSegmentMap(), rand.New(rand.NewSource(4)))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if n := x.SegmentNorms()["firstness"]; math.Abs(n-1.0) > 1e-4 {
		t.Fatalf("firstness norm %f", n)
	}
}
