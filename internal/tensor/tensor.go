package tensor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// #region errors
var (
	// ErrDegenerateVector marks a dimension vector with near-zero norm.
	ErrDegenerateVector = errors.New("degenerate vector: near-zero norm")
	// ErrWrongDimension marks a vector whose length does not match the segment width.
	ErrWrongDimension = errors.New("wrong vector dimension")
)

// #endregion errors

// #region constructors
// Genesis builds StateTensor(0) from eight explicit dimension vectors keyed by
// segment name. Each vector must be SegmentWidth long with non-degenerate norm;
// vectors are L2-normalized on the way in.
func Genesis(segMap SegmentMap, dims map[string][]float32) (StateTensor, error) {
	t := StateTensor{
		StateID:   0,
		Segments:  segMap,
		CreatedAt: time.Now().UTC(),
	}
	for _, name := range SegmentNames {
		vec, ok := dims[name]
		if !ok {
			return StateTensor{}, fmt.Errorf("genesis: missing segment %q", name)
		}
		if len(vec) != SegmentWidth {
			return StateTensor{}, fmt.Errorf("genesis segment %q: %w: got %d, want %d",
				name, ErrWrongDimension, len(vec), SegmentWidth)
		}
		n := Norm(vec)
		if n < MinSegmentNorm {
			return StateTensor{}, fmt.Errorf("genesis segment %q: %w", name, ErrDegenerateVector)
		}
		r, _ := segMap.Range(name)
		for i := 0; i < SegmentWidth; i++ {
			t.Vector[r[0]+i] = vec[i] / n
		}
	}
	return t, nil
}

// RandomGenesis builds StateTensor(0) from eight random unit vectors drawn
// from the given source. Deterministic for a fixed seed.
func RandomGenesis(segMap SegmentMap, rng *rand.Rand) StateTensor {
	dims := make(map[string][]float32, SegmentCount)
	for _, name := range SegmentNames {
		vec := make([]float32, SegmentWidth)
		for i := range vec {
			vec[i] = float32(rng.NormFloat64())
		}
		dims[name] = vec
	}
	t, err := Genesis(segMap, dims)
	if err != nil {
		// A gaussian draw of 1024 components has negligible probability of a
		// near-zero norm; treat it as a programming error.
		panic(err)
	}
	return t
}

// FromFlat reconstructs a tensor at a given tick from a stored flat vector.
// Each segment must carry non-degenerate norm; segments are renormalized so
// float drift in storage cannot violate the unit-norm invariant.
func FromFlat(stateID int64, segMap SegmentMap, flat [FlatSize]float32, createdAt time.Time) (StateTensor, error) {
	t := StateTensor{
		StateID:   stateID,
		Segments:  segMap,
		Vector:    flat,
		CreatedAt: createdAt,
	}
	for _, name := range SegmentNames {
		r, _ := segMap.Range(name)
		n := Norm(t.Vector[r[0]:r[1]])
		if n < MinSegmentNorm {
			return StateTensor{}, fmt.Errorf("tick %d segment %q: %w", stateID, name, ErrDegenerateVector)
		}
		for i := r[0]; i < r[1]; i++ {
			t.Vector[i] /= n
		}
	}
	return t, nil
}

// #endregion constructors

// #region accessors
// Segment returns a copy of the named dimension vector.
func (t StateTensor) Segment(name string) []float32 {
	r, ok := t.Segments.Range(name)
	if !ok {
		return nil
	}
	out := make([]float32, r[1]-r[0])
	copy(out, t.Vector[r[0]:r[1]])
	return out
}

// Flat returns the concatenated 8x1024 vector for storage or similarity use.
func (t StateTensor) Flat() [FlatSize]float32 {
	return t.Vector
}

// SegmentNorms returns the L2 norm of each dimension, keyed by name.
func (t StateTensor) SegmentNorms() map[string]float64 {
	out := make(map[string]float64, SegmentCount)
	for _, name := range SegmentNames {
		r, _ := t.Segments.Range(name)
		out[name] = float64(Norm(t.Vector[r[0]:r[1]]))
	}
	return out
}

// Next derives the successor tick from a new flat vector. The caller is
// responsible for segment normalization (fixation.Apply does this).
func (t StateTensor) Next(vec [FlatSize]float32) StateTensor {
	return StateTensor{
		StateID:   t.StateID + 1,
		Segments:  t.Segments,
		Vector:    vec,
		CreatedAt: time.Now().UTC(),
	}
}

// #endregion accessors

// #region vector-math
// Norm computes the L2 norm of a vector.
func Norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

// Dot computes the dot product of two equal-length vectors.
func Dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

// Cosine computes cosine similarity. Returns 0 for zero or mismatched vectors.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// Normalize scales v to unit norm in place. Returns false when the norm is
// below MinSegmentNorm, in which case v is left untouched.
func Normalize(v []float32) bool {
	n := Norm(v)
	if n < MinSegmentNorm {
		return false
	}
	for i := range v {
		v[i] /= n
	}
	return true
}

// #endregion vector-math
