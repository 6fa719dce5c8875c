package axes

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region embedder-interface

// Embedder abstracts the embedding collaborator so direction derivation can be
// tested without a live service.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// #endregion embedder-interface

// #region directions

// Directions holds one unit vector per catalog axis in the shared
// 1024-dimension embedding space.
type Directions struct {
	vecs map[string][]float32
}

// Vector returns the unit vector for the named axis, or nil if unknown.
func (d *Directions) Vector(name string) []float32 {
	return d.vecs[name]
}

// Len returns the number of axes with a derived vector.
func (d *Directions) Len() int {
	return len(d.vecs)
}

// #endregion directions

// #region deterministic

// Deterministic derives axis vectors from seeded gaussian draws, one PRNG per
// axis keyed by seed and axis name. Reproducible across processes; used for
// replay, tests, and when no embedder is configured.
func Deterministic(seed int64) *Directions {
	d := &Directions{vecs: make(map[string][]float32, len(Catalog))}
	for _, a := range Catalog {
		h := fnv.New64a()
		h.Write([]byte(a.Name))
		rng := rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
		v := make([]float32, tensor.SegmentWidth)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		tensor.Normalize(v)
		d.vecs[a.Name] = v
	}
	return d
}

// #endregion deterministic

// #region from-embeddings

// FromEmbeddings derives each axis vector from its pole labels:
// normalize(embed(positive) - embed(negative)). Degenerate differences
// (identical pole embeddings) are an error.
func FromEmbeddings(ctx context.Context, e Embedder) (*Directions, error) {
	d := &Directions{vecs: make(map[string][]float32, len(Catalog))}
	for _, a := range Catalog {
		pos, err := e.Embed(ctx, a.PolePos)
		if err != nil {
			return nil, fmt.Errorf("embed axis %s positive pole: %w", a.Name, err)
		}
		neg, err := e.Embed(ctx, a.PoleNeg)
		if err != nil {
			return nil, fmt.Errorf("embed axis %s negative pole: %w", a.Name, err)
		}
		if len(pos) != tensor.SegmentWidth || len(neg) != tensor.SegmentWidth {
			return nil, fmt.Errorf("axis %s: %w", a.Name, tensor.ErrWrongDimension)
		}
		v := make([]float32, tensor.SegmentWidth)
		for i := range v {
			v[i] = pos[i] - neg[i]
		}
		if !tensor.Normalize(v) {
			return nil, fmt.Errorf("axis %s: %w", a.Name, tensor.ErrDegenerateVector)
		}
		d.vecs[a.Name] = v
	}
	return d, nil
}

// #endregion from-embeddings
