package fixation

import (
	"github.com/semiosislab/semiosis/go-engine/internal/dissonance"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region contributors

// ContributorFunc is a pure delta contributor: one of Peirce's four methods
// of belief fixation expressed as a function of the current state and the
// cycle's dissonance. Returns per-segment deltas (absent segments contribute
// nothing).
type ContributorFunc func(x tensor.StateTensor, res dissonance.Result, cfg Config) map[string][]float32

// Contributor tags a fixation method with its name.
type Contributor struct {
	Name string
	Fn   ContributorFunc
}

// Contributors returns the fixed four-method list. The methods compose by
// summation; they are never mutually exclusive.
func Contributors() []Contributor {
	return []Contributor{
		{Name: "tenacity", Fn: tenacity},
		{Name: "authority", Fn: authority},
		{Name: "apriori", Fn: apriori},
		{Name: "science", Fn: science},
	}
}

// tenacity resists change: it reinforces each dimension's current direction
// in proportion to the dissonance against it. After renormalization this
// dilutes the other contributions rather than moving the dimension.
func tenacity(x tensor.StateTensor, res dissonance.Result, cfg Config) map[string][]float32 {
	if cfg.TenacityWeight == 0 {
		return nil
	}
	out := make(map[string][]float32, tensor.SegmentCount)
	for _, name := range tensor.SegmentNames {
		d := res.PerSegment[name]
		if d == 0 {
			continue
		}
		r, _ := x.Segments.Range(name)
		delta := make([]float32, tensor.SegmentWidth)
		for i := range delta {
			delta[i] = cfg.TenacityWeight * d * x.Vector[r[0]+i]
		}
		out[name] = delta
	}
	return out
}

// authority anchors toward the Pacte: each dimension is pulled toward its
// nearest charter vector, scaled by how far from it the dimension currently is.
func authority(x tensor.StateTensor, res dissonance.Result, cfg Config) map[string][]float32 {
	if cfg.AuthorityWeight == 0 || len(cfg.Pacte) == 0 {
		return nil
	}
	out := make(map[string][]float32, tensor.SegmentCount)
	for _, name := range tensor.SegmentNames {
		r, _ := x.Segments.Range(name)
		cur := x.Vector[r[0]:r[1]]

		var nearest []float32
		best := float32(-2)
		for _, p := range cfg.Pacte {
			if len(p) != tensor.SegmentWidth {
				continue
			}
			if c := tensor.Cosine(cur, p); c > best {
				best = c
				nearest = p
			}
		}
		if nearest == nil {
			continue
		}
		dist := 1 - best
		if dist == 0 {
			continue
		}
		delta := make([]float32, tensor.SegmentWidth)
		for i := range delta {
			delta[i] = cfg.AuthorityWeight * dist * (nearest[i] - cur[i])
		}
		out[name] = delta
	}
	return out
}

// apriori enforces internal coherence: each configured pair of linked
// dimensions is pulled toward the other, reducing their divergence.
func apriori(x tensor.StateTensor, res dissonance.Result, cfg Config) map[string][]float32 {
	if cfg.AprioriWeight == 0 || len(cfg.CoherencePairs) == 0 {
		return nil
	}
	out := make(map[string][]float32)
	add := func(name string, other []float32, self []float32) {
		delta := out[name]
		if delta == nil {
			delta = make([]float32, tensor.SegmentWidth)
			out[name] = delta
		}
		for i := range delta {
			delta[i] += cfg.AprioriWeight * (other[i] - self[i])
		}
	}
	for _, pair := range cfg.CoherencePairs {
		ra, aok := x.Segments.Range(pair[0])
		rb, bok := x.Segments.Range(pair[1])
		if !aok || !bok {
			continue
		}
		a := x.Vector[ra[0]:ra[1]]
		b := x.Vector[rb[0]:rb[1]]
		add(pair[0], b, a)
		add(pair[1], a, b)
	}
	return out
}

// science is the empirical correction: each dimension is pulled toward the
// input in proportion to its dissonance. A shock swaps in the higher weight,
// letting empirical correction dominate habit.
func science(x tensor.StateTensor, res dissonance.Result, cfg Config) map[string][]float32 {
	w := cfg.ScienceWeight
	if res.IsChoc {
		w = cfg.ChocScienceWeight
	}
	if w == 0 || len(res.Input) != tensor.SegmentWidth {
		return nil
	}
	out := make(map[string][]float32, tensor.SegmentCount)
	for _, name := range tensor.SegmentNames {
		d := res.PerSegment[name]
		if d == 0 {
			continue
		}
		r, _ := x.Segments.Range(name)
		delta := make([]float32, tensor.SegmentWidth)
		for i := range delta {
			delta[i] = w * d * (res.Input[i] - x.Vector[r[0]+i])
		}
		out[name] = delta
	}
	return out
}

// #endregion contributors

// #region compute-delta

// ComputeDelta sums the four contributors and clamps the result to
// MaxDeltaNorm per segment. Pure: identical inputs yield identical deltas.
func ComputeDelta(x tensor.StateTensor, res dissonance.Result, cfg Config) Delta {
	d := Delta{
		PerSegment: make(map[string][]float32),
		ByMethod:   make(map[string]float32),
	}

	for _, c := range Contributors() {
		contrib := c.Fn(x, res, cfg)
		var methodNorm float64
		for name, vec := range contrib {
			acc := d.PerSegment[name]
			if acc == nil {
				acc = make([]float32, tensor.SegmentWidth)
				d.PerSegment[name] = acc
			}
			for i := range vec {
				acc[i] += vec[i]
			}
			methodNorm += float64(tensor.Norm(vec))
		}
		d.ByMethod[c.Name] = float32(methodNorm)
	}

	// Clamp per segment and record targets in stable order.
	for _, name := range tensor.SegmentNames {
		vec, ok := d.PerSegment[name]
		if !ok {
			continue
		}
		n := tensor.Norm(vec)
		if n == 0 {
			delete(d.PerSegment, name)
			continue
		}
		if cfg.MaxDeltaNorm > 0 && n > cfg.MaxDeltaNorm {
			scale := cfg.MaxDeltaNorm / n
			for i := range vec {
				vec[i] *= scale
			}
		}
		d.Targets = append(d.Targets, name)
	}
	return d
}

// #endregion compute-delta

// #region apply

// Apply adds the delta to its target dimensions and renormalizes every
// dimension of the resulting tensor. A dimension whose pre-normalization norm
// collapses below the floor is clamped back to its prior (unit) direction and
// flagged; this is a recoverable condition, not an error.
func Apply(x tensor.StateTensor, d Delta, cfg Config) ApplyResult {
	vec := x.Vector // value copy

	for name, delta := range d.PerSegment {
		r, ok := x.Segments.Range(name)
		if !ok {
			continue
		}
		for i := range delta {
			vec[r[0]+i] += delta[i]
		}
	}

	result := ApplyResult{}
	floor := cfg.MinNormFloor
	if floor == 0 {
		floor = tensor.MinSegmentNorm
	}

	for _, name := range tensor.SegmentNames {
		r, _ := x.Segments.Range(name)
		seg := vec[r[0]:r[1]]
		n := tensor.Norm(seg)
		if n < floor {
			// Clamp: revert to the prior direction rather than divide by ~0.
			copy(seg, x.Vector[r[0]:r[1]])
			result.Degenerate = true
			result.DegenerateSegments = append(result.DegenerateSegments, name)
			continue
		}
		for i := range seg {
			seg[i] /= n
		}
	}

	result.Next = x.Next(vec)
	return result
}

// #endregion apply
