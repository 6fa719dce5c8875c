package fixation

import "github.com/semiosislab/semiosis/go-engine/internal/tensor"

// #region config
// Config holds the contributor weights and the delta bounds.
// Weights are small so the identity evolves smoothly; the summed delta is
// clamped to MaxDeltaNorm per segment regardless of weights.
type Config struct {
	TenacityWeight    float32 // pull toward the current state, scaled by dissonance
	AuthorityWeight   float32 // pull toward the nearest Pacte vector
	AprioriWeight     float32 // cross-dimension coherence pull
	ScienceWeight     float32 // empirical pull toward the input
	ChocScienceWeight float32 // replaces ScienceWeight when is_choc

	MaxDeltaNorm float32 // L2 clamp on the summed delta, per segment
	MinNormFloor float32 // pre-normalization norm below this flags a degenerate delta

	// CoherencePairs are the semantically linked dimensions the a-priori
	// method pulls together. Overridable policy; the source material does not
	// fix the pairing.
	CoherencePairs [][2]string

	// Pacte is the charter: a small set of 1024-wide reference vectors
	// supplied at configuration time. Empty disables the authority method.
	Pacte [][]float32
}

// DefaultConfig returns the default fixation policy.
func DefaultConfig() Config {
	return Config{
		TenacityWeight:    0.015,
		AuthorityWeight:   0.0125,
		AprioriWeight:     0.0075,
		ScienceWeight:     0.015,
		ChocScienceWeight: 0.06,
		MaxDeltaNorm:      0.05,
		MinNormFloor:      tensor.MinSegmentNorm,
		CoherencePairs: [][2]string{
			{"valeurs", "orientations"},
			{"thirdness", "engagements"},
		},
	}
}

// #endregion config

// #region delta
// Delta is the proposed per-dimension change for the next tick.
// Ephemeral: computed, applied, then discarded.
type Delta struct {
	PerSegment map[string][]float32
	Targets    []string
	// ByMethod records the L2 norm each contributor added, for metrics.
	ByMethod map[string]float32
}

// #endregion delta

// #region apply-result
// ApplyResult bundles the successor tick with degeneracy flags.
type ApplyResult struct {
	Next       tensor.StateTensor
	Degenerate bool
	// DegenerateSegments lists dimensions whose pre-normalization norm fell
	// below the floor and were clamped back to the prior direction.
	DegenerateSegments []string
}

// #endregion apply-result
