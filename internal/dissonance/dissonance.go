package dissonance

import (
	"errors"
	"fmt"

	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region errors
var (
	// ErrZeroInput marks a degenerate (near-zero) input vector.
	ErrZeroInput = errors.New("invalid input: zero vector")
	// ErrWrongDimension marks an input whose length is not the segment width.
	ErrWrongDimension = errors.New("invalid input: wrong dimension")
)

// #endregion errors

// #region config
// Config holds the aggregation weights and the shock threshold.
type Config struct {
	// Weights are per-segment aggregation weights, renormalized to sum 1.
	// Nil or empty means equal weights for all eight dimensions.
	Weights map[string]float32
	// ShockThreshold is the total dissonance above which IsChoc is raised.
	ShockThreshold float32
}

// DefaultConfig returns equal weights and the default shock threshold.
// An input orthogonal to every dimension scores a total of 1.0.
func DefaultConfig() Config {
	return Config{
		ShockThreshold: 0.85,
	}
}

// normalizedWeights returns the effective per-segment weights, summing to 1.
func (c Config) normalizedWeights() map[string]float32 {
	w := make(map[string]float32, tensor.SegmentCount)
	var sum float32
	for _, name := range tensor.SegmentNames {
		v := float32(1)
		if len(c.Weights) > 0 {
			v = c.Weights[name]
		}
		if v < 0 {
			v = 0
		}
		w[name] = v
		sum += v
	}
	if sum == 0 {
		for _, name := range tensor.SegmentNames {
			w[name] = 1.0 / float32(tensor.SegmentCount)
		}
		return w
	}
	for name := range w {
		w[name] /= sum
	}
	return w
}

// #endregion config

// #region result
// Result is the per-cycle dissonance between an input vector and the state.
// Ephemeral: consumed by fixation and metrics, never persisted as-is.
type Result struct {
	PerSegment map[string]float32
	Total      float32
	IsChoc     bool
	// Input keeps the (pre-normalized) vector that produced this result so
	// fixation contributors can pull toward or away from it.
	Input []float32
}

// #endregion result

// #region compute
// Compute scores each dimension as 1 - cosine(input, dimension) and aggregates
// with the configured weights. Pure and deterministic for fixed inputs.
// The input must be pre-normalized by the caller; a zero vector is an error.
func Compute(input []float32, x tensor.StateTensor, cfg Config) (Result, error) {
	if len(input) != tensor.SegmentWidth {
		return Result{}, fmt.Errorf("%w: got %d, want %d", ErrWrongDimension, len(input), tensor.SegmentWidth)
	}
	if tensor.Norm(input) < tensor.MinSegmentNorm {
		return Result{}, ErrZeroInput
	}

	weights := cfg.normalizedWeights()
	res := Result{
		PerSegment: make(map[string]float32, tensor.SegmentCount),
		Input:      append([]float32(nil), input...),
	}

	for _, name := range tensor.SegmentNames {
		r, _ := x.Segments.Range(name)
		d := 1 - tensor.Cosine(input, x.Vector[r[0]:r[1]])
		res.PerSegment[name] = d
		res.Total += weights[name] * d
	}

	res.IsChoc = res.Total > cfg.ShockThreshold
	return res, nil
}

// #endregion compute
