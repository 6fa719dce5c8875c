package replay

import (
	"fmt"
	"math/rand"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/dissonance"
	"github.com/semiosislab/semiosis/go-engine/internal/fixation"
	"github.com/semiosislab/semiosis/go-engine/internal/profile"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
	"github.com/semiosislab/semiosis/go-engine/internal/vigilance"
)

// #region types

// Interaction is one recorded cycle input. The input vector is rebuilt
// deterministically from the seed and alignment, so fixtures stay small.
type Interaction struct {
	ID          string
	TriggerType string
	Content     string
	// Seed drives the noise component of the input vector.
	Seed int64
	// Alignment blends the input between the current identity (1.0) and pure
	// noise (0.0). Low alignment means high dissonance.
	Alignment float32
}

// StartSpec rebuilds the starting tick: a seeded random genesis with one
// dimension optionally pinned to a named axis direction, so the vigilance
// reference starts satisfied.
type StartSpec struct {
	Seed          int64
	DirectionSeed int64
	PinSegment    string
	PinAxis       string
}

// Config bundles the pipeline configs for a replay run.
type Config struct {
	Dissonance dissonance.Config
	Fixation   fixation.Config
	Vigilance  vigilance.Config
}

// DefaultReplayConfig returns defaults for all pipeline stages.
func DefaultReplayConfig() Config {
	return Config{
		Dissonance: dissonance.DefaultConfig(),
		Fixation:   fixation.DefaultConfig(),
		Vigilance:  vigilance.DefaultConfig(),
	}
}

// Result captures the outcome of replaying one interaction.
type Result struct {
	ID          string
	StateID     int64
	Dissonance  float32
	IsChoc      bool
	DriftLevel  string
	Degenerate  bool
	TriggerType string
}

// Summary aggregates a replay run.
type Summary struct {
	TotalCycles int
	Chocs       int
	Warnings    int
	Criticals   int
	FinalState  tensor.StateTensor
}

// #endregion types

// #region start

// BuildStart reconstructs the starting tick from its spec.
func BuildStart(spec StartSpec, dirs *axes.Directions) (tensor.StateTensor, error) {
	rng := rand.New(rand.NewSource(spec.Seed))
	dims := make(map[string][]float32, tensor.SegmentCount)
	for _, name := range tensor.SegmentNames {
		v := make([]float32, tensor.SegmentWidth)
		for i := range v {
			v[i] = float32(rng.NormFloat64())
		}
		dims[name] = v
	}
	if spec.PinSegment != "" && spec.PinAxis != "" {
		dir := dirs.Vector(spec.PinAxis)
		if dir == nil {
			return tensor.StateTensor{}, fmt.Errorf("pin axis %q not in catalog", spec.PinAxis)
		}
		dims[spec.PinSegment] = append([]float32(nil), dir...)
	}
	return tensor.Genesis(tensor.DefaultSegmentMap(), dims)
}

// InputVector rebuilds an interaction's input: a normalized blend of the
// current identity and seeded noise.
func InputVector(x tensor.StateTensor, seed int64, alignment float32) []float32 {
	mild := make([]float32, tensor.SegmentWidth)
	for _, name := range tensor.SegmentNames {
		for i, f := range x.Segment(name) {
			mild[i] += f
		}
	}
	tensor.Normalize(mild)

	rng := rand.New(rand.NewSource(seed))
	noise := make([]float32, tensor.SegmentWidth)
	for i := range noise {
		noise[i] = float32(rng.NormFloat64())
	}
	tensor.Normalize(noise)

	v := make([]float32, tensor.SegmentWidth)
	for i := range v {
		v[i] = alignment*mild[i] + (1-alignment)*noise[i]
	}
	tensor.Normalize(v)
	return v
}

// #endregion start

// #region replay

// Replay runs interactions through the in-memory pipeline: dissonance,
// fixation, vigilance. No store, no collaborators; strictly deterministic for
// a fixed fixture.
func Replay(start tensor.StateTensor, interactions []Interaction, cfg Config, prof *profile.Profile, dirs *axes.Directions) ([]Result, tensor.StateTensor, error) {
	vigil := vigilance.New(cfg.Vigilance, profile.NewStore(prof), dirs, nil)
	current := start
	results := make([]Result, 0, len(interactions))

	for _, inter := range interactions {
		input := InputVector(current, inter.Seed, inter.Alignment)

		res, err := dissonance.Compute(input, current, cfg.Dissonance)
		if err != nil {
			return nil, current, fmt.Errorf("cycle %s: %w", inter.ID, err)
		}

		delta := fixation.ComputeDelta(current, res, cfg.Fixation)
		applied := fixation.Apply(current, delta, cfg.Fixation)

		vigil.ObserveInput(res.Input)
		alert := vigil.Check(applied.Next, current)

		current = applied.Next
		results = append(results, Result{
			ID:          inter.ID,
			StateID:     current.StateID,
			Dissonance:  res.Total,
			IsChoc:      res.IsChoc,
			DriftLevel:  string(alert.Level),
			Degenerate:  applied.Degenerate,
			TriggerType: inter.TriggerType,
		})
	}
	return results, current, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result, final tensor.StateTensor) Summary {
	s := Summary{TotalCycles: len(results), FinalState: final}
	for _, r := range results {
		if r.IsChoc {
			s.Chocs++
		}
		switch r.DriftLevel {
		case string(vigilance.SeverityWarning):
			s.Warnings++
		case string(vigilance.SeverityCritical):
			s.Criticals++
		}
	}
	return s
}

// #endregion replay
