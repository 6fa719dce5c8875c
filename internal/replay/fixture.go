package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/semiosislab/semiosis/go-engine/internal/profile"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description     string                  `json:"description"`
	Start           FixtureStart            `json:"start"`
	Config          FixtureConfig           `json:"config"`
	Profile         *profile.Profile        `json:"profile"`
	Interactions    []FixtureInteraction    `json:"interactions"`
	ExpectedResults []FixtureExpectedResult `json:"expected_results"`
}

// FixtureStart mirrors StartSpec with JSON tags.
type FixtureStart struct {
	Seed          int64  `json:"seed"`
	DirectionSeed int64  `json:"direction_seed"`
	PinSegment    string `json:"pin_segment,omitempty"`
	PinAxis       string `json:"pin_axis,omitempty"`
}

// FixtureInteraction mirrors Interaction with JSON tags.
type FixtureInteraction struct {
	ID          string  `json:"id"`
	TriggerType string  `json:"trigger_type"`
	Content     string  `json:"content"`
	Seed        int64   `json:"seed"`
	Alignment   float32 `json:"alignment"`
}

// FixtureExpectedResult captures the expected outcome per cycle.
type FixtureExpectedResult struct {
	ID         string `json:"id"`
	IsChoc     bool   `json:"is_choc"`
	DriftLevel string `json:"drift_level"`
}

// FixtureConfig bundles the pipeline knobs that matter for regression runs.
// Omitted fields fall back to the defaults.
type FixtureConfig struct {
	ShockThreshold    float32 `json:"shock_threshold"`
	MaxDeltaNorm      float32 `json:"max_delta_norm"`
	ChocScienceWeight float32 `json:"choc_science_weight"`
	CumulativeWarn    float32 `json:"cumulative_warn"`
	CumulativeCrit    float32 `json:"cumulative_critical"`
	ObservedWeight    float32 `json:"observed_weight"`
}

// ToConfig expands the fixture knobs over the defaults.
func (fc FixtureConfig) ToConfig() Config {
	cfg := DefaultReplayConfig()
	if fc.ShockThreshold > 0 {
		cfg.Dissonance.ShockThreshold = fc.ShockThreshold
	}
	if fc.MaxDeltaNorm > 0 {
		cfg.Fixation.MaxDeltaNorm = fc.MaxDeltaNorm
	}
	if fc.ChocScienceWeight > 0 {
		cfg.Fixation.ChocScienceWeight = fc.ChocScienceWeight
	}
	if fc.CumulativeWarn > 0 {
		cfg.Vigilance.CumulativeWarn = fc.CumulativeWarn
	}
	if fc.CumulativeCrit > 0 {
		cfg.Vigilance.CumulativeCritical = fc.CumulativeCrit
	}
	cfg.Vigilance.ObservedWeight = fc.ObservedWeight
	return cfg
}

// ToStartSpec converts the fixture start block.
func (s FixtureStart) ToStartSpec() StartSpec {
	return StartSpec{
		Seed:          s.Seed,
		DirectionSeed: s.DirectionSeed,
		PinSegment:    s.PinSegment,
		PinAxis:       s.PinAxis,
	}
}

// ToInteraction converts a fixture interaction.
func (fi FixtureInteraction) ToInteraction() Interaction {
	return Interaction{
		ID:          fi.ID,
		TriggerType: fi.TriggerType,
		Content:     fi.Content,
		Seed:        fi.Seed,
		Alignment:   fi.Alignment,
	}
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Interactions) == 0 {
		return nil, fmt.Errorf("fixture %s: no interactions", path)
	}
	return &f, nil
}

// #endregion fixture-loader
