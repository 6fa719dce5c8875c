package vigilance

// #region severity
// Severity grades a drift alert.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// #endregion severity

// #region config
// Config holds the drift thresholds. All externally configurable; defaults
// follow the declared safety policy: cumulative warning at 1%, critical at 2%,
// per-cycle warning at 0.2%, any single dimension at 5%.
type Config struct {
	CumulativeWarn     float32
	CumulativeCritical float32
	PerCycleWarn       float32
	SegmentWarn        float32

	// ObservedWeight blends the observed-input EMA component into the
	// declared reference (0 disables the derived component).
	ObservedWeight float32
	// ObservedAlpha is the EMA step for the observed-input component.
	ObservedAlpha float32

	// TopSegments is how many contributing dimensions an alert names.
	TopSegments int
}

// DefaultConfig returns the default vigilance thresholds.
func DefaultConfig() Config {
	return Config{
		CumulativeWarn:     0.01,
		CumulativeCritical: 0.02,
		PerCycleWarn:       0.002,
		SegmentWarn:        0.05,
		ObservedWeight:     0.2,
		ObservedAlpha:      0.05,
		TopSegments:        3,
	}
}

// #endregion config

// #region drift-alert
// DriftAlert is the ephemeral output of a drift check. A structured signal,
// never an error: vigilance reports and is forbidden from correcting.
type DriftAlert struct {
	Level      Severity
	Cumulative float32
	PerCycle   float32
	// PerSegment is each dimension's cosine distance from its x_ref projection.
	PerSegment map[string]float32
	// TopSegments names the largest contributors, worst first.
	TopSegments []string
}

// #endregion drift-alert
