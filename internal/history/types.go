package history

import (
	"time"

	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region records

// TickRecord is one persisted identity tick: the full tensor plus the cycle
// that produced it.
type TickRecord struct {
	StateID       int64
	CycleID       string
	ParentStateID int64
	Vector        [tensor.FlatSize]float32
	Segments      tensor.SegmentMap
	CreatedAt     time.Time
	MetricsJSON   string
}

// CycleEntry is one row of the audit log: what triggered a cycle and what
// came of it, whether it committed or not.
type CycleEntry struct {
	ID          int64
	CycleID     string
	StateID     int64 // 0 for aborted cycles that never produced a tick
	TriggerType string
	Dissonance  float64
	IsChoc      bool
	DriftLevel  string
	Action      string // committed | aborted
	Reason      string
	Verbalized  bool
	CreatedAt   time.Time
}

// PendingImpact is an unresolved shock awaiting rumination.
type PendingImpact struct {
	ID         string
	StateID    int64
	Content    string
	Dissonance float64
	CreatedAt  time.Time
}

// Tensor converts the record back into a working state tensor.
func (r TickRecord) Tensor() tensor.StateTensor {
	return tensor.StateTensor{
		StateID:   r.StateID,
		Segments:  r.Segments,
		Vector:    r.Vector,
		CreatedAt: r.CreatedAt,
	}
}

// #endregion records
