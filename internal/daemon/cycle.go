package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/semiosislab/semiosis/go-engine/internal/dissonance"
	"github.com/semiosislab/semiosis/go-engine/internal/embed"
	"github.com/semiosislab/semiosis/go-engine/internal/fixation"
	"github.com/semiosislab/semiosis/go-engine/internal/history"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
	"github.com/semiosislab/semiosis/go-engine/internal/translate"
	"github.com/semiosislab/semiosis/go-engine/internal/vigilance"
)

// #region cycle-metrics
// cycleMetrics is the per-tick summary persisted alongside the vector.
type cycleMetrics struct {
	Trigger    string             `json:"trigger"`
	Dissonance float32            `json:"dissonance"`
	IsChoc     bool               `json:"is_choc"`
	DriftLevel string             `json:"drift_level"`
	ByMethod   map[string]float32 `json:"by_method,omitempty"`
	Degenerate []string           `json:"degenerate,omitempty"`
}

// #endregion cycle-metrics

// #region run-cycle
// RunCycle executes one full cycle: embed, dissonance, fixation, vigilance,
// translation per policy, then a single atomic commit. Any error before the
// commit aborts the cycle with no externally visible state change.
func (d *Daemon) RunCycle(ctx context.Context, trig Trigger) error {
	started := time.Now()
	cycleID := uuid.New().String()
	x := d.Current()

	fail := func(stage string, err error) error {
		d.rec.CycleAborted()
		if logErr := d.store.LogAbort(cycleID, string(trig.Type), fmt.Sprintf("%s: %v", stage, err)); logErr != nil {
			log.Printf("[CYCLE] log abort: %v", logErr)
		}
		return fmt.Errorf("%s: %w", stage, err)
	}

	// Perception: the trigger content becomes a vector, or the cycle dies here.
	embedCtx, cancel := context.WithTimeout(ctx, d.cfg.EmbedTimeout)
	input, err := d.embedder.Embed(embedCtx, trig.Content)
	cancel()
	if err != nil {
		return fail("embed", err)
	}
	if err := embed.Validate(input); err != nil {
		return fail("embed", err)
	}

	res, err := dissonance.Compute(input, x, d.cfg.Dissonance)
	if err != nil {
		return fail("dissonance", err)
	}
	if res.IsChoc {
		d.rec.Choc()
		log.Printf("[CYCLE] choc at tick %d, dissonance %.3f (%s)", x.StateID, res.Total, trig.Type)
	}

	delta := fixation.ComputeDelta(x, res, d.cfg.Fixation)
	applied := fixation.Apply(x, delta, d.cfg.Fixation)
	if applied.Degenerate {
		d.rec.DegenerateDelta(len(applied.DegenerateSegments))
		log.Printf("[CYCLE] degenerate delta clamped on %v", applied.DegenerateSegments)
	}
	next := applied.Next

	// In conversation the verbalization is the response: a dead translator
	// aborts the whole cycle before anything is committed.
	var verbal translate.Result
	verbalized := false
	if trig.Type == TriggerUser {
		verbal, err = d.verbalize(ctx, next)
		if err != nil {
			return fail("translate", err)
		}
		verbalized = true
	}

	d.vigil.ObserveInput(res.Input)
	alert := d.vigil.Check(next, x)
	d.rec.Drift(string(alert.Level))
	if alert.Level != vigilance.SeverityNone {
		log.Printf("[CYCLE] drift %s: cumulative %.4f, top %v", alert.Level, alert.Cumulative, alert.TopSegments)
	}

	// Autonomous expression is best-effort and reserved for critical drift;
	// a translator failure here never blocks the tick.
	if !verbalized && alert.Level == vigilance.SeverityCritical {
		if v, verr := d.verbalize(ctx, next); verr == nil {
			verbal = v
			verbalized = true
		} else {
			log.Printf("[CYCLE] autonomous verbalization failed: %v", verr)
		}
	}
	if verbalized {
		d.rec.Verbalized(verbal.ReasoningDetected)
		if verbal.ReasoningDetected {
			log.Printf("[CYCLE] reasoning detected in translation, text withheld")
		}
	}

	mjson, _ := json.Marshal(cycleMetrics{
		Trigger:    string(trig.Type),
		Dissonance: res.Total,
		IsChoc:     res.IsChoc,
		DriftLevel: string(alert.Level),
		ByMethod:   delta.ByMethod,
		Degenerate: applied.DegenerateSegments,
	})

	rec := history.TickRecord{
		StateID:       next.StateID,
		CycleID:       cycleID,
		ParentStateID: x.StateID,
		Vector:        next.Vector,
		Segments:      next.Segments,
		CreatedAt:     time.Now().UTC(),
		MetricsJSON:   string(mjson),
	}
	entry := history.CycleEntry{
		CycleID:     cycleID,
		TriggerType: string(trig.Type),
		Dissonance:  float64(res.Total),
		IsChoc:      res.IsChoc,
		DriftLevel:  string(alert.Level),
		Verbalized:  verbalized && !verbal.Withheld,
	}

	var impact *history.PendingImpact
	if res.IsChoc {
		impact = &history.PendingImpact{
			ID:         uuid.New().String(),
			Content:    trig.Content,
			Dissonance: float64(res.Total),
		}
	}

	if err := d.store.CommitTick(rec, entry, impact); err != nil {
		return fail("commit", err)
	}

	if trig.Type == TriggerRumination && trig.Impact != nil {
		if err := d.store.ResolveImpact(trig.Impact.ID, next.StateID); err != nil {
			log.Printf("[CYCLE] resolve impact %s: %v", trig.Impact.ID, err)
		} else {
			d.rec.ChocResolved()
		}
	}

	d.mu.Lock()
	d.current = next
	d.mu.Unlock()
	d.rec.CycleDone(string(trig.Type), time.Since(started))

	if verbalized && !verbal.Withheld && verbal.Text != "" {
		d.emit(Expression{StateID: next.StateID, Trigger: trig.Type, Text: verbal.Text})
	}
	return nil
}

func (d *Daemon) verbalize(ctx context.Context, x tensor.StateTensor) (translate.Result, error) {
	tctx, cancel := context.WithTimeout(ctx, d.cfg.TranslateTimeout)
	defer cancel()
	return translate.Run(tctx, d.translator, x, d.dirs, nil)
}

// emit delivers an expression without ever blocking the cycle loop.
func (d *Daemon) emit(e Expression) {
	if d.Expressions == nil {
		return
	}
	select {
	case d.Expressions <- e:
	default:
	}
}

// #endregion run-cycle
