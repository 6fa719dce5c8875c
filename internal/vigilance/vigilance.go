package vigilance

import (
	"sort"
	"sync"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/profile"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region vigil

// Vigil compares committed states against the declared reference profile and
// raises drift alerts. It holds no write access to the state: x_ref is a
// guard-rail, not an attractor, and detection stays decoupled from correction
// so the operator owns remediation.
type Vigil struct {
	cfg      Config
	profiles *profile.Store
	dirs     *axes.Directions
	mapping  map[string]string

	mu sync.Mutex
	// declaredRefs caches the per-segment reference vectors for the profile
	// version they were built from.
	declaredRefs    map[string][]float32
	declaredVersion int
	// observed is the EMA of input vectors, the derived x_ref component.
	observed []float32

	cumulative  float32
	lastRefDist float32
	hasBaseline bool
	lastAlert   DriftAlert
}

// New builds a Vigil over a profile store and a derived axis basis.
// mapping is category -> segment; nil uses the default.
func New(cfg Config, profiles *profile.Store, dirs *axes.Directions, mapping map[string]string) *Vigil {
	if mapping == nil {
		mapping = axes.DefaultSegmentForCategory
	}
	v := &Vigil{
		cfg:      cfg,
		profiles: profiles,
		dirs:     dirs,
		mapping:  mapping,
	}
	v.rebuildLocked()
	return v
}

// #endregion vigil

// #region reference

// rebuildLocked recomputes the declared per-segment reference vectors from the
// current profile. Caller holds no lock on first construction; afterwards the
// mutex guards it.
func (v *Vigil) rebuildLocked() {
	p := v.profiles.Current()
	refs := make(map[string][]float32, tensor.SegmentCount)

	for _, cat := range axes.Categories {
		seg, ok := v.mapping[cat]
		if !ok {
			continue
		}
		for _, ax := range axes.ByCategory(cat) {
			val := float32(p.Value(ax.Name) / 10.0)
			if val == 0 {
				continue
			}
			dir := v.dirs.Vector(ax.Name)
			if dir == nil {
				continue
			}
			acc := refs[seg]
			if acc == nil {
				acc = make([]float32, tensor.SegmentWidth)
				refs[seg] = acc
			}
			for i := range acc {
				acc[i] += val * dir[i]
			}
		}
	}
	for seg, acc := range refs {
		if !tensor.Normalize(acc) {
			delete(refs, seg)
		}
	}
	v.declaredRefs = refs
	v.declaredVersion = p.Version
}

// referenceFor returns the blended x_ref vector for one segment: the declared
// component mixed with the observed-input EMA. Nil when neither exists.
func (v *Vigil) referenceFor(seg string) []float32 {
	declared := v.declaredRefs[seg]
	w := v.cfg.ObservedWeight
	if w <= 0 || v.observed == nil {
		return declared
	}
	if declared == nil {
		return v.observed
	}
	blend := make([]float32, tensor.SegmentWidth)
	for i := range blend {
		blend[i] = (1-w)*declared[i] + w*v.observed[i]
	}
	if !tensor.Normalize(blend) {
		return declared
	}
	return blend
}

// ObserveInput folds one cycle's input vector into the derived x_ref component.
func (v *Vigil) ObserveInput(input []float32) {
	if len(input) != tensor.SegmentWidth {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	a := v.cfg.ObservedAlpha
	if a <= 0 {
		return
	}
	if v.observed == nil {
		v.observed = append([]float32(nil), input...)
		return
	}
	for i := range v.observed {
		v.observed[i] = (1-a)*v.observed[i] + a*input[i]
	}
	tensor.Normalize(v.observed)
}

// #endregion reference

// #region check

// Check computes the drift alert for a freshly committed tick against its
// predecessor. Cumulative drift is the running sum of positive increments of
// the mean reference distance; it is never reset.
func (v *Vigil) Check(x, prev tensor.StateTensor) DriftAlert {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.profiles.Current().Version != v.declaredVersion {
		v.rebuildLocked()
	}

	alert := DriftAlert{
		Level:      SeverityNone,
		PerSegment: make(map[string]float32, tensor.SegmentCount),
	}

	// Per-dimension reference distance and mean.
	var refSum float32
	var refCount int
	for _, name := range tensor.SegmentNames {
		ref := v.referenceFor(name)
		if ref == nil {
			continue
		}
		r, _ := x.Segments.Range(name)
		d := 1 - tensor.Cosine(x.Vector[r[0]:r[1]], ref)
		alert.PerSegment[name] = d
		refSum += d
		refCount++
	}

	// Per-cycle drift: how far the state moved this tick.
	var cycleSum float32
	for _, name := range tensor.SegmentNames {
		r, _ := x.Segments.Range(name)
		cycleSum += 1 - tensor.Cosine(x.Vector[r[0]:r[1]], prev.Vector[r[0]:r[1]])
	}
	alert.PerCycle = cycleSum / float32(tensor.SegmentCount)

	if refCount > 0 {
		refDist := refSum / float32(refCount)
		if v.hasBaseline {
			if inc := refDist - v.lastRefDist; inc > 0 {
				v.cumulative += inc
			}
		} else {
			v.hasBaseline = true
		}
		v.lastRefDist = refDist
	}
	alert.Cumulative = v.cumulative

	// Severity escalation. Critical only from the cumulative budget; warnings
	// also from per-cycle movement or any single runaway dimension.
	switch {
	case alert.Cumulative >= v.cfg.CumulativeCritical:
		alert.Level = SeverityCritical
	case alert.Cumulative >= v.cfg.CumulativeWarn:
		alert.Level = SeverityWarning
	case alert.PerCycle >= v.cfg.PerCycleWarn:
		alert.Level = SeverityWarning
	default:
		for _, d := range alert.PerSegment {
			if d >= v.cfg.SegmentWarn {
				alert.Level = SeverityWarning
				break
			}
		}
	}

	alert.TopSegments = topSegments(alert.PerSegment, v.cfg.TopSegments)
	v.lastAlert = alert
	return alert
}

// LastAlert returns the most recent alert, for the status surface.
func (v *Vigil) LastAlert() DriftAlert {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastAlert
}

// topSegments sorts dimension names by distance, worst first.
func topSegments(per map[string]float32, n int) []string {
	names := make([]string, 0, len(per))
	for name := range per {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if per[names[i]] != per[names[j]] {
			return per[names[i]] > per[names[j]]
		}
		return names[i] < names[j]
	})
	if n > 0 && len(names) > n {
		names = names[:n]
	}
	return names
}

// #endregion check
