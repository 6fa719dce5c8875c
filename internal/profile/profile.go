package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
)

// #region errors
// ErrInvalidProfile marks a malformed declared profile. Fatal at startup: the
// daemon must not run without a valid reference.
var ErrInvalidProfile = errors.New("invalid declared profile")

// #endregion errors

// #region types

// Declaration is one owner-declared scalar against a named axis, range -10..+10.
type Declaration struct {
	Axis  string  `json:"axis"`
	Value float64 `json:"value"`
}

// Profile is the versioned, human-editable declaration record: 11 categories
// of scalar positions on the interpretable axes.
type Profile struct {
	Version    int                      `json:"version"`
	DeclaredAt time.Time                `json:"declared_at"`
	Categories map[string][]Declaration `json:"categories"`
}

// Value returns the declared scalar for an axis, 0 when undeclared.
func (p *Profile) Value(axis string) float64 {
	for _, decls := range p.Categories {
		for _, d := range decls {
			if d.Axis == axis {
				return d.Value
			}
		}
	}
	return 0
}

// #endregion types

// #region load

// Load reads and validates a declared profile from a JSON file.
// Unknown axes, out-of-range values, or unknown categories are errors.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrInvalidProfile, path, err)
	}
	if err := validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func validate(p *Profile) error {
	if len(p.Categories) == 0 {
		return fmt.Errorf("%w: no categories declared", ErrInvalidProfile)
	}
	known := make(map[string]bool, len(axes.Categories))
	for _, c := range axes.Categories {
		known[c] = true
	}
	for cat, decls := range p.Categories {
		if !known[cat] {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidProfile, cat)
		}
		for _, d := range decls {
			ax, ok := axes.Find(d.Axis)
			if !ok {
				return fmt.Errorf("%w: unknown axis %q in category %q", ErrInvalidProfile, d.Axis, cat)
			}
			if ax.Category != cat {
				return fmt.Errorf("%w: axis %q belongs to category %q, declared under %q",
					ErrInvalidProfile, d.Axis, ax.Category, cat)
			}
			if d.Value < -10 || d.Value > 10 {
				return fmt.Errorf("%w: axis %q value %.2f out of range [-10, 10]",
					ErrInvalidProfile, d.Axis, d.Value)
			}
		}
	}
	return nil
}

// #endregion load

// #region store

// Store guards the loaded profile against concurrent readers during an
// explicit owner re-declaration. Read-mostly.
type Store struct {
	mu      sync.RWMutex
	current *Profile
}

// NewStore wraps an already-validated profile.
func NewStore(p *Profile) *Store {
	return &Store{current: p}
}

// Current returns the active profile.
func (s *Store) Current() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Redeclare replaces the active profile after validation. Owner action only.
func (s *Store) Redeclare(p *Profile) error {
	if err := validate(p); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Version <= s.current.Version {
		return fmt.Errorf("%w: version %d not newer than %d",
			ErrInvalidProfile, p.Version, s.current.Version)
	}
	s.current = p
	return nil
}

// #endregion store
