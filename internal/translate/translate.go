package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region types

// Projection is one scalar reading of the state against a named axis.
type Projection struct {
	Axis     string  `json:"axis"`
	Category string  `json:"category"`
	Value    float32 `json:"value"`
}

// Translator is the external LLM collaborator: it receives named scalar
// projections, never raw vectors, and must describe them without reasoning.
type Translator interface {
	Verbalize(ctx context.Context, projections []Projection) (string, error)
}

// Result is the outcome of one verbalization.
type Result struct {
	Text string
	// ReasoningDetected marks a contract violation in the expressive layer:
	// the describer deliberated instead of describing. Surfaced, never
	// silently accepted; the cycle's state change still stands.
	ReasoningDetected bool
	// Withheld is true when the text was suppressed because of a violation.
	Withheld bool
}

// #endregion types

// #region project

// Project reads the state against every catalog axis: the cosine of the axis
// direction against the dimension its category maps to. A pure read; the
// tensor is never altered.
func Project(x tensor.StateTensor, dirs *axes.Directions, mapping map[string]string) []Projection {
	if mapping == nil {
		mapping = axes.DefaultSegmentForCategory
	}
	out := make([]Projection, 0, len(axes.Catalog))
	for _, ax := range axes.Catalog {
		seg, ok := mapping[ax.Category]
		if !ok {
			continue
		}
		r, ok := x.Segments.Range(seg)
		if !ok {
			continue
		}
		dir := dirs.Vector(ax.Name)
		if dir == nil {
			continue
		}
		out = append(out, Projection{
			Axis:     ax.Name,
			Category: ax.Category,
			Value:    tensor.Cosine(x.Vector[r[0]:r[1]], dir),
		})
	}
	return out
}

// #endregion project

// #region reasoning-markers

// reasoningMarkers are hedging and deliberation phrases that betray the
// translator reasoning about the values instead of describing them.
var reasoningMarkers = []string{
	"let me think",
	"let's think",
	"thinking step by step",
	"step by step",
	"i think this means",
	"this suggests that",
	"this implies",
	"it seems that",
	"it appears that",
	"probably because",
	"perhaps because",
	"my reasoning",
	"i conclude",
	"therefore we can",
	"one could argue",
	"on the other hand",
	"i'm not sure, but",
	"i am not sure, but",
	"as an ai",
	"i cannot determine",
}

// DetectReasoning reports whether the text contains a reasoning marker.
func DetectReasoning(text string) bool {
	lower := strings.ToLower(text)
	for _, m := range reasoningMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// #endregion reasoning-markers

// #region run

// Run projects the state and requests a verbalization, then validates the
// output as a post-condition. On a reasoning violation the text is withheld
// and the violation flagged; the caller decides what to do with the cycle.
func Run(ctx context.Context, tr Translator, x tensor.StateTensor, dirs *axes.Directions, mapping map[string]string) (Result, error) {
	projections := Project(x, dirs, mapping)
	text, err := tr.Verbalize(ctx, projections)
	if err != nil {
		return Result{}, fmt.Errorf("verbalize tick %d: %w", x.StateID, err)
	}
	res := Result{Text: text}
	if DetectReasoning(text) {
		res.ReasoningDetected = true
		res.Withheld = true
		res.Text = ""
	}
	return res, nil
}

// #endregion run

// #region instruction

// BuildInstruction renders the projection block handed to the describer.
// Grouped by category, one line per axis, with the zero-temperature
// describe-don't-reason contract up front.
func BuildInstruction(projections []Projection) string {
	var b strings.Builder
	b.WriteString("You are a pure describer. The following are readings of an internal state\n")
	b.WriteString("projected onto named bipolar axes, each in [-1, 1]. Describe what the values\n")
	b.WriteString("say, in plain first-person present tense. Do not reason about the values, do\n")
	b.WriteString("not explain them, do not hedge.\n\n[PROJECTIONS]\n")

	current := ""
	for _, p := range projections {
		if p.Category != current {
			current = p.Category
			fmt.Fprintf(&b, "# %s\n", current)
		}
		fmt.Fprintf(&b, "- %s: %+.3f\n", p.Axis, p.Value)
	}
	return b.String()
}

// #endregion instruction
