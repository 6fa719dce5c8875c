package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/profile"
	"github.com/semiosislab/semiosis/go-engine/internal/replay"
)

// #region main

// fixture-export generates a replay fixture: it synthesizes a session from
// the given seeds, runs it through the in-memory pipeline once, and records
// the actual outcomes as the expected baseline. Future runs of `replay
// --fixture` then detect any behavioral drift against that baseline.
func main() {
	outPath := flag.String("out", "fixture.json", "output fixture path")
	description := flag.String("description", "exported replay baseline", "fixture description")
	startSeed := flag.Int64("seed", 11, "genesis seed")
	dirSeed := flag.Int64("direction-seed", 1, "axis direction seed")
	cycles := flag.Int("cycles", 8, "number of cycles to synthesize")
	chocEvery := flag.Int("choc-every", 4, "inject a shock input every N cycles (0 disables)")
	flag.Parse()

	if *cycles <= 0 {
		fmt.Fprintln(os.Stderr, "cycles must be positive")
		os.Exit(2)
	}

	f := buildFixture(*description, *startSeed, *dirSeed, *cycles, *chocEvery)

	dirs := axes.Deterministic(f.Start.DirectionSeed)
	start, err := replay.BuildStart(f.Start.ToStartSpec(), dirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build start state: %v\n", err)
		os.Exit(2)
	}

	interactions := make([]replay.Interaction, len(f.Interactions))
	for i := range f.Interactions {
		interactions[i] = f.Interactions[i].ToInteraction()
	}
	results, _, err := replay.Replay(start, interactions, f.Config.ToConfig(), f.Profile, dirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "baseline run: %v\n", err)
		os.Exit(2)
	}

	f.ExpectedResults = make([]replay.FixtureExpectedResult, len(results))
	for i, r := range results {
		f.ExpectedResults[i] = replay.FixtureExpectedResult{
			ID:         r.ID,
			IsChoc:     r.IsChoc,
			DriftLevel: r.DriftLevel,
		}
	}

	out, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal fixture: %v\n", err)
		os.Exit(2)
	}
	if err := os.WriteFile(*outPath, append(out, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", *outPath, err)
		os.Exit(2)
	}
	fmt.Printf("wrote %s: %d cycles, %d expected chocs\n", *outPath, len(results), countChocs(results))
}

// #endregion main

// #region build

var promptRotation = []struct {
	trigger string
	content string
}{
	{"user", "tell me where your attention has been"},
	{"veille", "veille: what has settled since the last pause"},
	{"corpus", "a passage on the fixation of belief"},
	{"user", "what do you make of silence"},
}

func buildFixture(description string, startSeed, dirSeed int64, cycles, chocEvery int) *replay.Fixture {
	f := &replay.Fixture{
		Description: description,
		Start: replay.FixtureStart{
			Seed:          startSeed,
			DirectionSeed: dirSeed,
			PinSegment:    "thirdness",
			PinAxis:       "curiosity",
		},
		Config: replay.FixtureConfig{
			ShockThreshold:    0.85,
			MaxDeltaNorm:      0.05,
			ChocScienceWeight: 0.06,
			CumulativeWarn:    0.01,
			CumulativeCrit:    0.02,
			ObservedWeight:    0,
		},
		Profile: &profile.Profile{
			Version:    1,
			DeclaredAt: time.Now().UTC(),
			Categories: map[string][]profile.Declaration{
				"epistemic": {{Axis: "curiosity", Value: 10}},
			},
		},
	}

	for i := 0; i < cycles; i++ {
		p := promptRotation[i%len(promptRotation)]
		alignment := float32(1.0)
		content := p.content
		if chocEvery > 0 && (i+1)%chocEvery == 0 {
			alignment = 0.0
			content = "a rupture: " + content
		}
		f.Interactions = append(f.Interactions, replay.FixtureInteraction{
			ID:          fmt.Sprintf("c%d", i+1),
			TriggerType: p.trigger,
			Content:     content,
			Seed:        startSeed*1000 + int64(i),
			Alignment:   alignment,
		})
	}
	return f
}

func countChocs(results []replay.Result) int {
	n := 0
	for _, r := range results {
		if r.IsChoc {
			n++
		}
	}
	return n
}

// #endregion build
