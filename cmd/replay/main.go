package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/semiosislab/semiosis/go-engine/internal/axes"
	"github.com/semiosislab/semiosis/go-engine/internal/history"
	"github.com/semiosislab/semiosis/go-engine/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to semiosis.db (history verification mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json")
		fmt.Fprintln(os.Stderr, "       replay --db path/to/semiosis.db")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	dirs := axes.Deterministic(f.Start.DirectionSeed)
	start, err := replay.BuildStart(f.Start.ToStartSpec(), dirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build start state: %v\n", err)
		return 2
	}

	interactions := make([]replay.Interaction, len(f.Interactions))
	for i := range f.Interactions {
		interactions[i] = f.Interactions[i].ToInteraction()
	}

	results, final, err := replay.Replay(start, interactions, f.Config.ToConfig(), f.Profile, dirs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	fmt.Printf("%-8s| %-16s| %-10s| %-8s| %-10s| %s\n", "Cycle", "Trigger", "Dissonance", "Choc", "Drift", "Match")
	fmt.Printf("--------+-----------------+-----------+---------+-----------+------\n")

	diverge := 0
	for i, r := range results {
		match := "OK"
		if i < len(f.ExpectedResults) {
			e := f.ExpectedResults[i]
			if e.IsChoc != r.IsChoc || e.DriftLevel != r.DriftLevel {
				match = "DIFF"
				diverge++
			}
		} else {
			match = "?"
		}
		fmt.Printf("%-8s| %-16s| %-10.3f| %-8v| %-10s| %s\n",
			r.ID, r.TriggerType, r.Dissonance, r.IsChoc, r.DriftLevel, match)
	}

	summary := replay.Summarize(results, final)
	fmt.Printf("\nSummary: %d cycles, %d chocs, %d warnings, %d criticals, final tick %d\n",
		summary.TotalCycles, summary.Chocs, summary.Warnings, summary.Criticals, final.StateID)

	if diverge > 0 {
		fmt.Printf("%d cycles diverged from the expected baseline\n", diverge)
		return 1
	}
	return 0
}

// #endregion fixture-mode

// #region db-mode

// runDBMode walks the persisted tick chain and verifies its invariants:
// contiguous parent links and unit-norm dimensions on every tick.
func runDBMode(dbPath string) int {
	store, err := history.NewStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	cur, err := store.Current()
	if err != nil {
		fmt.Fprintf(os.Stderr, "current tick: %v\n", err)
		return 2
	}

	violations := 0
	checked := 0
	for id := cur.StateID; ; {
		rec, err := store.Tick(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tick %d: %v\n", id, err)
			return 2
		}
		checked++

		x := rec.Tensor()
		for name, n := range x.SegmentNorms() {
			if math.Abs(n-1.0) > 1e-3 {
				fmt.Printf("tick %d: dimension %s norm %.6f\n", id, name, n)
				violations++
			}
		}
		if id > 0 && rec.ParentStateID != id-1 {
			fmt.Printf("tick %d: parent %d, want %d\n", id, rec.ParentStateID, id-1)
			violations++
		}

		if id == 0 {
			break
		}
		id = rec.ParentStateID
	}

	fmt.Printf("verified %d ticks back to genesis, %d violations\n", checked, violations)
	if violations > 0 {
		return 1
	}
	return 0
}

// #endregion db-mode
