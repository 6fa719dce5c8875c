package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/semiosislab/semiosis/go-engine/internal/history"
)

// #region main

func main() {
	dbPath := flag.String("db", "semiosis.db", "path to semiosis.db")
	tickID := flag.Int64("tick", -1, "inspect a specific tick (default: the active one)")
	showHistory := flag.Int("history", 0, "list the N most recent cycles")
	showImpacts := flag.Bool("impacts", false, "list unresolved pending impacts")
	asJSON := flag.Bool("json", false, "emit JSON instead of a table")
	flag.Parse()

	store, err := history.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(2)
	}
	defer store.Close()

	switch {
	case *showImpacts:
		os.Exit(printImpacts(store, *asJSON))
	case *showHistory > 0:
		os.Exit(printHistory(store, *showHistory, *asJSON))
	default:
		os.Exit(printTick(store, *tickID, *asJSON))
	}
}

// #endregion main

// #region tick

type tickView struct {
	StateID       int64              `json:"state_id"`
	CycleID       string             `json:"cycle_id"`
	ParentStateID int64              `json:"parent_state_id"`
	CreatedAt     string             `json:"created_at"`
	SegmentNorms  map[string]float64 `json:"segment_norms"`
	MetricsJSON   json.RawMessage    `json:"metrics,omitempty"`
}

func printTick(store *history.Store, id int64, asJSON bool) int {
	var rec history.TickRecord
	var err error
	if id < 0 {
		rec, err = store.Current()
	} else {
		rec, err = store.Tick(id)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "load tick: %v\n", err)
		return 2
	}

	x := rec.Tensor()
	view := tickView{
		StateID:       rec.StateID,
		CycleID:       rec.CycleID,
		ParentStateID: rec.ParentStateID,
		CreatedAt:     rec.CreatedAt.Format("2006-01-02 15:04:05"),
		SegmentNorms:  x.SegmentNorms(),
	}
	if rec.MetricsJSON != "" {
		view.MetricsJSON = json.RawMessage(rec.MetricsJSON)
	}

	if asJSON {
		out, _ := json.MarshalIndent(view, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	fmt.Printf("tick %d (cycle %s)\n", view.StateID, view.CycleID)
	fmt.Printf("  parent:  %d\n", view.ParentStateID)
	fmt.Printf("  created: %s\n", view.CreatedAt)
	fmt.Println("  dimensions:")
	names := make([]string, 0, len(view.SegmentNorms))
	for name := range view.SegmentNorms {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("    %-14s norm %.6f\n", name, view.SegmentNorms[name])
	}
	if rec.MetricsJSON != "" {
		fmt.Printf("  metrics: %s\n", rec.MetricsJSON)
	}
	return 0
}

// #endregion tick

// #region history

func printHistory(store *history.Store, limit int, asJSON bool) int {
	entries, err := store.ListCycles(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list cycles: %v\n", err)
		return 2
	}

	if asJSON {
		out, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	fmt.Printf("%-6s| %-16s| %-10s| %-6s| %-10s| %-10s| %s\n",
		"Tick", "Trigger", "Dissonance", "Choc", "Drift", "Action", "When")
	for _, e := range entries {
		fmt.Printf("%-6d| %-16s| %-10.3f| %-6v| %-10s| %-10s| %s\n",
			e.StateID, e.TriggerType, e.Dissonance, e.IsChoc, e.DriftLevel,
			e.Action, e.CreatedAt.Format("01-02 15:04:05"))
	}
	return 0
}

// #endregion history

// #region impacts

func printImpacts(store *history.Store, asJSON bool) int {
	impacts, err := store.PendingImpacts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pending impacts: %v\n", err)
		return 2
	}

	if asJSON {
		out, _ := json.MarshalIndent(impacts, "", "  ")
		fmt.Println(string(out))
		return 0
	}

	if len(impacts) == 0 {
		fmt.Println("no unresolved impacts")
		return 0
	}
	for _, p := range impacts {
		fmt.Printf("%s  tick %d  dissonance %.3f  %s\n    %s\n",
			p.CreatedAt.Format("2006-01-02 15:04"), p.StateID, p.Dissonance, p.ID, p.Content)
	}
	return 0
}

// #endregion impacts
