package status

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/semiosislab/semiosis/go-engine/internal/history"
	"github.com/semiosislab/semiosis/go-engine/internal/metrics"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
	"github.com/semiosislab/semiosis/go-engine/internal/vigilance"
)

// #region server
// Server exposes the read-only observation surface. It never mutates the
// state; everything here is a window, not a control.
type Server struct {
	rec       *metrics.Recorder
	store     *history.Store
	lastAlert func() vigilance.DriftAlert
	current   func() tensor.StateTensor
}

// NewServer wires the observation surface. The alert and state accessors are
// funcs so the daemon stays free of HTTP concerns.
func NewServer(rec *metrics.Recorder, store *history.Store, lastAlert func() vigilance.DriftAlert, current func() tensor.StateTensor) *Server {
	return &Server{rec: rec, store: store, lastAlert: lastAlert, current: current}
}

// Router builds the chi router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/status", s.handleStatus)
	r.Get("/state", s.handleState)
	r.Get("/drift", s.handleDrift)
	r.Get("/history", s.handleHistory)
	return r
}

// #endregion server

// #region handlers
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.rec.Snapshot())
}

// stateView summarizes the live tick without exposing the raw vector.
type stateView struct {
	StateID      int64              `json:"state_id"`
	CreatedAt    string             `json:"created_at"`
	SegmentNorms map[string]float64 `json:"segment_norms"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	x := s.current()
	writeJSON(w, stateView{
		StateID:      x.StateID,
		CreatedAt:    x.CreatedAt.Format(time.RFC3339Nano),
		SegmentNorms: x.SegmentNorms(),
	})
}

type driftView struct {
	Level       string             `json:"level"`
	Cumulative  float32            `json:"cumulative"`
	PerCycle    float32            `json:"per_cycle"`
	PerSegment  map[string]float32 `json:"per_segment,omitempty"`
	TopSegments []string           `json:"top_segments,omitempty"`
}

func (s *Server) handleDrift(w http.ResponseWriter, r *http.Request) {
	a := s.lastAlert()
	level := string(a.Level)
	if level == "" {
		level = string(vigilance.SeverityNone)
	}
	writeJSON(w, driftView{
		Level:       level,
		Cumulative:  a.Cumulative,
		PerCycle:    a.PerCycle,
		PerSegment:  a.PerSegment,
		TopSegments: a.TopSegments,
	})
}

type historyView struct {
	StateID     int64  `json:"state_id"`
	CycleID     string `json:"cycle_id"`
	TriggerType string `json:"trigger_type"`
	Dissonance  float64 `json:"dissonance"`
	IsChoc      bool   `json:"is_choc"`
	DriftLevel  string `json:"drift_level,omitempty"`
	Action      string `json:"action"`
	Reason      string `json:"reason,omitempty"`
	Verbalized  bool   `json:"verbalized"`
	CreatedAt   string `json:"created_at"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 1000 {
			http.Error(w, "limit must be in 1..1000", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := s.store.ListCycles(limit)
	if err != nil {
		log.Printf("[STATUS] list cycles: %v", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}
	views := make([]historyView, 0, len(entries))
	for _, e := range entries {
		views = append(views, historyView{
			StateID:     e.StateID,
			CycleID:     e.CycleID,
			TriggerType: e.TriggerType,
			Dissonance:  e.Dissonance,
			IsChoc:      e.IsChoc,
			DriftLevel:  e.DriftLevel,
			Action:      e.Action,
			Reason:      e.Reason,
			Verbalized:  e.Verbalized,
			CreatedAt:   e.CreatedAt.Format(time.RFC3339Nano),
		})
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[STATUS] encode response: %v", err)
	}
}

// #endregion handlers
