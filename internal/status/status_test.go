package status

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/semiosislab/semiosis/go-engine/internal/history"
	"github.com/semiosislab/semiosis/go-engine/internal/metrics"
	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
	"github.com/semiosislab/semiosis/go-engine/internal/vigilance"
)

func newTestServer(t *testing.T) (*httptest.Server, *history.Store, *metrics.Recorder) {
	t.Helper()
	store, err := history.NewStore(filepath.Join(t.TempDir(), "ticks.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	x := tensor.RandomGenesis(tensor.DefaultSegmentMap(), rand.New(rand.NewSource(1)))
	if err := store.CommitGenesis(x); err != nil {
		t.Fatalf("CommitGenesis: %v", err)
	}

	rec := metrics.NewRecorder()
	alert := func() vigilance.DriftAlert {
		return vigilance.DriftAlert{Level: vigilance.SeverityWarning, Cumulative: 0.012, TopSegments: []string{"valeurs"}}
	}
	current := func() tensor.StateTensor { return x }

	srv := httptest.NewServer(NewServer(rec, store, alert, current).Router())
	t.Cleanup(srv.Close)
	return srv, store, rec
}

func getJSON(t *testing.T, url string, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type %q", ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, _, rec := newTestServer(t)
	rec.CycleDone("user", 2*time.Millisecond)
	rec.SetMode("conversation")

	var snap metrics.Snapshot
	getJSON(t, srv.URL+"/status", &snap)
	if snap.CyclesTotal != 1 || snap.Mode != "conversation" {
		t.Fatalf("snapshot: %+v", snap)
	}
}

func TestStateEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var view struct {
		StateID      int64              `json:"state_id"`
		SegmentNorms map[string]float64 `json:"segment_norms"`
	}
	getJSON(t, srv.URL+"/state", &view)
	if view.StateID != 0 {
		t.Fatalf("state_id %d, want genesis 0", view.StateID)
	}
	if len(view.SegmentNorms) != tensor.SegmentCount {
		t.Fatalf("segment norms %v", view.SegmentNorms)
	}
	for name, n := range view.SegmentNorms {
		if n < 0.999 || n > 1.001 {
			t.Fatalf("segment %s norm %f", name, n)
		}
	}
}

func TestDriftEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)

	var view struct {
		Level       string   `json:"level"`
		Cumulative  float32  `json:"cumulative"`
		TopSegments []string `json:"top_segments"`
	}
	getJSON(t, srv.URL+"/drift", &view)
	if view.Level != "warning" || len(view.TopSegments) != 1 {
		t.Fatalf("drift view: %+v", view)
	}
}

func TestHistoryEndpointAndLimit(t *testing.T) {
	srv, store, _ := newTestServer(t)

	x, _ := store.Current()
	parent := x.StateID
	for i := 0; i < 3; i++ {
		rec := history.TickRecord{
			StateID: parent + 1, CycleID: uuid.New().String(), ParentStateID: parent,
			Vector: x.Vector, Segments: x.Segments, CreatedAt: time.Now().UTC(),
		}
		entry := history.CycleEntry{CycleID: rec.CycleID, TriggerType: "veille", Dissonance: 0.1}
		if err := store.CommitTick(rec, entry, nil); err != nil {
			t.Fatalf("CommitTick: %v", err)
		}
		parent++
	}

	var views []map[string]interface{}
	getJSON(t, srv.URL+"/history?limit=2", &views)
	if len(views) != 2 {
		t.Fatalf("got %d entries, want 2", len(views))
	}
	if views[0]["trigger_type"] != "veille" || views[0]["action"] != "committed" {
		t.Fatalf("entry: %+v", views[0])
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	srv, _, _ := newTestServer(t)
	for _, q := range []string{"0", "-5", "9999", "abc"} {
		resp, err := http.Get(srv.URL + "/history?limit=" + q)
		if err != nil {
			t.Fatalf("GET: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("limit=%s: status %d, want 400", q, resp.StatusCode)
		}
	}
}
