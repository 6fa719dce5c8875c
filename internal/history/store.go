package history

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/semiosislab/semiosis/go-engine/internal/tensor"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS identity_ticks (
	state_id        INTEGER PRIMARY KEY,
	cycle_id        TEXT NOT NULL,
	parent_state_id INTEGER,
	vector          BLOB NOT NULL,
	segment_map     TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	metrics_json    TEXT,
	FOREIGN KEY (parent_state_id) REFERENCES identity_ticks(state_id)
);

CREATE TABLE IF NOT EXISTS cycle_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id      TEXT NOT NULL,
	state_id      INTEGER,
	trigger_type  TEXT NOT NULL,
	dissonance    REAL,
	is_choc       INTEGER NOT NULL DEFAULT 0,
	drift_level   TEXT,
	action        TEXT NOT NULL,
	reason        TEXT,
	verbalized    INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS active_tick (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	state_id INTEGER NOT NULL,
	FOREIGN KEY (state_id) REFERENCES identity_ticks(state_id)
);

CREATE TABLE IF NOT EXISTS pending_impacts (
	impact_id   TEXT PRIMARY KEY,
	state_id    INTEGER NOT NULL,
	content     TEXT NOT NULL,
	dissonance  REAL NOT NULL,
	created_at  TEXT NOT NULL,
	resolved_at TEXT,
	resolved_by INTEGER,
	FOREIGN KEY (state_id) REFERENCES identity_ticks(state_id)
);
`

// #endregion schema

// ErrNoGenesis marks a read on a store that was never seeded.
var ErrNoGenesis = errors.New("history: no genesis tick")

// #region store-struct
// Store manages the identity tick history in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion close

// #region commit-genesis
// CommitGenesis persists tick zero and sets the active pointer. Fails if the
// store already holds a genesis.
func (s *Store) CommitGenesis(x tensor.StateTensor) error {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM identity_ticks`).Scan(&count); err != nil {
		return fmt.Errorf("check genesis: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("genesis already committed")
	}

	segJSON, err := json.Marshal(x.Segments)
	if err != nil {
		return fmt.Errorf("marshal segment map: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := x.CreatedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	_, err = tx.Exec(
		`INSERT INTO identity_ticks (state_id, cycle_id, parent_state_id, vector, segment_map, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		x.StateID, uuid.New().String(), nil, encodeVector(x.Vector), string(segJSON),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert genesis: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_tick (id, state_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET state_id = excluded.state_id`,
		x.StateID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}

// #endregion commit-genesis

// #region commit-tick
// CommitTick persists one completed cycle atomically: the new tick, its audit
// entry, the active pointer, and (on a shock) the pending impact. Either
// everything lands or nothing does.
func (s *Store) CommitTick(rec TickRecord, entry CycleEntry, impact *PendingImpact) error {
	segJSON, err := json.Marshal(rec.Segments)
	if err != nil {
		return fmt.Errorf("marshal segment map: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	if rec.ParentStateID != 0 || rec.StateID > 0 {
		parentPtr = rec.ParentStateID
	}
	var metricsPtr interface{}
	if rec.MetricsJSON != "" {
		metricsPtr = rec.MetricsJSON
	}

	_, err = tx.Exec(
		`INSERT INTO identity_ticks (state_id, cycle_id, parent_state_id, vector, segment_map, created_at, metrics_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.StateID, rec.CycleID, parentPtr, encodeVector(rec.Vector), string(segJSON),
		rec.CreatedAt.Format(time.RFC3339Nano), metricsPtr,
	)
	if err != nil {
		return fmt.Errorf("insert tick: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO cycle_log (cycle_id, state_id, trigger_type, dissonance, is_choc, drift_level, action, reason, verbalized, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'committed', ?, ?, ?)`,
		entry.CycleID, rec.StateID, entry.TriggerType, entry.Dissonance, boolInt(entry.IsChoc),
		entry.DriftLevel, entry.Reason, boolInt(entry.Verbalized),
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert cycle log: %w", err)
	}

	_, err = tx.Exec(`UPDATE active_tick SET state_id = ? WHERE id = 1`, rec.StateID)
	if err != nil {
		return fmt.Errorf("update active: %w", err)
	}

	if impact != nil {
		_, err = tx.Exec(
			`INSERT INTO pending_impacts (impact_id, state_id, content, dissonance, created_at)
			 VALUES (?, ?, ?, ?, ?)`,
			impact.ID, rec.StateID, impact.Content, impact.Dissonance,
			rec.CreatedAt.Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("insert pending impact: %w", err)
		}
	}

	return tx.Commit()
}

// #endregion commit-tick

// #region log-abort
// LogAbort records a cycle abandoned before commit. No tick row exists for it.
func (s *Store) LogAbort(cycleID, triggerType, reason string) error {
	_, err := s.db.Exec(
		`INSERT INTO cycle_log (cycle_id, state_id, trigger_type, action, reason, created_at)
		 VALUES (?, NULL, ?, 'aborted', ?, ?)`,
		cycleID, triggerType, reason, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log abort: %w", err)
	}
	return nil
}

// #endregion log-abort

// #region reads
// Current reads the active tick.
func (s *Store) Current() (TickRecord, error) {
	var stateID int64
	err := s.db.QueryRow(`SELECT state_id FROM active_tick WHERE id = 1`).Scan(&stateID)
	if errors.Is(err, sql.ErrNoRows) {
		return TickRecord{}, ErrNoGenesis
	}
	if err != nil {
		return TickRecord{}, fmt.Errorf("get active: %w", err)
	}
	return s.Tick(stateID)
}

// Tick retrieves a specific tick by state ID.
func (s *Store) Tick(stateID int64) (TickRecord, error) {
	var rec TickRecord
	var parentID sql.NullInt64
	var vecBlob []byte
	var segJSON, createdStr string
	var metricsJSON sql.NullString

	err := s.db.QueryRow(
		`SELECT state_id, cycle_id, parent_state_id, vector, segment_map, created_at, metrics_json
		 FROM identity_ticks WHERE state_id = ?`, stateID,
	).Scan(&rec.StateID, &rec.CycleID, &parentID, &vecBlob, &segJSON, &createdStr, &metricsJSON)
	if err != nil {
		return TickRecord{}, fmt.Errorf("get tick %d: %w", stateID, err)
	}

	if parentID.Valid {
		rec.ParentStateID = parentID.Int64
	}
	rec.Vector = decodeVector(vecBlob)
	if err := json.Unmarshal([]byte(segJSON), &rec.Segments); err != nil {
		return TickRecord{}, fmt.Errorf("unmarshal segment map: %w", err)
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if metricsJSON.Valid {
		rec.MetricsJSON = metricsJSON.String
	}
	return rec, nil
}

// ListTicks returns the most recent ticks, newest first.
func (s *Store) ListTicks(limit int) ([]TickRecord, error) {
	rows, err := s.db.Query(
		`SELECT state_id, cycle_id, parent_state_id, vector, segment_map, created_at, metrics_json
		 FROM identity_ticks ORDER BY state_id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list ticks: %w", err)
	}
	defer rows.Close()

	var records []TickRecord
	for rows.Next() {
		var rec TickRecord
		var parentID sql.NullInt64
		var vecBlob []byte
		var segJSON, createdStr string
		var metricsJSON sql.NullString

		if err := rows.Scan(&rec.StateID, &rec.CycleID, &parentID, &vecBlob, &segJSON, &createdStr, &metricsJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if parentID.Valid {
			rec.ParentStateID = parentID.Int64
		}
		rec.Vector = decodeVector(vecBlob)
		if err := json.Unmarshal([]byte(segJSON), &rec.Segments); err != nil {
			return nil, fmt.Errorf("unmarshal segment map: %w", err)
		}
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		if metricsJSON.Valid {
			rec.MetricsJSON = metricsJSON.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListCycles returns the most recent audit entries, newest first.
func (s *Store) ListCycles(limit int) ([]CycleEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, cycle_id, COALESCE(state_id, 0), trigger_type, COALESCE(dissonance, 0),
		        is_choc, COALESCE(drift_level, ''), action, COALESCE(reason, ''), verbalized, created_at
		 FROM cycle_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	defer rows.Close()

	var entries []CycleEntry
	for rows.Next() {
		var e CycleEntry
		var isChoc, verbalized int
		var createdStr string
		if err := rows.Scan(&e.ID, &e.CycleID, &e.StateID, &e.TriggerType, &e.Dissonance,
			&isChoc, &e.DriftLevel, &e.Action, &e.Reason, &verbalized, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.IsChoc = isChoc != 0
		e.Verbalized = verbalized != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion reads

// #region impacts
// PendingImpacts returns unresolved shocks, oldest first.
func (s *Store) PendingImpacts() ([]PendingImpact, error) {
	rows, err := s.db.Query(
		`SELECT impact_id, state_id, content, dissonance, created_at
		 FROM pending_impacts WHERE resolved_at IS NULL ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list impacts: %w", err)
	}
	defer rows.Close()

	var impacts []PendingImpact
	for rows.Next() {
		var p PendingImpact
		var createdStr string
		if err := rows.Scan(&p.ID, &p.StateID, &p.Content, &p.Dissonance, &createdStr); err != nil {
			return nil, fmt.Errorf("scan impact: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		impacts = append(impacts, p)
	}
	return impacts, rows.Err()
}

// CountPendingImpacts returns the number of unresolved shocks.
func (s *Store) CountPendingImpacts() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pending_impacts WHERE resolved_at IS NULL`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count impacts: %w", err)
	}
	return n, nil
}

// ResolveImpact marks a shock as worked through by the given tick.
func (s *Store) ResolveImpact(impactID string, resolvedBy int64) error {
	res, err := s.db.Exec(
		`UPDATE pending_impacts SET resolved_at = ?, resolved_by = ?
		 WHERE impact_id = ? AND resolved_at IS NULL`,
		time.Now().UTC().Format(time.RFC3339Nano), resolvedBy, impactID,
	)
	if err != nil {
		return fmt.Errorf("resolve impact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("resolve impact: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("impact %s not found or already resolved", impactID)
	}
	return nil
}

// #endregion impacts

// #region vector-encoding
func encodeVector(v [tensor.FlatSize]float32) []byte {
	buf := make([]byte, tensor.FlatSize*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) [tensor.FlatSize]float32 {
	var v [tensor.FlatSize]float32
	for i := range v {
		if i*4+4 <= len(b) {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		}
	}
	return v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion vector-encoding
