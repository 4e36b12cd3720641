// Package sqlite persists scanning-session outputs for offline
// analysis. The in-memory accepted set remains the sole source of truth
// for renderers; this store is a recorder, not a cache.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/roomscan/internal/scan/classify"
	"github.com/banshee-data/roomscan/internal/scan/hypothesis"
)

// HypothesisStore records accepted hypotheses and session lifecycle
// events. It implements pipeline.PersistenceSink.
type HypothesisStore struct {
	db *sql.DB
}

// SessionEvent is one recorded lifecycle event.
type SessionEvent struct {
	SessionID   string
	Kind        string
	Detail      string
	TSUnixNanos int64
}

// NewHypothesisStore creates the store and its schema if missing.
func NewHypothesisStore(db *sql.DB) (*HypothesisStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scan_hypotheses (
			hypothesis_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			class TEXT NOT NULL,
			confidence REAL NOT NULL,
			pos_x REAL NOT NULL,
			pos_y REAL NOT NULL,
			pos_z REAL NOT NULL,
			dim_x REAL NOT NULL,
			dim_y REAL NOT NULL,
			dim_z REAL NOT NULL,
			source_mesh_id TEXT NOT NULL,
			accepted_unix_nanos INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scan_hypotheses_session
			ON scan_hypotheses(session_id, accepted_unix_nanos);
		CREATE TABLE IF NOT EXISTS scan_session_events (
			event_id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			ts_unix_nanos INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_scan_session_events_session
			ON scan_session_events(session_id, ts_unix_nanos);
	`)
	if err != nil {
		return nil, fmt.Errorf("create scan schema: %w", err)
	}
	return &HypothesisStore{db: db}, nil
}

// PersistHypothesis writes one accepted hypothesis.
func (s *HypothesisStore) PersistHypothesis(sessionID string, h hypothesis.Hypothesis) error {
	_, err := s.db.Exec(`
		INSERT INTO scan_hypotheses (
			hypothesis_id, session_id, class, confidence,
			pos_x, pos_y, pos_z, dim_x, dim_y, dim_z,
			source_mesh_id, accepted_unix_nanos
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.ID, sessionID, string(h.Class), h.Confidence,
		h.Position.X, h.Position.Y, h.Position.Z,
		h.Dimensions.X, h.Dimensions.Y, h.Dimensions.Z,
		h.SourceMeshID, h.AcceptedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert hypothesis %s: %w", h.ID, err)
	}
	return nil
}

// PersistSessionEvent writes one lifecycle event.
func (s *HypothesisStore) PersistSessionEvent(sessionID, kind, detail string, ts time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO scan_session_events (session_id, kind, detail, ts_unix_nanos)
		VALUES (?, ?, ?, ?)
	`, sessionID, kind, detail, ts.UnixNano())
	if err != nil {
		return fmt.Errorf("insert session event %s: %w", kind, err)
	}
	return nil
}

// ListHypotheses returns the recorded hypotheses for a session in
// acceptance order.
func (s *HypothesisStore) ListHypotheses(sessionID string) ([]hypothesis.Hypothesis, error) {
	rows, err := s.db.Query(`
		SELECT hypothesis_id, class, confidence,
			pos_x, pos_y, pos_z, dim_x, dim_y, dim_z,
			source_mesh_id, accepted_unix_nanos
		FROM scan_hypotheses
		WHERE session_id = ?
		ORDER BY accepted_unix_nanos ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query hypotheses: %w", err)
	}
	defer rows.Close()

	var out []hypothesis.Hypothesis
	for rows.Next() {
		var h hypothesis.Hypothesis
		var class string
		var acceptedNanos int64
		var pos, dim r3.Vec
		if err := rows.Scan(
			&h.ID, &class, &h.Confidence,
			&pos.X, &pos.Y, &pos.Z, &dim.X, &dim.Y, &dim.Z,
			&h.SourceMeshID, &acceptedNanos,
		); err != nil {
			return nil, fmt.Errorf("scan hypothesis row: %w", err)
		}
		h.Class = classify.FurnitureClass(class)
		h.Position = pos
		h.Dimensions = dim
		h.AcceptedAt = time.Unix(0, acceptedNanos)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hypothesis rows: %w", err)
	}
	return out, nil
}

// ListSessionEvents returns the recorded lifecycle events for a session
// in time order.
func (s *HypothesisStore) ListSessionEvents(sessionID string) ([]SessionEvent, error) {
	rows, err := s.db.Query(`
		SELECT session_id, kind, detail, ts_unix_nanos
		FROM scan_session_events
		WHERE session_id = ?
		ORDER BY ts_unix_nanos ASC, event_id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionEvent
	for rows.Next() {
		var e SessionEvent
		if err := rows.Scan(&e.SessionID, &e.Kind, &e.Detail, &e.TSUnixNanos); err != nil {
			return nil, fmt.Errorf("scan session event row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session event rows: %w", err)
	}
	return out, nil
}
