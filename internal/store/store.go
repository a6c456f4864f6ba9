package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/tabiya-tech/compass-sub002/internal/belief"
	"github.com/tabiya-tech/compass-sub002/internal/linalg"
	"github.com/tabiya-tech/compass-sub002/internal/session"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS session_versions (
	version_id     TEXT PRIMARY KEY,
	parent_id      TEXT,
	session_id     TEXT NOT NULL,
	phase          TEXT NOT NULL,
	dimensions     TEXT NOT NULL,
	belief_version TEXT NOT NULL,
	mean           BLOB NOT NULL,
	covariance     BLOB NOT NULL,
	info_matrix    BLOB NOT NULL,
	shown          TEXT NOT NULL,
	begin_idx      INTEGER NOT NULL,
	end_idx        INTEGER NOT NULL,
	adaptive_shown INTEGER NOT NULL,
	stop_reason    TEXT,
	created_at     TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES session_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_sessions (
	session_id    TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES session_versions(version_id)
);

CREATE TABLE IF NOT EXISTS provenance_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	vignette_id   TEXT,
	phase         TEXT NOT NULL,
	event_type    TEXT NOT NULL,
	chosen_option TEXT,
	det_gain      REAL,
	reason        TEXT,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region store

// Store persists versioned session snapshots in SQLite. The engine core
// never depends on it; the CLIs use it so a stopped session resumes from
// its last snapshot.
type Store struct {
	db *sql.DB
}

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

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages (provenance).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region save

// SaveSnapshot writes a session state as a new version and moves the
// session's active pointer to it.
func (s *Store) SaveSnapshot(st session.State) (string, error) {
	versionID := uuid.New().String()
	parent, err := s.activeVersion(st.SessionID)
	if err != nil {
		return "", err
	}

	dimsJSON, err := json.Marshal(st.Belief.Dimensions)
	if err != nil {
		return "", fmt.Errorf("marshal dimensions: %w", err)
	}
	shownJSON, err := json.Marshal(st.Shown)
	if err != nil {
		return "", fmt.Errorf("marshal shown: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	if parent != "" {
		parentPtr = parent
	}
	_, err = tx.Exec(
		`INSERT INTO session_versions
		 (version_id, parent_id, session_id, phase, dimensions, belief_version,
		  mean, covariance, info_matrix, shown, begin_idx, end_idx, adaptive_shown,
		  stop_reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		versionID, parentPtr, st.SessionID, string(st.Phase), string(dimsJSON),
		st.Belief.VersionID,
		encodeFloats(st.Belief.Mean), encodeFloats(st.Belief.Cov.Data),
		encodeFloats(st.Info.Data), string(shownJSON),
		st.BeginIdx, st.EndIdx, st.AdaptiveShown,
		nullIfEmpty(st.StopReason), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_sessions (session_id, version_id) VALUES (?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET version_id = excluded.version_id`,
		st.SessionID, versionID,
	)
	if err != nil {
		return "", fmt.Errorf("set active: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return versionID, nil
}

func (s *Store) activeVersion(sessionID string) (string, error) {
	var versionID string
	err := s.db.QueryRow(
		`SELECT version_id FROM active_sessions WHERE session_id = ?`, sessionID,
	).Scan(&versionID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get active: %w", err)
	}
	return versionID, nil
}

// #endregion save

// #region load

// GetCurrent restores the active snapshot of a session.
func (s *Store) GetCurrent(sessionID string) (session.State, error) {
	versionID, err := s.activeVersion(sessionID)
	if err != nil {
		return session.State{}, err
	}
	if versionID == "" {
		return session.State{}, fmt.Errorf("no active snapshot for session %s", sessionID)
	}
	return s.GetVersion(versionID)
}

// GetVersion restores one snapshot by version id.
func (s *Store) GetVersion(versionID string) (session.State, error) {
	row := s.db.QueryRow(
		`SELECT session_id, phase, dimensions, belief_version, mean, covariance,
		        info_matrix, shown, begin_idx, end_idx, adaptive_shown, stop_reason, created_at
		 FROM session_versions WHERE version_id = ?`, versionID,
	)

	var st session.State
	var phase, dimsJSON, beliefVersion, shownJSON, createdStr string
	var meanBlob, covBlob, infoBlob []byte
	var stopReason sql.NullString
	err := row.Scan(&st.SessionID, &phase, &dimsJSON, &beliefVersion,
		&meanBlob, &covBlob, &infoBlob, &shownJSON,
		&st.BeginIdx, &st.EndIdx, &st.AdaptiveShown, &stopReason, &createdStr)
	if err != nil {
		return session.State{}, fmt.Errorf("get version %s: %w", versionID, err)
	}

	var dims []string
	if err := json.Unmarshal([]byte(dimsJSON), &dims); err != nil {
		return session.State{}, fmt.Errorf("unmarshal dimensions: %w", err)
	}
	var shown []string
	if err := json.Unmarshal([]byte(shownJSON), &shown); err != nil {
		return session.State{}, fmt.Errorf("unmarshal shown: %w", err)
	}
	k := len(dims)
	mean := decodeFloats(meanBlob)
	cov := decodeFloats(covBlob)
	info := decodeFloats(infoBlob)
	if len(mean) != k || len(cov) != k*k || len(info) != k*k {
		return session.State{}, fmt.Errorf("version %s: blob sizes disagree with %d dimensions", versionID, k)
	}

	st.Phase = session.Phase(phase)
	st.Belief = belief.Belief{
		VersionID:  beliefVersion,
		Dimensions: dims,
		Mean:       mean,
		Cov:        &linalg.Matrix{N: k, Data: cov},
	}
	st.Info = &linalg.Matrix{N: k, Data: info}
	st.Shown = shown
	if stopReason.Valid {
		st.StopReason = stopReason.String
	}
	st.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	st.UpdatedAt = st.CreatedAt
	return st, nil
}

// VersionSummary is one row of a session's snapshot history.
type VersionSummary struct {
	VersionID  string
	ParentID   string
	Phase      string
	NShown     int
	StopReason string
	CreatedAt  time.Time
}

// ListVersions returns the most recent snapshots of a session, newest first.
func (s *Store) ListVersions(sessionID string, limit int) ([]VersionSummary, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, phase, shown, stop_reason, created_at
		 FROM session_versions WHERE session_id = ?
		 ORDER BY created_at DESC LIMIT ?`, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []VersionSummary
	for rows.Next() {
		var v VersionSummary
		var parent, stopReason sql.NullString
		var shownJSON, createdStr string
		if err := rows.Scan(&v.VersionID, &parent, &v.Phase, &shownJSON, &stopReason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		var shown []string
		_ = json.Unmarshal([]byte(shownJSON), &shown)
		v.NShown = len(shown)
		if parent.Valid {
			v.ParentID = parent.String
		}
		if stopReason.Valid {
			v.StopReason = stopReason.String
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, v)
	}
	return out, rows.Err()
}

// Sessions lists all session ids with an active snapshot.
func (s *Store) Sessions() ([]string, error) {
	rows, err := s.db.Query(`SELECT session_id FROM active_sessions ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// #endregion load

// #region codec

// encodeFloats packs a float64 slice as little-endian bytes.
func encodeFloats(v []float64) []byte {
	buf := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(f))
	}
	return buf
}

// decodeFloats unpacks a little-endian float64 blob.
func decodeFloats(buf []byte) []float64 {
	out := make([]float64, len(buf)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
	}
	return out
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion codec
