package provenance

import (
	"database/sql"
	"fmt"
	"time"
)

// #region types

// Entry records one engine decision for audit: which vignette was selected
// or answered, what it bought, and why phases advanced.
type Entry struct {
	SessionID    string
	VignetteID   string
	Phase        string
	EventType    string // "select" | "choice" | "phase_advance" | "stop"
	ChosenOption string
	DetGain      float64
	Reason       string
	CreatedAt    time.Time
}

// #endregion types

// #region log-decision

// Log writes a provenance entry to the provenance_log table.
func Log(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO provenance_log (session_id, vignette_id, phase, event_type, chosen_option, det_gain, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.SessionID,
		nullIfEmpty(entry.VignetteID),
		entry.Phase,
		entry.EventType,
		nullIfEmpty(entry.ChosenOption),
		entry.DetGain,
		nullIfEmpty(entry.Reason),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log decision: %w", err)
	}
	return nil
}

// #endregion log-decision

// #region query

// List returns a session's provenance entries in insertion order.
func List(db *sql.DB, sessionID string) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT session_id, vignette_id, phase, event_type, chosen_option, det_gain, reason, created_at
		 FROM provenance_log WHERE session_id = ? ORDER BY id`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list provenance: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var vignetteID, chosenOption, reason sql.NullString
		var detGain sql.NullFloat64
		var createdStr string
		if err := rows.Scan(&e.SessionID, &vignetteID, &e.Phase, &e.EventType,
			&chosenOption, &detGain, &reason, &createdStr); err != nil {
			return nil, fmt.Errorf("scan provenance: %w", err)
		}
		e.VignetteID = vignetteID.String
		e.ChosenOption = chosenOption.String
		e.Reason = reason.String
		e.DetGain = detGain.Float64
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion query

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
