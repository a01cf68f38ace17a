package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/BTreeMap/ShowDirector/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// encodeOptions serializes event options for the options_json column.
func encodeOptions(opts []models.EventOption) (string, error) {
	if opts == nil {
		opts = []models.EventOption{}
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return "", fmt.Errorf("failed to encode event options: %w", err)
	}
	return string(b), nil
}

// Timestamps are stored as unix nanoseconds and read back in UTC.
func fromUnixNano(ns int64) time.Time {
	return time.Unix(0, ns).UTC()
}

// scanEvents reads game_events rows selected as
// id, system, title, description, severity, expires_at, options_json, correct_action.
func scanEvents(rows *sql.Rows) ([]models.GameEvent, error) {
	var out []models.GameEvent
	for rows.Next() {
		var e models.GameEvent
		var system, optionsJSON string
		var expiresNs int64
		if err := rows.Scan(&e.ID, &system, &e.Title, &e.Description, &e.Severity, &expiresNs, &optionsJSON, &e.CorrectAction); err != nil {
			return nil, fmt.Errorf("scan game event failed: %w", err)
		}
		e.System = models.SystemCategory(system)
		e.ExpiresAt = fromUnixNano(expiresNs)
		if err := json.Unmarshal([]byte(optionsJSON), &e.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options for event %s: %w", e.ID, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate game event rows: %w", err)
	}
	return out, nil
}

// scanResolutions reads resolutions rows selected as
// session_id, event_id, kind, option_label, stress_delta, score_delta, time.
func scanResolutions(rows *sql.Rows) ([]models.Resolution, error) {
	var out []models.Resolution
	for rows.Next() {
		var r models.Resolution
		var kind string
		var label sql.NullString
		var ns int64
		if err := rows.Scan(&r.SessionID, &r.EventID, &kind, &label, &r.StressDelta, &r.ScoreDelta, &ns); err != nil {
			return nil, fmt.Errorf("scan resolution failed: %w", err)
		}
		r.Kind = models.ResolutionKind(kind)
		r.OptionLabel = label.String
		r.Time = fromUnixNano(ns)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate resolution rows: %w", err)
	}
	return out, nil
}
