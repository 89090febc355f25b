package postgres

import (
	"encoding/json"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// marshalMap encodes user metadata for the JSONB column. Empty maps become NULL.
func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func unmarshalMap(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

// trackingColumns flattens TimeTracking into time_spent, is_running and
// last_started. A stopped tracker never keeps a start time.
func trackingColumns(tt *domain.TimeTracking) (float64, bool, interface{}) {
	if tt == nil {
		return 0, false, nil
	}
	var lastStarted interface{}
	if tt.IsRunning && tt.LastStarted != nil {
		lastStarted = *tt.LastStarted
	}
	return tt.TimeSpent, tt.IsRunning, lastStarted
}

// nonNilTags keeps the NOT NULL tags column happy.
func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// limitArg binds LIMIT. A non-positive limit becomes NULL, which Postgres
// treats as no limit, matching the in-memory store.
func limitArg(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}
