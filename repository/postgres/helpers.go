package postgres

import (
	"encoding/json"
	"time"
)

// marshalMap encodes metadata for a JSONB column; empty maps are stored as NULL.
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

// nullTime lets COALESCE fall back to NOW() for records that were never saved.
func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
