package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Entities that can be buffered.
const (
	EntityEmployee = "employee"
)

const (
	minPriority     = 1
	maxPriority     = 5
	defaultPriority = 3
)

// Item is a directory write waiting for the primary store to come back.
type Item struct {
	ID        string          `json:"id"`
	SubjectID string          `json:"subject_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	key []byte
}

func (i *Item) normalize(now time.Time) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority < minPriority || i.Priority > maxPriority {
		i.Priority = defaultPriority
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = now
	}
}
