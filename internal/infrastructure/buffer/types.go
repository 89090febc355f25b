package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	EntityProfile = "profile"
	EntityTask    = "task"
)

const (
	PriorityHigh   = 1
	PriorityNormal = 3
	PriorityLow    = 5
)

// Item is a write that could not reach Postgres and waits for replay.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	key []byte
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority < PriorityHigh || i.Priority > PriorityLow {
		i.Priority = PriorityNormal
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
