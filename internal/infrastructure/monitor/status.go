package monitor

import "time"

// Status is the last observed health of every registered dependency.
type Status struct {
	Services   map[string]bool `json:"services"`
	BufferSize int             `json:"buffer_size"`
	LastCheck  time.Time       `json:"last_check"`
}
