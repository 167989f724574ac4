package monitor

import "time"

// Status is the last probe result. Online is true when every required component answered.
type Status struct {
	Online     bool            `json:"online"`
	Components map[string]bool `json:"components"`
	BufferSize int             `json:"buffer_size"`
	LastCheck  time.Time       `json:"last_check"`
}
