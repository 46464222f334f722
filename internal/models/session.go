package models

import "time"

// Conversation steps. IDLE has no representation: a user with no stored
// session is idle.
const (
	StepAwaitingInfo = "waiting_info"
)

// SessionTTL is how long an intake conversation may stay open waiting for
// the user's reply before it expires.
const SessionTTL = 300 * time.Second

// Session is the per-user conversation state stored between messages.
type Session struct {
	ChatID    string    `json:"chat_id"`
	Step      string    `json:"step"`
	CreatedAt time.Time `json:"created_at"`
}
