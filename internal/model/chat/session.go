package chat

import "time"

// Session captures a transient anonymous conversation. It lives as long as
// the browser page that created it.
type Session struct {
	ID        string    `json:"id"`
	PersonaID string    `json:"personaId"`
	CreatedAt time.Time `json:"createdAt"`
}
