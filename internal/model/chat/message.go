package chat

import "time"

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one (role, content) entry of a transcript.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Visible drops system entries, which are never rendered.
func Visible(transcript []Message) []Message {
	visible := make([]Message, 0, len(transcript))
	for _, msg := range transcript {
		if msg.Role == RoleSystem {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}
