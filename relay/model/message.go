package model

import "strings"

// Message is one turn of the conversation history. Content is plain text;
// multimodal payloads are out of scope for this relay.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StringContent returns the message text with surrounding whitespace removed.
func (m Message) StringContent() string {
	return strings.TrimSpace(m.Content)
}

// IsValidRole reports whether the role is one the relay understands.
func (m Message) IsValidRole() bool {
	switch m.Role {
	case "system", "user", "assistant":
		return true
	default:
		return false
	}
}
