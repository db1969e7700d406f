package model

type Error struct {
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
	// RawError preserves the original upstream or internal error for diagnostics.
	// Omitted from JSON to avoid leaking provider internals.
	RawError error `json:"-"`
}

type ErrorWithStatusCode struct {
	Error
	StatusCode int `json:"status_code"`
}

// ErrorResponse is the wire shape every relay failure is reported with.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}
