package api

import "time"

// Upload / SubmitLink
type submitResp struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// ListSessions
type sessionSummary struct {
	SessionID        string    `json:"session_id"`
	Status           string    `json:"status"`
	SubmittedAt      time.Time `json:"submitted_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	OriginalFilename string    `json:"original_filename,omitempty"`
}

// DeleteSession / Cleanup
type messageResp struct {
	Message string `json:"message"`
	Removed int    `json:"removed,omitempty"`
}

type errorResp struct {
	Error string `json:"error"`
}
