// Package dto defines Data Transfer Objects for HTTP request and response handling.
//
// DTOs are used to decouple the HTTP layer from the controller,
// providing validation and serialization for the control plane.
package dto

import "time"

// MessageRequest is a message posted by the application shell,
// e.g. {"type": "SKIP_WAITING"}.
type MessageRequest struct {
	Type string `json:"type" binding:"required"`
}

// NotificationClickRequest reports a click on a displayed notification.
// Action is empty for the notification body, "view" or "dismiss".
type NotificationClickRequest struct {
	Action string `json:"action" binding:"omitempty,oneof=view dismiss"`
}

// ClientStateRequest is reported by a window when its url or focus changes.
type ClientStateRequest struct {
	URL     string `json:"url"`
	Focused bool   `json:"focused"`
}

// JournalQuery filters GET /sw/journal.
type JournalQuery struct {
	Kind      string     `form:"kind" binding:"omitempty,oneof=request lifecycle control"`
	RequestID string     `form:"request_id"`
	Strategy  string     `form:"strategy"`
	Event     string     `form:"event"`
	Path      string     `form:"path"`
	Since     *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until     *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Skip      int        `form:"skip" binding:"omitempty,min=0"`
}

// DefaultJournalLimit applies when JournalQuery.Limit is unset.
const DefaultJournalLimit = 50

// EffectiveLimit returns Limit or DefaultJournalLimit.
func (q JournalQuery) EffectiveLimit() int {
	if q.Limit <= 0 {
		return DefaultJournalLimit
	}
	return q.Limit
}
