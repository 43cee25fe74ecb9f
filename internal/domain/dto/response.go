package dto

import (
	"net/http"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
)

const (
	// ErrCodeInvalidRequest indicates an invalid request.
	ErrCodeInvalidRequest = "invalid_request"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"
	// ErrCodeUnauthorized indicates missing or invalid authentication.
	ErrCodeUnauthorized = "unauthorized"
	// ErrCodeForbidden indicates insufficient scope.
	ErrCodeForbidden = "forbidden"
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound = "not_found"
	// ErrCodeRateLimit indicates rate limit exceeded.
	ErrCodeRateLimit = "rate_limit_exceeded"
	// ErrCodeConflict indicates a conflict with current state.
	ErrCodeConflict = "conflict"
	// ErrCodeTimeout indicates a request timeout.
	ErrCodeTimeout = "timeout"
	// ErrCodeUpstreamUnavailable indicates the portal failed and no fallback existed.
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
	// ErrCodeUnavailable indicates a dependency the endpoint needs is not configured.
	ErrCodeUnavailable = "service_unavailable"
)

// SuccessResponse wraps successful API responses with metadata.
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	Message   string      `json:"message,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorResponse represents a standardized error response for the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Details contains additional error details, keyed by field.
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewError creates a new ErrorResponse with the given code and message.
func NewError(code, message string) ErrorResponse {
	return ErrorResponse{
		Error:     code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithRequestID adds a request ID to the error response.
func (e ErrorResponse) WithRequestID(requestID string) ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetails attaches field level details.
func (e ErrorResponse) WithDetails(details map[string]string) ErrorResponse {
	e.Details = details
	return e
}

// ErrCodeFromStatus returns the appropriate error code for an HTTP status.
func ErrCodeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusTooManyRequests:
		return ErrCodeRateLimit
	case http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return ErrCodeTimeout
	case http.StatusBadGateway:
		return ErrCodeUpstreamUnavailable
	case http.StatusServiceUnavailable:
		return ErrCodeUnavailable
	default:
		return ErrCodeInternal
	}
}

// StatusResponse describes the running controller version.
type StatusResponse struct {
	Version       string   `json:"version"`
	State         string   `json:"state"`
	Controlling   bool     `json:"controlling"`
	CurrentCaches []string `json:"current_caches"`
	Partitions    []string `json:"partitions"`
	Clients       int      `json:"clients"`
	Notifications int      `json:"notifications"`
}

// CacheSummary describes one cache partition.
type CacheSummary struct {
	Name    string   `json:"name"`
	Current bool     `json:"current"`
	Entries int      `json:"entries"`
	Keys    []string `json:"keys,omitempty"`
}

// ActionResponse reports the outcome of a control plane event.
type ActionResponse struct {
	Action       string                     `json:"action"`
	State        string                     `json:"state"`
	Deleted      []string                   `json:"deleted,omitempty"`
	ClientID     string                     `json:"client_id,omitempty"`
	Notification *model.NotificationPayload `json:"notification,omitempty"`
}

// NewActionResponse converts a controller Action.
func NewActionResponse(action controller.Action, state controller.State) ActionResponse {
	return ActionResponse{
		Action:       string(action.Kind),
		State:        state.String(),
		Deleted:      action.Deleted,
		ClientID:     action.ClientID,
		Notification: action.Notification,
	}
}

// JournalResponse is a page of journal entries.
type JournalResponse struct {
	Entries []model.JournalEntry `json:"entries"`
	Total   int64                `json:"total"`
	Limit   int                  `json:"limit"`
	Skip    int                  `json:"skip"`
}
