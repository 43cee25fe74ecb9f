// Package i18n provides internationalization support for the HR portal edge.
package i18n

// Error message translation keys.
const (
	// ErrKeyInvalidRequest indicates an invalid request.
	ErrKeyInvalidRequest = "error.invalid_request"
	// ErrKeyInvalidRequestBody indicates an invalid request body.
	ErrKeyInvalidRequestBody = "error.invalid_request_body"
	// ErrKeyInternalError indicates an internal server error.
	ErrKeyInternalError = "error.internal_error"
	// ErrKeyUnauthorized indicates missing or invalid authentication.
	ErrKeyUnauthorized = "error.unauthorized"
	// ErrKeyAPIKeyRequired indicates that an API key is required.
	ErrKeyAPIKeyRequired = "error.api_key_required"
	// ErrKeyInvalidAPIKey indicates an invalid API key.
	ErrKeyInvalidAPIKey = "error.invalid_api_key"
	// ErrKeyForbidden indicates the token lacks the required scope.
	ErrKeyForbidden = "error.forbidden"
	// ErrKeyNotFound indicates a resource was not found.
	ErrKeyNotFound = "error.not_found"
	// ErrKeyRateLimitExceeded indicates rate limit exceeded.
	ErrKeyRateLimitExceeded = "error.rate_limit_exceeded"
	// ErrKeyConflict indicates a conflict with current state.
	ErrKeyConflict = "error.conflict"
	// ErrKeyInvalidToken indicates an invalid or expired JWT token.
	ErrKeyInvalidToken = "error.invalid_token"
	// ErrKeyTokenRequired indicates that a JWT token is required.
	ErrKeyTokenRequired = "error.token_required"
	// ErrKeyTimeout indicates a request timeout.
	ErrKeyTimeout = "error.timeout"
	// ErrKeyUpstreamUnavailable indicates the portal could not be reached and nothing was cached.
	ErrKeyUpstreamUnavailable = "error.upstream_unavailable"
	// ErrKeyNotificationNotFound indicates no notification is displayed under the tag.
	ErrKeyNotificationNotFound = "error.notification_not_found"
	// ErrKeyClientNotFound indicates the window id is not attached.
	ErrKeyClientNotFound = "error.client_not_found"
	// ErrKeyInvalidTransition indicates a lifecycle step out of order.
	ErrKeyInvalidTransition = "error.invalid_transition"
	// ErrKeyJournalDisabled indicates the journal is not configured.
	ErrKeyJournalDisabled = "error.journal_disabled"
)

// Success message translation keys.
const (
	// SuccessKeyMessageHandled indicates a control message was dispatched.
	SuccessKeyMessageHandled = "success.message_handled"
	// SuccessKeyInstalled indicates the app shell was precached.
	SuccessKeyInstalled = "success.installed"
	// SuccessKeyActivated indicates the controller took control.
	SuccessKeyActivated = "success.activated"
)
