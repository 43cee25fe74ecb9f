package model

// Notification actions.
const (
	ActionView    = "view"
	ActionDismiss = "dismiss"
)

// NotificationAction is a button shown on a notification.
type NotificationAction struct {
	Action string `json:"action"`
	Title  string `json:"title"`
}

// NotificationData is attached to a notification and read back on click.
type NotificationData struct {
	DateOfArrival int64  `json:"dateOfArrival"`
	URL           string `json:"url"`
}

// NotificationPayload is built per push event and never persisted.
type NotificationPayload struct {
	Tag     string               `json:"tag"`
	Title   string               `json:"title"`
	Body    string               `json:"body"`
	Icon    string               `json:"icon,omitempty"`
	Badge   string               `json:"badge,omitempty"`
	Vibrate []int                `json:"vibrate,omitempty"`
	Data    NotificationData     `json:"data"`
	Actions []NotificationAction `json:"actions,omitempty"`
}
