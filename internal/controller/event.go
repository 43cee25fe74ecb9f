package controller

import (
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
)

// EventKind names an Event variant.
type EventKind string

const (
	KindInstall           EventKind = "install"
	KindActivate          EventKind = "activate"
	KindFetch             EventKind = "fetch"
	KindPush              EventKind = "push"
	KindNotificationClick EventKind = "notificationclick"
	KindMessage           EventKind = "message"
)

// Message types accepted from the application shell.
const (
	MessageSkipWaiting = "SKIP_WAITING"
	MessageClearCache  = "CLEAR_CACHE"
)

// Event is one of InstallEvent, ActivateEvent, FetchEvent, PushEvent,
// NotificationClickEvent or MessageEvent.
type Event interface {
	Kind() EventKind
	sealed()
}

// InstallEvent pre-caches the app shell.
type InstallEvent struct{}

// ActivateEvent purges stale partitions and claims clients.
type ActivateEvent struct{}

// FetchEvent is an intercepted request.
type FetchEvent struct {
	Request Request
}

// PushEvent carries an optional push payload.
type PushEvent struct {
	Data    []byte
	HasData bool
}

// NotificationClickEvent reports a click on a shown notification. Action is
// empty for the notification body, or one of model.ActionView/ActionDismiss.
type NotificationClickEvent struct {
	Action       string
	Notification model.NotificationPayload
}

// MessageEvent is a message posted by the application shell.
type MessageEvent struct {
	Type string
}

func (InstallEvent) Kind() EventKind           { return KindInstall }
func (ActivateEvent) Kind() EventKind          { return KindActivate }
func (FetchEvent) Kind() EventKind             { return KindFetch }
func (PushEvent) Kind() EventKind              { return KindPush }
func (NotificationClickEvent) Kind() EventKind { return KindNotificationClick }
func (MessageEvent) Kind() EventKind           { return KindMessage }

func (InstallEvent) sealed()           {}
func (ActivateEvent) sealed()          {}
func (FetchEvent) sealed()             {}
func (PushEvent) sealed()              {}
func (NotificationClickEvent) sealed() {}
func (MessageEvent) sealed()           {}

// ActionKind tells the host what to do with an Action.
type ActionKind string

const (
	// ActionNone needs nothing further from the host.
	ActionNone ActionKind = "none"
	// ActionRespond answers the request with Action.Response.
	ActionRespond ActionKind = "respond"
	// ActionPassThrough forwards the request to the network untouched.
	ActionPassThrough ActionKind = "pass_through"
	// ActionNotificationShown reports the notification that was displayed.
	ActionNotificationShown ActionKind = "notification_shown"
	// ActionClientFocused reports an existing window navigated and focused.
	ActionClientFocused ActionKind = "client_focused"
	// ActionWindowOpened reports a newly opened window.
	ActionWindowOpened ActionKind = "window_opened"
)

// Source is where a response came from.
type Source string

const (
	SourceNetwork Source = "network"
	SourceCache   Source = "cache"
	SourceShell   Source = "shell"
)

// Action is the outcome of handling one Event.
type Action struct {
	Kind         ActionKind
	Strategy     Strategy
	Source       Source
	Response     *model.CachedResponse
	Notification *model.NotificationPayload
	ClientID     string
	// Deleted lists partitions removed by activation or CLEAR_CACHE.
	Deleted []string
}
