// Package model provides domain models for the HR portal edge.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Journal entry kinds.
const (
	JournalKindRequest   = "request"
	JournalKindLifecycle = "lifecycle"
	JournalKindControl   = "control"
)

// JournalEntry is a persisted record of a proxied request, a controller
// lifecycle event or a control plane action.
// Use the Fields map to store any additional context-specific data.
type JournalEntry struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Timestamp  time.Time              `bson:"timestamp" json:"timestamp"`
	Kind       string                 `bson:"kind" json:"kind"`
	Level      string                 `bson:"level" json:"level"`
	Message    string                 `bson:"message" json:"message"`
	RequestID  string                 `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Method     string                 `bson:"method,omitempty" json:"method,omitempty"`
	Path       string                 `bson:"path,omitempty" json:"path,omitempty"`
	StatusCode int                    `bson:"status_code,omitempty" json:"status_code,omitempty"`
	Duration   int64                  `bson:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	IP         string                 `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent  string                 `bson:"user_agent,omitempty" json:"user_agent,omitempty"`
	Error      string                 `bson:"error,omitempty" json:"error,omitempty"`
	Strategy   string                 `bson:"strategy,omitempty" json:"strategy,omitempty"`
	Source     string                 `bson:"source,omitempty" json:"source,omitempty"`
	Event      string                 `bson:"event,omitempty" json:"event,omitempty"` // e.g. "install", "activate", "clear_cache"
	Version    string                 `bson:"version,omitempty" json:"version,omitempty"`
	Fields     map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
}

// WithField adds a field to the entry's Fields map.
func (e *JournalEntry) WithField(key string, value interface{}) *JournalEntry {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// WithFields adds multiple fields to the entry's Fields map.
func (e *JournalEntry) WithFields(fields map[string]interface{}) *JournalEntry {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	for k, v := range fields {
		e.Fields[k] = v
	}
	return e
}

// JournalQueryOptions provides options for querying the journal.
type JournalQueryOptions struct {
	Kind      string
	RequestID string
	Strategy  string
	Event     string
	Path      string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Skip      int
}
