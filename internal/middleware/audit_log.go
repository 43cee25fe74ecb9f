package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/logger"
)

// AuditLog journals a control plane action such as a push, a message or a
// manual lifecycle step.
func AuditLog(writer *JournalWriter, c *gin.Context, event, message string, fields map[string]interface{}) {
	writer.Log(auditEntry(c, "info", event, message, fields))
}

// AuditLogError journals a failed control plane action.
func AuditLogError(writer *JournalWriter, c *gin.Context, event, message string, err error, fields map[string]interface{}) {
	entry := auditEntry(c, "error", event, message, fields)
	entry.Error = err.Error()
	writer.Log(entry)
}

func auditEntry(c *gin.Context, level, event, message string, fields map[string]interface{}) *model.JournalEntry {
	entry := &model.JournalEntry{
		Timestamp: time.Now(),
		Kind:      model.JournalKindControl,
		Level:     level,
		Message:   message,
		RequestID: GetRequestID(c),
		Method:    c.Request.Method,
		Path:      c.Request.URL.Path,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Event:     event,
		Fields:    fields,
	}
	if claims := GetClaims(c); claims != nil {
		entry.WithField("subject", claims.Subject)
	}
	return entry
}

// LifecycleRecorder journals controller lifecycle events.
type LifecycleRecorder struct {
	writer *JournalWriter
}

var _ controller.Recorder = (*LifecycleRecorder)(nil)

// NewLifecycleRecorder creates a recorder. A nil writer only logs.
func NewLifecycleRecorder(writer *JournalWriter) *LifecycleRecorder {
	return &LifecycleRecorder{writer: writer}
}

// RecordLifecycle logs the event and enqueues it for the journal.
func (r *LifecycleRecorder) RecordLifecycle(_ context.Context, event, version string, fields map[string]interface{}) {
	log := logger.WithContext(fields)
	log.Info().Str("event", event).Str("version", version).Msg("Lifecycle event")

	r.writer.Log(&model.JournalEntry{
		Timestamp: time.Now(),
		Kind:      model.JournalKindLifecycle,
		Level:     "info",
		Message:   "Lifecycle " + event,
		Event:     event,
		Version:   version,
		Fields:    fields,
	})
}
