package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
	"github.com/guttosm/hr-portal-edge/internal/service"
)

// JournalHandler queries the request and lifecycle journal.
type JournalHandler struct {
	journal service.JournalService
}

var _ RouteGroup = (*JournalHandler)(nil)

// NewJournalHandler creates a journal handler. A nil journal answers 503.
func NewJournalHandler(journal service.JournalService) *JournalHandler {
	return &JournalHandler{journal: journal}
}

// RegisterRoutes registers the journal route.
func (h *JournalHandler) RegisterRoutes(read, _ *gin.RouterGroup) {
	read.GET("/journal", h.Query)
}

// Query handles GET /sw/journal.
func (h *JournalHandler) Query(c *gin.Context) {
	builder := NewResponseBuilder(c)
	if h.journal == nil {
		builder.Error(http.StatusServiceUnavailable, i18n.ErrKeyJournalDisabled, nil)
		return
	}

	var q dto.JournalQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		builder.Error(http.StatusBadRequest, i18n.ErrKeyInvalidRequest, err)
		return
	}

	opts := model.JournalQueryOptions{
		Kind:      q.Kind,
		RequestID: q.RequestID,
		Strategy:  q.Strategy,
		Event:     q.Event,
		Path:      q.Path,
		StartTime: q.Since,
		EndTime:   q.Until,
		Limit:     q.EffectiveLimit(),
		Skip:      q.Skip,
	}

	ctx := c.Request.Context()
	entries, err := h.journal.Query(ctx, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	total, err := h.journal.Count(ctx, opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if entries == nil {
		entries = []model.JournalEntry{}
	}

	builder.SuccessOK(dto.JournalResponse{
		Entries: entries,
		Total:   total,
		Limit:   opts.Limit,
		Skip:    opts.Skip,
	})
}
