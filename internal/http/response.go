package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
)

// ResponseBuilder writes the control plane's JSON envelopes.
type ResponseBuilder struct {
	c *gin.Context
}

// NewResponseBuilder creates a builder for c.
func NewResponseBuilder(c *gin.Context) *ResponseBuilder {
	return &ResponseBuilder{c: c}
}

func (b *ResponseBuilder) translate(key string) string {
	return i18n.GetTranslator().Translate(key, i18n.GetLocale(b.c))
}

// Success sends data in a SuccessResponse. messageKey is translated when set.
func (b *ResponseBuilder) Success(statusCode int, data interface{}, messageKey string) {
	resp := dto.SuccessResponse{
		Data:      data,
		RequestID: middleware.GetRequestID(b.c),
		Timestamp: time.Now(),
	}
	if messageKey != "" {
		resp.Message = b.translate(messageKey)
	}
	b.c.JSON(statusCode, resp)
}

// SuccessOK sends data with 200 OK.
func (b *ResponseBuilder) SuccessOK(data interface{}) {
	b.Success(http.StatusOK, data, "")
}

// Error aborts with a translated ErrorResponse. err, when set, is attached
// to the context so the request logger records it.
func (b *ResponseBuilder) Error(statusCode int, messageKey string, err error) {
	b.ErrorWithDetails(statusCode, messageKey, err, nil)
}

// ErrorWithDetails is Error with per-field details.
func (b *ResponseBuilder) ErrorWithDetails(statusCode int, messageKey string, err error, details map[string]string) {
	if err != nil {
		_ = b.c.Error(err).SetType(gin.ErrorTypePublic)
	}
	resp := dto.NewError(dto.ErrCodeFromStatus(statusCode), b.translate(messageKey)).
		WithRequestID(middleware.GetRequestID(b.c)).
		WithDetails(details)
	b.c.AbortWithStatusJSON(statusCode, resp)
}

// BindJSON decodes the body into a new T. On failure it has already written a
// 400 naming the offending fields and returns false.
func BindJSON[T any](c *gin.Context) (*T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		NewResponseBuilder(c).ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody, err, fieldErrors(err))
		return nil, false
	}
	return &req, true
}

// fieldErrors maps validation failures to json field name and failed tag.
func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[jsonName(fe.Field())] = fe.Tag()
	}
	return details
}

// jsonName lower-cases the first letter, which matches every request DTO.
func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
