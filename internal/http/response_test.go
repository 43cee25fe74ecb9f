package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/i18n"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithRequestID(handler gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Any("/test", handler)

	req.Header.Set(middleware.RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestResponseBuilder(t *testing.T) {
	tests := []struct {
		name       string
		handler    gin.HandlerFunc
		locale     string
		wantStatus int
		check      func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "success carries data, request id and message",
			handler: func(c *gin.Context) {
				NewResponseBuilder(c).Success(http.StatusAccepted, map[string]int{"entries": 3}, i18n.SuccessKeyActivated)
			},
			wantStatus: http.StatusAccepted,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var data map[string]int
				resp := decodeData(t, w.Body.Bytes(), &data)
				assert.Equal(t, 3, data["entries"])
				assert.Equal(t, "req-1", resp.RequestID)
				assert.Equal(t, i18n.GetTranslator().Translate(i18n.SuccessKeyActivated, "en"), resp.Message)
				assert.False(t, resp.Timestamp.IsZero())
			},
		},
		{
			name:       "success without message key",
			handler:    func(c *gin.Context) { NewResponseBuilder(c).SuccessOK([]string{"a"}) },
			wantStatus: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var data []string
				resp := decodeData(t, w.Body.Bytes(), &data)
				assert.Equal(t, []string{"a"}, data)
				assert.Empty(t, resp.Message)
			},
		},
		{
			name: "error is translated for the caller",
			handler: func(c *gin.Context) {
				NewResponseBuilder(c).Error(http.StatusNotFound, i18n.ErrKeyNotificationNotFound, nil)
			},
			locale:     "nl-NL,nl;q=0.9",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				resp := decodeError(t, w.Body.Bytes())
				assert.Equal(t, dto.ErrCodeNotFound, resp.Error)
				assert.Equal(t, i18n.GetTranslator().Translate(i18n.ErrKeyNotificationNotFound, "nl"), resp.Message)
				assert.Equal(t, "req-1", resp.RequestID)
			},
		},
		{
			name: "error records the cause on the context",
			handler: func(c *gin.Context) {
				NewResponseBuilder(c).ErrorWithDetails(http.StatusBadRequest, i18n.ErrKeyInvalidRequestBody,
					errors.New("bad field"), map[string]string{"type": "required"})
				assert.Len(t, c.Errors, 1)
				assert.True(t, c.IsAborted())
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, map[string]string{"type": "required"}, decodeError(t, w.Body.Bytes()).Details)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.locale != "" {
				req.Header.Set("Accept-Language", tt.locale)
			}

			w := serveWithRequestID(tt.handler, req)

			require.Equal(t, tt.wantStatus, w.Code)
			tt.check(t, w)
		})
	}
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantOK      bool
		wantDetails map[string]string
	}{
		{name: "valid body", body: `{"type":"SKIP_WAITING"}`, wantOK: true},
		{name: "missing required field", body: `{}`, wantDetails: map[string]string{"type": "required"}},
		{name: "malformed json has no field details", body: `{"type":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *dto.MessageRequest
			handler := func(c *gin.Context) {
				req, ok := BindJSON[dto.MessageRequest](c)
				assert.Equal(t, tt.wantOK, ok)
				got = req
				if ok {
					c.Status(http.StatusNoContent)
				}
			}

			w := serveWithRequestID(handler, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(tt.body)))

			if tt.wantOK {
				assert.Equal(t, http.StatusNoContent, w.Code)
				require.NotNil(t, got)
				assert.Equal(t, "SKIP_WAITING", got.Type)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeError(t, w.Body.Bytes())
			assert.Equal(t, dto.ErrCodeInvalidRequest, resp.Error)
			assert.Equal(t, tt.wantDetails, resp.Details)
		})
	}
}

func TestJSONName(t *testing.T) {
	assert.Equal(t, "type", jsonName("Type"))
	assert.Equal(t, "", jsonName(""))
}
