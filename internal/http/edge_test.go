package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
	"github.com/guttosm/hr-portal-edge/internal/clients"
	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/upstream"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// edge is a full edge in front of a fake portal origin.
type edge struct {
	router  *gin.Engine
	ctl     *controller.Controller
	hub     *clients.Hub
	storage *cachestorage.PartitionStorage
	offline atomic.Bool
	hits    atomic.Int64
}

func (e *edge) origin(w http.ResponseWriter, r *http.Request) {
	if e.offline.Load() {
		panic(http.ErrAbortHandler)
	}
	e.hits.Add(1)
	switch {
	case r.URL.Path == "/index.html":
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>shell</html>")
	case strings.HasPrefix(r.URL.Path, "/icons/"):
		w.Header().Set("Content-Type", "image/png")
		_, _ = io.WriteString(w, "icon")
	case r.URL.Path == "/api/settings":
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"app_name":"Acme HR","logo_url":"/logo.png"}`)
	case r.URL.Path == "/api/employees" && r.Method == http.MethodPost:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7}`)
	case r.URL.Path == "/dashboard":
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html>dashboard</html>")
	case r.URL.Path == "/app.js":
		w.Header().Set("Content-Type", "application/javascript")
		_, _ = io.WriteString(w, "console.log('hr')")
	default:
		http.NotFound(w, r)
	}
}

func newEdge(t *testing.T, cfg RouterConfig) *edge {
	t.Helper()
	e := &edge{
		hub:     clients.NewHub(),
		storage: cachestorage.NewMemory(),
	}
	srv := httptest.NewServer(http.HandlerFunc(e.origin))
	t.Cleanup(srv.Close)

	up, err := upstream.New(upstream.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	ctlCfg := controller.DefaultConfig()
	ctlCfg.Origin = "https://hr.example.com"
	e.ctl, err = controller.New(ctlCfg, e.storage, up, e.hub, e.hub)
	require.NoError(t, err)

	e.router = NewRouter(Handlers{
		Proxy:  NewProxyHandler(e.ctl, up.ReverseProxy()),
		Health: NewHealthHandler(e.ctl.Lifecycle()),
		Control: []RouteGroup{
			NewControlHandler(e.ctl, e.hub, cfg.Journal),
			NewClientsHandler(e.hub, 0),
			NewJournalHandler(nil),
		},
	}, cfg)
	return e
}

// activate installs and activates through the control plane.
func (e *edge) activate(t *testing.T) {
	t.Helper()
	for _, step := range []string{"/sw/lifecycle/install", "/sw/lifecycle/activate"} {
		w := e.do(httptest.NewRequest(http.MethodPost, step, nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	require.Equal(t, controller.StateActive, e.ctl.Lifecycle().State())
}

func (e *edge) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *edge) get(target, mode string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if mode != "" {
		req.Header.Set("Sec-Fetch-Mode", mode)
	}
	return e.do(req)
}

// decodeData unmarshals the data field of a SuccessResponse into v.
func decodeData(t *testing.T, body []byte, v interface{}) dto.SuccessResponse {
	t.Helper()
	var resp dto.SuccessResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, v))
	return resp
}

func decodeError(t *testing.T, body []byte) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func partitionKeys(t *testing.T, s cachestorage.Storage, name string) []string {
	t.Helper()
	c, err := s.Open(context.Background(), name)
	require.NoError(t, err)
	keys, err := c.Keys(context.Background())
	require.NoError(t, err)
	return keys
}
