//go:build integration

package http

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/circuitbreaker"
	"github.com/guttosm/hr-portal-edge/internal/domain/dto"
	"github.com/guttosm/hr-portal-edge/internal/middleware"
	"github.com/guttosm/hr-portal-edge/internal/repository"
	"github.com/guttosm/hr-portal-edge/internal/service"
	"github.com/guttosm/hr-portal-edge/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournal_Integration(t *testing.T) {
	ctx := context.Background()

	db, err := repository.NewMongoDB(testutil.GetSharedContainerURI(), testutil.SanitizeDBName(t.Name()))
	require.NoError(t, err)
	defer func() {
		_ = db.Database.Drop(ctx)
		_ = db.Close(ctx)
	}()

	cb := circuitbreaker.New(circuitbreaker.DefaultConfig())
	journal := service.NewJournalService(repository.NewJournalRepositoryWithCircuitBreaker(repository.NewJournalRepository(db), cb))
	writer := middleware.NewJournalWriter(journal, middleware.JournalWriterConfig{
		BufferSize:    100,
		NumWorkers:    1,
		BatchSize:     1,
		FlushInterval: 10 * time.Millisecond,
		WriteTimeout:  5 * time.Second,
	})
	defer writer.Stop()

	cfg := DefaultRouterConfig()
	cfg.Journal = writer
	e := newEdge(t, cfg)
	e.router = NewRouter(Handlers{
		Proxy:   NewProxyHandler(e.ctl, http.NotFoundHandler()),
		Health:  NewHealthHandler(e.ctl.Lifecycle()),
		Control: []RouteGroup{NewControlHandler(e.ctl, e.hub, writer), NewJournalHandler(journal)},
	}, cfg)
	e.activate(t)

	require.Equal(t, http.StatusOK, e.get("/icons/icon-72x72.png", "no-cors").Code)

	t.Run("records proxied requests with their strategy", func(t *testing.T) {
		var page dto.JournalResponse
		require.Eventually(t, func() bool {
			w := e.get("/sw/journal?kind=request&strategy=cache_first", "")
			if w.Code != http.StatusOK {
				return false
			}
			decodeData(t, w.Body.Bytes(), &page)
			return page.Total >= 1
		}, 5*time.Second, 50*time.Millisecond)

		assert.Equal(t, "/icons/icon-72x72.png", page.Entries[0].Path)
		assert.Equal(t, "cache", page.Entries[0].Source)
	})

	t.Run("records control actions", func(t *testing.T) {
		var page dto.JournalResponse
		require.Eventually(t, func() bool {
			w := e.get("/sw/journal?kind=control&event=activate", "")
			if w.Code != http.StatusOK {
				return false
			}
			decodeData(t, w.Body.Bytes(), &page)
			return page.Total == 1
		}, 5*time.Second, 50*time.Millisecond)

		assert.Equal(t, "/sw/lifecycle/activate", page.Entries[0].Path)
	})
}
