package controller

import (
	"context"
	"fmt"
	"sync"

	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// install pre-caches the app shell. Pre-cache failures are logged and do not
// abort the install. The version then skips waiting.
func (c *Controller) install(ctx context.Context) (Action, error) {
	if err := c.lifecycle.beginInstall(); err != nil {
		return Action{}, err
	}

	fields := map[string]interface{}{"assets": len(c.cfg.PrecacheAssets)}
	if err := c.precache(ctx); err != nil {
		log.Warn().Err(err).Str("partition", c.cfg.StaticCache).Msg("Pre-cache failed, continuing install")
		fields["error"] = err.Error()
	}

	c.lifecycle.SkipWaiting()
	if err := c.lifecycle.finishInstall(); err != nil {
		return Action{}, err
	}
	c.record(ctx, "install", fields)
	return Action{Kind: ActionNone}, nil
}

// precache fetches every asset and writes them only if all succeeded with an
// ok status. Writing overwrites, so repeated installs never duplicate entries.
func (c *Controller) precache(ctx context.Context) error {
	cache, err := c.storage.Open(ctx, c.cfg.StaticCache)
	if err != nil {
		return err
	}

	requests := make([]Request, len(c.cfg.PrecacheAssets))
	responses := make([]*model.CachedResponse, len(c.cfg.PrecacheAssets))

	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range c.cfg.PrecacheAssets {
		requests[i] = NewGetRequest(asset, ModeNoCORS)
		g.Go(func() error {
			resp, err := c.fetcher.Fetch(gctx, requests[i])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", asset, err)
			}
			if !resp.OK() {
				return fmt.Errorf("fetch %s: status %d", asset, resp.StatusCode)
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	now := c.now()
	g, gctx = errgroup.WithContext(ctx)
	for i := range requests {
		g.Go(func() error {
			stored := responses[i].SharedCopy()
			stored.StoredAt = now
			return cache.Put(gctx, requests[i].Key(), stored)
		})
	}
	return g.Wait()
}

// activate deletes every partition outside the current allow-list, then
// claims all clients. Deletion and claim failures are logged; activation
// still completes.
func (c *Controller) activate(ctx context.Context) (Action, error) {
	if err := c.lifecycle.beginActivate(); err != nil {
		return Action{}, err
	}

	keep := make(map[string]bool, 3)
	for _, name := range c.cfg.CurrentCaches() {
		keep[name] = true
	}
	deleted, err := c.deletePartitions(ctx, func(name string) bool { return !keep[name] })
	if err != nil {
		log.Warn().Err(err).Msg("Failed to purge stale cache partitions")
	}

	if err := c.clients.Claim(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to claim clients")
	}

	if err := c.lifecycle.finishActivate(); err != nil {
		return Action{}, err
	}
	c.record(ctx, "activate", map[string]interface{}{"deleted": deleted})
	return Action{Kind: ActionNone, Deleted: deleted}, nil
}

// clearCache deletes every partition regardless of name.
func (c *Controller) clearCache(ctx context.Context) (Action, error) {
	deleted, err := c.deletePartitions(ctx, func(string) bool { return true })
	if err != nil {
		log.Warn().Err(err).Msg("Failed to clear cache partitions")
	}
	c.record(ctx, "clear_cache", map[string]interface{}{"deleted": deleted})
	return Action{Kind: ActionNone, Deleted: deleted}, nil
}

// deletePartitions removes, in parallel, every partition selected by doomed.
// It returns the names actually removed, in storage order.
func (c *Controller) deletePartitions(ctx context.Context, doomed func(string) bool) ([]string, error) {
	names, err := c.storage.Keys(ctx)
	if err != nil {
		return []string{}, err
	}

	var mu sync.Mutex
	removed := make(map[string]bool, len(names))
	// one failed delete must not cancel the others
	var g errgroup.Group
	for _, name := range names {
		if !doomed(name) {
			continue
		}
		g.Go(func() error {
			ok, err := c.storage.Delete(ctx, name)
			if err != nil {
				return err
			}
			if ok {
				mu.Lock()
				removed[name] = true
				mu.Unlock()
				log.Info().Str("partition", name).Msg("Deleted cache partition")
			}
			return nil
		})
	}
	err = g.Wait()

	deleted := make([]string, 0, len(removed))
	for _, name := range names {
		if removed[name] {
			deleted = append(deleted, name)
		}
	}
	if remaining, kerr := c.storage.Keys(ctx); kerr == nil {
		metrics.SetPartitions(len(remaining))
	}
	return deleted, err
}
