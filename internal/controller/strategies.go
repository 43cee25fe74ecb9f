package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/rs/zerolog/log"
)

func (c *Controller) fetch(ctx context.Context, req Request) (Action, error) {
	// no version has claimed clients yet
	if !c.lifecycle.Controlling() {
		return passThrough(), nil
	}

	strategy := Classify(req)
	var (
		action Action
		err    error
	)
	switch strategy {
	case StrategyNetworkFirst:
		action, err = c.networkFirst(ctx, req, strategy, "")
	case StrategyNetworkFirstWrite:
		action, err = c.networkFirst(ctx, req, strategy, c.cfg.DynamicCache)
	case StrategyNavigate:
		action, err = c.navigate(ctx, req)
	case StrategyCacheFirst:
		action, err = c.cacheFirst(ctx, req)
	default:
		action = passThrough()
	}

	if err != nil {
		metrics.RecordFetch(string(strategy), "error")
		return action, err
	}
	metrics.RecordFetch(string(strategy), string(action.Source))
	return action, nil
}

func passThrough() Action {
	return Action{Kind: ActionPassThrough, Strategy: StrategyPassThrough}
}

func respond(resp *model.CachedResponse, strategy Strategy, source Source) Action {
	return Action{Kind: ActionRespond, Strategy: strategy, Source: source, Response: resp}
}

func networkError(req Request, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.Target(), err)
}

// networkFirst fetches and, when partition is set, stores the response there.
// On a transport failure it falls back to any cached copy.
func (c *Controller) networkFirst(ctx context.Context, req Request, strategy Strategy, partition string) (Action, error) {
	if partition != "" {
		req = req.whole()
	}
	resp, err := c.fetcher.Fetch(ctx, req)
	if err == nil {
		if partition != "" {
			c.put(ctx, partition, req.Key(), resp)
		}
		return respond(resp, strategy, SourceNetwork), nil
	}

	if cached := c.match(ctx, req.Key()); cached != nil {
		log.Debug().Err(err).Str("path", req.Path).Msg("Network failed, served from cache")
		return respond(cached, strategy, SourceCache), nil
	}
	return Action{Strategy: strategy}, networkError(req, err)
}

// navigate always tries the network and falls back to the cached shell.
func (c *Controller) navigate(ctx context.Context, req Request) (Action, error) {
	resp, err := c.fetcher.Fetch(ctx, req)
	if err == nil {
		return respond(resp, StrategyNavigate, SourceNetwork), nil
	}
	if shell := c.shell(ctx); shell != nil {
		log.Debug().Err(err).Str("path", req.Path).Msg("Navigation failed, served app shell")
		return respond(shell, StrategyNavigate, SourceShell), nil
	}
	return Action{Strategy: StrategyNavigate}, networkError(req, err)
}

// cacheFirst answers from any cache, otherwise fetches and stores the
// response in the static cache.
func (c *Controller) cacheFirst(ctx context.Context, req Request) (Action, error) {
	if cached := c.match(ctx, req.Key()); cached != nil {
		return respond(cached, StrategyCacheFirst, SourceCache), nil
	}

	resp, err := c.fetcher.Fetch(ctx, req.whole())
	if err == nil {
		c.put(ctx, c.cfg.StaticCache, req.Key(), resp)
		return respond(resp, StrategyCacheFirst, SourceNetwork), nil
	}

	if req.IsNavigate() {
		if shell := c.shell(ctx); shell != nil {
			return respond(shell, StrategyCacheFirst, SourceShell), nil
		}
	}
	return Action{Strategy: StrategyCacheFirst}, networkError(req, err)
}

// match looks key up in every partition. Storage errors count as a miss.
func (c *Controller) match(ctx context.Context, key string) *model.CachedResponse {
	resp, err := c.storage.Match(ctx, key)
	if err != nil {
		if !errors.Is(err, cachestorage.ErrNotFound) {
			log.Warn().Err(err).Str("key", key).Msg("Cache lookup failed")
		}
		return nil
	}
	return resp
}

func (c *Controller) shell(ctx context.Context) *model.CachedResponse {
	return c.match(ctx, cachestorage.Key("GET", c.cfg.ShellDocument))
}

// put stores a copy of resp without per-user headers, since every client
// shares the partitions. Failures are logged and otherwise ignored.
func (c *Controller) put(ctx context.Context, partition, key string, resp *model.CachedResponse) {
	if !resp.Storable() {
		return
	}
	cache, err := c.storage.Open(ctx, partition)
	if err != nil {
		log.Warn().Err(err).Str("partition", partition).Msg("Failed to open cache partition")
		return
	}
	stored := resp.SharedCopy()
	stored.StoredAt = c.now()
	if err := cache.Put(ctx, key, stored); err != nil {
		log.Warn().Err(err).Str("partition", partition).Str("key", key).Msg("Failed to write cache entry")
	}
}
