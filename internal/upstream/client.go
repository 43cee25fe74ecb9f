// Package upstream talks to the HR portal origin the edge sits in front of.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/guttosm/hr-portal-edge/internal/controller"
	"github.com/guttosm/hr-portal-edge/internal/domain/model"
	"github.com/guttosm/hr-portal-edge/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrBodyTooLarge is returned when a response body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("upstream response body too large")

// DefaultMaxBodyBytes caps a buffered response body.
const DefaultMaxBodyBytes int64 = 32 << 20

// hopHeaders are connection-scoped and never forwarded (RFC 9110 section 7.6.1).
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Config configures the upstream client.
type Config struct {
	// BaseURL is the origin, e.g. http://portal:3000.
	BaseURL      string
	MaxBodyBytes int64
	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client implements controller.Fetcher against the portal origin.
type Client struct {
	base         *url.URL
	maxBodyBytes int64
	httpClient   *http.Client
	transport    http.RoundTripper
}

var _ controller.Fetcher = (*Client)(nil)

// New creates a client. BaseURL must be absolute.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream url %q must be absolute", cfg.BaseURL)
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	transport := cfg.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &Client{
		base:         base,
		maxBodyBytes: cfg.MaxBodyBytes,
		transport:    transport,
		httpClient: &http.Client{
			Transport: transport,
			// redirects are part of the response the page sees
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// BaseURL returns the origin URL.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Fetch performs one request against the origin and buffers the response.
// HTTP error statuses are returned as responses; only transport failures
// and oversized bodies are errors.
func (c *Client) Fetch(ctx context.Context, req controller.Request) (*model.CachedResponse, error) {
	target := c.resolve(req.Path, req.RawQuery)
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target.String(), nil)
	if err != nil {
		return nil, err
	}
	if req.Header != nil {
		httpReq.Header = req.Header.Clone()
		removeHopHeaders(httpReq.Header)
	}
	// let the transport negotiate and decode so cached bodies are identity encoded
	httpReq.Header.Del("Accept-Encoding")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordUpstream(time.Since(start), "error")
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		metrics.RecordUpstream(time.Since(start), "error")
		return nil, err
	}
	if int64(len(body)) > c.maxBodyBytes {
		metrics.RecordUpstream(time.Since(start), "too_large")
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, req.Target(), c.maxBodyBytes)
	}
	metrics.RecordUpstream(time.Since(start), "ok")

	header := resp.Header.Clone()
	removeHopHeaders(header)
	// the body is now buffered and may be re-encoded on the way out
	header.Del("Content-Length")

	return &model.CachedResponse{
		URL:        target.String(),
		StatusCode: resp.StatusCode,
		Header:     header,
		Body:       body,
	}, nil
}

// ReverseProxy streams pass-through requests to the origin unchanged.
func (c *Client) ReverseProxy() *httputil.ReverseProxy {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(c.base)
			r.SetXForwarded()
			// responses are compressed once, by the edge
			r.Out.Header.Del("Accept-Encoding")
		},
		Transport: c.transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Warn().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("Upstream pass-through failed")
			w.WriteHeader(http.StatusBadGateway)
		},
	}
}

func (c *Client) resolve(path, rawQuery string) *url.URL {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = rawQuery
	return &u
}

func removeHopHeaders(h http.Header) {
	for _, v := range h.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}
