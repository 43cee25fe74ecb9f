package controller

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/guttosm/hr-portal-edge/internal/cachestorage"
)

// RequestMode mirrors the Fetch API request mode.
type RequestMode string

const (
	ModeNavigate   RequestMode = "navigate"
	ModeSameOrigin RequestMode = "same-origin"
	ModeNoCORS     RequestMode = "no-cors"
	ModeCORS       RequestMode = "cors"
)

// Request is an intercepted fetch.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Mode     RequestMode
	Header   http.Header
}

// NewGetRequest builds a GET for target, which may carry a query string.
func NewGetRequest(target string, mode RequestMode) Request {
	req := Request{Method: http.MethodGet, Path: target, Mode: mode}
	if u, err := url.Parse(target); err == nil {
		req.Path = u.Path
		req.RawQuery = u.RawQuery
	}
	return req
}

// Target is the path with its query.
func (r Request) Target() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// Key is the cache key for the request.
func (r Request) Key() string {
	return cachestorage.Key(r.Method, r.Target())
}

// rangeHeaders select part of a representation.
var rangeHeaders = []string{"Range", "If-Range"}

// whole returns r asking for the complete representation, so a response that
// will be stored under r's key is never a fragment.
func (r Request) whole() Request {
	if r.Header == nil {
		return r
	}
	r.Header = r.Header.Clone()
	for _, h := range rangeHeaders {
		r.Header.Del(h)
	}
	return r
}

// IsNavigate reports a top-level document load.
func (r Request) IsNavigate() bool {
	return r.Mode == ModeNavigate
}

// DetectMode derives the request mode from Fetch Metadata headers. Clients
// that do not send Sec-Fetch-Mode are treated as navigating when a GET asks
// for HTML.
func DetectMode(method string, header http.Header) RequestMode {
	if m := header.Get("Sec-Fetch-Mode"); m != "" {
		return RequestMode(strings.ToLower(m))
	}
	if method == http.MethodGet && strings.Contains(header.Get("Accept"), "text/html") {
		return ModeNavigate
	}
	return ModeNoCORS
}
