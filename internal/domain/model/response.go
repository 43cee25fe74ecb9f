package model

import (
	"net/http"
	"strings"
	"time"
)

// privateHeaders belong to one user and never enter a shared cache.
var privateHeaders = []string{"Set-Cookie", "Set-Cookie2"}

// CachedResponse is a buffered HTTP response as stored in a cache partition.
type CachedResponse struct {
	URL        string      `bson:"url" json:"url"`
	StatusCode int         `bson:"status_code" json:"status_code"`
	Header     http.Header `bson:"header,omitempty" json:"header,omitempty"`
	Body       []byte      `bson:"body,omitempty" json:"body,omitempty"`
	StoredAt   time.Time   `bson:"stored_at,omitempty" json:"stored_at,omitempty"`
}

// OK reports whether the status is in the 2xx range.
func (r *CachedResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode <= 299
}

// Clone returns a deep copy so the stored and returned responses never share buffers.
func (r *CachedResponse) Clone() *CachedResponse {
	if r == nil {
		return nil
	}
	c := *r
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}

// Storable reports whether r may be written to a cache shared by every
// client: a complete 2xx response that the origin did not mark private or
// no-store. Partial content would otherwise answer full requests.
func (r *CachedResponse) Storable() bool {
	if !r.OK() || r.StatusCode == http.StatusPartialContent {
		return false
	}
	for _, v := range r.Header.Values("Cache-Control") {
		for _, directive := range strings.Split(v, ",") {
			name, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(directive)), "=")
			if name == "no-store" || name == "private" {
				return false
			}
		}
	}
	return true
}

// SharedCopy is Clone without the headers that carry per-user state.
func (r *CachedResponse) SharedCopy() *CachedResponse {
	c := r.Clone()
	if c == nil {
		return nil
	}
	for _, h := range privateHeaders {
		c.Header.Del(h)
	}
	return c
}
