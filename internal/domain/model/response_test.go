package model

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCachedResponse_OK(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, true},
		{204, true},
		{299, true},
		{304, false},
		{404, false},
		{500, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, (&CachedResponse{StatusCode: tt.status}).OK())
		})
	}

	var nilResp *CachedResponse
	assert.False(t, nilResp.OK())
}

func TestCachedResponse_Clone(t *testing.T) {
	orig := &CachedResponse{
		URL:        "/static/app.js",
		StatusCode: 200,
		Header:     http.Header{"Content-Type": {"text/javascript"}},
		Body:       []byte("console.log(1)"),
	}

	clone := orig.Clone()
	clone.Body[0] = 'X'
	clone.Header.Set("Content-Type", "text/plain")

	assert.Equal(t, "console.log(1)", string(orig.Body))
	assert.Equal(t, "text/javascript", orig.Header.Get("Content-Type"))
	assert.Equal(t, orig.URL, clone.URL)
	assert.Nil(t, (*CachedResponse)(nil).Clone())
}

func TestCachedResponse_Storable(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		want   bool
	}{
		{name: "plain ok", status: 200, want: true},
		{name: "public max-age", status: 200, header: http.Header{"Cache-Control": {"public, max-age=3600"}}, want: true},
		{name: "partial content", status: 206, header: http.Header{"Content-Range": {"bytes 0-9/1000"}}},
		{name: "not found", status: 404},
		{name: "no-store", status: 200, header: http.Header{"Cache-Control": {"no-store"}}},
		{name: "private among directives", status: 200, header: http.Header{"Cache-Control": {"max-age=60, Private"}}},
		{name: "private with field list", status: 200, header: http.Header{"Cache-Control": {`private="Set-Cookie"`}}},
		{name: "second cache-control line", status: 200, header: http.Header{"Cache-Control": {"max-age=60", "no-store"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &CachedResponse{StatusCode: tt.status, Header: tt.header}
			assert.Equal(t, tt.want, resp.Storable())
		})
	}
}

func TestCachedResponse_SharedCopy(t *testing.T) {
	orig := &CachedResponse{
		StatusCode: 200,
		Header: http.Header{
			"Content-Type": {"image/png"},
			"Set-Cookie":   {"sid=alice-refreshed; HttpOnly"},
			"Set-Cookie2":  {"legacy=1"},
		},
		Body: []byte("png"),
	}

	shared := orig.SharedCopy()

	assert.Empty(t, shared.Header.Values("Set-Cookie"))
	assert.Empty(t, shared.Header.Values("Set-Cookie2"))
	assert.Equal(t, "image/png", shared.Header.Get("Content-Type"))
	assert.Equal(t, []string{"sid=alice-refreshed; HttpOnly"}, orig.Header.Values("Set-Cookie"), "the caller keeps its cookie")
	assert.Nil(t, (*CachedResponse)(nil).SharedCopy())
}
