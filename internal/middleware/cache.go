package middleware

import (
	"net/http"
	"strings"
)

// CacheControl marks API responses as uncacheable. Location payloads are
// per-viewer and change by the minute.
type CacheControl struct{}

func NewCacheControl() *CacheControl {
	return &CacheControl{}
}

func (c *CacheControl) Apply(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "private, no-store")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Add("Vary", "Cookie")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		next.ServeHTTP(w, r)
	})
}
