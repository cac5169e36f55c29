package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestImmutableAssets(t *testing.T) {
	tests := []struct {
		path      string
		immutable bool
	}{
		{"/images/storsekk.webp", true},
		{"/images/logo", true},
		{"/favicon.ico", true},
		{"/hero.jpg", true},
		{"/", false},
		{"/personvern", false},
		{"/api/storefront", false},
	}

	handler := ImmutableAssets(okHandler())

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			handler.ServeHTTP(rec, req)

			if tt.immutable {
				assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
			} else {
				assert.Empty(t, rec.Header().Get("Cache-Control"))
			}
		})
	}
}

func TestSharedCache_SetsHeaderOnGet(t *testing.T) {
	handler := SharedCache(3600)(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/robots.txt", nil)

	handler.ServeHTTP(rec, req)

	assert.Equal(t, "max-age=0, s-maxage=3600", rec.Header().Get("Cache-Control"))
}

func TestSharedCache_SkipsNonGet(t *testing.T) {
	handler := SharedCache(3600)(okHandler())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/robots.txt", nil)

	handler.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Cache-Control"))
}
