package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

// immutableAssetSuffixes are the file extensions treated as fingerprinted
// static assets and served with a long-lived cache header.
var immutableAssetSuffixes = []string{".png", ".jpg", ".jpeg", ".webp", ".ico"}

// ImmutableAssets sets a long-lived immutable Cache-Control header on image
// paths and image-like file extensions.
func ImmutableAssets(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isImmutableAsset(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		next.ServeHTTP(w, r)
	})
}

func isImmutableAsset(path string) bool {
	if strings.HasPrefix(path, "/images/") {
		return true
	}
	for _, suffix := range immutableAssetSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}

// SharedCache sets a shared-cache Cache-Control header for responses that may
// be cached by a CDN but not by the browser, as used for robots.txt and the
// sitemap.
func SharedCache(sMaxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("Cache-Control", "max-age=0, s-maxage="+strconv.Itoa(sMaxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
