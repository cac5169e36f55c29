package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SEOHandler serves robots.txt and sitemap.xml for the storefront.
type SEOHandler struct {
	baseURL string
	now     func() time.Time
}

// NewSEOHandler creates a handler generating SEO artifacts for the given
// public base URL.
func NewSEOHandler(baseURL string) *SEOHandler {
	return &SEOHandler{baseURL: strings.TrimRight(baseURL, "/"), now: time.Now}
}

// sitemapPages are the indexable storefront pages, relative to the base URL.
var sitemapPages = []struct {
	Path       string
	ChangeFreq string
	Priority   string
}{
	{"/", "weekly", "1.0"},
	{"/personvern", "yearly", "0.3"},
	{"/salgsvilkar", "yearly", "0.3"},
}

// disallowedPaths are crawler-excluded path prefixes.
var disallowedPaths = []string{
	"/admin/",
	"/auth/",
	"/profile/",
	"/checkout/",
	"/api/",
}

// Robots handles GET /robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	for _, path := range disallowedPaths {
		b.WriteString("Disallow: " + path + "\n")
	}
	b.WriteString("\nSitemap: " + h.baseURL + "/sitemap.xml\n")

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(b.String()))
}

// Sitemap handles GET /sitemap.xml.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	lastmod := h.now().UTC().Format("2006-01-02")

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, page := range sitemapPages {
		fmt.Fprintf(&b, "  <url>\n    <loc>%s%s</loc>\n    <lastmod>%s</lastmod>\n    <changefreq>%s</changefreq>\n    <priority>%s</priority>\n  </url>\n",
			h.baseURL, page.Path, lastmod, page.ChangeFreq, page.Priority)
	}
	b.WriteString("</urlset>\n")

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(b.String()))
}
