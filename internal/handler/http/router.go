package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ErFjeldheim/haugalandsved/internal/auth"
	"github.com/ErFjeldheim/haugalandsved/internal/service"
	"github.com/ErFjeldheim/haugalandsved/pkg/health"
	"github.com/ErFjeldheim/haugalandsved/pkg/middleware"
)

// RouterConfig bundles the dependencies of the HTTP surface.
type RouterConfig struct {
	Storefront    *service.Storefront
	Checkout      *service.Checkout
	AuthBridge    *auth.Bridge
	HealthHandler *health.Handler
	Logger        *slog.Logger
	BaseURL       string
	// StaticDir serves the built frontend when non-empty.
	StaticDir string
}

// NewRouter creates the chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	// The auth bridge runs on every route so cookie refresh and clearing
	// happen before any handler writes a response.
	r.Use(cfg.AuthBridge.Middleware)
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	storefrontHandler := NewStorefrontHandler(cfg.Storefront, cfg.Logger)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.Logger)
	seoHandler := NewSEOHandler(cfg.BaseURL)

	// SEO artifacts, CDN-cached for an hour.
	r.Group(func(r chi.Router) {
		r.Use(middleware.SharedCache(3600))
		r.Get("/robots.txt", seoHandler.Robots)
		r.Get("/sitemap.xml", seoHandler.Sitemap)
	})

	// Storefront and checkout endpoints
	r.Get("/api/storefront", storefrontHandler.Storefront)
	r.Get("/api/profile/orders", storefrontHandler.Orders)

	r.Post("/checkout", checkoutHandler.StartCheckout)
	r.Get("/checkout/cancelled", checkoutHandler.PaymentCancelled)
	r.Post("/api/checkout/create-intent", checkoutHandler.CreateIntent)
	r.Get("/api/checkout/success", checkoutHandler.PaymentSuccess)

	// Static frontend assets with long-lived caching for fingerprinted files.
	if cfg.StaticDir != "" {
		fileServer := middleware.ImmutableAssets(http.FileServer(http.Dir(cfg.StaticDir)))
		r.Handle("/images/*", fileServer)
		r.Handle("/*", fileServer)
	}

	return r
}
