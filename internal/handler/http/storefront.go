package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ErFjeldheim/haugalandsved/internal/auth"
	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/service"
	"github.com/ErFjeldheim/haugalandsved/pkg/httputil"
)

// StorefrontHandler serves public pricing and availability plus the
// signed-in user's order history.
type StorefrontHandler struct {
	storefront *service.Storefront
	logger     *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(storefront *service.Storefront, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		storefront: storefront,
		logger:     logger,
	}
}

// StorefrontResponse is the combined storefront state the calculator needs.
type StorefrontResponse struct {
	Availability service.Availability `json:"availability"`
	Prices       domain.PricePair     `json:"prices"`
	MaxQuantity  int                  `json:"max_quantity"`
}

// OrdersResponse is the order history payload. Degraded is set when the
// store could not be reached and the list is empty for that reason.
type OrdersResponse struct {
	Orders   []domain.Order `json:"orders"`
	Degraded bool           `json:"degraded,omitempty"`
}

// Storefront handles GET /api/storefront.
func (h *StorefrontHandler) Storefront(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: StorefrontResponse{
			Availability: h.storefront.Availability(r.Context()),
			Prices:       h.storefront.Prices(r.Context()),
			MaxQuantity:  domain.MaxQuantity,
		},
	})
}

// Orders handles GET /api/profile/orders. It requires an authenticated
// session; store failures degrade to an empty, marked list rather than an
// error page.
func (h *StorefrontHandler) Orders(w http.ResponseWriter, r *http.Request) {
	state := auth.FromContext(r.Context())
	if !state.Authenticated {
		httputil.WriteJSON(w, http.StatusUnauthorized, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "UNAUTHORIZED", Message: "sign in to see your orders"},
		})
		return
	}

	orders, err := h.storefront.Orders(r.Context(), state.Token, state.User.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "order history lookup failed",
			slog.String("user_id", state.User.ID),
			slog.String("error", err.Error()))
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{
			Data: OrdersResponse{Orders: []domain.Order{}, Degraded: true},
		})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: OrdersResponse{Orders: orders},
	})
}

// parseQuantity parses a submitted quantity and rejects values outside the
// order limits before any downstream work.
func parseQuantity(raw string) (int, error) {
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("quantity must be a number")
	}
	if !domain.ValidQuantity(quantity) {
		return 0, fmt.Errorf("quantity must be between 1 and %d", domain.MaxQuantity)
	}
	return quantity, nil
}
