package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ErFjeldheim/haugalandsved/internal/auth"
	"github.com/ErFjeldheim/haugalandsved/internal/service"
	"github.com/ErFjeldheim/haugalandsved/pkg/httputil"
	"github.com/ErFjeldheim/haugalandsved/pkg/validator"
)

// CheckoutHandler handles HTTP requests for the checkout endpoints.
type CheckoutHandler struct {
	checkout *service.Checkout
	logger   *slog.Logger
}

// NewCheckoutHandler creates a new checkout HTTP handler.
func NewCheckoutHandler(checkout *service.Checkout, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

// --- Request DTOs ---

// CreateIntentRequest is the JSON request body for the embedded payment
// flow. Any totals the client sends are ignored; the amount is recomputed
// server-side.
type CreateIntentRequest struct {
	Quantity       int    `json:"quantity" validate:"required,gte=1,lte=9"`
	DeliveryMethod string `json:"deliveryMethod" validate:"required,oneof=pickup standard express"`
	Email          string `json:"email" validate:"omitempty,email"`
}

// CreateIntentResponse carries the client secret for the embedded payment UI.
type CreateIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}

// --- Handlers ---

// StartCheckout handles POST /checkout. It reads a form submission and
// redirects the browser to the hosted payment page.
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid form body"},
		})
		return
	}

	quantity, err := parseQuantity(r.PostFormValue("quantity"))
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()},
		})
		return
	}

	req := service.CheckoutRequest{
		Quantity:       quantity,
		DeliveryMethod: r.PostFormValue("deliveryMethod"),
	}

	state := auth.FromContext(r.Context())
	if state.Authenticated {
		req.UserID = state.User.ID
	} else {
		req.GuestEmail = r.PostFormValue("email")
	}

	url, err := h.checkout.InitiateSession(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	http.Redirect(w, r, url, http.StatusSeeOther)
}

// CreateIntent handles POST /api/checkout/create-intent.
func (h *CheckoutHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	input := service.IntentRequest{
		Quantity:       req.Quantity,
		DeliveryMethod: req.DeliveryMethod,
		Email:          req.Email,
	}
	if state := auth.FromContext(r.Context()); state.Authenticated {
		input.UserID = state.User.ID
		if input.Email == "" {
			input.Email = state.User.Email
		}
	}

	clientSecret, err := h.checkout.CreateIntent(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Data: CreateIntentResponse{ClientSecret: clientSecret},
	})
}

// PaymentSuccess handles GET /api/checkout/success. The payment provider
// redirects the browser here with either a session_id or a payment_intent
// query parameter.
func (h *CheckoutHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	kind := service.PaymentSession
	reference := r.URL.Query().Get("session_id")
	if reference == "" {
		kind = service.PaymentIntent
		reference = r.URL.Query().Get("payment_intent")
	}

	target, err := h.checkout.Confirm(r.Context(), kind, reference)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	http.Redirect(w, r, target, http.StatusSeeOther)
}

// PaymentCancelled handles GET /checkout/cancelled. It releases the stock
// hold named in the query and sends the browser back to the calculator.
func (h *CheckoutHandler) PaymentCancelled(w http.ResponseWriter, r *http.Request) {
	target := h.checkout.Cancel(r.Context(), r.URL.Query().Get("reservation_id"))
	http.Redirect(w, r, target, http.StatusSeeOther)
}
