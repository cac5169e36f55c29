package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/event"
	"github.com/ErFjeldheim/haugalandsved/internal/mail"
	"github.com/ErFjeldheim/haugalandsved/internal/payment"
	"github.com/ErFjeldheim/haugalandsved/internal/repository"
	apperrors "github.com/ErFjeldheim/haugalandsved/pkg/errors"
)

var ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
	Name: "orders_created_total",
	Help: "Orders created from confirmed payments",
})

// Post-payment redirect targets.
const (
	redirectAfterConfirm = "/profile/orders"
	redirectAfterCancel  = "/#kalkulator"
)

// PriceSource resolves the current unit price pair.
type PriceSource interface {
	Prices(ctx context.Context) domain.PricePair
}

// CheckoutRequest is a request to start a hosted checkout session.
type CheckoutRequest struct {
	Quantity       int
	DeliveryMethod string
	UserID         string
	GuestEmail     string
}

// IntentRequest is a request to create a payment intent for the embedded
// payment flow. The client's idea of the total is deliberately absent; the
// amount is always recomputed server-side.
type IntentRequest struct {
	Quantity       int
	DeliveryMethod string
	UserID         string
	Email          string
}

// Checkout drives the payment workflow: session creation with a stock hold,
// payment confirmation with order creation, and hold release on cancel or
// expiry.
type Checkout struct {
	provider       repository.Provider
	payments       payment.Provider
	prices         PriceSource
	mailer         mail.Sender
	events         *event.Producer
	logger         *slog.Logger
	baseURL        string
	reservationTTL time.Duration
	now            func() time.Time
}

// NewCheckout creates the checkout service. mailer and events may be nil
// when the corresponding channel is not configured.
func NewCheckout(
	provider repository.Provider,
	payments payment.Provider,
	prices PriceSource,
	mailer mail.Sender,
	events *event.Producer,
	log *slog.Logger,
	baseURL string,
	reservationTTL time.Duration,
) *Checkout {
	return &Checkout{
		provider:       provider,
		payments:       payments,
		prices:         prices,
		mailer:         mailer,
		events:         events,
		logger:         log,
		baseURL:        baseURL,
		reservationTTL: reservationTTL,
		now:            time.Now,
	}
}

func (c *Checkout) validate(quantity int, rawMethod string) (domain.DeliveryMethod, error) {
	if !domain.ValidQuantity(quantity) {
		return "", apperrors.InvalidInput(fmt.Sprintf("quantity must be between 1 and %d", domain.MaxQuantity))
	}
	method, ok := domain.ParseDeliveryMethod(rawMethod)
	if !ok {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown delivery method %q", rawMethod))
	}
	return method, nil
}

// checkAvailability verifies stock before anything touches the payment
// provider. A failed lookup blocks checkout; it never falls through to an
// optimistic guess.
func (c *Checkout) checkAvailability(ctx context.Context, quantity int) error {
	inv, err := c.provider.Public().Inventory.Get(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "availability check failed", slog.String("error", err.Error()))
		return apperrors.ServiceUnavailable("stock status is unavailable, try again shortly")
	}
	if !inv.CanFulfil(quantity) {
		return apperrors.OutOfStock(fmt.Sprintf("only %d sacks available", inv.QuantityAvailable))
	}
	return nil
}

// InitiateSession validates the request, reserves stock, and creates a
// hosted checkout session. It returns the URL to redirect the customer to.
func (c *Checkout) InitiateSession(ctx context.Context, req CheckoutRequest) (string, error) {
	method, err := c.validate(req.Quantity, req.DeliveryMethod)
	if err != nil {
		return "", err
	}
	if err := c.checkAvailability(ctx, req.Quantity); err != nil {
		return "", err
	}

	pair := c.prices.Prices(ctx)
	quote := domain.CalculateQuote(req.Quantity, method, pair.Price)

	privileged, err := c.provider.Privileged(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "privileged store auth failed", slog.String("error", err.Error()))
		return "", apperrors.ServiceUnavailable("checkout is unavailable, try again shortly")
	}

	if _, err := privileged.Inventory.Reserve(ctx, req.Quantity); err != nil {
		if errors.Is(err, apperrors.ErrOutOfStock) {
			return "", err
		}
		c.logger.ErrorContext(ctx, "stock reserve failed", slog.String("error", err.Error()))
		return "", apperrors.ServiceUnavailable("could not reserve stock, try again shortly")
	}

	reservation, err := privileged.Reservations.Create(ctx, req.Quantity, c.now().Add(c.reservationTTL))
	if err != nil {
		c.releaseStock(ctx, privileged, req.Quantity)
		c.logger.ErrorContext(ctx, "reservation create failed", slog.String("error", err.Error()))
		return "", apperrors.ServiceUnavailable("could not reserve stock, try again shortly")
	}

	meta := domain.CheckoutMetadata{
		UserID:         req.UserID,
		Quantity:       req.Quantity,
		DeliveryMethod: method,
		TotalPrice:     quote.Total,
		ReservationID:  reservation.ID,
	}

	spec := payment.SessionSpec{
		LineItems:       c.lineItems(req.Quantity, method, pair.Price),
		Metadata:        meta.Strings(),
		SuccessURL:      c.baseURL + "/api/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:       c.baseURL + "/checkout/cancelled?reservation_id=" + reservation.ID,
		CustomerEmail:   req.GuestEmail,
		CollectPhone:    true,
		CollectShipping: method != domain.DeliveryPickup,
	}

	sessionID, url, err := c.payments.CreateSession(ctx, spec)
	if err != nil {
		c.releaseReservation(ctx, privileged, reservation.ID, req.Quantity)
		c.logger.ErrorContext(ctx, "checkout session create failed", slog.String("error", err.Error()))
		return "", apperrors.PaymentFailed("could not start payment")
	}

	c.logger.InfoContext(ctx, "checkout session created",
		slog.String("session_id", sessionID),
		slog.Int("quantity", req.Quantity),
		slog.String("delivery_method", string(method)),
		slog.Int64("total_price", quote.Total),
	)

	if c.events != nil {
		err := c.events.PublishCheckoutSessionCreated(ctx, event.CheckoutSessionCreatedData{
			SessionID:      sessionID,
			UserID:         req.UserID,
			Quantity:       req.Quantity,
			DeliveryMethod: string(method),
			TotalPrice:     quote.Total,
			ReservationID:  reservation.ID,
		})
		if err != nil {
			c.logger.WarnContext(ctx, "event publish failed", slog.String("error", err.Error()))
		}
	}

	return url, nil
}

// lineItems builds the goods line plus a shipping line for delivery methods
// that carry one.
func (c *Checkout) lineItems(quantity int, method domain.DeliveryMethod, unitPrice int64) []payment.LineItem {
	items := []payment.LineItem{{
		Name:       domain.ProductName,
		UnitAmount: unitPrice,
		Quantity:   quantity,
	}}
	if unitAmount, units := domain.ShippingUnits(quantity, method); units > 0 {
		items = append(items, payment.LineItem{
			Name:       "Frakt - " + method.Label(),
			UnitAmount: unitAmount,
			Quantity:   int(units),
		})
	}
	return items
}

// CreateIntent computes the total server-side and creates a payment intent
// for the embedded payment flow. No stock hold is taken; confirmation falls
// back to a clamped decrement.
func (c *Checkout) CreateIntent(ctx context.Context, req IntentRequest) (string, error) {
	method, err := c.validate(req.Quantity, req.DeliveryMethod)
	if err != nil {
		return "", err
	}
	if err := c.checkAvailability(ctx, req.Quantity); err != nil {
		return "", err
	}

	pair := c.prices.Prices(ctx)
	quote := domain.CalculateQuote(req.Quantity, method, pair.Price)

	meta := domain.CheckoutMetadata{
		UserID:         req.UserID,
		Quantity:       req.Quantity,
		DeliveryMethod: method,
		TotalPrice:     quote.Total,
	}

	clientSecret, err := c.payments.CreateIntent(ctx, payment.IntentSpec{
		Amount:       quote.Total,
		Metadata:     meta.Strings(),
		ReceiptEmail: req.Email,
	})
	if err != nil {
		c.logger.ErrorContext(ctx, "payment intent create failed", slog.String("error", err.Error()))
		return "", apperrors.PaymentFailed("could not start payment")
	}

	c.logger.InfoContext(ctx, "payment intent created",
		slog.Int("quantity", req.Quantity),
		slog.Int64("total_price", quote.Total),
	)

	return clientSecret, nil
}

// PaymentKind selects which processor object a confirmation refers to.
type PaymentKind int

const (
	PaymentSession PaymentKind = iota
	PaymentIntent
)

// Confirm verifies a completed payment and creates the order record. The
// order total comes from the session metadata written at session creation;
// nothing the redirect carries is trusted beyond the reference itself.
// It returns the storefront path to redirect the customer to.
func (c *Checkout) Confirm(ctx context.Context, kind PaymentKind, reference string) (string, error) {
	if reference == "" {
		return "", apperrors.InvalidInput("missing payment reference")
	}

	var summary payment.Summary
	var err error
	switch kind {
	case PaymentIntent:
		summary, err = c.payments.RetrieveIntent(ctx, reference)
	default:
		summary, err = c.payments.RetrieveSession(ctx, reference)
	}
	if err != nil {
		c.logger.ErrorContext(ctx, "payment lookup failed",
			slog.String("reference", reference), slog.String("error", err.Error()))
		return "", apperrors.ConfirmationFailed(err)
	}

	if !summary.Paid {
		return "", apperrors.PaymentNotCompleted("payment has not completed")
	}

	meta, err := domain.ParseCheckoutMetadata(summary.Metadata)
	if err != nil {
		c.logger.ErrorContext(ctx, "payment metadata invalid",
			slog.String("reference", reference), slog.String("error", err.Error()))
		return "", apperrors.ConfirmationFailed(err)
	}

	privileged, err := c.provider.Privileged(ctx)
	if err != nil {
		c.logger.ErrorContext(ctx, "privileged store auth failed", slog.String("error", err.Error()))
		return "", apperrors.ConfirmationFailed(err)
	}

	order := &domain.Order{
		UserID:         meta.UserID,
		Quantity:       meta.Quantity,
		DeliveryMethod: meta.DeliveryMethod,
		TotalPrice:     meta.TotalPrice,
		Status:         domain.OrderStatusPaid,
		CustomerName:   summary.Customer.Name,
		CustomerPhone:  summary.Customer.Phone,
		CustomerAddr:   summary.Customer.Address,
		CustomerZip:    summary.Customer.Zip,
		CustomerCity:   summary.Customer.City,
	}
	if meta.UserID == "" {
		order.GuestEmail = summary.Customer.Email
	}

	created, err := privileged.Orders.Create(ctx, order)
	if err != nil {
		c.logger.ErrorContext(ctx, "order create failed",
			slog.String("reference", reference), slog.String("error", err.Error()))
		return "", apperrors.ConfirmationFailed(err)
	}
	ordersCreated.Inc()

	c.logger.InfoContext(ctx, "order created",
		slog.String("order_id", created.ID),
		slog.String("reference", reference),
		slog.Int("quantity", created.Quantity),
		slog.Int64("total_price", created.TotalPrice),
	)

	c.settleStock(ctx, privileged, meta)
	c.notify(ctx, created, summary.Customer)

	if c.events != nil {
		err := c.events.PublishOrderCreated(ctx, event.OrderCreatedData{
			OrderID:        created.ID,
			UserID:         created.UserID,
			GuestEmail:     created.GuestEmail,
			Quantity:       created.Quantity,
			DeliveryMethod: string(created.DeliveryMethod),
			TotalPrice:     created.TotalPrice,
			Status:         created.Status,
		})
		if err != nil {
			c.logger.WarnContext(ctx, "event publish failed", slog.String("error", err.Error()))
		}
	}

	return redirectAfterConfirm, nil
}

// settleStock consumes the reservation the session took, or falls back to a
// clamped decrement for payments that carried no reservation. A hold the
// expiry sweeper already released was returned to stock, so a late payment
// must decrement again. Failures are logged; a paid order is never rolled
// back over stock bookkeeping.
func (c *Checkout) settleStock(ctx context.Context, stores repository.Stores, meta domain.CheckoutMetadata) {
	if meta.ReservationID != "" {
		err := stores.Reservations.Transition(ctx, meta.ReservationID, domain.ReservationHeld, domain.ReservationConsumed)
		if err == nil {
			return
		}

		res, getErr := stores.Reservations.Get(ctx, meta.ReservationID)
		if getErr == nil && res.Status == domain.ReservationReleased {
			c.logger.InfoContext(ctx, "reservation expired before payment, decrementing stock",
				slog.String("reservation_id", meta.ReservationID),
				slog.Int("quantity", meta.Quantity))
			c.decrementStock(ctx, stores, meta.Quantity)
			return
		}

		c.logger.WarnContext(ctx, "reservation consume failed, stock may drift",
			slog.String("reservation_id", meta.ReservationID),
			slog.String("error", err.Error()))
		return
	}

	c.decrementStock(ctx, stores, meta.Quantity)
}

func (c *Checkout) decrementStock(ctx context.Context, stores repository.Stores, quantity int) {
	if _, err := stores.Inventory.Decrement(ctx, quantity); err != nil {
		c.logger.WarnContext(ctx, "stock decrement failed, stock may drift",
			slog.Int("quantity", quantity),
			slog.String("error", err.Error()))
	}
}

// notify sends the confirmation and admin emails. Failures are logged and
// never block the redirect.
func (c *Checkout) notify(ctx context.Context, order *domain.Order, customer payment.Customer) {
	if c.mailer == nil {
		return
	}

	info := mail.OrderInfo{
		OrderID:       order.ID,
		ProductName:   domain.ProductName,
		Quantity:      order.Quantity,
		DeliveryLabel: order.DeliveryMethod.Label(),
		TotalPrice:    order.TotalPrice,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		CustomerPhone: customer.Phone,
		Address:       order.CustomerAddr,
		Zip:           order.CustomerZip,
		City:          order.CustomerCity,
	}

	if customer.Email != "" {
		if err := c.mailer.SendOrderConfirmation(ctx, customer.Email, info); err != nil {
			c.logger.WarnContext(ctx, "confirmation email failed",
				slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
	}
	if err := c.mailer.SendAdminAlert(ctx, info); err != nil {
		c.logger.WarnContext(ctx, "admin alert email failed",
			slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}
}

// Cancel releases the stock hold of an abandoned checkout session and
// returns the storefront path to redirect the customer to. Release failures
// are logged; the expiry sweeper picks up what a cancel misses.
func (c *Checkout) Cancel(ctx context.Context, reservationID string) string {
	if reservationID == "" {
		return redirectAfterCancel
	}

	privileged, err := c.provider.Privileged(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "privileged store auth failed on cancel",
			slog.String("error", err.Error()))
		return redirectAfterCancel
	}

	reservation, err := privileged.Reservations.Get(ctx, reservationID)
	if err != nil {
		c.logger.WarnContext(ctx, "reservation lookup failed on cancel",
			slog.String("reservation_id", reservationID), slog.String("error", err.Error()))
		return redirectAfterCancel
	}

	if err := c.release(ctx, privileged, *reservation); err != nil {
		c.logger.WarnContext(ctx, "reservation release failed on cancel",
			slog.String("reservation_id", reservationID), slog.String("error", err.Error()))
		return redirectAfterCancel
	}

	if c.events != nil {
		err := c.events.PublishCheckoutCancelled(ctx, event.CheckoutCancelledData{
			ReservationID: reservationID,
			Quantity:      reservation.Quantity,
		})
		if err != nil {
			c.logger.WarnContext(ctx, "event publish failed", slog.String("error", err.Error()))
		}
	}

	return redirectAfterCancel
}

// release transitions a held reservation to released and returns its stock.
// The transition is the gate: whoever wins it owns the stock adjustment.
func (c *Checkout) release(ctx context.Context, stores repository.Stores, reservation domain.Reservation) error {
	if reservation.Status != domain.ReservationHeld {
		return nil
	}
	err := stores.Reservations.Transition(ctx, reservation.ID, domain.ReservationHeld, domain.ReservationReleased)
	if err != nil {
		return err
	}
	if _, err := stores.Inventory.Release(ctx, reservation.Quantity); err != nil {
		return fmt.Errorf("return stock for reservation %s: %w", reservation.ID, err)
	}
	return nil
}

// ReleaseExpired returns the stock of held reservations whose expiry has
// passed. It is run periodically and reports how many holds it released.
func (c *Checkout) ReleaseExpired(ctx context.Context) (int, error) {
	privileged, err := c.provider.Privileged(ctx)
	if err != nil {
		return 0, fmt.Errorf("privileged store auth: %w", err)
	}

	expired, err := privileged.Reservations.ListExpiredHeld(ctx, c.now())
	if err != nil {
		return 0, fmt.Errorf("list expired reservations: %w", err)
	}

	released := 0
	for _, reservation := range expired {
		if err := c.release(ctx, privileged, reservation); err != nil {
			c.logger.WarnContext(ctx, "expired reservation release failed",
				slog.String("reservation_id", reservation.ID),
				slog.String("error", err.Error()))
			continue
		}
		released++
	}

	if released > 0 {
		c.logger.InfoContext(ctx, "released expired reservations", slog.Int("count", released))
	}
	return released, nil
}

func (c *Checkout) releaseStock(ctx context.Context, stores repository.Stores, quantity int) {
	if _, err := stores.Inventory.Release(ctx, quantity); err != nil {
		c.logger.WarnContext(ctx, "stock release failed, stock may drift",
			slog.Int("quantity", quantity), slog.String("error", err.Error()))
	}
}

func (c *Checkout) releaseReservation(ctx context.Context, stores repository.Stores, reservationID string, quantity int) {
	err := stores.Reservations.Transition(ctx, reservationID, domain.ReservationHeld, domain.ReservationReleased)
	if err != nil {
		c.logger.WarnContext(ctx, "reservation release failed, stock may drift",
			slog.String("reservation_id", reservationID), slog.String("error", err.Error()))
		return
	}
	c.releaseStock(ctx, stores, quantity)
}
