package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ErFjeldheim/haugalandsved/internal/auth"
	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/payment"
	"github.com/ErFjeldheim/haugalandsved/internal/repository"
	"github.com/ErFjeldheim/haugalandsved/internal/service"
	"github.com/ErFjeldheim/haugalandsved/internal/store"
)

// --- Mocks ---

type mockInventoryRepository struct {
	mock.Mock
}

func (m *mockInventoryRepository) Get(ctx context.Context) (domain.Inventory, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Inventory), args.Error(1)
}

func (m *mockInventoryRepository) Reserve(ctx context.Context, quantity int) (int, error) {
	args := m.Called(ctx, quantity)
	return args.Int(0), args.Error(1)
}

func (m *mockInventoryRepository) Decrement(ctx context.Context, quantity int) (int, error) {
	args := m.Called(ctx, quantity)
	return args.Int(0), args.Error(1)
}

func (m *mockInventoryRepository) Release(ctx context.Context, quantity int) (int, error) {
	args := m.Called(ctx, quantity)
	return args.Int(0), args.Error(1)
}

type mockReservationRepository struct {
	mock.Mock
}

func (m *mockReservationRepository) Create(ctx context.Context, quantity int, expiresAt time.Time) (*domain.Reservation, error) {
	args := m.Called(ctx, quantity, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *mockReservationRepository) Transition(ctx context.Context, id, from, to string) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *mockReservationRepository) ListExpiredHeld(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

type mockPaymentProvider struct {
	mock.Mock
}

func (m *mockPaymentProvider) CreateSession(ctx context.Context, spec payment.SessionSpec) (string, string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *mockPaymentProvider) RetrieveSession(ctx context.Context, id string) (payment.Summary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(payment.Summary), args.Error(1)
}

func (m *mockPaymentProvider) CreateIntent(ctx context.Context, spec payment.IntentSpec) (string, error) {
	args := m.Called(ctx, spec)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentProvider) RetrieveIntent(ctx context.Context, id string) (payment.Summary, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(payment.Summary), args.Error(1)
}

type stubProvider struct {
	stores repository.Stores
}

func (p *stubProvider) Public() repository.Stores { return p.stores }

func (p *stubProvider) Privileged(ctx context.Context) (repository.Stores, error) {
	return p.stores, nil
}

func (p *stubProvider) WithToken(token string) repository.Stores { return p.stores }

type fixedPrices struct{}

func (fixedPrices) Prices(ctx context.Context) domain.PricePair {
	return domain.PricePair{Price: 1490, StandardPrice: 1490}
}

// --- Test Helpers ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type handlerFixture struct {
	inventory    *mockInventoryRepository
	reservations *mockReservationRepository
	orders       *mockOrderRepository
	payments     *mockPaymentProvider
	handler      *CheckoutHandler
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		inventory:    new(mockInventoryRepository),
		reservations: new(mockReservationRepository),
		orders:       new(mockOrderRepository),
		payments:     new(mockPaymentProvider),
	}
	provider := &stubProvider{stores: repository.Stores{
		Inventory:    f.inventory,
		Reservations: f.reservations,
		Orders:       f.orders,
	}}
	checkout := service.NewCheckout(
		provider, f.payments, fixedPrices{}, nil, nil, testLogger(),
		"https://haugalandsved.no", 30*time.Minute,
	)
	f.handler = NewCheckoutHandler(checkout, testLogger())
	return f
}

func authedContext(ctx context.Context, userID string) context.Context {
	return auth.NewContext(ctx, auth.State{
		Authenticated: true,
		Token:         "tok",
		User:          store.User{ID: userID, Email: userID + "@example.com"},
	})
}

// --- StartCheckout ---

func TestStartCheckout_RedirectsToPaymentPage(t *testing.T) {
	f := newHandlerFixture()

	f.inventory.On("Get", mock.Anything).Return(domain.Inventory{QuantityAvailable: 10, IsInStock: true}, nil)
	f.inventory.On("Reserve", mock.Anything, 2).Return(8, nil)
	f.reservations.On("Create", mock.Anything, 2, mock.AnythingOfType("time.Time")).
		Return(&domain.Reservation{ID: "res-1", Quantity: 2, Status: domain.ReservationHeld}, nil)
	f.payments.On("CreateSession", mock.Anything, mock.AnythingOfType("payment.SessionSpec")).
		Return("sess_1", "https://pay.example/sess_1", nil)

	form := url.Values{"quantity": {"2"}, "deliveryMethod": {"standard"}}
	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = req.WithContext(authedContext(req.Context(), "user-1"))
	rec := httptest.NewRecorder()

	f.handler.StartCheckout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "https://pay.example/sess_1", rec.Header().Get("Location"))
}

func TestStartCheckout_InvalidQuantity(t *testing.T) {
	f := newHandlerFixture()

	form := url.Values{"quantity": {"99"}, "deliveryMethod": {"standard"}}
	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	f.handler.StartCheckout(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.payments.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything)
}

func TestStartCheckout_GuestUsesFormEmail(t *testing.T) {
	f := newHandlerFixture()

	f.inventory.On("Get", mock.Anything).Return(domain.Inventory{QuantityAvailable: 10, IsInStock: true}, nil)
	f.inventory.On("Reserve", mock.Anything, 1).Return(9, nil)
	f.reservations.On("Create", mock.Anything, 1, mock.AnythingOfType("time.Time")).
		Return(&domain.Reservation{ID: "res-1", Quantity: 1, Status: domain.ReservationHeld}, nil)

	var captured payment.SessionSpec
	f.payments.On("CreateSession", mock.Anything, mock.AnythingOfType("payment.SessionSpec")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(payment.SessionSpec)
		}).
		Return("sess_1", "https://pay.example/sess_1", nil)

	form := url.Values{"quantity": {"1"}, "deliveryMethod": {"pickup"}, "email": {"gjest@example.com"}}
	req := httptest.NewRequest("POST", "/checkout", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	f.handler.StartCheckout(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "gjest@example.com", captured.CustomerEmail)
	assert.Empty(t, captured.Metadata["userId"])
}

// --- CreateIntent ---

func TestCreateIntent_IgnoresClientTotals(t *testing.T) {
	f := newHandlerFixture()

	f.inventory.On("Get", mock.Anything).Return(domain.Inventory{QuantityAvailable: 10, IsInStock: true}, nil)

	var captured payment.IntentSpec
	f.payments.On("CreateIntent", mock.Anything, mock.AnythingOfType("payment.IntentSpec")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(payment.IntentSpec)
		}).
		Return("pi_secret", nil)

	// A hostile client claims the total is 1 krone; the amount must come
	// from the server-side calculation instead.
	body := `{"quantity":5,"deliveryMethod":"standard","totalPrice":1,"amount":1}`
	req := httptest.NewRequest("POST", "/api/checkout/create-intent", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	f.handler.CreateIntent(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(8950), captured.Amount)

	var resp struct {
		Data CreateIntentResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pi_secret", resp.Data.ClientSecret)
}

func TestCreateIntent_ValidationErrors(t *testing.T) {
	f := newHandlerFixture()

	cases := map[string]string{
		"zero quantity":      `{"quantity":0,"deliveryMethod":"standard"}`,
		"excessive quantity": `{"quantity":10,"deliveryMethod":"standard"}`,
		"unknown method":     `{"quantity":1,"deliveryMethod":"drone"}`,
		"bad json":           `{`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/checkout/create-intent", bytes.NewBufferString(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			f.handler.CreateIntent(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	f.payments.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything)
}

// --- PaymentSuccess ---

func TestPaymentSuccess_SessionRedirectsToOrders(t *testing.T) {
	f := newHandlerFixture()

	f.payments.On("RetrieveSession", mock.Anything, "sess_1").Return(payment.Summary{
		Reference: "sess_1",
		Paid:      true,
		Metadata: map[string]string{
			"userId":         "user-1",
			"quantity":       "2",
			"deliveryMethod": "standard",
			"totalPrice":     "3580",
			"reservationId":  "res-1",
		},
		Customer: payment.Customer{Name: "Ola", Email: "ola@example.com"},
	}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Return(&domain.Order{ID: "ord-1", Quantity: 2, DeliveryMethod: domain.DeliveryStandard, TotalPrice: 3580}, nil)
	f.reservations.On("Transition", mock.Anything, "res-1", domain.ReservationHeld, domain.ReservationConsumed).Return(nil)

	req := httptest.NewRequest("GET", "/api/checkout/success?session_id=sess_1", nil)
	rec := httptest.NewRecorder()

	f.handler.PaymentSuccess(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile/orders", rec.Header().Get("Location"))
}

func TestPaymentSuccess_MissingReference(t *testing.T) {
	f := newHandlerFixture()

	req := httptest.NewRequest("GET", "/api/checkout/success", nil)
	rec := httptest.NewRecorder()

	f.handler.PaymentSuccess(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentSuccess_UnpaidSession(t *testing.T) {
	f := newHandlerFixture()

	f.payments.On("RetrieveSession", mock.Anything, "sess_1").Return(payment.Summary{
		Reference: "sess_1",
		Paid:      false,
	}, nil)

	req := httptest.NewRequest("GET", "/api/checkout/success?session_id=sess_1", nil)
	rec := httptest.NewRecorder()

	f.handler.PaymentSuccess(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// --- PaymentCancelled ---

func TestPaymentCancelled_ReleasesAndRedirects(t *testing.T) {
	f := newHandlerFixture()

	f.reservations.On("Get", mock.Anything, "res-1").
		Return(&domain.Reservation{ID: "res-1", Quantity: 2, Status: domain.ReservationHeld}, nil)
	f.reservations.On("Transition", mock.Anything, "res-1", domain.ReservationHeld, domain.ReservationReleased).Return(nil)
	f.inventory.On("Release", mock.Anything, 2).Return(10, nil)

	req := httptest.NewRequest("GET", "/checkout/cancelled?reservation_id=res-1", nil)
	rec := httptest.NewRecorder()

	f.handler.PaymentCancelled(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/#kalkulator", rec.Header().Get("Location"))
	f.inventory.AssertExpectations(t)
}
