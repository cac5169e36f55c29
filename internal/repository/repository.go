// Package repository defines the data-access contracts for the storefront
// workflow. Implementations live in the record subpackage, backed by the
// hosted record store.
package repository

import (
	"context"
	"time"

	"github.com/ErFjeldheim/haugalandsved/internal/domain"
)

// InventoryRepository reads and adjusts the single stock record.
type InventoryRepository interface {
	// Get returns the current stock snapshot.
	Get(ctx context.Context) (domain.Inventory, error)

	// Reserve conditionally decrements stock by quantity. It fails with
	// apperrors.ErrOutOfStock when the remaining stock does not cover the
	// quantity, and retries the read-modify-write on concurrent conflicts.
	Reserve(ctx context.Context, quantity int) (newQuantity int, err error)

	// Decrement reduces stock by quantity, clamping at zero. Used as the
	// fallback when a confirmation carries no reservation.
	Decrement(ctx context.Context, quantity int) (newQuantity int, err error)

	// Release returns previously held stock.
	Release(ctx context.Context, quantity int) (newQuantity int, err error)
}

// CampaignRepository reads promotional pricing records.
type CampaignRepository interface {
	// ListActive returns campaigns flagged active, newest first.
	ListActive(ctx context.Context) ([]domain.Campaign, error)
}

// OrderRepository creates and lists order records.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// ReservationRepository manages stock holds between session creation and
// confirmation.
type ReservationRepository interface {
	Create(ctx context.Context, quantity int, expiresAt time.Time) (*domain.Reservation, error)
	Get(ctx context.Context, id string) (*domain.Reservation, error)

	// Transition moves a reservation from one status to another using a
	// conditional update; it fails when the reservation is no longer in the
	// expected status.
	Transition(ctx context.Context, id, from, to string) error

	// ListExpiredHeld returns held reservations whose expiry has passed.
	ListExpiredHeld(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

// Stores bundles the repositories bound to one store client.
type Stores struct {
	Inventory    InventoryRepository
	Campaigns    CampaignRepository
	Orders       OrderRepository
	Reservations ReservationRepository
}

// Provider hands out repository bundles scoped to an authentication level.
// Privileged bundles authenticate per call so no privileged token outlives
// the operation that needed it.
type Provider interface {
	// Public returns repositories bound to the unauthenticated client.
	Public() Stores

	// Privileged authenticates the service identity and returns write-capable
	// repositories. It fails when credentials are rejected or the store is
	// unreachable.
	Privileged(ctx context.Context) (Stores, error)

	// WithToken returns repositories bound to an end-user bearer token.
	WithToken(token string) Stores
}
