package record

import (
	"context"
	"fmt"
	"time"

	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/store"
)

const collectionReservations = "reservations"

type reservationRecord struct {
	ID       string          `json:"id,omitempty"`
	Quantity int             `json:"quantity"`
	Status   string          `json:"status"`
	Expires  store.Timestamp `json:"expires"`
	Created  store.Timestamp `json:"created,omitempty"`
}

func (r reservationRecord) toDomain() domain.Reservation {
	return domain.Reservation{
		ID:        r.ID,
		Quantity:  r.Quantity,
		Status:    r.Status,
		ExpiresAt: r.Expires.Time,
		Created:   r.Created.Time,
	}
}

// ReservationRepository manages stock holds in the record store.
type ReservationRepository struct {
	client *store.Client
}

// NewReservationRepository creates a reservation repository.
func NewReservationRepository(client *store.Client) *ReservationRepository {
	return &ReservationRepository{client: client}
}

// Create stores a new held reservation.
func (r *ReservationRepository) Create(ctx context.Context, quantity int, expiresAt time.Time) (*domain.Reservation, error) {
	body := reservationRecord{
		Quantity: quantity,
		Status:   domain.ReservationHeld,
		Expires:  store.Timestamp{Time: expiresAt},
	}

	var created reservationRecord
	if err := r.client.CreateRecord(ctx, collectionReservations, body, &created); err != nil {
		return nil, err
	}
	out := created.toDomain()
	return &out, nil
}

// Get fetches a reservation by ID.
func (r *ReservationRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	var rec reservationRecord
	if err := r.client.GetRecord(ctx, collectionReservations, id, &rec); err != nil {
		return nil, err
	}
	out := rec.toDomain()
	return &out, nil
}

// Transition moves a reservation from one status to another. The update is
// conditioned on the current status, so two racing transitions cannot both
// succeed.
func (r *ReservationRepository) Transition(ctx context.Context, id, from, to string) error {
	var updated reservationRecord
	err := r.client.UpdateRecordIf(ctx, collectionReservations, id,
		map[string]any{"status": from},
		map[string]any{"status": to},
		&updated,
	)
	if err != nil {
		return fmt.Errorf("transition reservation %s %s->%s: %w", id, from, to, err)
	}
	return nil
}

// ListExpiredHeld returns held reservations whose expiry has passed.
func (r *ReservationRepository) ListExpiredHeld(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	filter := fmt.Sprintf("status = %q && expires < %q",
		domain.ReservationHeld, now.UTC().Format(time.RFC3339))

	var recs []reservationRecord
	err := r.client.ListRecords(ctx, collectionReservations, store.ListParams{
		Filter:  filter,
		Sort:    "expires",
		PerPage: 50,
	}, &recs)
	if err != nil {
		return nil, err
	}

	reservations := make([]domain.Reservation, 0, len(recs))
	for _, rec := range recs {
		reservations = append(reservations, rec.toDomain())
	}
	return reservations, nil
}
