package record

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/store"
	apperrors "github.com/ErFjeldheim/haugalandsved/pkg/errors"
)

var adjustConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Name: "inventory_adjust_conflicts_total",
	Help: "Conditional stock updates rejected because a concurrent writer changed the quantity",
})

const collectionInventory = "inventory"

// Adjustment retry policy: the whole read-modify-write is retried on
// conflict or transient failure with linear backoff.
const (
	adjustMaxAttempts = 3
	adjustBackoffUnit = 100 * time.Millisecond
)

type inventoryRecord struct {
	ID                string `json:"id"`
	QuantityAvailable int    `json:"quantity_available"`
	IsInStock         bool   `json:"isInStock"`
}

// InventoryRepository adjusts the single stock record with optimistic
// concurrency: every write is conditioned on the quantity read beforehand.
type InventoryRepository struct {
	client   *store.Client
	recordID string
}

// NewInventoryRepository creates an inventory repository for the given record.
func NewInventoryRepository(client *store.Client, recordID string) *InventoryRepository {
	return &InventoryRepository{client: client, recordID: recordID}
}

// Get returns the current stock snapshot.
func (r *InventoryRepository) Get(ctx context.Context) (domain.Inventory, error) {
	var rec inventoryRecord
	if err := r.client.GetRecord(ctx, collectionInventory, r.recordID, &rec); err != nil {
		return domain.Inventory{}, err
	}
	return domain.Inventory{
		ID:                rec.ID,
		QuantityAvailable: rec.QuantityAvailable,
		IsInStock:         rec.IsInStock,
	}, nil
}

// Reserve decrements stock by quantity, failing when stock does not cover it.
func (r *InventoryRepository) Reserve(ctx context.Context, quantity int) (int, error) {
	return r.adjust(ctx, func(current int) (int, error) {
		if current < quantity {
			return 0, apperrors.OutOfStock(fmt.Sprintf("requested %d, only %d available", quantity, current))
		}
		return current - quantity, nil
	})
}

// Decrement decrements stock by quantity, clamping at zero.
func (r *InventoryRepository) Decrement(ctx context.Context, quantity int) (int, error) {
	return r.adjust(ctx, func(current int) (int, error) {
		next := current - quantity
		if next < 0 {
			next = 0
		}
		return next, nil
	})
}

// Release returns previously held stock.
func (r *InventoryRepository) Release(ctx context.Context, quantity int) (int, error) {
	return r.adjust(ctx, func(current int) (int, error) {
		return current + quantity, nil
	})
}

// adjust runs the conditional read-modify-write cycle. A conflict means a
// concurrent writer changed the quantity between our read and write; the
// whole cycle is retried, not just the write.
func (r *InventoryRepository) adjust(ctx context.Context, compute func(current int) (int, error)) (int, error) {
	var lastErr error

	for attempt := 1; attempt <= adjustMaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(adjustBackoffUnit * time.Duration(attempt)):
			case <-ctx.Done():
				return 0, ctx.Err()
			}
		}

		var rec inventoryRecord
		if err := r.client.GetRecord(ctx, collectionInventory, r.recordID, &rec); err != nil {
			lastErr = err
			continue
		}

		next, err := compute(rec.QuantityAvailable)
		if err != nil {
			return 0, err
		}

		var updated inventoryRecord
		err = r.client.UpdateRecordIf(ctx, collectionInventory, r.recordID,
			map[string]any{"quantity_available": rec.QuantityAvailable},
			map[string]any{
				"quantity_available": next,
				"isInStock":          next > 0,
			},
			&updated,
		)
		if err == nil {
			return updated.QuantityAvailable, nil
		}
		if store.IsConflict(err) {
			adjustConflicts.Inc()
		}
		lastErr = err
	}

	return 0, fmt.Errorf("adjust inventory after %d attempts: %w", adjustMaxAttempts, lastErr)
}
