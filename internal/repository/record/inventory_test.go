package record

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ErFjeldheim/haugalandsved/internal/store"
	apperrors "github.com/ErFjeldheim/haugalandsved/pkg/errors"
	"github.com/ErFjeldheim/haugalandsved/pkg/httpclient"
)

// fakeStore simulates the inventory record with conditional updates.
type fakeStore struct {
	mu       sync.Mutex
	quantity int
	// conflicts makes the next N conditional updates fail with 409
	// regardless of the expectation, simulating concurrent writers.
	conflicts int
	updates   int
}

func (f *fakeStore) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]any{
				"id":                 "inv",
				"quantity_available": f.quantity,
				"isInStock":          f.quantity > 0,
			})
		case http.MethodPatch:
			f.updates++
			if f.conflicts > 0 {
				f.conflicts--
				w.WriteHeader(http.StatusConflict)
				json.NewEncoder(w).Encode(map[string]any{"code": 409, "message": "expectation failed"})
				return
			}

			var body struct {
				QuantityAvailable int  `json:"quantity_available"`
				IsInStock         bool `json:"isInStock"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.quantity = body.QuantityAvailable
			json.NewEncoder(w).Encode(map[string]any{
				"id":                 "inv",
				"quantity_available": f.quantity,
				"isInStock":          body.IsInStock,
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func newInventoryFixture(t *testing.T, quantity, conflicts int) (*InventoryRepository, *fakeStore) {
	t.Helper()
	fake := &fakeStore{quantity: quantity, conflicts: conflicts}
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client := store.New(server.URL, httpclient.New(httpclient.DefaultConfig()))
	return NewInventoryRepository(client, "inv"), fake
}

func TestInventoryReserve_Success(t *testing.T) {
	repo, fake := newInventoryFixture(t, 10, 0)

	remaining, err := repo.Reserve(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
	assert.Equal(t, 7, fake.quantity)
}

func TestInventoryReserve_Insufficient(t *testing.T) {
	repo, fake := newInventoryFixture(t, 2, 0)

	_, err := repo.Reserve(context.Background(), 3)

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrOutOfStock))
	assert.Equal(t, 0, fake.updates)
	assert.Equal(t, 2, fake.quantity)
}

func TestInventoryReserve_RetriesOnConflict(t *testing.T) {
	repo, fake := newInventoryFixture(t, 10, 1)
	conflictsBefore := testutil.ToFloat64(adjustConflicts)

	remaining, err := repo.Reserve(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
	assert.Equal(t, 2, fake.updates)
	assert.Equal(t, conflictsBefore+1, testutil.ToFloat64(adjustConflicts))
}

func TestInventoryReserve_GivesUpAfterMaxAttempts(t *testing.T) {
	repo, fake := newInventoryFixture(t, 10, adjustMaxAttempts)

	_, err := repo.Reserve(context.Background(), 3)

	require.Error(t, err)
	assert.Equal(t, adjustMaxAttempts, fake.updates)
	assert.Equal(t, 10, fake.quantity)
}

func TestInventoryDecrement_ClampsAtZero(t *testing.T) {
	repo, fake := newInventoryFixture(t, 2, 0)

	remaining, err := repo.Decrement(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
	assert.Equal(t, 0, fake.quantity)
}

func TestInventoryRelease_ReturnsStock(t *testing.T) {
	repo, fake := newInventoryFixture(t, 4, 0)

	remaining, err := repo.Release(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, 7, remaining)
	assert.Equal(t, 7, fake.quantity)
}

func TestInventoryGet(t *testing.T) {
	repo, _ := newInventoryFixture(t, 5, 0)

	inv, err := repo.Get(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, inv.QuantityAvailable)
	assert.True(t, inv.IsInStock)
}

func TestInventoryReserve_CanceledContext(t *testing.T) {
	repo, _ := newInventoryFixture(t, 10, adjustMaxAttempts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Reserve(ctx, 3)

	require.Error(t, err)
}
