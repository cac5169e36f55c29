package record

import (
	"context"
	"fmt"

	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/store"
)

const collectionOrders = "orders"

type orderRecord struct {
	ID             string          `json:"id,omitempty"`
	User           string          `json:"user,omitempty"`
	GuestEmail     string          `json:"guest_email,omitempty"`
	Quantity       int             `json:"quantity"`
	DeliveryMethod string          `json:"delivery_method"`
	TotalPrice     int64           `json:"total_price"`
	Status         string          `json:"status"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerPhone  string          `json:"customer_phone,omitempty"`
	CustomerAddr   string          `json:"customer_address,omitempty"`
	CustomerZip    string          `json:"customer_zip,omitempty"`
	CustomerCity   string          `json:"customer_city,omitempty"`
	Created        store.Timestamp `json:"created,omitempty"`
}

func (r orderRecord) toDomain() domain.Order {
	return domain.Order{
		ID:             r.ID,
		UserID:         r.User,
		GuestEmail:     r.GuestEmail,
		Quantity:       r.Quantity,
		DeliveryMethod: domain.DeliveryMethod(r.DeliveryMethod),
		TotalPrice:     r.TotalPrice,
		Status:         r.Status,
		CustomerName:   r.CustomerName,
		CustomerPhone:  r.CustomerPhone,
		CustomerAddr:   r.CustomerAddr,
		CustomerZip:    r.CustomerZip,
		CustomerCity:   r.CustomerCity,
		Created:        r.Created.Time,
	}
}

// OrderRepository creates and lists paid orders in the record store.
type OrderRepository struct {
	client *store.Client
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(client *store.Client) *OrderRepository {
	return &OrderRepository{client: client}
}

// Create stores a new order and returns it with its assigned ID.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	body := orderRecord{
		User:           order.UserID,
		GuestEmail:     order.GuestEmail,
		Quantity:       order.Quantity,
		DeliveryMethod: string(order.DeliveryMethod),
		TotalPrice:     order.TotalPrice,
		Status:         order.Status,
		CustomerName:   order.CustomerName,
		CustomerPhone:  order.CustomerPhone,
		CustomerAddr:   order.CustomerAddr,
		CustomerZip:    order.CustomerZip,
		CustomerCity:   order.CustomerCity,
	}

	var created orderRecord
	if err := r.client.CreateRecord(ctx, collectionOrders, body, &created); err != nil {
		return nil, err
	}
	out := created.toDomain()
	return &out, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var recs []orderRecord
	err := r.client.ListRecords(ctx, collectionOrders, store.ListParams{
		Filter:  fmt.Sprintf("user = %q", userID),
		Sort:    "-created",
		PerPage: 100,
	}, &recs)
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(recs))
	for _, rec := range recs {
		orders = append(orders, rec.toDomain())
	}
	return orders, nil
}
