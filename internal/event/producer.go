package event

import (
	"context"
	"fmt"
	"log/slog"

	pkgkafka "github.com/ErFjeldheim/haugalandsved/pkg/kafka"
)

// Kafka topic constants for storefront domain events.
const (
	TopicCheckoutSessionCreated = "haugalandsved.checkout.session_created"
	TopicCheckoutCancelled      = "haugalandsved.checkout.cancelled"
	TopicOrderCreated           = "haugalandsved.order.created"
)

// Aggregate type constants.
const (
	AggregateTypeCheckout = "checkout"
	AggregateTypeOrder    = "order"
)

// Source identifier for events originating from the storefront.
const SourceStorefront = "haugalandsved-storefront"

// CheckoutSessionCreatedData is the payload for a checkout.session_created event.
type CheckoutSessionCreatedData struct {
	SessionID      string `json:"session_id"`
	UserID         string `json:"user_id,omitempty"`
	Quantity       int    `json:"quantity"`
	DeliveryMethod string `json:"delivery_method"`
	TotalPrice     int64  `json:"total_price"`
	ReservationID  string `json:"reservation_id,omitempty"`
}

// CheckoutCancelledData is the payload for a checkout.cancelled event.
type CheckoutCancelledData struct {
	ReservationID string `json:"reservation_id"`
	Quantity      int    `json:"quantity"`
}

// OrderCreatedData is the payload for an order.created event.
type OrderCreatedData struct {
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id,omitempty"`
	GuestEmail     string `json:"guest_email,omitempty"`
	Quantity       int    `json:"quantity"`
	DeliveryMethod string `json:"delivery_method"`
	TotalPrice     int64  `json:"total_price"`
	Status         string `json:"status"`
}

// Producer publishes storefront domain events to Kafka. All publishes are
// best effort; callers log failures and continue.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishCheckoutSessionCreated publishes a checkout.session_created event.
func (p *Producer) PublishCheckoutSessionCreated(ctx context.Context, data CheckoutSessionCreatedData) error {
	event, err := pkgkafka.NewEvent(TopicCheckoutSessionCreated, data.SessionID, AggregateTypeCheckout, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create checkout.session_created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutSessionCreated, event); err != nil {
		return fmt.Errorf("publish checkout.session_created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.session_created event",
		slog.String("session_id", data.SessionID),
		slog.Int("quantity", data.Quantity),
	)

	return nil
}

// PublishCheckoutCancelled publishes a checkout.cancelled event.
func (p *Producer) PublishCheckoutCancelled(ctx context.Context, data CheckoutCancelledData) error {
	event, err := pkgkafka.NewEvent(TopicCheckoutCancelled, data.ReservationID, AggregateTypeCheckout, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create checkout.cancelled event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCheckoutCancelled, event); err != nil {
		return fmt.Errorf("publish checkout.cancelled event: %w", err)
	}

	p.logger.DebugContext(ctx, "published checkout.cancelled event",
		slog.String("reservation_id", data.ReservationID),
	)

	return nil
}

// PublishOrderCreated publishes an order.created event.
func (p *Producer) PublishOrderCreated(ctx context.Context, data OrderCreatedData) error {
	event, err := pkgkafka.NewEvent(TopicOrderCreated, data.OrderID, AggregateTypeOrder, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create order.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicOrderCreated, event); err != nil {
		return fmt.Errorf("publish order.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published order.created event",
		slog.String("order_id", data.OrderID),
		slog.String("user_id", data.UserID),
	)

	return nil
}
