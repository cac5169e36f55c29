// Package service implements the storefront workflows on top of the
// repositories, the payment provider, and the notification channels.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ErFjeldheim/haugalandsved/internal/cache"
	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/repository"
)

// Availability is the public stock view. When the inventory gateway fails
// the storefront reports zero stock rather than guessing.
type Availability struct {
	QuantityAvailable int  `json:"quantity_available"`
	IsInStock         bool `json:"isInStock"`
}

// Storefront serves public pricing and availability plus the signed-in
// user's order history.
type Storefront struct {
	provider repository.Provider
	prices   cache.PriceCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewStorefront creates the storefront service. prices may be nil when no
// cache is configured.
func NewStorefront(provider repository.Provider, prices cache.PriceCache, log *slog.Logger) *Storefront {
	return &Storefront{
		provider: provider,
		prices:   prices,
		logger:   log,
		now:      time.Now,
	}
}

// Availability returns the current stock. Any inventory failure degrades to
// sold out so the storefront never promises stock it cannot see.
func (s *Storefront) Availability(ctx context.Context) Availability {
	inv, err := s.provider.Public().Inventory.Get(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "inventory lookup failed, reporting sold out",
			slog.String("error", err.Error()))
		return Availability{QuantityAvailable: 0, IsInStock: false}
	}
	return Availability{
		QuantityAvailable: inv.QuantityAvailable,
		IsInStock:         inv.IsInStock && inv.QuantityAvailable > 0,
	}
}

// Prices resolves the current unit price: cache first, then active
// campaigns, falling back to the default price on any failure.
func (s *Storefront) Prices(ctx context.Context) domain.PricePair {
	if s.prices != nil {
		cached, err := s.prices.Get(ctx)
		if err == nil {
			return cached
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.WarnContext(ctx, "price cache read failed", slog.String("error", err.Error()))
		}
	}

	campaigns, err := s.provider.Public().Campaigns.ListActive(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "campaign lookup failed, using default price",
			slog.String("error", err.Error()))
		return domain.DefaultPrices()
	}

	prices := domain.ResolveActivePrice(s.now(), campaigns)
	if s.prices != nil {
		if err := s.prices.Set(ctx, prices); err != nil {
			s.logger.WarnContext(ctx, "price cache write failed", slog.String("error", err.Error()))
		}
	}
	return prices
}

// Orders returns the user's order history, newest first. The token scopes
// the store query to records the user may read.
func (s *Storefront) Orders(ctx context.Context, token, userID string) ([]domain.Order, error) {
	orders, err := s.provider.WithToken(token).Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return orders, nil
}
