// Package record implements the repository contracts against the hosted
// record store.
package record

import (
	"context"
	"fmt"

	"github.com/ErFjeldheim/haugalandsved/internal/repository"
	"github.com/ErFjeldheim/haugalandsved/internal/store"
)

// Provider hands out repository bundles scoped to an authentication level.
// The privileged identity is authenticated per call and the resulting token
// lives only as long as the bundle that holds it.
type Provider struct {
	base            *store.Client
	adminIdentity   string
	adminPassword   string
	inventoryRecord string
}

// NewProvider creates a provider on top of the base store client.
func NewProvider(base *store.Client, adminIdentity, adminPassword, inventoryRecord string) *Provider {
	return &Provider{
		base:            base,
		adminIdentity:   adminIdentity,
		adminPassword:   adminPassword,
		inventoryRecord: inventoryRecord,
	}
}

func (p *Provider) stores(client *store.Client) repository.Stores {
	return repository.Stores{
		Inventory:    NewInventoryRepository(client, p.inventoryRecord),
		Campaigns:    NewCampaignRepository(client),
		Orders:       NewOrderRepository(client),
		Reservations: NewReservationRepository(client),
	}
}

// Public returns repositories bound to the unauthenticated client.
func (p *Provider) Public() repository.Stores {
	return p.stores(p.base)
}

// Privileged authenticates the service identity and returns write-capable
// repositories bound to the fresh token.
func (p *Provider) Privileged(ctx context.Context) (repository.Stores, error) {
	client, err := p.base.AuthAsSuperuser(ctx, p.adminIdentity, p.adminPassword)
	if err != nil {
		return repository.Stores{}, fmt.Errorf("privileged store auth: %w", err)
	}
	return p.stores(client), nil
}

// WithToken returns repositories bound to an end-user bearer token.
func (p *Provider) WithToken(token string) repository.Stores {
	return p.stores(p.base.WithToken(token))
}
