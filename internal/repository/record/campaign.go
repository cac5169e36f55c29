package record

import (
	"context"

	"github.com/ErFjeldheim/haugalandsved/internal/domain"
	"github.com/ErFjeldheim/haugalandsved/internal/store"
)

const collectionCampaigns = "campaigns"

type campaignRecord struct {
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	CampaignPrice int64           `json:"campaignPrice"`
	StandardPrice int64           `json:"standardPrice"`
	EndDate       store.Timestamp `json:"endDate"`
	IsActive      bool            `json:"isActive"`
	Created       store.Timestamp `json:"created"`
}

// CampaignRepository reads promotional campaigns from the record store.
type CampaignRepository struct {
	client *store.Client
}

// NewCampaignRepository creates a campaign repository.
func NewCampaignRepository(client *store.Client) *CampaignRepository {
	return &CampaignRepository{client: client}
}

// ListActive returns campaigns flagged active, newest first.
func (r *CampaignRepository) ListActive(ctx context.Context) ([]domain.Campaign, error) {
	var recs []campaignRecord
	err := r.client.ListRecords(ctx, collectionCampaigns, store.ListParams{
		Filter:  "isActive = true",
		Sort:    "-created",
		PerPage: 20,
	}, &recs)
	if err != nil {
		return nil, err
	}

	campaigns := make([]domain.Campaign, 0, len(recs))
	for _, rec := range recs {
		campaigns = append(campaigns, domain.Campaign{
			ID:            rec.ID,
			Label:         rec.Label,
			CampaignPrice: rec.CampaignPrice,
			StandardPrice: rec.StandardPrice,
			EndDate:       rec.EndDate.Time,
			IsActive:      rec.IsActive,
			Created:       rec.Created.Time,
		})
	}
	return campaigns, nil
}
