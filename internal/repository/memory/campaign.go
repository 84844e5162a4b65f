package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/service/reconcile"
)

// CampaignRepo implements reconcile.CampaignRepository in memory.
type CampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*domain.Campaign // keyed by external id
}

// NewCampaignRepo creates an empty in-memory campaign store.
func NewCampaignRepo() *CampaignRepo {
	return &CampaignRepo{campaigns: make(map[string]*domain.Campaign)}
}

// Seed inserts a campaign, assigning a local id if missing. Used by dev
// mode and tests.
func (r *CampaignRepo) Seed(c *domain.Campaign) *domain.Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := cloneCampaign(c)
	if cp.ID == "" {
		cp.ID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	r.campaigns[cp.ExternalID] = cp
	return cloneCampaign(cp)
}

// FindByExternalID returns a deep copy so callers can mutate freely
// before Save.
func (r *CampaignRepo) FindByExternalID(ctx context.Context, id string) (*domain.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[id]
	if !ok {
		return nil, reconcile.ErrNotFound
	}
	return cloneCampaign(c), nil
}

// Save replaces the stored aggregate.
func (r *CampaignRepo) Save(ctx context.Context, c *domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.campaigns[c.ExternalID]; !ok {
		return reconcile.ErrNotFound
	}
	r.campaigns[c.ExternalID] = cloneCampaign(c)
	return nil
}

func cloneCampaign(c *domain.Campaign) *domain.Campaign {
	cp := *c
	cp.Results = make([]domain.TargetResult, len(c.Results))
	copy(cp.Results, c.Results)
	for i := range cp.Results {
		cp.Results[i].OpenDate = cloneTime(cp.Results[i].OpenDate)
		cp.Results[i].ClickDate = cloneTime(cp.Results[i].ClickDate)
		cp.Results[i].SubmitDate = cloneTime(cp.Results[i].SubmitDate)
		cp.Results[i].ReportDate = cloneTime(cp.Results[i].ReportDate)
		cp.Results[i].Latitude = cloneFloat(cp.Results[i].Latitude)
		cp.Results[i].Longitude = cloneFloat(cp.Results[i].Longitude)
	}
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}
