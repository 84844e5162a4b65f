package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/service/reconcile"
)

// CampaignRepo implements reconcile.CampaignRepository against PostgreSQL.
// Stats live in plain integer columns; the per-target results collection is
// a jsonb blob, read and written whole; the reconciler's per-campaign lock
// makes the read-modify-write safe.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

func (r *CampaignRepo) FindByExternalID(ctx context.Context, id string) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var results []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, external_id, COALESCE(name,''),
		       stats_opened, stats_clicked, stats_submitted, stats_reported,
		       results, created_at, updated_at
		FROM phishing_campaigns
		WHERE external_id = $1
	`, id).Scan(
		&c.ID, &c.ExternalID, &c.Name,
		&c.Stats.Opened, &c.Stats.Clicked, &c.Stats.Submitted, &c.Stats.Reported,
		&results, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, reconcile.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find campaign: %w", err)
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &c.Results); err != nil {
			return nil, fmt.Errorf("decode campaign results: %w", err)
		}
	}
	return c, nil
}

func (r *CampaignRepo) Save(ctx context.Context, c *domain.Campaign) error {
	results, err := json.Marshal(c.Results)
	if err != nil {
		return fmt.Errorf("encode campaign results: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE phishing_campaigns
		SET stats_opened = $2, stats_clicked = $3, stats_submitted = $4,
		    stats_reported = $5, results = $6, updated_at = $7
		WHERE external_id = $1
	`, c.ExternalID,
		c.Stats.Opened, c.Stats.Clicked, c.Stats.Submitted, c.Stats.Reported,
		results, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save campaign: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save campaign: %w", err)
	}
	if n == 0 {
		return reconcile.ErrNotFound
	}
	return nil
}
