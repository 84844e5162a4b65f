// Package postgres implements the durable repositories against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/service/event"
)

// EventRepo implements event.Repository against PostgreSQL. The append path
// is a single INSERT with a BIGSERIAL id, so the database serializes
// concurrent writers and ids come out in creation order.
type EventRepo struct{ db *sql.DB }

// NewEventRepo creates a Postgres-backed event log repository.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, evt *domain.WebhookEvent) (*domain.WebhookEvent, error) {
	cp := *evt
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO phishing_events
			(kind, email, campaign_id, campaign_name, user_id, source_ip,
			 user_agent, latitude, longitude, message, details, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, cp.Kind, cp.Email, cp.CampaignID, cp.CampaignName, cp.UserID, cp.SourceIP,
		cp.UserAgent, cp.Latitude, cp.Longitude, cp.Message, nullJSON(cp.Details), cp.OccurredAt,
	).Scan(&cp.ID)
	if err != nil {
		return nil, fmt.Errorf("append event: %w", err)
	}
	return &cp, nil
}

func (r *EventRepo) List(ctx context.Context, f event.Filter) ([]domain.WebhookEvent, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	idx := 1

	if f.CampaignID != "" {
		where += fmt.Sprintf(" AND campaign_id = $%d", idx)
		args = append(args, f.CampaignID)
		idx++
	}
	if f.Kind != "" {
		where += fmt.Sprintf(" AND kind = $%d", idx)
		args = append(args, f.Kind)
		idx++
	}
	if f.Search != "" {
		where += fmt.Sprintf(" AND email ILIKE $%d", idx)
		args = append(args, "%"+f.Search+"%")
		idx++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM phishing_events"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	q := `
		SELECT id, kind, email, campaign_id, COALESCE(campaign_name,''),
		       COALESCE(user_id,''), COALESCE(source_ip,''), COALESCE(user_agent,''),
		       latitude, longitude, message, details, occurred_at
		FROM phishing_events` + where +
		fmt.Sprintf(" ORDER BY occurred_at DESC, id DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []domain.WebhookEvent
	for rows.Next() {
		var e domain.WebhookEvent
		var details sql.NullString
		if err := rows.Scan(
			&e.ID, &e.Kind, &e.Email, &e.CampaignID, &e.CampaignName,
			&e.UserID, &e.SourceIP, &e.UserAgent,
			&e.Latitude, &e.Longitude, &e.Message, &details, &e.OccurredAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		if details.Valid {
			e.Details = []byte(details.String)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	return out, total, nil
}

func (r *EventRepo) Clear(ctx context.Context, campaignID string) (int, error) {
	var (
		res sql.Result
		err error
	)
	if campaignID == "" {
		res, err = r.db.ExecContext(ctx, `DELETE FROM phishing_events`)
	} else {
		res, err = r.db.ExecContext(ctx, `DELETE FROM phishing_events WHERE campaign_id = $1`, campaignID)
	}
	if err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}
	return int(n), nil
}

// nullJSON maps an empty raw payload to SQL NULL instead of an empty string,
// which jsonb would reject.
func nullJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
