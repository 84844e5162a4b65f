package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/phishsim-monitor/internal/domain"
	"github.com/ignite/phishsim-monitor/internal/service/reconcile"
)

func campaignColumns() []string {
	return []string{
		"id", "external_id", "name",
		"stats_opened", "stats_clicked", "stats_submitted", "stats_reported",
		"results", "created_at", "updated_at",
	}
}

func TestCampaignFindByExternalID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	results := `[{"email":"a@x.com","status":"CLICKED","click_date":"` + now.Format(time.RFC3339Nano) + `"}]`
	mock.ExpectQuery(`(?s)SELECT id, external_id,.+FROM phishing_campaigns\s+WHERE external_id = \$1`).
		WithArgs("42").
		WillReturnRows(sqlmock.NewRows(campaignColumns()).
			AddRow("3f6c0b8a-0000-0000-0000-000000000001", "42", "Q3 Awareness",
				2, 1, 0, 0, results, now, now))

	repo := NewCampaignRepo(db)
	c, err := repo.FindByExternalID(context.Background(), "42")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if c.ExternalID != "42" || c.Name != "Q3 Awareness" {
		t.Fatalf("unexpected campaign %+v", c)
	}
	if c.Stats.Opened != 2 || c.Stats.Clicked != 1 {
		t.Fatalf("unexpected stats %+v", c.Stats)
	}
	tr := c.Result("a@x.com")
	if tr == nil || tr.Status != domain.StatusClicked || tr.ClickDate == nil {
		t.Fatalf("results blob not decoded: %+v", tr)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCampaignFindUnknownIsErrNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`(?s)SELECT id, external_id,.+FROM phishing_campaigns`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(campaignColumns()))

	repo := NewCampaignRepo(db)
	if _, err := repo.FindByExternalID(context.Background(), "missing"); !errors.Is(err, reconcile.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCampaignSave(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE phishing_campaigns`).
		WithArgs("42", 2, 1, 0, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewCampaignRepo(db)
	err = repo.Save(context.Background(), &domain.Campaign{
		ExternalID: "42",
		Stats:      domain.CampaignStats{Opened: 2, Clicked: 1},
		Results:    []domain.TargetResult{{Email: "a@x.com", Status: domain.StatusClicked}},
		UpdatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCampaignSaveVanishedRowIsErrNotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE phishing_campaigns`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewCampaignRepo(db)
	err = repo.Save(context.Background(), &domain.Campaign{ExternalID: "gone"})
	if !errors.Is(err, reconcile.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
