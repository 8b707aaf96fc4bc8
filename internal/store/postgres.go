package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rotisserie/eris"

	"github.com/adbuddy-ai/backend/internal/model"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS competitor_runs (
	id            TEXT PRIMARY KEY,
	company       JSONB NOT NULL,
	status        TEXT NOT NULL,
	competitors   JSONB,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS campaign_runs (
	id            TEXT PRIMARY KEY,
	company       JSONB NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	transcript    JSONB,
	plan          JSONB,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_competitor_runs_created ON competitor_runs (created_at);
CREATE INDEX IF NOT EXISTS idx_campaign_runs_created ON campaign_runs (created_at);
`

// PostgresStore persists runs in Postgres via the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against the given DSN.
func NewPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open postgres")
	}
	return &PostgresStore{db: db}, nil
}

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, postgresSchema); err != nil {
		return eris.Wrap(err, "store: migrate postgres")
	}
	return nil
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateCompetitorRun(ctx context.Context, run *model.CompetitorRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	company, err := toJSON(run.Company)
	if err != nil {
		return err
	}
	competitors, err := toJSON(run.Competitors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO competitor_runs (id, company, status, competitors, error_message, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		run.ID, company, string(run.Status), competitors, run.ErrorMessage, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "store: insert competitor run")
	}
	return nil
}

func (s *PostgresStore) UpdateCompetitorRun(ctx context.Context, run *model.CompetitorRun) error {
	run.UpdatedAt = time.Now().UTC()

	competitors, err := toJSON(run.Competitors)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE competitor_runs SET status = $1, competitors = $2, error_message = $3, updated_at = $4 WHERE id = $5`,
		string(run.Status), competitors, run.ErrorMessage, run.UpdatedAt, run.ID,
	)
	if err != nil {
		return eris.Wrap(err, "store: update competitor run")
	}
	return affectedOne(res)
}

func (s *PostgresStore) GetCompetitorRun(ctx context.Context, id string) (*model.CompetitorRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, status, competitors, error_message, created_at, updated_at
		 FROM competitor_runs WHERE id = $1`, id,
	)
	return scanCompetitorRunPG(row)
}

func (s *PostgresStore) ListCompetitorRuns(ctx context.Context, limit int) ([]*model.CompetitorRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, status, competitors, error_message, created_at, updated_at
		 FROM competitor_runs ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list competitor runs")
	}
	defer rows.Close()

	var runs []*model.CompetitorRun
	for rows.Next() {
		run, err := scanCompetitorRunPG(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "store: list competitor runs")
}

func (s *PostgresStore) CreateCampaignRun(ctx context.Context, run *model.CampaignRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	run.CreatedAt = now
	run.UpdatedAt = now

	company, err := toJSON(run.Company)
	if err != nil {
		return err
	}
	transcript, err := toJSON(run.Transcript)
	if err != nil {
		return err
	}
	plan, err := toJSON(run.Plan)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO campaign_runs (id, company, title, status, transcript, plan, error_message, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		run.ID, company, run.Title, string(run.Status), transcript, plan, run.ErrorMessage,
		run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return eris.Wrap(err, "store: insert campaign run")
	}
	return nil
}

func (s *PostgresStore) UpdateCampaignRun(ctx context.Context, run *model.CampaignRun) error {
	run.UpdatedAt = time.Now().UTC()

	plan, err := toJSON(run.Plan)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE campaign_runs SET title = $1, status = $2, plan = $3, error_message = $4, updated_at = $5 WHERE id = $6`,
		run.Title, string(run.Status), plan, run.ErrorMessage, run.UpdatedAt, run.ID,
	)
	if err != nil {
		return eris.Wrap(err, "store: update campaign run")
	}
	return affectedOne(res)
}

func (s *PostgresStore) GetCampaignRun(ctx context.Context, id string) (*model.CampaignRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, title, status, transcript, plan, error_message, created_at, updated_at
		 FROM campaign_runs WHERE id = $1`, id,
	)
	return scanCampaignRunPG(row)
}

func (s *PostgresStore) ListCampaignRuns(ctx context.Context, limit int) ([]*model.CampaignRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, title, status, transcript, plan, error_message, created_at, updated_at
		 FROM campaign_runs ORDER BY created_at DESC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list campaign runs")
	}
	defer rows.Close()

	var runs []*model.CampaignRun
	for rows.Next() {
		run, err := scanCampaignRunPG(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "store: list campaign runs")
}

func scanCompetitorRunPG(row rowScanner) (*model.CompetitorRun, error) {
	var (
		run                  model.CompetitorRun
		status               string
		company, competitors sql.NullString
	)
	err := row.Scan(&run.ID, &company, &status, &competitors, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan competitor run")
	}

	run.Status = model.RunStatus(status)
	if err := fromJSON(company, &run.Company); err != nil {
		return nil, err
	}
	if err := fromJSON(competitors, &run.Competitors); err != nil {
		return nil, err
	}
	return &run, nil
}

func scanCampaignRunPG(row rowScanner) (*model.CampaignRun, error) {
	var (
		run                       model.CampaignRun
		status                    string
		company, transcript, plan sql.NullString
	)
	err := row.Scan(&run.ID, &company, &run.Title, &status, &transcript, &plan, &run.ErrorMessage, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan campaign run")
	}

	run.Status = model.RunStatus(status)
	if err := fromJSON(company, &run.Company); err != nil {
		return nil, err
	}
	if err := fromJSON(transcript, &run.Transcript); err != nil {
		return nil, err
	}
	if err := fromJSON(plan, &run.Plan); err != nil {
		return nil, err
	}
	return &run, nil
}
