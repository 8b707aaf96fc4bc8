package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/adbuddy-ai/backend/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS competitor_runs (
	id            TEXT PRIMARY KEY,
	company       TEXT NOT NULL,
	status        TEXT NOT NULL,
	competitors   TEXT,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS campaign_runs (
	id            TEXT PRIMARY KEY,
	company       TEXT NOT NULL,
	title         TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL,
	transcript    TEXT,
	plan          TEXT,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_competitor_runs_created ON competitor_runs (created_at);
CREATE INDEX IF NOT EXISTS idx_campaign_runs_created ON campaign_runs (created_at);
`

// SQLiteStore persists runs in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the SQLite database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	// modernc sqlite is single-writer.
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db}, nil
}

// Migrate creates the schema if it does not exist.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return eris.Wrap(err, "store: migrate sqlite")
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCompetitorRun(ctx context.Context, run *model.CompetitorRun) error {
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
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, company, string(run.Status), competitors, run.ErrorMessage,
		formatTime(run.CreatedAt), formatTime(run.UpdatedAt),
	)
	if err != nil {
		return eris.Wrap(err, "store: insert competitor run")
	}
	return nil
}

func (s *SQLiteStore) UpdateCompetitorRun(ctx context.Context, run *model.CompetitorRun) error {
	run.UpdatedAt = time.Now().UTC()

	competitors, err := toJSON(run.Competitors)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE competitor_runs SET status = ?, competitors = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(run.Status), competitors, run.ErrorMessage, formatTime(run.UpdatedAt), run.ID,
	)
	if err != nil {
		return eris.Wrap(err, "store: update competitor run")
	}
	return affectedOne(res)
}

func (s *SQLiteStore) GetCompetitorRun(ctx context.Context, id string) (*model.CompetitorRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, status, competitors, error_message, created_at, updated_at
		 FROM competitor_runs WHERE id = ?`, id,
	)
	return scanCompetitorRun(row)
}

func (s *SQLiteStore) ListCompetitorRuns(ctx context.Context, limit int) ([]*model.CompetitorRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, status, competitors, error_message, created_at, updated_at
		 FROM competitor_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list competitor runs")
	}
	defer rows.Close()

	var runs []*model.CompetitorRun
	for rows.Next() {
		run, err := scanCompetitorRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "store: list competitor runs")
}

func (s *SQLiteStore) CreateCampaignRun(ctx context.Context, run *model.CampaignRun) error {
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
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, company, run.Title, string(run.Status), transcript, plan, run.ErrorMessage,
		formatTime(run.CreatedAt), formatTime(run.UpdatedAt),
	)
	if err != nil {
		return eris.Wrap(err, "store: insert campaign run")
	}
	return nil
}

func (s *SQLiteStore) UpdateCampaignRun(ctx context.Context, run *model.CampaignRun) error {
	run.UpdatedAt = time.Now().UTC()

	plan, err := toJSON(run.Plan)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE campaign_runs SET title = ?, status = ?, plan = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		run.Title, string(run.Status), plan, run.ErrorMessage, formatTime(run.UpdatedAt), run.ID,
	)
	if err != nil {
		return eris.Wrap(err, "store: update campaign run")
	}
	return affectedOne(res)
}

func (s *SQLiteStore) GetCampaignRun(ctx context.Context, id string) (*model.CampaignRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, company, title, status, transcript, plan, error_message, created_at, updated_at
		 FROM campaign_runs WHERE id = ?`, id,
	)
	return scanCampaignRun(row)
}

func (s *SQLiteStore) ListCampaignRuns(ctx context.Context, limit int) ([]*model.CampaignRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, company, title, status, transcript, plan, error_message, created_at, updated_at
		 FROM campaign_runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: list campaign runs")
	}
	defer rows.Close()

	var runs []*model.CampaignRun
	for rows.Next() {
		run, err := scanCampaignRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "store: list campaign runs")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompetitorRun(row rowScanner) (*model.CompetitorRun, error) {
	var (
		run                  model.CompetitorRun
		status               string
		company, competitors sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&run.ID, &company, &status, &competitors, &run.ErrorMessage, &createdAt, &updatedAt)
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
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if run.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

func scanCampaignRun(row rowScanner) (*model.CampaignRun, error) {
	var (
		run                       model.CampaignRun
		status                    string
		company, transcript, plan sql.NullString
		createdAt, updatedAt      string
	)
	err := row.Scan(&run.ID, &company, &run.Title, &status, &transcript, &plan, &run.ErrorMessage, &createdAt, &updatedAt)
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
	if run.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if run.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &run, nil
}

func toJSON(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, eris.Wrap(err, "store: marshal column")
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func fromJSON(col sql.NullString, out any) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(col.String), out); err != nil {
		return eris.Wrap(err, "store: unmarshal column")
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, eris.Wrap(err, "store: parse timestamp")
	}
	return t, nil
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
