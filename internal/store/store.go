// Package store persists pipeline runs. Two backends are supported: an
// embedded SQLite database for local use and Postgres for deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/adbuddy-ai/backend/internal/config"
	"github.com/adbuddy-ai/backend/internal/model"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = eris.New("store: not found")

// Store is the persistence interface for pipeline runs.
type Store interface {
	Migrate(ctx context.Context) error

	CreateCompetitorRun(ctx context.Context, run *model.CompetitorRun) error
	UpdateCompetitorRun(ctx context.Context, run *model.CompetitorRun) error
	GetCompetitorRun(ctx context.Context, id string) (*model.CompetitorRun, error)
	ListCompetitorRuns(ctx context.Context, limit int) ([]*model.CompetitorRun, error)

	CreateCampaignRun(ctx context.Context, run *model.CampaignRun) error
	UpdateCampaignRun(ctx context.Context, run *model.CampaignRun) error
	GetCampaignRun(ctx context.Context, id string) (*model.CampaignRun, error)
	ListCampaignRuns(ctx context.Context, limit int) ([]*model.CampaignRun, error)

	Close() error
}

// New creates a store for the configured driver.
func New(cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLite(cfg.DatabaseURL)
	case "postgres":
		return NewPostgres(cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}
