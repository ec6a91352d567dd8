// Package store persists sampling runs, temperature samples and scenario
// calculations, backed by SQLite or Postgres.
package store

import (
	"context"
	"time"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
)

// Run is one completed sampling pass over a zone file.
type Run struct {
	ID          string    `json:"id"`
	ZoneFile    string    `json:"zone_file"`
	Provider    string    `json:"provider"`
	SampleCount int       `json:"sample_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ScenarioRecord is a persisted scenario calculation.
type ScenarioRecord struct {
	ID              string    `json:"id"`
	FromClass       string    `json:"from_lcz"`
	ToClass         string    `json:"to_lcz"`
	BaseTemperature float64   `json:"base_temperature"`
	NewTemperature  float64   `json:"new_temperature"`
	Delta           float64   `json:"delta"`
	CreatedAt       time.Time `json:"created_at"`
}

// SampleFilter narrows ListSamples.
type SampleFilter struct {
	RunID string `json:"run_id,omitempty"`
	Class string `json:"lcz_class,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Store defines the persistence interface.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, zoneFile, provider string, sampleCount int) (*Run, error)
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Samples
	InsertSamples(ctx context.Context, runID string, samples []sampler.Sample) error
	ListSamples(ctx context.Context, filter SampleFilter) ([]sampler.Sample, error)

	// Scenario history
	SaveScenario(ctx context.Context, result lcz.ScenarioResult) (*ScenarioRecord, error)
	ListScenarios(ctx context.Context, limit int) ([]ScenarioRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
