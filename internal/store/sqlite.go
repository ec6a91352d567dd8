package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY,
	zone_file    TEXT NOT NULL,
	provider     TEXT NOT NULL,
	sample_count INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS samples (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	zone_id     TEXT NOT NULL,
	lcz_class   TEXT NOT NULL,
	lat         REAL NOT NULL,
	lon         REAL NOT NULL,
	temperature REAL NOT NULL,
	source      TEXT NOT NULL,
	observed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS scenarios (
	id               TEXT PRIMARY KEY,
	from_lcz         TEXT NOT NULL,
	to_lcz           TEXT NOT NULL,
	base_temperature REAL NOT NULL,
	new_temperature  REAL NOT NULL,
	delta            REAL NOT NULL,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_samples_run_id ON samples(run_id);
CREATE INDEX IF NOT EXISTS idx_samples_class ON samples(lcz_class);
CREATE INDEX IF NOT EXISTS idx_scenarios_created_at ON scenarios(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, zoneFile, provider string, sampleCount int) (*Run, error) {
	run := &Run{
		ID:          uuid.New().String(),
		ZoneFile:    zoneFile,
		Provider:    provider,
		SampleCount: sampleCount,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, zone_file, provider, sample_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.ZoneFile, run.Provider, run.SampleCount, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return run, nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, zone_file, provider, sample_count, created_at FROM runs WHERE id = ?`,
		runID,
	)

	var r Run
	err := row.Scan(&r.ID, &r.ZoneFile, &r.Provider, &r.SampleCount, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, zone_file, provider, sample_count, created_at FROM runs
		 ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ZoneFile, &r.Provider, &r.SampleCount, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) InsertSamples(ctx context.Context, runID string, samples []sampler.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin insert samples")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (id, run_id, zone_id, lcz_class, lat, lon, temperature, source, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert sample")
	}
	defer stmt.Close() //nolint:errcheck

	for _, smp := range samples {
		id := smp.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx,
			id, runID, smp.ZoneID, smp.Class, smp.Lat, smp.Lon, smp.TempC, smp.Source, smp.ObservedAt.UTC(),
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert sample %s", id)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit insert samples")
}

func (s *SQLiteStore) ListSamples(ctx context.Context, filter SampleFilter) ([]sampler.Sample, error) {
	query := `SELECT id, zone_id, lcz_class, lat, lon, temperature, source, observed_at FROM samples WHERE 1=1`
	var args []any

	if filter.RunID != "" {
		query += ` AND run_id = ?`
		args = append(args, filter.RunID)
	}
	if filter.Class != "" {
		query += ` AND lcz_class = ?`
		args = append(args, filter.Class)
	}
	query += ` ORDER BY observed_at DESC LIMIT ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list samples")
	}
	defer rows.Close()

	var samples []sampler.Sample
	for rows.Next() {
		var smp sampler.Sample
		if err := rows.Scan(&smp.ID, &smp.ZoneID, &smp.Class, &smp.Lat, &smp.Lon, &smp.TempC, &smp.Source, &smp.ObservedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan sample")
		}
		samples = append(samples, smp)
	}
	return samples, eris.Wrap(rows.Err(), "sqlite: list samples iterate")
}

func (s *SQLiteStore) SaveScenario(ctx context.Context, result lcz.ScenarioResult) (*ScenarioRecord, error) {
	rec := &ScenarioRecord{
		ID:              uuid.New().String(),
		FromClass:       result.FromClass,
		ToClass:         result.ToClass,
		BaseTemperature: result.BaseTemperature,
		NewTemperature:  result.NewTemperature,
		Delta:           result.Delta,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO scenarios (id, from_lcz, to_lcz, base_temperature, new_temperature, delta, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.FromClass, rec.ToClass, rec.BaseTemperature, rec.NewTemperature, rec.Delta, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert scenario")
	}
	return rec, nil
}

func (s *SQLiteStore) ListScenarios(ctx context.Context, limit int) ([]ScenarioRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, from_lcz, to_lcz, base_temperature, new_temperature, delta, created_at FROM scenarios
		 ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list scenarios")
	}
	defer rows.Close()

	var recs []ScenarioRecord
	for rows.Next() {
		var rec ScenarioRecord
		if err := rows.Scan(&rec.ID, &rec.FromClass, &rec.ToClass, &rec.BaseTemperature, &rec.NewTemperature, &rec.Delta, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan scenario")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "sqlite: list scenarios iterate")
}
