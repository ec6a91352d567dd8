package store

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/urbanclimate/lcz-planner/internal/db"
	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// the hottest store operations.
var preparedStatements = map[string]string{
	"insert_run":      `INSERT INTO runs (id, zone_file, provider, sample_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
	"get_run":         `SELECT id, zone_file, provider, sample_count, created_at FROM runs WHERE id = $1`,
	"insert_scenario": `INSERT INTO scenarios (id, from_lcz, to_lcz, base_temperature, new_temperature, delta, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
	"list_scenarios":  `SELECT id, from_lcz, to_lcz, base_temperature, new_temperature, delta, created_at FROM scenarios ORDER BY created_at DESC LIMIT $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	zone_file    TEXT NOT NULL,
	provider     TEXT NOT NULL,
	sample_count INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS samples (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	zone_id     TEXT NOT NULL,
	lcz_class   TEXT NOT NULL,
	lat         DOUBLE PRECISION NOT NULL,
	lon         DOUBLE PRECISION NOT NULL,
	temperature DOUBLE PRECISION NOT NULL,
	source      TEXT NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS scenarios (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	from_lcz         TEXT NOT NULL,
	to_lcz           TEXT NOT NULL,
	base_temperature DOUBLE PRECISION NOT NULL,
	new_temperature  DOUBLE PRECISION NOT NULL,
	delta            DOUBLE PRECISION NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_samples_run_id ON samples(run_id);
CREATE INDEX IF NOT EXISTS idx_samples_class ON samples(lcz_class);
CREATE INDEX IF NOT EXISTS idx_scenarios_created_at ON scenarios(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, zoneFile, provider string, sampleCount int) (*Run, error) {
	run := &Run{
		ID:          uuid.New().String(),
		ZoneFile:    zoneFile,
		Provider:    provider,
		SampleCount: sampleCount,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, zone_file, provider, sample_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		run.ID, run.ZoneFile, run.Provider, run.SampleCount, run.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return run, nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, zone_file, provider, sample_count, created_at FROM runs WHERE id = $1`,
		runID,
	)

	var r Run
	if err := row.Scan(&r.ID, &r.ZoneFile, &r.Provider, &r.SampleCount, &r.CreatedAt); err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, zone_file, provider, sample_count, created_at FROM runs
		 ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.ZoneFile, &r.Provider, &r.SampleCount, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// InsertSamples lands a run's readings via the COPY protocol.
func (s *PostgresStore) InsertSamples(ctx context.Context, runID string, samples []sampler.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([][]any, len(samples))
	for i, smp := range samples {
		id := smp.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows[i] = []any{id, runID, smp.ZoneID, smp.Class, smp.Lat, smp.Lon, smp.TempC, smp.Source, smp.ObservedAt.UTC()}
	}

	_, err := db.CopyFrom(ctx, s.pool, "samples",
		[]string{"id", "run_id", "zone_id", "lcz_class", "lat", "lon", "temperature", "source", "observed_at"},
		rows,
	)
	return eris.Wrap(err, "postgres: insert samples")
}

func (s *PostgresStore) ListSamples(ctx context.Context, filter SampleFilter) ([]sampler.Sample, error) {
	query := `SELECT id, zone_id, lcz_class, lat, lon, temperature, source, observed_at FROM samples WHERE 1=1`
	var args []any

	if filter.RunID != "" {
		args = append(args, filter.RunID)
		query += ` AND run_id = $1`
	}
	if filter.Class != "" {
		args = append(args, filter.Class)
		query += ` AND lcz_class = $` + strconv.Itoa(len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)
	query += ` ORDER BY observed_at DESC LIMIT $` + strconv.Itoa(len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list samples")
	}
	defer rows.Close()

	var samples []sampler.Sample
	for rows.Next() {
		var smp sampler.Sample
		if err := rows.Scan(&smp.ID, &smp.ZoneID, &smp.Class, &smp.Lat, &smp.Lon, &smp.TempC, &smp.Source, &smp.ObservedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan sample")
		}
		samples = append(samples, smp)
	}
	return samples, eris.Wrap(rows.Err(), "postgres: list samples iterate")
}

func (s *PostgresStore) SaveScenario(ctx context.Context, result lcz.ScenarioResult) (*ScenarioRecord, error) {
	rec := &ScenarioRecord{
		ID:              uuid.New().String(),
		FromClass:       result.FromClass,
		ToClass:         result.ToClass,
		BaseTemperature: result.BaseTemperature,
		NewTemperature:  result.NewTemperature,
		Delta:           result.Delta,
		CreatedAt:       time.Now().UTC(),
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO scenarios (id, from_lcz, to_lcz, base_temperature, new_temperature, delta, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.FromClass, rec.ToClass, rec.BaseTemperature, rec.NewTemperature, rec.Delta, rec.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert scenario")
	}
	return rec, nil
}

func (s *PostgresStore) ListScenarios(ctx context.Context, limit int) ([]ScenarioRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, from_lcz, to_lcz, base_temperature, new_temperature, delta, created_at FROM scenarios
		 ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list scenarios")
	}
	defer rows.Close()

	var recs []ScenarioRecord
	for rows.Next() {
		var rec ScenarioRecord
		if err := rows.Scan(&rec.ID, &rec.FromClass, &rec.ToClass, &rec.BaseTemperature, &rec.NewTemperature, &rec.Delta, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan scenario")
		}
		recs = append(recs, rec)
	}
	return recs, eris.Wrap(rows.Err(), "postgres: list scenarios iterate")
}
