package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/geometry"
	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/sampler"
	"github.com/urbanclimate/lcz-planner/internal/store"
	"github.com/urbanclimate/lcz-planner/pkg/meteomatics"
)

// initProvider selects the weather backend. Meteomatics when credentials are
// configured, the deterministic synthetic provider otherwise. The reference
// point for synthetic temperatures is the center of the loaded zones.
func initProvider(col *geometry.Collection, offline bool) meteomatics.Provider {
	mc := cfg.Meteomatics
	if !offline && mc.Username != "" && mc.Password != "" {
		opts := []meteomatics.Option{
			meteomatics.WithHTTPClient(&http.Client{Timeout: time.Duration(mc.TimeoutSecs) * time.Second}),
			meteomatics.WithRateLimit(mc.RateLimit),
		}
		if mc.BaseURL != "" {
			opts = append(opts, meteomatics.WithBaseURL(mc.BaseURL))
		}
		return meteomatics.NewClient(mc.Username, mc.Password, opts...)
	}

	var refLat, refLon float64
	if col != nil {
		if b, ok := col.Bounds(); ok {
			refLat, refLon = b.Center()
		}
	}
	zap.L().Info("using synthetic weather provider",
		zap.Float64("ref_lat", refLat), zap.Float64("ref_lon", refLon))
	return meteomatics.NewSynthetic(refLat, refLon)
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	sc := cfg.Store
	switch sc.Driver {
	case "sqlite", "":
		return store.NewSQLite(sc.DatabaseURL)
	case "postgres":
		return store.NewPostgres(ctx, sc.DatabaseURL, &store.PoolConfig{
			MaxConns: sc.MaxConns,
			MinConns: sc.MinConns,
		})
	default:
		return nil, eris.Errorf("unknown store driver %q", sc.Driver)
	}
}

// persistRun records a sampling run and its samples in the configured store.
func persistRun(ctx context.Context, col *geometry.Collection, provider string, samples []sampler.Sample) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	run, err := st.CreateRun(ctx, zoneFileName(), provider, len(samples))
	if err != nil {
		return err
	}
	if err := st.InsertSamples(ctx, run.ID, samples); err != nil {
		return err
	}
	zap.L().Info("run persisted",
		zap.String("run_id", run.ID),
		zap.Int("samples", len(samples)),
		zap.Int("zones", col.Len()),
	)
	return nil
}

// loadZones reads the zone geometry file named by the flag, falling back to
// the configured default.
func loadZones(path string, reg *lcz.Registry) (*geometry.Collection, error) {
	if path == "" {
		path = cfg.Data.ZonesFile
	}
	col, err := geometry.Load(path, reg)
	if err != nil {
		return nil, err
	}
	zap.L().Info("loaded zones",
		zap.String("file", path),
		zap.Int("zones", col.Len()),
		zap.Strings("classes", col.Classes()),
	)
	return col, nil
}
