package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/urbanclimate/lcz-planner/internal/lcz"
	"github.com/urbanclimate/lcz-planner/internal/server"
)

var (
	servePort    int
	serveZones   string
	serveOffline bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LCZ map and scenario HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := lcz.DefaultRegistry()

		// The server runs without zones; map endpoints report the gap.
		col, err := loadZones(serveZones, reg)
		if err != nil {
			zap.L().Warn("zone file not loaded, map endpoints disabled", zap.Error(err))
			col = nil
		}

		st, err := initStore(ctx)
		if err != nil {
			zap.L().Warn("store not available, scenario history disabled", zap.Error(err))
			st = nil
		} else {
			defer st.Close() //nolint:errcheck
			if err := st.Migrate(ctx); err != nil {
				return err
			}
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := server.New(server.Config{
			Port:           port,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			GridResolution: cfg.Sampling.GridResolution,
		}, server.Deps{
			Registry: reg,
			Zones:    col,
			Weather:  initProvider(col, serveOffline),
			Store:    st,
			Metrics:  server.NewMetrics(),
		})

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				zap.L().Error("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().StringVar(&serveZones, "zones", "", "zone geometry file (default from config)")
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "use the synthetic weather provider")
	rootCmd.AddCommand(serveCmd)
}
