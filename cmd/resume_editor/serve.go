package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-editor/internal/db"
	"github.com/jonathan/resume-editor/internal/server"
	"github.com/jonathan/resume-editor/internal/server/ratelimit"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		port  int
		dbURL string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server exposing the edit engine. POST /edits works without a
database; the /documents routes need DATABASE_URL (or --db-url).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			slog.SetDefault(logger)
			ctx := cmd.Context()

			eng, cleanup, err := buildEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			srvCfg := server.Config{
				Port:        cfg.Port,
				Editor:      eng,
				Logger:      logger,
				RateLimit:   ratelimit.LoadConfig(cfg.RateLimitRPS, cfg.RateLimitBurst),
				EditTimeout: cfg.GenerationTimeout() + cfg.RenderTimeout(),
			}

			if dbURL == "" {
				dbURL = cfg.ResolveDatabaseURL()
			}
			if dbURL != "" {
				database, err := db.Connect(ctx, dbURL)
				if err != nil {
					return err
				}
				defer database.Close()
				if err := database.Migrate(ctx); err != nil {
					return err
				}
				srvCfg.Store = database
			} else {
				logger.Warn("no database configured; document routes are disabled")
			}

			srv, err := server.New(srvCfg)
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Start()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides config)")
	cmd.Flags().StringVar(&dbURL, "db-url", "", "PostgreSQL URL (overrides DATABASE_URL)")
	return cmd
}
