package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/emilythestrangee/reddit-clone/api/internal/config"
	"github.com/emilythestrangee/reddit-clone/api/internal/database"
	"github.com/emilythestrangee/reddit-clone/api/internal/logging"
	"github.com/emilythestrangee/reddit-clone/api/internal/server"
	"github.com/emilythestrangee/reddit-clone/api/internal/telemetry"
)

var (
	configPath string
	cfg        *config.Config
	logger     *slog.Logger

	rootCmd = &cobra.Command{
		Use:           "reddit",
		Short:         "Reddit-style community API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			logger = logging.Setup(cfg.Log)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Migrate the database and serve the HTTP API",
		RunE:  runServe,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE:  runMigrate,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file; environment variables override it")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func openDatabase() (database.Service, error) {
	db, err := database.New(cfg.Database, logger, cfg.Log.Level == "debug")
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, shutdownTracing(context.Background()))
	}()

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return server.New(cfg, db, logger, reg).Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	return db.Close()
}
