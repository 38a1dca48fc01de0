package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/finanze/infra/initializer"
	"github.com/amirasaad/finanze/pkg/app"
	"github.com/amirasaad/finanze/pkg/config"
	"github.com/amirasaad/finanze/pkg/scheduler"
	"github.com/amirasaad/finanze/webapi"
	log "github.com/charmbracelet/log"
)

const (
	shutdownTimeout = 15 * time.Second
	jobTimeout      = 5 * time.Minute
)

// @title Finanze API
// @version 1.0.0
// @description Personal and business finance API: accounts, budgets, DCA and crypto portfolios, Partita IVA
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer cleanup()
	logger := deps.Logger

	a := app.New(deps, cfg)
	fiberApp := webapi.SetupApp(a)

	sched, err := startScheduler(a, logger)
	if err != nil {
		return err
	}
	if sched != nil {
		defer sched.Stop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- fiberApp.Listen(addr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down server")
	}
	if err := fiberApp.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// startScheduler registers the daily snapshot job when enabled. It returns
// nil when scheduling is off.
func startScheduler(a *app.App, logger *slog.Logger) (*scheduler.Scheduler, error) {
	cfg := a.Config.Scheduler
	if cfg == nil || !cfg.Enabled {
		logger.Info("Snapshot scheduler disabled")
		return nil, nil
	}
	s := scheduler.New(logger, jobTimeout)
	if err := s.AddJob(cfg.SnapshotSchedule, scheduler.NewSnapshotJob(a.SnapshotService, logger)); err != nil {
		return nil, fmt.Errorf("invalid snapshot schedule %q: %w", cfg.SnapshotSchedule, err)
	}
	s.Start()
	return s, nil
}
