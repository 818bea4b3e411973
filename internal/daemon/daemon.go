package daemon

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/habitforge/habitforge/internal/api"
	"github.com/habitforge/habitforge/internal/app/engagement"
	"github.com/habitforge/habitforge/internal/app/report"
	"github.com/habitforge/habitforge/internal/health"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
	"github.com/habitforge/habitforge/internal/logging"
)

// Daemon is the habitforge runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Server *api.Server
	Health *health.Checker

	Users   *engagement.UserService
	Habits  *engagement.HabitService
	Logs    *engagement.LogService
	Badges  *engagement.BadgeService
	Streaks *engagement.StreakService
	Levels  *engagement.LevelService
	Reports *report.Service

	Clock engagement.Clock

	logCloser io.Closer
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logCloser, err := logging.Setup(logging.Options{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
		Quiet:     cfg.Logging.Quiet,
	})
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	dataDir := cfg.Database.Dir
	if dataDir == "" {
		dataDir = habitforgeHome()
	}
	db, err := sqlite.Open(dataDir)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	seed := func(ctx context.Context) error {
		return engagement.SeedCatalogue(ctx, db, engagement.DefaultBadges())
	}
	if cfg.Engine.SeedBadges {
		if err := seed(context.Background()); err != nil {
			db.Close()
			logCloser.Close()
			return nil, fmt.Errorf("seed badges: %w", err)
		}
	}

	clock := func() time.Time { return time.Now().In(loc) }

	d := &Daemon{
		Config:    cfg,
		DB:        db,
		Clock:     clock,
		Users:     engagement.NewUserService(db, clock),
		Habits:    engagement.NewHabitService(db, clock),
		Logs:      engagement.NewLogService(db, clock),
		Badges:    engagement.NewBadgeService(db, clock),
		Streaks:   engagement.NewStreakService(db, clock),
		Levels:    engagement.NewLevelService(db),
		Reports:   report.NewService(db, clock),
		logCloser: logCloser,
	}

	var reseed func(ctx context.Context) error
	if cfg.Engine.SeedBadges {
		reseed = seed
	}
	d.Health = health.NewChecker(db, dataDir, reseed)
	d.Health.SetInterval(parseDuration(cfg.Telemetry.HealthInterval, health.DefaultInterval))

	srv := api.NewServer(api.Services{
		Users:   d.Users,
		Habits:  d.Habits,
		Logs:    d.Logs,
		Badges:  d.Badges,
		Streaks: d.Streaks,
		Levels:  d.Levels,
		Reports: d.Reports,
		Clock:   clock,
	})
	srv.SetHealthChecker(d.Health)
	srv.SetTimeout(parseDuration(cfg.API.RequestTimeout, 30*time.Second))
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	logging.Debug("daemon initialized", "data_dir", dataDir, "timezone", loc.String())
	return d, nil
}

// Addr is the listen address.
func (d *Daemon) Addr() string {
	return fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := d.Addr()
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-sigCh:
			logging.Info("shutdown signal received")
		case <-ctx.Done():
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn("http shutdown", "err", err)
		}
	}()

	fmt.Printf("habitforge serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}
	logging.Info("api listening", "addr", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		cancel()
		<-done
		return err
	}
	<-done
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.logCloser != nil {
		_ = d.logCloser.Close()
	}
}
