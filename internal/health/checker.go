// Package health runs periodic checks against the store with auto-recovery.
// Four checks run every 60 seconds.
package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/habitforge/habitforge/internal/infra/metrics"
	"github.com/habitforge/habitforge/internal/infra/sqlite"
	"github.com/habitforge/habitforge/internal/logging"
)

// DefaultInterval is the time between check rounds.
const DefaultInterval = 60 * time.Second

// Check defines a single health check with optional recovery action.
type Check struct {
	Name      string
	CheckFn   func(ctx context.Context) error
	RecoverFn func(ctx context.Context) error
}

// Status represents the result of a health check.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	Recovered bool      `json:"recovered,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks with auto-recovery.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker creates a checker for the store in dataDir. reseed restores
// the badge catalogue when it is found empty; nil disables that recovery.
func NewChecker(db *sqlite.DB, dataDir string, reseed func(ctx context.Context) error) *Checker {
	return &Checker{
		interval: DefaultInterval,
		checks: []Check{
			{
				Name:    "sqlite",
				CheckFn: func(ctx context.Context) error { return db.Ping() },
			},
			{
				Name: "schema",
				CheckFn: func(ctx context.Context) error {
					v, err := db.SchemaVersion()
					if err != nil {
						return fmt.Errorf("read schema version: %w", err)
					}
					if v < 1 {
						return fmt.Errorf("schema version %d, migrations not applied", v)
					}
					return nil
				},
			},
			{
				Name:      "data_dir",
				CheckFn:   func(ctx context.Context) error { return checkDataDir(dataDir) },
				RecoverFn: func(ctx context.Context) error { return os.MkdirAll(dataDir, 0700) },
			},
			{
				Name:      "badge_catalogue",
				CheckFn:   func(ctx context.Context) error { return checkCatalogue(ctx, db) },
				RecoverFn: reseed,
			},
		},
	}
}

// SetInterval changes the time between rounds. Non-positive values are
// ignored.
func (c *Checker) SetInterval(d time.Duration) {
	if d > 0 {
		c.interval = d
	}
}

// Run starts the health check loop. Call in a goroutine.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

// RunOnce runs every check once and returns the results.
func (c *Checker) RunOnce(ctx context.Context) []Status {
	c.runAll(ctx)
	return c.Statuses()
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{Name: check.Name, CheckedAt: time.Now()}
		err := check.CheckFn(ctx)
		if err != nil && check.RecoverFn != nil {
			metrics.HealthRecoveries.WithLabelValues(check.Name).Inc()
			if rerr := check.RecoverFn(ctx); rerr != nil {
				logging.Warn("health recovery failed", "check", check.Name, "err", rerr)
			} else if err = check.CheckFn(ctx); err == nil {
				s.Recovered = true
				logging.Info("health check recovered", "check", check.Name)
			}
		}
		if err != nil {
			s.Error = err.Error()
			logging.Warn("health check failed", "check", check.Name, "err", err)
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(0)
		} else {
			s.Healthy = true
			metrics.HealthCheckStatus.WithLabelValues(check.Name).Set(1)
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy returns true if all checks pass.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

var errEmptyCatalogue = errors.New("badge catalogue is empty")

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

func checkCatalogue(ctx context.Context, db *sqlite.DB) error {
	return db.View(ctx, func(tx *sqlite.Tx) error {
		badges, err := tx.ListBadges()
		if err != nil {
			return fmt.Errorf("list badges: %w", err)
		}
		if len(badges) == 0 {
			return errEmptyCatalogue
		}
		return nil
	})
}
