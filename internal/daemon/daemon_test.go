package daemon

import (
	"context"
	"testing"
	"time"
)

// ─── Daemon ─────────────────────────────────────────────────────────────────

func testConfig(t *testing.T) Config {
	t.Helper()
	tempHome(t)
	cfg := DefaultConfig()
	cfg.API.Port = 0
	cfg.Logging.Quiet = true
	return cfg
}

func TestNewWithConfig(t *testing.T) {
	cfg := testConfig(t)

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	ctx := context.Background()
	u, err := d.Users.Create(ctx, "Ada")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	badges, err := d.Badges.List(ctx, u.ID)
	if err != nil {
		t.Fatalf("list badges: %v", err)
	}
	if len(badges) == 0 {
		t.Error("badge catalogue should be seeded")
	}

	for _, s := range d.Health.RunOnce(ctx) {
		if !s.Healthy {
			t.Errorf("check %q unhealthy: %s", s.Name, s.Error)
		}
	}
}

func TestNewWithConfig_Timezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.Timezone = "Pacific/Kiritimati" // UTC+14

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if _, off := d.Clock().Zone(); off != 14*3600 {
		t.Errorf("clock offset = %d, want %d", off, 14*3600)
	}
}

func TestNewWithConfig_BadTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Engine.Timezone = "Nowhere/Special"

	if _, err := NewWithConfig(cfg); err == nil {
		t.Error("NewWithConfig() should fail on an unknown timezone")
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Serve(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
