package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Errorf("expected port 8080, got %q", cfg.App.Port)
	}
	if cfg.Booking.HorizonDays != 60 {
		t.Errorf("expected horizon 60, got %d", cfg.Booking.HorizonDays)
	}
	if cfg.Booking.OpenTime != "09:00" || cfg.Booking.CloseTime != "14:00" {
		t.Errorf("unexpected business hours %s-%s", cfg.Booking.OpenTime, cfg.Booking.CloseTime)
	}
	if cfg.Booking.SlotMinutes != 30 {
		t.Errorf("expected 30 minute slots, got %d", cfg.Booking.SlotMinutes)
	}
	if cfg.JWT.AccessExpiry != 15*time.Minute {
		t.Errorf("expected default access expiry, got %v", cfg.JWT.AccessExpiry)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CLINIC_TIMEZONE", "Asia/Damascus")
	t.Setenv("BOOKING_HORIZON_DAYS", "14")
	t.Setenv("JWT_ACCESS_EXPIRY", "5m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.App.Port != "9090" {
		t.Errorf("expected port 9090, got %q", cfg.App.Port)
	}
	if cfg.Booking.Timezone != "Asia/Damascus" {
		t.Errorf("unexpected timezone %q", cfg.Booking.Timezone)
	}
	if cfg.Booking.HorizonDays != 14 {
		t.Errorf("expected horizon 14, got %d", cfg.Booking.HorizonDays)
	}
	if cfg.JWT.AccessExpiry != 5*time.Minute {
		t.Errorf("expected 5m access expiry, got %v", cfg.JWT.AccessExpiry)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Booking: BookingConfig{Timezone: "UTC", HorizonDays: 60, OpenTime: "09:00", CloseTime: "14:00", SlotMinutes: 30},
			Limit:   RateLimitConfig{RPS: 1, Burst: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown timezone", func(c *Config) { c.Booking.Timezone = "Mars/Olympus" }},
		{"negative horizon", func(c *Config) { c.Booking.HorizonDays = -1 }},
		{"zero slot length", func(c *Config) { c.Booking.SlotMinutes = 0 }},
		{"bad open time", func(c *Config) { c.Booking.OpenTime = "nine" }},
		{"close before open", func(c *Config) { c.Booking.CloseTime = "08:00" }},
		{"zero rate", func(c *Config) { c.Limit.RPS = 0 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestDSN(t *testing.T) {
	db := DBConfig{Host: "db", Port: "5432", User: "clinic", Password: "secret", Name: "booking", SSLMode: "disable"}
	if got, want := db.MigrationURL(), "pgx5://clinic:secret@db:5432/booking?sslmode=disable"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
