package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Booking BookingConfig
	Limit   RateLimitConfig
}

type AppConfig struct {
	Port          string
	Env           string
	LogLevel      string
	AllowedOrigin string
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig describes the clinic calendar. OpenTime and CloseTime are
// HH:MM in the clinic time zone.
type BookingConfig struct {
	Timezone    string
	HorizonDays int
	OpenTime    string
	CloseTime   string
	SlotMinutes int
	CacheTTL    time.Duration
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// DSN returns the libpq connection string used by gorm.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode,
	)
}

// MigrationURL returns the connection URL understood by the migrate pgx/v5 driver.
func (c DBConfig) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// The .env file is optional; plain environment variables are enough.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	cacheTTL, err := time.ParseDuration(v.GetString("AVAILABILITY_CACHE_TTL"))
	if err != nil {
		cacheTTL = 30 * time.Second
	}

	config := &Config{
		App: AppConfig{
			Port:          v.GetString("APP_PORT"),
			Env:           v.GetString("APP_ENV"),
			LogLevel:      v.GetString("LOG_LEVEL"),
			AllowedOrigin: v.GetString("CORS_ALLOWED_ORIGIN"),
		},
		DB: DBConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("REDIS_ENABLED"),
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Booking: BookingConfig{
			Timezone:    v.GetString("CLINIC_TIMEZONE"),
			HorizonDays: v.GetInt("BOOKING_HORIZON_DAYS"),
			OpenTime:    v.GetString("BOOKING_OPEN_TIME"),
			CloseTime:   v.GetString("BOOKING_CLOSE_TIME"),
			SlotMinutes: v.GetInt("BOOKING_SLOT_MINUTES"),
			CacheTTL:    cacheTTL,
		},
		Limit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("REDIS_ENABLED", true)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CLINIC_TIMEZONE", "UTC")
	v.SetDefault("BOOKING_HORIZON_DAYS", 60)
	v.SetDefault("BOOKING_OPEN_TIME", "09:00")
	v.SetDefault("BOOKING_CLOSE_TIME", "14:00")
	v.SetDefault("BOOKING_SLOT_MINUTES", 30)
	v.SetDefault("RATE_LIMIT_RPS", 2.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Booking.Timezone); err != nil {
		return fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", c.Booking.Timezone, err)
	}
	if c.Booking.HorizonDays < 0 {
		return fmt.Errorf("BOOKING_HORIZON_DAYS must not be negative, got %d", c.Booking.HorizonDays)
	}
	if c.Booking.SlotMinutes <= 0 {
		return fmt.Errorf("BOOKING_SLOT_MINUTES must be positive, got %d", c.Booking.SlotMinutes)
	}
	open, err := time.Parse("15:04", c.Booking.OpenTime)
	if err != nil {
		return fmt.Errorf("invalid BOOKING_OPEN_TIME %q: %w", c.Booking.OpenTime, err)
	}
	closing, err := time.Parse("15:04", c.Booking.CloseTime)
	if err != nil {
		return fmt.Errorf("invalid BOOKING_CLOSE_TIME %q: %w", c.Booking.CloseTime, err)
	}
	if !closing.After(open) {
		return fmt.Errorf("BOOKING_CLOSE_TIME %s must be after BOOKING_OPEN_TIME %s", c.Booking.CloseTime, c.Booking.OpenTime)
	}
	if c.Limit.RPS <= 0 || c.Limit.Burst <= 0 {
		return errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}
