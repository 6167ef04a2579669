package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // CALL_TIMEZONE must resolve on hosts without zoneinfo
)

// Store drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds every setting the process needs. It is built once at startup
// and handed to the components that need it.
type Config struct {
	Port    string
	GinMode string

	Database Database
	Email    Email
	Bland    Bland

	// IANA timezone meeting dates and times are interpreted in
	Timezone string

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	// Optional. When set, inspection endpoints require a bearer JWT signed with it.
	AdminJWTSecret string
}

// Database describes how to reach the persistent store
type Database struct {
	Driver   string
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	SSLMode  string
}

// Email holds SendGrid settings
type Email struct {
	APIKey    string
	FromEmail string
	FromName  string
}

// Bland holds the outbound calling provider settings
type Bland struct {
	APIURL string
	APIKey string
}

// Load reads configuration from the environment. Callers are expected to have
// loaded any .env file beforehand.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     env("PORT", "3000"),
		GinMode:  os.Getenv("GIN_MODE"),
		Timezone: env("CALL_TIMEZONE", "Australia/Brisbane"),
		Database: Database{
			Driver:   strings.ToLower(env("STORE_DRIVER", DriverPostgres)),
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     os.Getenv("DB_PORT"),
			SSLMode:  env("DB_SSL_MODE", "disable"),
		},
		Email: Email{
			APIKey:    os.Getenv("SENDGRID_API_KEY"),
			FromEmail: env("SENDGRID_FROM_EMAIL", os.Getenv("FROM_EMAIL")),
			FromName:  os.Getenv("SENDGRID_FROM_NAME"),
		},
		Bland: Bland{
			APIURL: env("BLAND_API_URL", "https://api.bland.ai/v1/calls"),
			APIKey: os.Getenv("BLAND_API_KEY"),
		},
		LogLevel:           env("LOG_LEVEL", "info"),
		LogFormat:          env("LOG_FORMAT", "console"),
		CORSAllowedOrigins: splitList(env("CORS_ALLOWED_ORIGINS", "*")),
		AdminJWTSecret:     os.Getenv("ADMIN_JWT_SECRET"),
	}

	var errs []error

	rps, err := strconv.ParseFloat(env("RATE_LIMIT_RPS", "0"), 64)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err))
	}
	cfg.RateLimitRPS = rps

	burst, err := strconv.Atoi(env("RATE_LIMIT_BURST", "0"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err))
	}
	cfg.RateLimitBurst = burst

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid CALL_TIMEZONE %q: %w", cfg.Timezone, err))
	}

	if cfg.Bland.APIKey == "" {
		errs = append(errs, errors.New("required environment variable BLAND_API_KEY is not set"))
	}

	switch cfg.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if !cfg.Database.usesURL(cfg.GinMode) {
			for key, value := range map[string]string{
				"DB_HOST":     cfg.Database.Host,
				"DB_USER":     cfg.Database.User,
				"DB_PASSWORD": cfg.Database.Password,
				"DB_NAME":     cfg.Database.Name,
				"DB_PORT":     cfg.Database.Port,
			} {
				if value == "" {
					errs = append(errs, fmt.Errorf("required environment variable %s is not set", key))
				}
			}
		} else if cfg.Database.URL == "" {
			errs = append(errs, errors.New("required environment variable DATABASE_URL is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Database.Driver))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// Location returns the configured call timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DSN builds the postgres connection string. In release mode, or whenever
// DATABASE_URL is set, the URL wins over the individual parameters.
func (c *Config) DSN() string {
	if c.Database.usesURL(c.GinMode) {
		return c.Database.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		c.Database.Host, c.Database.User, c.Database.Password, c.Database.Name, c.Database.Port, c.Database.SSLMode)
}

func (d Database) usesURL(ginMode string) bool {
	return ginMode == "release" || d.URL != ""
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
