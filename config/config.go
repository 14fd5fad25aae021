package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"booking-backend/gateway"
	"booking-backend/services"
	"booking-backend/utils"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string

	DBDriver    string
	DSN         string
	DBName      string
	AutoMigrate bool
	Seed        bool

	JWTSecret   string
	JWTTTL      time.Duration
	CORSOrigins []string
	FrontendURL string

	MidtransServerKey    string
	MidtransClientKey    string
	MidtransProduction   bool
	MidtransTimeout      time.Duration
	MidtransVerifyStatus bool

	PaymentDueWindow   time.Duration
	PeakPercentageMode services.PercentageMode

	SMTP            utils.SMTPConfig
	NotifyQueueSize int
}

// LoadConfig reads the process environment. Call godotenv.Load first to pick up a .env file.
func LoadConfig() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	env := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:               env("PORT", "8080"),
		Environment:        env("APP_ENV", "development"),
		DBDriver:           strings.ToLower(env("DB_DRIVER", DriverMySQL)),
		JWTSecret:          env("JWT_SECRET", ""),
		CORSOrigins:        parseCorsOrigins(getenv("CORS_ORIGINS")),
		FrontendURL:        strings.TrimRight(env("FRONTEND_URL", "http://localhost:3000"), "/"),
		MidtransServerKey:  env("MIDTRANS_SERVER_KEY", ""),
		MidtransClientKey:  env("MIDTRANS_CLIENT_KEY", ""),
		PeakPercentageMode: services.PercentageMode(strings.ToLower(env("PEAK_PERCENTAGE_MODE", string(services.PercentageSubstitute)))),
		SMTP: utils.SMTPConfig{
			Host:     env("SMTP_HOST", ""),
			Port:     env("SMTP_PORT", "587"),
			Username: env("SMTP_USERNAME", ""),
			Password: env("SMTP_PASSWORD", ""),
			FromName: env("SMTP_FROM_NAME", "Booking"),
		},
	}

	var err error
	bools := []struct {
		key string
		def bool
		dst *bool
	}{
		{"DB_AUTO_MIGRATE", true, &cfg.AutoMigrate},
		{"DB_SEED", true, &cfg.Seed},
		{"MIDTRANS_IS_PRODUCTION", false, &cfg.MidtransProduction},
		{"MIDTRANS_VERIFY_STATUS", false, &cfg.MidtransVerifyStatus},
	}
	for _, b := range bools {
		if *b.dst, err = parseBool(env(b.key, ""), b.def); err != nil {
			return nil, fmt.Errorf("%s: %w", b.key, err)
		}
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"MIDTRANS_TIMEOUT", "10s", &cfg.MidtransTimeout},
		{"PAYMENT_DUE_WINDOW", "24h", &cfg.PaymentDueWindow},
		{"JWT_TTL", "24h", &cfg.JWTTTL},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(env(d.key, d.def))
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("%s must be a positive duration like %q", d.key, d.def)
		}
		*d.dst = v
	}

	if cfg.NotifyQueueSize, err = strconv.Atoi(env("NOTIFY_QUEUE_SIZE", "100")); err != nil || cfg.NotifyQueueSize < 1 {
		return nil, fmt.Errorf("NOTIFY_QUEUE_SIZE must be a positive integer")
	}

	if !cfg.PeakPercentageMode.Valid() {
		return nil, fmt.Errorf("PEAK_PERCENTAGE_MODE must be %q or %q", services.PercentageSubstitute, services.PercentageMultiply)
	}

	switch cfg.DBDriver {
	case DriverMySQL:
		cfg.DSN, cfg.DBName, err = resolveMySQLDSN(env)
	case DriverPostgres:
		cfg.DSN, cfg.DBName, err = resolvePostgresDSN(env)
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q", DriverMySQL, DriverPostgres)
	}
	if err != nil {
		return nil, fmt.Errorf("database url: %w", err)
	}

	if cfg.IsProduction() && cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required in production")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-secret-change-me"
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Gateway() gateway.Config {
	return gateway.Config{
		ServerKey:   c.MidtransServerKey,
		Production:  c.MidtransProduction,
		Timeout:     c.MidtransTimeout,
		FrontendURL: c.FrontendURL,
	}
}

func parseBool(raw string, def bool) (bool, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseBool(raw)
}

func parseCorsOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{"*"}
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
