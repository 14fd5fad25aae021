package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-backend/services"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/booking_db?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DSN)
	assert.Equal(t, "booking_db", cfg.DBName)
	assert.True(t, cfg.AutoMigrate)
	assert.True(t, cfg.Seed)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 10*time.Second, cfg.MidtransTimeout)
	assert.Equal(t, 24*time.Hour, cfg.PaymentDueWindow)
	assert.Equal(t, services.PercentageSubstitute, cfg.PeakPercentageMode)
	assert.Equal(t, 100, cfg.NotifyQueueSize)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"APP_ENV":                "production",
		"JWT_SECRET":             "s3cret",
		"CORS_ORIGINS":           " https://a.example.com , ,https://b.example.com",
		"FRONTEND_URL":           "https://stay.example.com/",
		"MIDTRANS_IS_PRODUCTION": "true",
		"MIDTRANS_TIMEOUT":       "3s",
		"PAYMENT_DUE_WINDOW":     "2h",
		"PEAK_PERCENTAGE_MODE":   "MULTIPLY",
		"DB_SEED":                "false",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, "https://stay.example.com", cfg.FrontendURL)
	assert.Equal(t, services.PercentageMultiply, cfg.PeakPercentageMode)
	assert.False(t, cfg.Seed)

	gw := cfg.Gateway()
	assert.True(t, gw.Production)
	assert.Equal(t, 3*time.Second, gw.Timeout)
	assert.Equal(t, "https://stay.example.com", gw.FrontendURL)
	assert.Equal(t, 2*time.Hour, cfg.PaymentDueWindow)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"PAYMENT_DUE_WINDOW":   {"PAYMENT_DUE_WINDOW": "tomorrow"},
		"MIDTRANS_TIMEOUT":     {"MIDTRANS_TIMEOUT": "-1s"},
		"DB_DRIVER":            {"DB_DRIVER": "sqlite"},
		"PEAK_PERCENTAGE_MODE": {"PEAK_PERCENTAGE_MODE": "add"},
		"DB_SEED":              {"DB_SEED": "maybe"},
		"NOTIFY_QUEUE_SIZE":    {"NOTIFY_QUEUE_SIZE": "0"},
		"JWT_SECRET":           {"APP_ENV": "production"},
		"JWT_TTL":              {"JWT_TTL": "0s"},
	}
	for key, env := range cases {
		t.Run(key, func(t *testing.T) {
			_, err := load(envMap(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestMySQLDSNFromURL(t *testing.T) {
	dsn, name, err := mysqlDSNFromURL("mysql://app:pw@db.internal/stays")
	require.NoError(t, err)
	assert.Equal(t, "stays", name)
	assert.Equal(t, "app:pw@tcp(db.internal:3306)/stays?charset=utf8mb4&loc=UTC&parseTime=True", dsn)

	dsn, _, err = mysqlDSNFromURL("mysql://app:pw@db.internal:3307/stays?loc=Local")
	require.NoError(t, err)
	assert.Contains(t, dsn, "tcp(db.internal:3307)")
	assert.Contains(t, dsn, "loc=Local")

	_, _, err = mysqlDSNFromURL("mysql://app:pw@db.internal:3306")
	assert.Error(t, err)
}

func TestLoadMySQLURLPrecedence(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"MYSQL_URL":    "mysql://a:b@first/one",
		"DATABASE_URL": "mysql://a:b@second/two",
	}))
	require.NoError(t, err)
	assert.Equal(t, "one", cfg.DBName)

	cfg, err = load(envMap(map[string]string{
		"DATABASE_URL": "a:b@tcp(raw:3306)/three?parseTime=true",
		"DB_NAME":      "three",
	}))
	require.NoError(t, err)
	assert.Equal(t, "a:b@tcp(raw:3306)/three?parseTime=true", cfg.DSN)
	assert.Equal(t, "three", cfg.DBName)
}

func TestLoadPostgres(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"DB_DRIVER":    "postgres",
		"DATABASE_URL": "postgres://app:pw@pg.internal:5432/stays?sslmode=require",
	}))
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:pw@pg.internal:5432/stays?sslmode=require", cfg.DSN)
	assert.Equal(t, "stays", cfg.DBName)

	cfg, err = load(envMap(map[string]string{"DB_DRIVER": "postgres", "DB_PASS": "pw"}))
	require.NoError(t, err)
	assert.Equal(t, "host=127.0.0.1 user=postgres password=pw dbname=booking_db port=5432 sslmode=disable TimeZone=UTC", cfg.DSN)
}
