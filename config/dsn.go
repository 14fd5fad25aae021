package config

import (
	"fmt"
	"net/url"
	"strings"
)

func mysqlDSNFromURL(raw string) (string, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode())
	return dsn, dbName, nil
}

func resolveMySQLDSN(env func(key, def string) string) (string, string, error) {
	raw := env("MYSQL_URL", env("DATABASE_URL", ""))
	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, env("DB_NAME", ""), nil
	}

	user := env("DB_USER", "root")
	pass := env("DB_PASS", "")
	host := env("DB_HOST", "127.0.0.1")
	port := env("DB_PORT", "3306")
	dbName := env("DB_NAME", "booking_db")

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, pass, host, port, dbName,
	)
	return dsn, dbName, nil
}

// resolvePostgresDSN passes postgres:// URLs through to pgx and otherwise builds a keyword DSN.
func resolvePostgresDSN(env func(key, def string) string) (string, string, error) {
	raw := env("DATABASE_URL", "")
	if raw != "" {
		if strings.HasPrefix(raw, "postgres://") || strings.HasPrefix(raw, "postgresql://") {
			u, err := url.Parse(raw)
			if err != nil {
				return "", "", err
			}
			dbName := strings.TrimPrefix(u.Path, "/")
			if dbName == "" {
				return "", "", fmt.Errorf("postgres url missing database name")
			}
			return raw, dbName, nil
		}
		return raw, env("DB_NAME", ""), nil
	}

	dbName := env("DB_NAME", "booking_db")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		env("DB_HOST", "127.0.0.1"),
		env("DB_USER", "postgres"),
		env("DB_PASS", ""),
		dbName,
		env("DB_PORT", "5432"),
		env("DB_SSLMODE", "disable"),
	)
	return dsn, dbName, nil
}
