package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"portfolio-service/config"

	_ "github.com/lib/pq" // Postgres driver
)

//go:embed schema.sql
var schemaSQL string

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

var (
	DB     *sql.DB
	openDB = sql.Open
)

// Connect opens the content database and verifies it answers. The pool is
// sized for a single small site.
func Connect(cfg config.DatabaseConfig) error {
	if cfg.Engine != "postgres" {
		return fmt.Errorf("unsupported database engine: %s", cfg.Engine)
	}

	conn, err := openDB("postgres", dataSourceName(cfg))
	if err != nil {
		return fmt.Errorf("error opening database: %w", err)
	}
	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return fmt.Errorf("error connecting to the database: %w", err)
	}

	DB = conn
	return nil
}

// dataSourceName builds a lib/pq keyword/value string. Values are quoted so
// passwords with spaces or quotes survive.
func dataSourceName(cfg config.DatabaseConfig) string {
	pairs := []struct{ key, value string }{
		{"host", cfg.Host},
		{"port", cfg.Port},
		{"user", cfg.Username},
		{"password", cfg.Password},
		{"dbname", cfg.Name},
		{"sslmode", cfg.SSLMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.value == "" {
			continue
		}
		parts = append(parts, p.key+"="+quoteValue(p.value))
	}
	return strings.Join(parts, " ")
}

func quoteValue(value string) string {
	if !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// EnsureSchema creates the content tables when they are missing. Every
// statement is idempotent, so it runs on each start.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return fmt.Errorf("database not connected")
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
