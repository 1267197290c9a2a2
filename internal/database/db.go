package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"time"

	"filmorate/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib" // драйвер "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // драйвер "postgres"
)

const pingTimeout = 5 * time.Second

var keywordPassword = regexp.MustCompile(`(password=)(\S+)`)

// RedactDSN скрывает пароль для логов. Понимает и URL, и формат key=value.
func RedactDSN(dsn string) string {
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" && u.User != nil {
		return u.Redacted()
	}
	return keywordPassword.ReplaceAllString(dsn, "${1}xxxxx")
}

// Open подключается к PostgreSQL выбранным драйвером и проверяет соединение.
func Open(ctx context.Context, cfg config.ConfigDatabase, logger *slog.Logger) (*sqlx.DB, error) {
	switch cfg.Driver {
	case "postgres", "pgx":
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	logger.InfoContext(ctx, "Attempting to connect to database",
		slog.String("driver", cfg.Driver), slog.String("dsn", RedactDSN(cfg.DSN)))

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", cfg.Driver, err)
	}

	// Pool settings
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.ErrorContext(ctx, "Failed to ping database", slog.String("error", err.Error()))
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.InfoContext(ctx, "Successfully connected to database")
	return db, nil
}
