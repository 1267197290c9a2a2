package store

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// InitSchema создает таблицы и справочники, если их еще нет.
// Запрос идемпотентен, поэтому его можно выполнять при каждом старте.
func InitSchema(ctx context.Context, db *sqlx.DB, logger *slog.Logger) error {
	logger.InfoContext(ctx, "Applying database schema")
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		logger.ErrorContext(ctx, "Failed to apply database schema", slog.String("error", err.Error()))
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
