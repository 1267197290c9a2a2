package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const foreignKeyViolation = "23503"

// Имена ограничений из schema.sql.
var constraintErrors = map[string]error{
	"fk_films_mpa":          ErrMpaNotFound,
	"fk_film_genres_film":   ErrFilmNotFound,
	"fk_film_genres_genre":  ErrGenreNotFound,
	"fk_film_likes_film":    ErrFilmNotFound,
	"fk_film_likes_user":    ErrUserNotFound,
	"fk_friendships_user":   ErrUserNotFound,
	"fk_friendships_friend": ErrUserNotFound,
}

// foreignKeyConstraint достает имя нарушенного внешнего ключа.
// Работает для обоих драйверов: lib/pq и pgx stdlib.
func foreignKeyConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
		return pqErr.Constraint, true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// translateError превращает нарушение FK в ошибку отсутствия объекта.
func translateError(err error, op string) error {
	if constraint, ok := foreignKeyConstraint(err); ok {
		if sentinel, known := constraintErrors[constraint]; known {
			return sentinel
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
