// internal/store/postgres_user_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
)

// PostgresUserStore реализует UserStore для PostgreSQL.
type PostgresUserStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore создает новый экземпляр PostgresUserStore.
func NewPostgresUserStore(db *sqlx.DB, logger *slog.Logger) (*PostgresUserStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresUserStore{db: db, logger: logger}, nil
}

func (s *PostgresUserStore) selectUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	users := []domain.User{}
	if err := s.db.SelectContext(ctx, &users, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to select users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to select users: %w", err)
	}
	return users, nil
}

func (s *PostgresUserStore) FindAll(ctx context.Context) ([]domain.User, error) {
	return s.selectUsers(ctx, `SELECT id, email, login, name, birthday FROM users ORDER BY id`)
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user, `SELECT id, email, login, name, birthday FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "User not found by ID in DB", slog.Int64("userID", id))
			return nil, ErrUserNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

func (s *PostgresUserStore) Add(ctx context.Context, user domain.User) (*domain.User, error) {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO users (email, login, name, birthday) VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Email, user.Login, user.Name, user.Birthday,
	).Scan(&user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create user in DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", user.ID))
	return &user, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, user domain.User) (*domain.User, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET email = $1, login = $2, name = $3, birthday = $4 WHERE id = $5`,
		user.Email, user.Login, user.Name, user.Birthday, user.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update user in DB", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No user found to update in DB", slog.Int64("userID", user.ID))
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *PostgresUserStore) DeleteByID(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete user from DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *PostgresUserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

const upsertFriendship = `INSERT INTO friendships (user_id, friend_id, status) VALUES ($1, $2, $3)
	ON CONFLICT (user_id, friend_id) DO UPDATE SET status = EXCLUDED.status`

func (s *PostgresUserStore) AddFriend(ctx context.Context, userID, friendID int64) (domain.FriendshipStatus, error) {
	var status domain.FriendshipStatus
	err := withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		// Встречные заявки сериализуются блокировкой обеих строк users в порядке id.
		// Без нее оба запроса не видят друг друга и остаются UNCONFIRMED.
		// Отсутствующего пользователя здесь не проверяем: это сделает внешний ключ.
		var locked []int64
		if err := tx.SelectContext(ctx, &locked,
			`SELECT id FROM users WHERE id IN ($1, $2) ORDER BY id FOR UPDATE`,
			userID, friendID); err != nil {
			return fmt.Errorf("failed to lock users: %w", err)
		}

		var reverse string
		err := tx.GetContext(ctx, &reverse,
			`SELECT status FROM friendships WHERE user_id = $1 AND friend_id = $2 FOR UPDATE`,
			friendID, userID)
		switch {
		case err == nil:
			// Встречная заявка: подтверждаем обе стороны.
			if _, err := tx.ExecContext(ctx, upsertFriendship, userID, friendID, domain.FriendshipConfirmed); err != nil {
				return translateError(err, "confirm friendship")
			}
			if _, err := tx.ExecContext(ctx, upsertFriendship, friendID, userID, domain.FriendshipConfirmed); err != nil {
				return translateError(err, "confirm friendship")
			}
			status = domain.FriendshipConfirmed
			return nil
		case errors.Is(err, sql.ErrNoRows):
		default:
			return fmt.Errorf("failed to read reverse friendship: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO friendships (user_id, friend_id, status) VALUES ($1, $2, $3)
			 ON CONFLICT (user_id, friend_id) DO NOTHING`,
			userID, friendID, domain.FriendshipUnconfirmed)
		if err != nil {
			return translateError(err, "request friendship")
		}
		return tx.GetContext(ctx, &status,
			`SELECT status FROM friendships WHERE user_id = $1 AND friend_id = $2`, userID, friendID)
	})
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "Friendship stored in DB",
		slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("status", string(status)))
	return status, nil
}

func (s *PostgresUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE user_id = $1 AND friend_id = $2`, userID, friendID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to remove friendship from DB",
			slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("error", err.Error()))
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	return s.selectUsers(ctx,
		`SELECT u.id, u.email, u.login, u.name, u.birthday
		 FROM users u
		 JOIN friendships f ON f.friend_id = u.id
		 WHERE f.user_id = $1 AND f.status = $2
		 ORDER BY u.id`, userID, domain.FriendshipConfirmed)
}

func (s *PostgresUserStore) FindCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	return s.selectUsers(ctx,
		`SELECT u.id, u.email, u.login, u.name, u.birthday
		 FROM users u
		 JOIN friendships f1 ON f1.friend_id = u.id AND f1.user_id = $1 AND f1.status = $3
		 JOIN friendships f2 ON f2.friend_id = u.id AND f2.user_id = $2 AND f2.status = $3
		 ORDER BY u.id`, userID, otherID, domain.FriendshipConfirmed)
}

func (s *PostgresUserStore) FindFriendRequests(ctx context.Context, userID int64) ([]domain.User, error) {
	return s.selectUsers(ctx,
		`SELECT u.id, u.email, u.login, u.name, u.birthday
		 FROM users u
		 JOIN friendships f ON f.user_id = u.id
		 WHERE f.friend_id = $1 AND f.status = $2
		 ORDER BY u.id`, userID, domain.FriendshipUnconfirmed)
}

func (s *PostgresUserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
