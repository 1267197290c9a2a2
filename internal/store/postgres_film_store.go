// internal/store/postgres_film_store.go
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

// PostgresFilmStore реализует FilmStore для PostgreSQL.
type PostgresFilmStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

var _ FilmStore = (*PostgresFilmStore)(nil)

// NewPostgresFilmStore создает новый экземпляр PostgresFilmStore.
func NewPostgresFilmStore(db *sqlx.DB, logger *slog.Logger) (*PostgresFilmStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresFilmStore{db: db, logger: logger}, nil
}

const selectFilms = `SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name AS mpa_name
	FROM films f
	JOIN mpa_ratings m ON m.id = f.mpa_id`

type filmRow struct {
	ID          int64        `db:"id"`
	Name        string       `db:"name"`
	Description string       `db:"description"`
	ReleaseDate *domain.Date `db:"release_date"`
	Duration    *int         `db:"duration"`
	MpaID       int          `db:"mpa_id"`
	MpaName     string       `db:"mpa_name"`
}

type filmGenreRow struct {
	FilmID int64  `db:"film_id"`
	ID     int    `db:"id"`
	Name   string `db:"name"`
}

type filmLikeRow struct {
	FilmID int64 `db:"film_id"`
	UserID int64 `db:"user_id"`
}

// hydrate догружает жанры и лайки одним запросом на каждую таблицу.
func (s *PostgresFilmStore) hydrate(ctx context.Context, rows []filmRow) ([]domain.Film, error) {
	films := make([]domain.Film, 0, len(rows))
	if len(rows) == 0 {
		return films, nil
	}
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	genres, err := s.GenresByFilmIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	likes, err := s.likesByFilmIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		film := domain.Film{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			ReleaseDate: r.ReleaseDate,
			Duration:    r.Duration,
			Mpa:         &domain.MpaRating{ID: r.MpaID, Name: r.MpaName},
			Genres:      genres[r.ID],
			Likes:       likes[r.ID],
		}
		if film.Genres == nil {
			film.Genres = []domain.Genre{}
		}
		if film.Likes == nil {
			film.Likes = []int64{}
		}
		films = append(films, film)
	}
	return films, nil
}

func (s *PostgresFilmStore) likesByFilmIDs(ctx context.Context, filmIDs []int64) (map[int64][]int64, error) {
	query, args, err := sqlx.In(`SELECT film_id, user_id FROM film_likes WHERE film_id IN (?) ORDER BY film_id, user_id`, filmIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build likes query: %w", err)
	}
	var rows []filmLikeRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load film likes", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load likes: %w", err)
	}
	result := make(map[int64][]int64, len(filmIDs))
	for _, r := range rows {
		result[r.FilmID] = append(result[r.FilmID], r.UserID)
	}
	return result, nil
}

func (s *PostgresFilmStore) FindAll(ctx context.Context) ([]domain.Film, error) {
	var rows []filmRow
	s.logger.DebugContext(ctx, "Executing FindAll films query")
	if err := s.db.SelectContext(ctx, &rows, selectFilms+` ORDER BY f.id`); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list films from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list films: %w", err)
	}
	return s.hydrate(ctx, rows)
}

func (s *PostgresFilmStore) FindByID(ctx context.Context, id int64) (*domain.Film, error) {
	var row filmRow
	s.logger.DebugContext(ctx, "Executing FindByID film query", slog.Int64("filmID", id))
	err := s.db.GetContext(ctx, &row, selectFilms+` WHERE f.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilmNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get film by ID from DB", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get film by ID: %w", err)
	}
	films, err := s.hydrate(ctx, []filmRow{row})
	if err != nil {
		return nil, err
	}
	return &films[0], nil
}

func mpaID(film domain.Film) (int, error) {
	if film.Mpa == nil {
		return 0, errors.New("film mpa rating is required")
	}
	return film.Mpa.ID, nil
}

func insertFilmGenres(ctx context.Context, tx *sqlx.Tx, filmID int64, genreIDs []int) error {
	for _, genreID := range genreIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO film_genres (film_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			filmID, genreID)
		if err != nil {
			return translateError(err, "insert film genre")
		}
	}
	return nil
}

// Add создает фильм и его жанры в одной транзакции.
func (s *PostgresFilmStore) Add(ctx context.Context, film domain.Film) (*domain.Film, error) {
	mpa, err := mpaID(film)
	if err != nil {
		return nil, err
	}

	var id int64
	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx,
			`INSERT INTO films (name, description, release_date, duration, mpa_id)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			film.Name, film.Description, film.ReleaseDate, film.Duration, mpa,
		).Scan(&id)
		if err != nil {
			return translateError(err, "create film")
		}
		return insertFilmGenres(ctx, tx, id, film.GenreIDs())
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create film in DB", slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.InfoContext(ctx, "Film created successfully in DB", slog.Int64("filmID", id))
	return s.FindByID(ctx, id)
}

// Update полностью заменяет поля и жанры фильма. Лайки не трогаются.
func (s *PostgresFilmStore) Update(ctx context.Context, film domain.Film) (*domain.Film, error) {
	mpa, err := mpaID(film)
	if err != nil {
		return nil, err
	}

	err = withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE films SET name = $1, description = $2, release_date = $3, duration = $4, mpa_id = $5
			 WHERE id = $6`,
			film.Name, film.Description, film.ReleaseDate, film.Duration, mpa, film.ID)
		if err != nil {
			return translateError(err, "update film")
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if rowsAffected == 0 {
			return ErrFilmNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM film_genres WHERE film_id = $1`, film.ID); err != nil {
			return fmt.Errorf("failed to clear film genres: %w", err)
		}
		return insertFilmGenres(ctx, tx, film.ID, film.GenreIDs())
	})
	if err != nil {
		if !errors.Is(err, ErrFilmNotFound) {
			s.logger.ErrorContext(ctx, "Failed to update film in DB", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		}
		return nil, err
	}
	s.logger.InfoContext(ctx, "Film updated successfully in DB", slog.Int64("filmID", film.ID))
	return s.FindByID(ctx, film.ID)
}

func (s *PostgresFilmStore) DeleteByID(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM films WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete film from DB", slog.Int64("filmID", id), slog.String("error", err.Error()))
		return fmt.Errorf("failed to delete film: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrFilmNotFound
	}
	s.logger.InfoContext(ctx, "Film deleted from DB", slog.Int64("filmID", id))
	return nil
}

func (s *PostgresFilmStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM films WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check film existence: %w", err)
	}
	return exists, nil
}

func (s *PostgresFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO film_likes (film_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		filmID, userID)
	if err != nil {
		return translateError(err, "add like")
	}
	return nil
}

func (s *PostgresFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM film_likes WHERE film_id = $1 AND user_id = $2`, filmID, userID); err != nil {
		return fmt.Errorf("failed to remove like: %w", err)
	}
	return nil
}

func (s *PostgresFilmStore) GetPopular(ctx context.Context, count int) ([]domain.Film, error) {
	if count <= 0 {
		return []domain.Film{}, nil
	}
	query := `SELECT f.id, f.name, f.description, f.release_date, f.duration, f.mpa_id, m.name AS mpa_name
		FROM films f
		JOIN mpa_ratings m ON m.id = f.mpa_id
		LEFT JOIN film_likes fl ON fl.film_id = f.id
		GROUP BY f.id, m.name
		ORDER BY COUNT(fl.user_id) DESC, f.id
		LIMIT $1`
	var rows []filmRow
	if err := s.db.SelectContext(ctx, &rows, query, count); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load popular films", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get popular films: %w", err)
	}
	return s.hydrate(ctx, rows)
}

func (s *PostgresFilmStore) GetGenres(ctx context.Context, filmID int64) ([]domain.Genre, error) {
	genres := []domain.Genre{}
	err := s.db.SelectContext(ctx, &genres,
		`SELECT g.id, g.name FROM film_genres fg JOIN genres g ON g.id = fg.genre_id
		 WHERE fg.film_id = $1 ORDER BY g.id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("failed to get film genres: %w", err)
	}
	return genres, nil
}

// GenresByFilmIDs загружает жанры сразу для набора фильмов (без N+1).
func (s *PostgresFilmStore) GenresByFilmIDs(ctx context.Context, filmIDs []int64) (map[int64][]domain.Genre, error) {
	result := make(map[int64][]domain.Genre, len(filmIDs))
	if len(filmIDs) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(
		`SELECT fg.film_id, g.id, g.name FROM film_genres fg JOIN genres g ON g.id = fg.genre_id
		 WHERE fg.film_id IN (?) ORDER BY fg.film_id, g.id`, filmIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build genres query: %w", err)
	}
	var rows []filmGenreRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load film genres", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	for _, r := range rows {
		result[r.FilmID] = append(result[r.FilmID], domain.Genre{ID: r.ID, Name: r.Name})
	}
	return result, nil
}

func (s *PostgresFilmStore) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, `SELECT id, name FROM genres ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *PostgresFilmStore) GetGenreByID(ctx context.Context, id int) (*domain.Genre, error) {
	var genre domain.Genre
	err := s.db.GetContext(ctx, &genre, `SELECT id, name FROM genres WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGenreNotFound
		}
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return &genre, nil
}

func (s *PostgresFilmStore) GetAllMpa(ctx context.Context) ([]domain.MpaRating, error) {
	ratings := []domain.MpaRating{}
	if err := s.db.SelectContext(ctx, &ratings, `SELECT id, name FROM mpa_ratings ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list mpa ratings: %w", err)
	}
	return ratings, nil
}

func (s *PostgresFilmStore) GetMpaByID(ctx context.Context, id int) (*domain.MpaRating, error) {
	var rating domain.MpaRating
	err := s.db.GetContext(ctx, &rating, `SELECT id, name FROM mpa_ratings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMpaNotFound
		}
		return nil, fmt.Errorf("failed to get mpa rating: %w", err)
	}
	return &rating, nil
}

func (s *PostgresFilmStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
