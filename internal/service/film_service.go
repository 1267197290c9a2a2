// internal/service/film_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"
	"filmorate/internal/store"

	"github.com/go-playground/validator/v10"
)

// FilmService бизнес-логика фильмов, лайков и справочников.
type FilmService struct {
	films    store.FilmStore
	users    store.UserStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewFilmService создает новый экземпляр FilmService.
func NewFilmService(films store.FilmStore, users store.UserStore, validate *validator.Validate, logger *slog.Logger) *FilmService {
	return &FilmService{
		films:    films,
		users:    users,
		validate: validate,
		logger:   logger,
	}
}

func (s *FilmService) failure(ctx context.Context, op string, err error) error {
	if notFound := notFoundFromStore(err); notFound != nil {
		return notFound
	}
	s.logger.ErrorContext(ctx, "Film store operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return fmt.Errorf("%s: %w", op, err)
}

// validateFilm проверяет правила по порядку; первая ошибка побеждает.
// Повторяющиеся жанры схлопываются.
func (s *FilmService) validateFilm(ctx context.Context, film *domain.Film) error {
	if s.validate.Var(film.Name, tagNotBlank) != nil {
		return domain.Validation("film name must not be blank")
	}
	if s.validate.Var(film.Description, fmt.Sprintf("max=%d", domain.MaxDescriptionLength)) != nil {
		return domain.Validation("film description must be at most %d characters", domain.MaxDescriptionLength)
	}
	if film.ReleaseDate != nil && s.validate.Var(film.ReleaseDate.Time(), tagCinemaEpoch) != nil {
		return domain.Validation("film release date must not be before %s", CinemaEpoch.Format(domain.DateLayout))
	}
	if film.Duration != nil && s.validate.Var(*film.Duration, "gt=0") != nil {
		return domain.Validation("film duration must be positive")
	}

	if film.Mpa == nil || s.validate.Var(film.Mpa.ID, "required") != nil {
		return domain.Validation("film mpa rating id must be set")
	}
	if _, err := s.films.GetMpaByID(ctx, film.Mpa.ID); err != nil {
		if errors.Is(err, store.ErrMpaNotFound) {
			return domain.NotFound("mpa rating with id %d not found", film.Mpa.ID)
		}
		return s.failure(ctx, "get mpa rating", err)
	}

	for _, g := range film.Genres {
		if s.validate.Var(g.ID, "required") != nil {
			return domain.Validation("film genre id must be set")
		}
	}
	ids := film.GenreIDs()
	genres := make([]domain.Genre, 0, len(ids))
	for _, id := range ids {
		genre, err := s.films.GetGenreByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrGenreNotFound) {
				return domain.NotFound("genre with id %d not found", id)
			}
			return s.failure(ctx, "get genre", err)
		}
		genres = append(genres, *genre)
	}
	film.Genres = genres
	return nil
}

func (s *FilmService) ensureFilm(ctx context.Context, id int64) error {
	exists, err := s.films.ExistsByID(ctx, id)
	if err != nil {
		return s.failure(ctx, "check film", err)
	}
	if !exists {
		return domain.NotFound("film with id %d not found", id)
	}
	return nil
}

func (s *FilmService) ensureUser(ctx context.Context, id int64) error {
	exists, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return s.failure(ctx, "check user", err)
	}
	if !exists {
		return domain.NotFound("user with id %d not found", id)
	}
	return nil
}

// FindAll возвращает все фильмы по возрастанию id.
func (s *FilmService) FindAll(ctx context.Context) ([]domain.Film, error) {
	films, err := s.films.FindAll(ctx)
	if err != nil {
		return nil, s.failure(ctx, "list films", err)
	}
	return films, nil
}

func (s *FilmService) GetByID(ctx context.Context, id int64) (*domain.Film, error) {
	film, err := s.films.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return nil, domain.NotFound("film with id %d not found", id)
		}
		return nil, s.failure(ctx, "get film", err)
	}
	return film, nil
}

// Create валидирует и сохраняет новый фильм. Переданный id игнорируется.
func (s *FilmService) Create(ctx context.Context, film domain.Film) (*domain.Film, error) {
	if err := s.validateFilm(ctx, &film); err != nil {
		s.logger.WarnContext(ctx, "Film validation failed", slog.String("error", err.Error()))
		return nil, err
	}
	film.ID = 0
	created, err := s.films.Add(ctx, film)
	if err != nil {
		return nil, s.failure(ctx, "create film", err)
	}
	s.logger.InfoContext(ctx, "Film created", slog.Int64("filmID", created.ID), slog.String("name", created.Name))
	return created, nil
}

// Update полностью заменяет фильм; лайки сохраняются.
func (s *FilmService) Update(ctx context.Context, film domain.Film) (*domain.Film, error) {
	if film.ID == 0 {
		return nil, domain.NotFound("film id must be set")
	}
	if err := s.ensureFilm(ctx, film.ID); err != nil {
		return nil, err
	}
	if err := s.validateFilm(ctx, &film); err != nil {
		s.logger.WarnContext(ctx, "Film validation failed", slog.Int64("filmID", film.ID), slog.String("error", err.Error()))
		return nil, err
	}
	updated, err := s.films.Update(ctx, film)
	if err != nil {
		return nil, s.failure(ctx, "update film", err)
	}
	s.logger.InfoContext(ctx, "Film updated", slog.Int64("filmID", updated.ID))
	return updated, nil
}

func (s *FilmService) Delete(ctx context.Context, id int64) error {
	if err := s.films.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrFilmNotFound) {
			return domain.NotFound("film with id %d not found", id)
		}
		return s.failure(ctx, "delete film", err)
	}
	s.logger.InfoContext(ctx, "Film deleted", slog.Int64("filmID", id))
	return nil
}

func (s *FilmService) AddLike(ctx context.Context, filmID, userID int64) error {
	if err := s.ensureFilm(ctx, filmID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	if err := s.films.AddLike(ctx, filmID, userID); err != nil {
		return s.failure(ctx, "add like", err)
	}
	s.logger.InfoContext(ctx, "Like added", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

func (s *FilmService) RemoveLike(ctx context.Context, filmID, userID int64) error {
	if err := s.ensureFilm(ctx, filmID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	if err := s.films.RemoveLike(ctx, filmID, userID); err != nil {
		return s.failure(ctx, "remove like", err)
	}
	s.logger.InfoContext(ctx, "Like removed", slog.Int64("filmID", filmID), slog.Int64("userID", userID))
	return nil
}

// GetPopular возвращает до count фильмов: больше лайков выше, при равенстве меньший id выше.
func (s *FilmService) GetPopular(ctx context.Context, count int) ([]domain.Film, error) {
	if count <= 0 {
		return nil, domain.Validation("count must be positive")
	}
	films, err := s.films.GetPopular(ctx, count)
	if err != nil {
		return nil, s.failure(ctx, "get popular films", err)
	}
	return films, nil
}

func (s *FilmService) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	genres, err := s.films.GetAllGenres(ctx)
	if err != nil {
		return nil, s.failure(ctx, "list genres", err)
	}
	return genres, nil
}

func (s *FilmService) GetGenreByID(ctx context.Context, id int) (*domain.Genre, error) {
	genre, err := s.films.GetGenreByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrGenreNotFound) {
			return nil, domain.NotFound("genre with id %d not found", id)
		}
		return nil, s.failure(ctx, "get genre", err)
	}
	return genre, nil
}

func (s *FilmService) GetAllMpa(ctx context.Context) ([]domain.MpaRating, error) {
	ratings, err := s.films.GetAllMpa(ctx)
	if err != nil {
		return nil, s.failure(ctx, "list mpa ratings", err)
	}
	return ratings, nil
}

func (s *FilmService) GetMpaByID(ctx context.Context, id int) (*domain.MpaRating, error) {
	rating, err := s.films.GetMpaByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrMpaNotFound) {
			return nil, domain.NotFound("mpa rating with id %d not found", id)
		}
		return nil, s.failure(ctx, "get mpa rating", err)
	}
	return rating, nil
}
