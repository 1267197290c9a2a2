// internal/api/film_handlers.go
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"filmorate/internal/domain"
)

const defaultPopularCount = 10

// FilmService операции над фильмами, которые нужны HTTP слою.
type FilmService interface {
	FindAll(ctx context.Context) ([]domain.Film, error)
	GetByID(ctx context.Context, id int64) (*domain.Film, error)
	Create(ctx context.Context, film domain.Film) (*domain.Film, error)
	Update(ctx context.Context, film domain.Film) (*domain.Film, error)
	Delete(ctx context.Context, id int64) error
	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
	GetPopular(ctx context.Context, count int) ([]domain.Film, error)
	GetAllGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenreByID(ctx context.Context, id int) (*domain.Genre, error)
	GetAllMpa(ctx context.Context) ([]domain.MpaRating, error)
	GetMpaByID(ctx context.Context, id int) (*domain.MpaRating, error)
}

// FilmHandler содержит зависимости для HTTP обработчиков фильмов и справочников.
type FilmHandler struct {
	responder
	service FilmService
}

// NewFilmHandler создает новый экземпляр FilmHandler.
func NewFilmHandler(s FilmService, l *slog.Logger) *FilmHandler {
	return &FilmHandler{responder: responder{logger: l}, service: s}
}

func (h *FilmHandler) ListFilms(w http.ResponseWriter, r *http.Request) {
	films, err := h.service.FindAll(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}

func (h *FilmHandler) GetFilm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	film, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *FilmHandler) CreateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateFilm request received", slog.String("path", r.URL.Path))

	var req domain.Film
	if !h.decodeJSON(w, r, &req) {
		return
	}
	film, err := h.service.Create(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, film)
}

func (h *FilmHandler) UpdateFilm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP UpdateFilm request received", slog.String("path", r.URL.Path))

	var req domain.Film
	if !h.decodeJSON(w, r, &req) {
		return
	}
	film, err := h.service.Update(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, film)
}

func (h *FilmHandler) DeleteFilm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FilmHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathInt64(w, r, "userId")
	if !ok {
		return
	}
	if err := h.service.AddLike(r.Context(), filmID, userID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *FilmHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	filmID, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	userID, ok := h.pathInt64(w, r, "userId")
	if !ok {
		return
	}
	if err := h.service.RemoveLike(r.Context(), filmID, userID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

// PopularFilms GET /films/popular?count=N, по умолчанию 10.
func (h *FilmHandler) PopularFilms(w http.ResponseWriter, r *http.Request) {
	count := defaultPopularCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.respondBadRequest(w, r, "count must be a positive integer")
			return
		}
		count = parsed
	}
	films, err := h.service.GetPopular(r.Context(), count)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, films)
}
