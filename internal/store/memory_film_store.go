// internal/store/memory_film_store.go
package store

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"filmorate/internal/domain"
)

// MemoryFilmStore реализует FilmStore поверх карт в памяти.
type MemoryFilmStore struct {
	db *memoryDB
}

var _ FilmStore = (*MemoryFilmStore)(nil)

// resolve собирает фильм: название рейтинга, жанры и лайки. Вызывать под блокировкой.
func (m *MemoryFilmStore) resolve(rec filmRecord) domain.Film {
	film := domain.Film{
		ID:          rec.ID,
		Name:        rec.Name,
		Description: rec.Description,
		ReleaseDate: cloneDate(rec.ReleaseDate),
		Duration:    cloneInt(rec.Duration),
		Mpa:         &domain.MpaRating{ID: rec.MpaID, Name: m.db.mpa[rec.MpaID]},
		Genres:      m.genresOf(rec),
		Likes:       sortedIDs(m.db.likes[rec.ID]),
	}
	return film
}

func (m *MemoryFilmStore) genresOf(rec filmRecord) []domain.Genre {
	genres := make([]domain.Genre, 0, len(rec.GenreIDs))
	for _, id := range rec.GenreIDs {
		genres = append(genres, domain.Genre{ID: id, Name: m.db.genres[id]})
	}
	return genres
}

// record проверяет ссылки на справочники и готовит запись. Вызывать под блокировкой.
func (m *MemoryFilmStore) record(film domain.Film) (filmRecord, error) {
	if film.Mpa == nil {
		return filmRecord{}, errors.New("film mpa rating is required")
	}
	if _, ok := m.db.mpa[film.Mpa.ID]; !ok {
		return filmRecord{}, ErrMpaNotFound
	}
	genreIDs := film.GenreIDs()
	for _, id := range genreIDs {
		if _, ok := m.db.genres[id]; !ok {
			return filmRecord{}, ErrGenreNotFound
		}
	}
	sort.Ints(genreIDs)
	return filmRecord{
		ID:          film.ID,
		Name:        film.Name,
		Description: film.Description,
		ReleaseDate: cloneDate(film.ReleaseDate),
		Duration:    cloneInt(film.Duration),
		MpaID:       film.Mpa.ID,
		GenreIDs:    genreIDs,
	}, nil
}

func (m *MemoryFilmStore) FindAll(ctx context.Context) ([]domain.Film, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	films := make([]domain.Film, 0, len(m.db.films))
	for _, rec := range m.db.films {
		films = append(films, m.resolve(rec))
	}
	sort.Slice(films, func(i, j int) bool { return films[i].ID < films[j].ID })
	return films, nil
}

func (m *MemoryFilmStore) FindByID(ctx context.Context, id int64) (*domain.Film, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	rec, ok := m.db.films[id]
	if !ok {
		return nil, ErrFilmNotFound
	}
	film := m.resolve(rec)
	return &film, nil
}

func (m *MemoryFilmStore) Add(ctx context.Context, film domain.Film) (*domain.Film, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	rec, err := m.record(film)
	if err != nil {
		return nil, err
	}
	m.db.nextFilmID++
	rec.ID = m.db.nextFilmID
	m.db.films[rec.ID] = rec
	m.db.logger.DebugContext(ctx, "Film added to memory store", slog.Int64("filmID", rec.ID))

	created := m.resolve(rec)
	return &created, nil
}

func (m *MemoryFilmStore) Update(ctx context.Context, film domain.Film) (*domain.Film, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.films[film.ID]; !ok {
		return nil, ErrFilmNotFound
	}
	rec, err := m.record(film)
	if err != nil {
		return nil, err
	}
	m.db.films[rec.ID] = rec

	updated := m.resolve(rec)
	return &updated, nil
}

func (m *MemoryFilmStore) DeleteByID(ctx context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.films[id]; !ok {
		return ErrFilmNotFound
	}
	delete(m.db.films, id)
	delete(m.db.likes, id)
	return nil
}

func (m *MemoryFilmStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	_, ok := m.db.films[id]
	return ok, nil
}

func (m *MemoryFilmStore) AddLike(ctx context.Context, filmID, userID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.films[filmID]; !ok {
		return ErrFilmNotFound
	}
	if _, ok := m.db.users[userID]; !ok {
		return ErrUserNotFound
	}
	if m.db.likes[filmID] == nil {
		m.db.likes[filmID] = make(map[int64]struct{})
	}
	m.db.likes[filmID][userID] = struct{}{}
	return nil
}

func (m *MemoryFilmStore) RemoveLike(ctx context.Context, filmID, userID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if likes, ok := m.db.likes[filmID]; ok {
		delete(likes, userID)
	}
	return nil
}

func (m *MemoryFilmStore) GetPopular(ctx context.Context, count int) ([]domain.Film, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	if count <= 0 {
		return []domain.Film{}, nil
	}
	recs := make([]filmRecord, 0, len(m.db.films))
	for _, rec := range m.db.films {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		li, lj := len(m.db.likes[recs[i].ID]), len(m.db.likes[recs[j].ID])
		if li != lj {
			return li > lj
		}
		return recs[i].ID < recs[j].ID
	})
	if len(recs) > count {
		recs = recs[:count]
	}
	films := make([]domain.Film, 0, len(recs))
	for _, rec := range recs {
		films = append(films, m.resolve(rec))
	}
	return films, nil
}

func (m *MemoryFilmStore) GetGenres(ctx context.Context, filmID int64) ([]domain.Genre, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	rec, ok := m.db.films[filmID]
	if !ok {
		return []domain.Genre{}, nil
	}
	return m.genresOf(rec), nil
}

func (m *MemoryFilmStore) GenresByFilmIDs(ctx context.Context, filmIDs []int64) (map[int64][]domain.Genre, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	result := make(map[int64][]domain.Genre, len(filmIDs))
	for _, id := range filmIDs {
		if rec, ok := m.db.films[id]; ok && len(rec.GenreIDs) > 0 {
			result[id] = m.genresOf(rec)
		}
	}
	return result, nil
}

func (m *MemoryFilmStore) GetAllGenres(ctx context.Context) ([]domain.Genre, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	genres := make([]domain.Genre, 0, len(m.db.genres))
	for id, name := range m.db.genres {
		genres = append(genres, domain.Genre{ID: id, Name: name})
	}
	sort.Slice(genres, func(i, j int) bool { return genres[i].ID < genres[j].ID })
	return genres, nil
}

func (m *MemoryFilmStore) GetGenreByID(ctx context.Context, id int) (*domain.Genre, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	name, ok := m.db.genres[id]
	if !ok {
		return nil, ErrGenreNotFound
	}
	return &domain.Genre{ID: id, Name: name}, nil
}

func (m *MemoryFilmStore) GetAllMpa(ctx context.Context) ([]domain.MpaRating, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	ratings := make([]domain.MpaRating, 0, len(m.db.mpa))
	for id, name := range m.db.mpa {
		ratings = append(ratings, domain.MpaRating{ID: id, Name: name})
	}
	sort.Slice(ratings, func(i, j int) bool { return ratings[i].ID < ratings[j].ID })
	return ratings, nil
}

func (m *MemoryFilmStore) GetMpaByID(ctx context.Context, id int) (*domain.MpaRating, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	name, ok := m.db.mpa[id]
	if !ok {
		return nil, ErrMpaNotFound
	}
	return &domain.MpaRating{ID: id, Name: name}, nil
}

// Ping для памяти всегда успешен.
func (m *MemoryFilmStore) Ping(ctx context.Context) error {
	return nil
}
