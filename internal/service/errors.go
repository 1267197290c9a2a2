package service

import (
	"errors"

	"filmorate/internal/domain"
	"filmorate/internal/store"
)

// notFoundFromStore переводит "нет такой записи" из хранилища в domain.NotFound.
// Для прочих ошибок возвращает nil.
func notFoundFromStore(err error) error {
	switch {
	case errors.Is(err, store.ErrFilmNotFound):
		return domain.NotFound("film not found")
	case errors.Is(err, store.ErrUserNotFound):
		return domain.NotFound("user not found")
	case errors.Is(err, store.ErrGenreNotFound):
		return domain.NotFound("genre not found")
	case errors.Is(err, store.ErrMpaNotFound):
		return domain.NotFound("mpa rating not found")
	}
	return nil
}
