package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"filmorate/internal/domain"
	"filmorate/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.June, 1, 15, 30, 0, 0, time.UTC)

type services struct {
	films *FilmService
	users *UserService
}

func newServices(t *testing.T) services {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	validate, err := NewValidator(func() time.Time { return fixedNow })
	require.NoError(t, err)

	filmStore, userStore := store.NewMemoryStores(logger)
	return services{
		films: NewFilmService(filmStore, userStore, validate, logger),
		users: NewUserService(userStore, validate, logger),
	}
}

func validFilm(name string) domain.Film {
	release := domain.NewDate(1999, time.March, 31)
	duration := 136
	return domain.Film{
		Name:        name,
		Description: "A hacker learns the truth",
		ReleaseDate: &release,
		Duration:    &duration,
		Mpa:         &domain.MpaRating{ID: 4},
	}
}

func validUser(login string) domain.User {
	birthday := domain.NewDate(1990, time.January, 1)
	return domain.User{Email: login + "@mail.ru", Login: login, Name: "Name " + login, Birthday: &birthday}
}

func assertKind(t *testing.T, want domain.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, domain.KindOf(err), "unexpected error: %v", err)
}
