// internal/store/store.go
package store

import (
	"context"
	"errors"

	"filmorate/internal/domain"
)

// Ошибки хранилища. Сервисный слой переводит их в domain.NotFound.
var (
	ErrFilmNotFound  = errors.New("film not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrGenreNotFound = errors.New("genre not found")
	ErrMpaNotFound   = errors.New("mpa rating not found")
)

// FilmStore определяет интерфейс для операций с фильмами, лайками и справочниками.
// Фильмы возвращаются полностью собранными: mpa с названием, жанры по возрастанию id,
// лайки по возрастанию id пользователя.
type FilmStore interface {
	FindAll(ctx context.Context) ([]domain.Film, error)
	FindByID(ctx context.Context, id int64) (*domain.Film, error)
	Add(ctx context.Context, film domain.Film) (*domain.Film, error)
	Update(ctx context.Context, film domain.Film) (*domain.Film, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)

	AddLike(ctx context.Context, filmID, userID int64) error
	RemoveLike(ctx context.Context, filmID, userID int64) error
	// GetPopular сортирует по убыванию числа лайков, при равенстве по возрастанию id.
	GetPopular(ctx context.Context, count int) ([]domain.Film, error)

	GetGenres(ctx context.Context, filmID int64) ([]domain.Genre, error)
	GenresByFilmIDs(ctx context.Context, filmIDs []int64) (map[int64][]domain.Genre, error)
	GetAllGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenreByID(ctx context.Context, id int) (*domain.Genre, error)
	GetAllMpa(ctx context.Context) ([]domain.MpaRating, error)
	GetMpaByID(ctx context.Context, id int) (*domain.MpaRating, error)
}

// UserStore определяет интерфейс для операций с пользователями и дружбой.
// Все списки пользователей отсортированы по возрастанию id.
type UserStore interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Add(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, user domain.User) (*domain.User, error)
	DeleteByID(ctx context.Context, id int64) error
	ExistsByID(ctx context.Context, id int64) (bool, error)

	// AddFriend подтверждает встречную заявку, если она есть, иначе создает свою.
	// Возвращает итоговый статус связи userID -> friendID.
	AddFriend(ctx context.Context, userID, friendID int64) (domain.FriendshipStatus, error)
	// RemoveFriend удаляет только связь userID -> friendID; встречная связь не меняется.
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	FindFriends(ctx context.Context, userID int64) ([]domain.User, error)
	FindCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error)
	FindFriendRequests(ctx context.Context, userID int64) ([]domain.User, error)
}

// Pinger проверка доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}
