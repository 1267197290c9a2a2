package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"filmorate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeFactory возвращает пустую пару хранилищ для каждого подтеста.
type storeFactory func(t *testing.T) (FilmStore, UserStore)

func testFilm(name string, mpa int, genres ...int) domain.Film {
	duration := 120
	release := domain.NewDate(2000, time.January, 1)
	film := domain.Film{
		Name:        name,
		Description: "description of " + name,
		ReleaseDate: &release,
		Duration:    &duration,
		Mpa:         &domain.MpaRating{ID: mpa},
	}
	for _, id := range genres {
		film.Genres = append(film.Genres, domain.Genre{ID: id})
	}
	return film
}

func testUser(login string) domain.User {
	birthday := domain.NewDate(1990, time.March, 15)
	return domain.User{Email: login + "@example.com", Login: login, Name: login, Birthday: &birthday}
}

func addUsers(t *testing.T, users UserStore, logins ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(logins))
	for _, login := range logins {
		u, err := users.Add(context.Background(), testUser(login))
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	return ids
}

func addFilms(t *testing.T, films FilmStore, names ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		f, err := films.Add(context.Background(), testFilm(name, 1))
		require.NoError(t, err)
		ids = append(ids, f.ID)
	}
	return ids
}

func userIDs(users []domain.User) []int64 {
	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func filmIDs(films []domain.Film) []int64 {
	ids := make([]int64, 0, len(films))
	for _, f := range films {
		ids = append(ids, f.ID)
	}
	return ids
}

func runStoreContract(t *testing.T, newStores storeFactory) {
	ctx := context.Background()

	t.Run("film add resolves references", func(t *testing.T) {
		films, _ := newStores(t)

		created, err := films.Add(ctx, testFilm("Matrix", 3, 6, 4, 6))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, &domain.MpaRating{ID: 3, Name: "PG-13"}, created.Mpa)
		assert.Equal(t, []domain.Genre{{ID: 4, Name: "Триллер"}, {ID: 6, Name: "Боевик"}}, created.Genres)
		assert.Empty(t, created.Likes)
		require.NotNil(t, created.ReleaseDate)
		assert.Equal(t, "2000-01-01", created.ReleaseDate.String())

		found, err := films.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, found)
	})

	t.Run("film add keeps absent fields absent", func(t *testing.T) {
		films, _ := newStores(t)

		created, err := films.Add(ctx, domain.Film{Name: "Bare", Mpa: &domain.MpaRating{ID: 1}})
		require.NoError(t, err)
		assert.Nil(t, created.ReleaseDate)
		assert.Nil(t, created.Duration)
		assert.Equal(t, "", created.Description)
		assert.Equal(t, []domain.Genre{}, created.Genres)
	})

	t.Run("film add rejects unknown references", func(t *testing.T) {
		films, _ := newStores(t)

		_, err := films.Add(ctx, testFilm("Bad mpa", 99))
		assert.ErrorIs(t, err, ErrMpaNotFound)

		_, err = films.Add(ctx, testFilm("Bad genre", 1, 1, 99))
		assert.ErrorIs(t, err, ErrGenreNotFound)

		all, err := films.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("film update replaces genres and keeps likes", func(t *testing.T) {
		films, users := newStores(t)
		userID := addUsers(t, users, "fan")[0]

		created, err := films.Add(ctx, testFilm("Heat", 4, 2, 4))
		require.NoError(t, err)
		require.NoError(t, films.AddLike(ctx, created.ID, userID))

		change := testFilm("Heat (1995)", 5, 6)
		change.ID = created.ID
		updated, err := films.Update(ctx, change)
		require.NoError(t, err)
		assert.Equal(t, "Heat (1995)", updated.Name)
		assert.Equal(t, "NC-17", updated.Mpa.Name)
		assert.Equal(t, []domain.Genre{{ID: 6, Name: "Боевик"}}, updated.Genres)
		assert.Equal(t, []int64{userID}, updated.Likes)

		missing := testFilm("Ghost", 1)
		missing.ID = created.ID + 100
		_, err = films.Update(ctx, missing)
		assert.ErrorIs(t, err, ErrFilmNotFound)
	})

	t.Run("film delete", func(t *testing.T) {
		films, _ := newStores(t)
		ids := addFilms(t, films, "One", "Two")

		require.NoError(t, films.DeleteByID(ctx, ids[0]))
		_, err := films.FindByID(ctx, ids[0])
		assert.ErrorIs(t, err, ErrFilmNotFound)
		assert.ErrorIs(t, films.DeleteByID(ctx, ids[0]), ErrFilmNotFound)

		exists, err := films.ExistsByID(ctx, ids[1])
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = films.ExistsByID(ctx, ids[0])
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("likes are idempotent and ordered", func(t *testing.T) {
		films, users := newStores(t)
		filmID := addFilms(t, films, "Liked")[0]
		u := addUsers(t, users, "a", "b", "c")

		require.NoError(t, films.AddLike(ctx, filmID, u[2]))
		require.NoError(t, films.AddLike(ctx, filmID, u[0]))
		require.NoError(t, films.AddLike(ctx, filmID, u[0]))

		film, err := films.FindByID(ctx, filmID)
		require.NoError(t, err)
		assert.Equal(t, []int64{u[0], u[2]}, film.Likes)

		require.NoError(t, films.RemoveLike(ctx, filmID, u[2]))
		require.NoError(t, films.RemoveLike(ctx, filmID, u[1]))
		film, err = films.FindByID(ctx, filmID)
		require.NoError(t, err)
		assert.Equal(t, []int64{u[0]}, film.Likes)

		assert.ErrorIs(t, films.AddLike(ctx, filmID, u[2]+100), ErrUserNotFound)
		assert.ErrorIs(t, films.AddLike(ctx, filmID+100, u[0]), ErrFilmNotFound)
	})

	t.Run("popular orders by likes then id", func(t *testing.T) {
		films, users := newStores(t)
		f := addFilms(t, films, "f1", "f2", "f3")
		u := addUsers(t, users, "a", "b")

		require.NoError(t, films.AddLike(ctx, f[0], u[0]))
		require.NoError(t, films.AddLike(ctx, f[0], u[1]))
		require.NoError(t, films.AddLike(ctx, f[1], u[0]))

		top, err := films.GetPopular(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{f[0], f[1]}, filmIDs(top))
		assert.Len(t, top[0].Likes, 2)

		// f1 и f2 сравнялись: порядок по id.
		require.NoError(t, films.RemoveLike(ctx, f[0], u[1]))
		top, err = films.GetPopular(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []int64{f[0], f[1], f[2]}, filmIDs(top))

		// f3 лайкнут раньше f1, но при равенстве выше меньший id.
		require.NoError(t, films.RemoveLike(ctx, f[0], u[0]))
		require.NoError(t, films.RemoveLike(ctx, f[1], u[0]))
		require.NoError(t, films.AddLike(ctx, f[2], u[1]))
		require.NoError(t, films.AddLike(ctx, f[0], u[1]))
		top, err = films.GetPopular(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{f[0], f[2]}, filmIDs(top))

		top, err = films.GetPopular(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, top)
	})

	t.Run("genres in bulk", func(t *testing.T) {
		films, _ := newStores(t)
		a, err := films.Add(ctx, testFilm("a", 1, 5, 1))
		require.NoError(t, err)
		b, err := films.Add(ctx, testFilm("b", 1))
		require.NoError(t, err)
		c, err := films.Add(ctx, testFilm("c", 1, 2))
		require.NoError(t, err)

		byFilm, err := films.GenresByFilmIDs(ctx, []int64{a.ID, b.ID, c.ID})
		require.NoError(t, err)
		assert.Equal(t, []domain.Genre{{ID: 1, Name: "Комедия"}, {ID: 5, Name: "Документальный"}}, byFilm[a.ID])
		assert.Empty(t, byFilm[b.ID])
		assert.Equal(t, []domain.Genre{{ID: 2, Name: "Драма"}}, byFilm[c.ID])

		empty, err := films.GenresByFilmIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)

		genres, err := films.GetGenres(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, byFilm[a.ID], genres)
	})

	t.Run("lookups", func(t *testing.T) {
		films, _ := newStores(t)

		genres, err := films.GetAllGenres(ctx)
		require.NoError(t, err)
		assert.Equal(t, seedGenres, genres)

		genre, err := films.GetGenreByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Мультфильм", genre.Name)
		_, err = films.GetGenreByID(ctx, 42)
		assert.ErrorIs(t, err, ErrGenreNotFound)

		ratings, err := films.GetAllMpa(ctx)
		require.NoError(t, err)
		assert.Equal(t, seedMpa, ratings)

		rating, err := films.GetMpaByID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "R", rating.Name)
		_, err = films.GetMpaByID(ctx, 42)
		assert.ErrorIs(t, err, ErrMpaNotFound)
	})

	t.Run("user crud", func(t *testing.T) {
		_, users := newStores(t)

		created, err := users.Add(ctx, testUser("neo"))
		require.NoError(t, err)
		assert.NotZero(t, created.ID)

		created.Name = "Thomas Anderson"
		created.Birthday = nil
		updated, err := users.Update(ctx, *created)
		require.NoError(t, err)
		assert.Equal(t, created, updated)

		found, err := users.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Thomas Anderson", found.Name)
		assert.Nil(t, found.Birthday)

		ghost := testUser("ghost")
		ghost.ID = created.ID + 100
		_, err = users.Update(ctx, ghost)
		assert.ErrorIs(t, err, ErrUserNotFound)

		_, err = users.FindByID(ctx, ghost.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)

		all, err := users.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{created.ID}, userIDs(all))
	})

	t.Run("user delete cascades", func(t *testing.T) {
		films, users := newStores(t)
		u := addUsers(t, users, "a", "b")
		filmID := addFilms(t, films, "liked")[0]

		require.NoError(t, films.AddLike(ctx, filmID, u[0]))
		_, err := users.AddFriend(ctx, u[1], u[0])
		require.NoError(t, err)

		require.NoError(t, users.DeleteByID(ctx, u[0]))
		assert.ErrorIs(t, users.DeleteByID(ctx, u[0]), ErrUserNotFound)

		film, err := films.FindByID(ctx, filmID)
		require.NoError(t, err)
		assert.Empty(t, film.Likes)

		friends, err := users.FindFriends(ctx, u[1])
		require.NoError(t, err)
		assert.Empty(t, friends)
	})

	t.Run("friend request and confirmation", func(t *testing.T) {
		_, users := newStores(t)
		u := addUsers(t, users, "a", "b")
		a, b := u[0], u[1]

		status, err := users.AddFriend(ctx, a, b)
		require.NoError(t, err)
		assert.Equal(t, domain.FriendshipUnconfirmed, status)

		// Повторная заявка ничего не меняет.
		status, err = users.AddFriend(ctx, a, b)
		require.NoError(t, err)
		assert.Equal(t, domain.FriendshipUnconfirmed, status)

		friends, err := users.FindFriends(ctx, a)
		require.NoError(t, err)
		assert.Empty(t, friends)

		requests, err := users.FindFriendRequests(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []int64{a}, userIDs(requests))

		status, err = users.AddFriend(ctx, b, a)
		require.NoError(t, err)
		assert.Equal(t, domain.FriendshipConfirmed, status)

		friends, err = users.FindFriends(ctx, a)
		require.NoError(t, err)
		assert.Equal(t, []int64{b}, userIDs(friends))
		friends, err = users.FindFriends(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []int64{a}, userIDs(friends))

		requests, err = users.FindFriendRequests(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, requests)

		status, err = users.AddFriend(ctx, a, b)
		require.NoError(t, err)
		assert.Equal(t, domain.FriendshipConfirmed, status)

		_, err = users.AddFriend(ctx, a, b+100)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("remove friend touches only own edge", func(t *testing.T) {
		_, users := newStores(t)
		u := addUsers(t, users, "a", "b")
		a, b := u[0], u[1]

		_, err := users.AddFriend(ctx, a, b)
		require.NoError(t, err)
		_, err = users.AddFriend(ctx, b, a)
		require.NoError(t, err)

		require.NoError(t, users.RemoveFriend(ctx, a, b))
		require.NoError(t, users.RemoveFriend(ctx, a, b))

		friends, err := users.FindFriends(ctx, a)
		require.NoError(t, err)
		assert.Empty(t, friends)

		// Связь b -> a осталась подтвержденной.
		friends, err = users.FindFriends(ctx, b)
		require.NoError(t, err)
		assert.Equal(t, []int64{a}, userIDs(friends))

		requests, err := users.FindFriendRequests(ctx, a)
		require.NoError(t, err)
		assert.Empty(t, requests)

		status, err := users.AddFriend(ctx, a, b)
		require.NoError(t, err)
		assert.Equal(t, domain.FriendshipConfirmed, status)
	})

	t.Run("remove pending request", func(t *testing.T) {
		_, users := newStores(t)
		u := addUsers(t, users, "a", "b")
		a, b := u[0], u[1]

		_, err := users.AddFriend(ctx, a, b)
		require.NoError(t, err)
		require.NoError(t, users.RemoveFriend(ctx, a, b))

		requests, err := users.FindFriendRequests(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, requests)
	})

	t.Run("concurrent mutual requests confirm", func(t *testing.T) {
		_, users := newStores(t)
		const pairs = 8
		logins := make([]string, 0, 2*pairs)
		for i := 0; i < pairs; i++ {
			logins = append(logins, fmt.Sprintf("left%d", i), fmt.Sprintf("right%d", i))
		}
		u := addUsers(t, users, logins...)

		start := make(chan struct{})
		errs := make(chan error, 2*pairs)
		var wg sync.WaitGroup
		for i := 0; i < pairs; i++ {
			a, b := u[2*i], u[2*i+1]
			for _, edge := range [][2]int64{{a, b}, {b, a}} {
				wg.Add(1)
				go func(from, to int64) {
					defer wg.Done()
					<-start
					_, err := users.AddFriend(ctx, from, to)
					errs <- err
				}(edge[0], edge[1])
			}
		}
		close(start)
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		for i := 0; i < pairs; i++ {
			a, b := u[2*i], u[2*i+1]
			friends, err := users.FindFriends(ctx, a)
			require.NoError(t, err)
			assert.Equal(t, []int64{b}, userIDs(friends))
			friends, err = users.FindFriends(ctx, b)
			require.NoError(t, err)
			assert.Equal(t, []int64{a}, userIDs(friends))
		}
	})

	t.Run("common friends", func(t *testing.T) {
		_, users := newStores(t)
		u := addUsers(t, users, "a", "b", "c", "d", "e")
		a, b, c, d, e := u[0], u[1], u[2], u[3], u[4]

		befriend := func(x, y int64) {
			_, err := users.AddFriend(ctx, x, y)
			require.NoError(t, err)
			_, err = users.AddFriend(ctx, y, x)
			require.NoError(t, err)
		}
		befriend(a, d)
		befriend(a, c)
		befriend(b, c)
		befriend(b, d)
		befriend(a, e)
		// b -> e только заявка, e не общий друг.
		_, err := users.AddFriend(ctx, b, e)
		require.NoError(t, err)

		common, err := users.FindCommonFriends(ctx, a, b)
		require.NoError(t, err)
		assert.Equal(t, []int64{c, d}, userIDs(common))

		common, err = users.FindCommonFriends(ctx, a, e)
		require.NoError(t, err)
		assert.Empty(t, common)
	})
}
