package api

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"filmorate/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const matrixJSON = `{
	"name": "Matrix",
	"description": "Wake up, Neo",
	"releaseDate": "1999-03-31",
	"duration": 136,
	"mpa": {"id": 4},
	"genres": [{"id": 6}, {"id": 4}, {"id": 6}]
}`

func createFilm(t *testing.T, api testAPI, name string) domain.Film {
	t.Helper()
	body := fmt.Sprintf(`{"name": %q, "releaseDate": "2000-01-01", "duration": 90, "mpa": {"id": 1}}`, name)
	rec := api.do(t, http.MethodPost, "/films", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.Film](t, rec)
}

func createUser(t *testing.T, api testAPI, login string) domain.User {
	t.Helper()
	body := fmt.Sprintf(`{"email": "%s@mail.ru", "login": %q, "name": "", "birthday": "1990-01-01"}`, login, login)
	rec := api.do(t, http.MethodPost, "/users", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.User](t, rec)
}

func TestCreateFilm(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/films", matrixJSON)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"id": 1,
		"name": "Matrix",
		"description": "Wake up, Neo",
		"releaseDate": "1999-03-31",
		"duration": 136,
		"mpa": {"id": 4, "name": "R"},
		"genres": [{"id": 4, "name": "Триллер"}, {"id": 6, "name": "Боевик"}],
		"likes": []
	}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/films/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Matrix", decodeBody[domain.Film](t, rec).Name)
}

func TestCreateFilmErrors(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		body   string
		status int
		title  string
	}{
		{"blank name", `{"name": " ", "mpa": {"id": 1}}`, http.StatusBadRequest, titleValidation},
		{"long description", fmt.Sprintf(`{"name": "x", "description": %q, "mpa": {"id": 1}}`, strings.Repeat("d", 201)), http.StatusBadRequest, titleValidation},
		{"too early", `{"name": "x", "releaseDate": "1895-12-27", "mpa": {"id": 1}}`, http.StatusBadRequest, titleValidation},
		{"zero duration", `{"name": "x", "duration": 0, "mpa": {"id": 1}}`, http.StatusBadRequest, titleValidation},
		{"no mpa", `{"name": "x"}`, http.StatusBadRequest, titleValidation},
		{"unknown mpa", `{"name": "x", "mpa": {"id": 77}}`, http.StatusNotFound, titleNotFound},
		{"unknown genre", `{"name": "x", "mpa": {"id": 1}, "genres": [{"id": 77}]}`, http.StatusNotFound, titleNotFound},
		{"malformed json", `{"name": `, http.StatusBadRequest, titleBadRequest},
		{"malformed date", `{"name": "x", "releaseDate": "31.03.1999", "mpa": {"id": 1}}`, http.StatusBadRequest, titleBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/films", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.title, resp.Title)
			assert.NotEmpty(t, resp.Detail)
		})
	}
}

func TestGetFilmErrors(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/films/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/films/42", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorResponse{Title: titleNotFound, Detail: "film with id 42 not found"}, decodeBody[ErrorResponse](t, rec))
}

func TestUpdateFilm(t *testing.T) {
	api := newTestAPI(t)
	film := createFilm(t, api, "Draft")

	body := fmt.Sprintf(`{"id": %d, "name": "Final", "mpa": {"id": 2}, "genres": [{"id": 1}]}`, film.ID)
	rec := api.do(t, http.MethodPut, "/films", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[domain.Film](t, rec)
	assert.Equal(t, "Final", updated.Name)
	assert.Equal(t, "PG", updated.Mpa.Name)
	assert.Nil(t, updated.ReleaseDate)

	rec = api.do(t, http.MethodPut, "/films", `{"id": 999, "name": "Ghost", "mpa": {"id": 1}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPut, "/films", `{"name": "No id", "mpa": {"id": 1}}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteFilm(t *testing.T) {
	api := newTestAPI(t)
	film := createFilm(t, api, "Doomed")

	rec := api.do(t, http.MethodDelete, fmt.Sprintf("/films/%d", film.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/films/%d", film.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLikesAndPopular(t *testing.T) {
	api := newTestAPI(t)
	f1 := createFilm(t, api, "f1")
	f2 := createFilm(t, api, "f2")
	f3 := createFilm(t, api, "f3")
	u1 := createUser(t, api, "u1")
	u2 := createUser(t, api, "u2")

	like := func(film domain.Film, user domain.User) {
		rec := api.do(t, http.MethodPut, fmt.Sprintf("/films/%d/like/%d", film.ID, user.ID), "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	like(f2, u1)
	like(f2, u2)
	like(f2, u2)
	like(f3, u1)

	rec := api.do(t, http.MethodGet, "/films/popular?count=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top := decodeBody[[]domain.Film](t, rec)
	require.Len(t, top, 2)
	assert.Equal(t, []int64{f2.ID, f3.ID}, []int64{top[0].ID, top[1].ID})
	assert.Equal(t, []int64{u1.ID, u2.ID}, top[0].Likes)

	rec = api.do(t, http.MethodDelete, fmt.Sprintf("/films/%d/like/%d", f2.ID, u2.ID), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/films/popular", "")
	require.Equal(t, http.StatusOK, rec.Code)
	top = decodeBody[[]domain.Film](t, rec)
	require.Len(t, top, 3)
	assert.Equal(t, []int64{f2.ID, f3.ID, f1.ID}, []int64{top[0].ID, top[1].ID, top[2].ID})

	for _, bad := range []string{"0", "-1", "ten"} {
		rec = api.do(t, http.MethodGet, "/films/popular?count="+bad, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "count=%s", bad)
	}

	rec = api.do(t, http.MethodPut, fmt.Sprintf("/films/%d/like/999", f1.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(t, http.MethodPut, fmt.Sprintf("/films/999/like/%d", u1.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = api.do(t, http.MethodPut, "/films/1/like/me", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenreAndMpaLookups(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/genres", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]domain.Genre](t, rec), 6)

	rec = api.do(t, http.MethodGet, "/genres/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id": 2, "name": "Драма"}`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/genres/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/mpa", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"G"},{"id":2,"name":"PG"},{"id":3,"name":"PG-13"},{"id":4,"name":"R"},{"id":5,"name":"NC-17"}]`, rec.Body.String())

	rec = api.do(t, http.MethodGet, "/mpa/3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "PG-13", decodeBody[domain.MpaRating](t, rec).Name)

	rec = api.do(t, http.MethodGet, "/mpa/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListFilmsEmpty(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/films", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
