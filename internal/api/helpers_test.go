package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"filmorate/internal/service"
	"filmorate/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testAPI struct {
	handler  http.Handler
	registry *prometheus.Registry
}

func newRouterWith(t *testing.T, films FilmService, users UserService, pinger store.Pinger) testAPI {
	t.Helper()
	logger := discardLogger()
	registry := prometheus.NewRegistry()
	metrics, err := NewMetrics(registry)
	require.NoError(t, err)

	router := NewRouter(RouterDeps{
		Films:    NewFilmHandler(films, logger),
		Users:    NewUserHandler(users, logger),
		Health:   NewHealthHandler(pinger, logger),
		Metrics:  metrics,
		Gatherer: registry,
		Logger:   logger,
	})
	return testAPI{
		handler:  NewHTTPHandler(router, GatewayOptions{RateLimitRPS: 1000, RateLimitBurst: 1000}, logger),
		registry: registry,
	}
}

func newTestAPI(t *testing.T) testAPI {
	t.Helper()
	logger := discardLogger()
	validate, err := service.NewValidator(func() time.Time {
		return time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)

	filmStore, userStore := store.NewMemoryStores(logger)
	films := service.NewFilmService(filmStore, userStore, validate, logger)
	users := service.NewUserService(userStore, validate, logger)
	return newRouterWith(t, films, users, filmStore)
}

func (a testAPI) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
