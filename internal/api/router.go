// internal/api/router.go
package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps зависимости HTTP маршрутизатора.
type RouterDeps struct {
	Films    *FilmHandler
	Users    *UserHandler
	Health   *HealthHandler
	Metrics  *Metrics
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter создает и настраивает HTTP маршрутизатор.
func NewRouter(d RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestID, AccessLog(d.Logger), d.Metrics.Middleware, Recover(d.Logger))

	notFound := responder{logger: d.Logger}
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notFound.respondJSON(w, r, http.StatusNotFound, ErrorResponse{Title: titleNotFound, Detail: "no route for " + r.URL.Path})
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notFound.respondJSON(w, r, http.StatusMethodNotAllowed, ErrorResponse{Title: "Method not allowed", Detail: r.Method + " is not supported for " + r.URL.Path})
	})

	// Маршруты регистрируются прямо на router: у подроутеров mux свой 404/405.
	// /films/popular регистрируется раньше /films/{id}.
	router.HandleFunc("/films", d.Films.ListFilms).Methods(http.MethodGet)
	router.HandleFunc("/films", d.Films.CreateFilm).Methods(http.MethodPost)
	router.HandleFunc("/films", d.Films.UpdateFilm).Methods(http.MethodPut)
	router.HandleFunc("/films/popular", d.Films.PopularFilms).Methods(http.MethodGet)
	router.HandleFunc("/films/{id}", d.Films.GetFilm).Methods(http.MethodGet)
	router.HandleFunc("/films/{id}", d.Films.DeleteFilm).Methods(http.MethodDelete)
	router.HandleFunc("/films/{id}/like/{userId}", d.Films.AddLike).Methods(http.MethodPut)
	router.HandleFunc("/films/{id}/like/{userId}", d.Films.RemoveLike).Methods(http.MethodDelete)

	router.HandleFunc("/genres", d.Films.ListGenres).Methods(http.MethodGet)
	router.HandleFunc("/genres/{id}", d.Films.GetGenre).Methods(http.MethodGet)
	router.HandleFunc("/mpa", d.Films.ListMpa).Methods(http.MethodGet)
	router.HandleFunc("/mpa/{id}", d.Films.GetMpa).Methods(http.MethodGet)

	router.HandleFunc("/users", d.Users.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/users", d.Users.CreateUser).Methods(http.MethodPost)
	router.HandleFunc("/users", d.Users.UpdateUser).Methods(http.MethodPut)
	router.HandleFunc("/users/{id}", d.Users.GetUser).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}", d.Users.DeleteUser).Methods(http.MethodDelete)
	router.HandleFunc("/users/{id}/friends", d.Users.ListFriends).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/friends/requests", d.Users.FriendRequests).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/friends/common/{otherId}", d.Users.CommonFriends).Methods(http.MethodGet)
	router.HandleFunc("/users/{id}/friends/{friendId}", d.Users.AddFriend).Methods(http.MethodPut)
	router.HandleFunc("/users/{id}/friends/{friendId}", d.Users.RemoveFriend).Methods(http.MethodDelete)

	router.HandleFunc("/healthz", d.Health.Healthz).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return router
}

// GatewayOptions внешние обертки HTTP сервера.
type GatewayOptions struct {
	CORSAllowedOrigins []string
	CORSMaxAge         int
	RateLimitRPS       int
	RateLimitBurst     int
}

// recoveryLogger адаптер slog для handlers.RecoveryHandler.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(args ...interface{}) {
	l.logger.Error("Panic recovered in HTTP handler", slog.String("panic", fmt.Sprint(args...)))
}

// NewHTTPHandler оборачивает маршрутизатор: recovery -> CORS -> rate limit.
// Паники обработчиков ловит Recover внутри router; handlers.RecoveryHandler страхует остальное.
func NewHTTPHandler(router http.Handler, opts GatewayOptions, logger *slog.Logger) http.Handler {
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
		handlers.MaxAge(opts.CORSMaxAge),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(false),
	)

	h := RateLimit(opts.RateLimitRPS, opts.RateLimitBurst, logger)(router)
	return recovery(cors(h))
}
