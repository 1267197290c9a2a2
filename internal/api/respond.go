// internal/api/respond.go
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"filmorate/internal/domain"

	"github.com/gorilla/mux"
)

// ErrorResponse тело ответа при любой ошибке.
type ErrorResponse struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

const (
	titleValidation = "Validation error"
	titleNotFound   = "Not found"
	titleBadRequest = "Bad request"
	titleInternal   = "Internal server error"

	detailInternal = "An unexpected error occurred"
)

// responder общие helpers для всех обработчиков.
type responder struct {
	logger *slog.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h responder) respondBadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	h.respondJSON(w, r, http.StatusBadRequest, ErrorResponse{Title: titleBadRequest, Detail: detail})
}

// respondError выбирает статус по domain.Kind. Детали непредвиденных ошибок
// остаются в логах и не уходят клиенту.
func (h responder) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Kind {
		case domain.KindValidation:
			h.respondJSON(w, r, http.StatusBadRequest, ErrorResponse{Title: titleValidation, Detail: domainErr.Message})
			return
		case domain.KindNotFound:
			h.respondJSON(w, r, http.StatusNotFound, ErrorResponse{Title: titleNotFound, Detail: domainErr.Message})
			return
		}
	}
	h.logger.ErrorContext(r.Context(), "Unexpected error while handling request",
		slog.String("method", r.Method), slog.String("path", r.URL.Path),
		slog.String("requestID", RequestIDFromContext(r.Context())), slog.String("error", err.Error()))
	h.respondJSON(w, r, http.StatusInternalServerError, ErrorResponse{Title: titleInternal, Detail: detailInternal})
}

// decodeJSON разбирает тело запроса; ошибка означает 400.
func (h responder) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.String("error", err.Error()))
		h.respondBadRequest(w, r, "Invalid request payload")
		return false
	}
	return true
}

// pathInt64 читает числовой параметр пути; при ошибке отвечает 400.
func (h responder) pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.respondBadRequest(w, r, fmt.Sprintf("path parameter %q must be an integer, got %q", name, raw))
		return 0, false
	}
	return id, true
}

func (h responder) pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.Atoi(raw)
	if err != nil {
		h.respondBadRequest(w, r, fmt.Sprintf("path parameter %q must be an integer, got %q", name, raw))
		return 0, false
	}
	return id, true
}
