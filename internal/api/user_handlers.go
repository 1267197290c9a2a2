// internal/api/user_handlers.go
package api

import (
	"context"
	"log/slog"
	"net/http"

	"filmorate/internal/domain"
)

// UserService операции над пользователями, которые нужны HTTP слою.
type UserService interface {
	FindAll(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	Update(ctx context.Context, user domain.User) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	AddFriend(ctx context.Context, userID, friendID int64) (domain.FriendshipStatus, error)
	RemoveFriend(ctx context.Context, userID, friendID int64) error
	ListFriends(ctx context.Context, userID int64) ([]domain.User, error)
	CommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error)
	ListFriendRequests(ctx context.Context, userID int64) ([]domain.User, error)
}

// UserHandler содержит зависимости для HTTP обработчиков пользователей.
type UserHandler struct {
	responder
	service UserService
}

func NewUserHandler(s UserService, l *slog.Logger) *UserHandler {
	return &UserHandler{responder: responder{logger: l}, service: s}
}

// FriendshipResponse ответ на PUT /users/{id}/friends/{friendId}.
type FriendshipResponse struct {
	UserID   int64                   `json:"userId"`
	FriendID int64                   `json:"friendId"`
	Status   domain.FriendshipStatus `json:"status"`
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.FindAll(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	user, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP CreateUser request received", slog.String("path", r.URL.Path))

	var req domain.User
	if !h.decodeJSON(w, r, &req) {
		return
	}
	user, err := h.service.Create(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.InfoContext(ctx, "HTTP UpdateUser request received", slog.String("path", r.URL.Path))

	var req domain.User
	if !h.decodeJSON(w, r, &req) {
		return
	}
	user, err := h.service.Update(ctx, req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
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

func (h *UserHandler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	friendID, ok := h.pathInt64(w, r, "friendId")
	if !ok {
		return
	}
	status, err := h.service.AddFriend(r.Context(), userID, friendID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, FriendshipResponse{UserID: userID, FriendID: friendID, Status: status})
}

func (h *UserHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	friendID, ok := h.pathInt64(w, r, "friendId")
	if !ok {
		return
	}
	if err := h.service.RemoveFriend(r.Context(), userID, friendID); err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, nil)
}

func (h *UserHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	friends, err := h.service.ListFriends(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, friends)
}

func (h *UserHandler) CommonFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	otherID, ok := h.pathInt64(w, r, "otherId")
	if !ok {
		return
	}
	common, err := h.service.CommonFriends(r.Context(), userID, otherID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, common)
}

func (h *UserHandler) FriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathInt64(w, r, "id")
	if !ok {
		return
	}
	requests, err := h.service.ListFriendRequests(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondJSON(w, r, http.StatusOK, requests)
}
