// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"filmorate/internal/domain"
	"filmorate/internal/store"

	"github.com/go-playground/validator/v10"
)

// UserService бизнес-логика пользователей и дружбы.
type UserService struct {
	users    store.UserStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewUserService создает новый экземпляр UserService.
func NewUserService(users store.UserStore, validate *validator.Validate, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		validate: validate,
		logger:   logger,
	}
}

func (s *UserService) failure(ctx context.Context, op string, err error) error {
	if notFound := notFoundFromStore(err); notFound != nil {
		return notFound
	}
	s.logger.ErrorContext(ctx, "User store operation failed", slog.String("op", op), slog.String("error", err.Error()))
	return fmt.Errorf("%s: %w", op, err)
}

// validateUser проверяет email, логин и дату рождения; пустое имя заменяется логином.
func (s *UserService) validateUser(user *domain.User) error {
	if s.validate.Var(user.Email, tagNotBlank+",contains=@") != nil {
		return domain.Validation("user email must not be blank and must contain '@'")
	}
	if s.validate.Var(user.Login, tagNotBlank+","+tagNoSpace) != nil {
		return domain.Validation("user login must not be blank or contain spaces")
	}
	if user.Birthday != nil && s.validate.Var(user.Birthday.Time(), tagNotFuture) != nil {
		return domain.Validation("user birthday must not be in the future")
	}
	if s.validate.Var(user.Name, tagNotBlank) != nil {
		user.Name = user.Login
	}
	return nil
}

func (s *UserService) ensureUser(ctx context.Context, id int64) error {
	exists, err := s.users.ExistsByID(ctx, id)
	if err != nil {
		return s.failure(ctx, "check user", err)
	}
	if !exists {
		return domain.NotFound("user with id %d not found", id)
	}
	return nil
}

func (s *UserService) FindAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, s.failure(ctx, "list users", err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domain.NotFound("user with id %d not found", id)
		}
		return nil, s.failure(ctx, "get user", err)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, user domain.User) (*domain.User, error) {
	if err := s.validateUser(&user); err != nil {
		s.logger.WarnContext(ctx, "User validation failed", slog.String("error", err.Error()))
		return nil, err
	}
	user.ID = 0
	created, err := s.users.Add(ctx, user)
	if err != nil {
		return nil, s.failure(ctx, "create user", err)
	}
	s.logger.InfoContext(ctx, "User created", slog.Int64("userID", created.ID), slog.String("login", created.Login))
	return created, nil
}

func (s *UserService) Update(ctx context.Context, user domain.User) (*domain.User, error) {
	if user.ID == 0 {
		return nil, domain.NotFound("user id must be set")
	}
	if err := s.ensureUser(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := s.validateUser(&user); err != nil {
		s.logger.WarnContext(ctx, "User validation failed", slog.Int64("userID", user.ID), slog.String("error", err.Error()))
		return nil, err
	}
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, s.failure(ctx, "update user", err)
	}
	s.logger.InfoContext(ctx, "User updated", slog.Int64("userID", updated.ID))
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return domain.NotFound("user with id %d not found", id)
		}
		return s.failure(ctx, "delete user", err)
	}
	s.logger.InfoContext(ctx, "User deleted", slog.Int64("userID", id))
	return nil
}

// AddFriend отправляет заявку или подтверждает встречную.
func (s *UserService) AddFriend(ctx context.Context, userID, friendID int64) (domain.FriendshipStatus, error) {
	if userID == friendID {
		return "", domain.Validation("user cannot add themselves as a friend")
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return "", err
	}
	if err := s.ensureUser(ctx, friendID); err != nil {
		return "", err
	}
	status, err := s.users.AddFriend(ctx, userID, friendID)
	if err != nil {
		return "", s.failure(ctx, "add friend", err)
	}
	s.logger.InfoContext(ctx, "Friend added",
		slog.Int64("userID", userID), slog.Int64("friendID", friendID), slog.String("status", string(status)))
	return status, nil
}

func (s *UserService) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	if err := s.ensureUser(ctx, userID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, friendID); err != nil {
		return err
	}
	if err := s.users.RemoveFriend(ctx, userID, friendID); err != nil {
		return s.failure(ctx, "remove friend", err)
	}
	s.logger.InfoContext(ctx, "Friend removed", slog.Int64("userID", userID), slog.Int64("friendID", friendID))
	return nil
}

// ListFriends возвращает подтвержденных друзей.
func (s *UserService) ListFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	friends, err := s.users.FindFriends(ctx, userID)
	if err != nil {
		return nil, s.failure(ctx, "list friends", err)
	}
	return friends, nil
}

func (s *UserService) CommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.ensureUser(ctx, otherID); err != nil {
		return nil, err
	}
	common, err := s.users.FindCommonFriends(ctx, userID, otherID)
	if err != nil {
		return nil, s.failure(ctx, "list common friends", err)
	}
	return common, nil
}

// ListFriendRequests возвращает пользователей, ждущих подтверждения от userID.
func (s *UserService) ListFriendRequests(ctx context.Context, userID int64) ([]domain.User, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.users.FindFriendRequests(ctx, userID)
	if err != nil {
		return nil, s.failure(ctx, "list friend requests", err)
	}
	return requests, nil
}
