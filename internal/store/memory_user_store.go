// internal/store/memory_user_store.go
package store

import (
	"context"
	"log/slog"
	"sort"

	"filmorate/internal/domain"
)

// MemoryUserStore реализует UserStore поверх карт в памяти.
type MemoryUserStore struct {
	db *memoryDB
}

var _ UserStore = (*MemoryUserStore)(nil)

func cloneUser(u domain.User) domain.User {
	u.Birthday = cloneDate(u.Birthday)
	return u
}

// usersByIDs возвращает копии пользователей по возрастанию id. Вызывать под блокировкой.
func (m *MemoryUserStore) usersByIDs(ids map[int64]struct{}) []domain.User {
	users := make([]domain.User, 0, len(ids))
	for _, id := range sortedIDs(ids) {
		if u, ok := m.db.users[id]; ok {
			users = append(users, cloneUser(u))
		}
	}
	return users
}

// confirmedFriends множество подтвержденных друзей. Вызывать под блокировкой.
func (m *MemoryUserStore) confirmedFriends(userID int64) map[int64]struct{} {
	friends := make(map[int64]struct{})
	for friendID, status := range m.db.friendships[userID] {
		if status == domain.FriendshipConfirmed {
			friends[friendID] = struct{}{}
		}
	}
	return friends
}

func (m *MemoryUserStore) setEdge(userID, friendID int64, status domain.FriendshipStatus) {
	if m.db.friendships[userID] == nil {
		m.db.friendships[userID] = make(map[int64]domain.FriendshipStatus)
	}
	m.db.friendships[userID][friendID] = status
}

func (m *MemoryUserStore) FindAll(ctx context.Context) ([]domain.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	users := make([]domain.User, 0, len(m.db.users))
	for _, u := range m.db.users {
		users = append(users, cloneUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryUserStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	u, ok := m.db.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := cloneUser(u)
	return &found, nil
}

func (m *MemoryUserStore) Add(ctx context.Context, user domain.User) (*domain.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	m.db.nextUserID++
	user.ID = m.db.nextUserID
	m.db.users[user.ID] = cloneUser(user)
	m.db.logger.DebugContext(ctx, "User added to memory store", slog.Int64("userID", user.ID))

	created := cloneUser(user)
	return &created, nil
}

func (m *MemoryUserStore) Update(ctx context.Context, user domain.User) (*domain.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[user.ID]; !ok {
		return nil, ErrUserNotFound
	}
	m.db.users[user.ID] = cloneUser(user)

	updated := cloneUser(user)
	return &updated, nil
}

func (m *MemoryUserStore) DeleteByID(ctx context.Context, id int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.db.users, id)
	delete(m.db.friendships, id)
	for _, edges := range m.db.friendships {
		delete(edges, id)
	}
	for _, likes := range m.db.likes {
		delete(likes, id)
	}
	return nil
}

func (m *MemoryUserStore) ExistsByID(ctx context.Context, id int64) (bool, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	_, ok := m.db.users[id]
	return ok, nil
}

func (m *MemoryUserStore) AddFriend(ctx context.Context, userID, friendID int64) (domain.FriendshipStatus, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.users[userID]; !ok {
		return "", ErrUserNotFound
	}
	if _, ok := m.db.users[friendID]; !ok {
		return "", ErrUserNotFound
	}

	// Встречная связь есть: заявка подтверждается с обеих сторон.
	if _, ok := m.db.friendships[friendID][userID]; ok {
		m.setEdge(userID, friendID, domain.FriendshipConfirmed)
		m.setEdge(friendID, userID, domain.FriendshipConfirmed)
		return domain.FriendshipConfirmed, nil
	}
	if status, ok := m.db.friendships[userID][friendID]; ok {
		return status, nil
	}
	m.setEdge(userID, friendID, domain.FriendshipUnconfirmed)
	return domain.FriendshipUnconfirmed, nil
}

func (m *MemoryUserStore) RemoveFriend(ctx context.Context, userID, friendID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if edges, ok := m.db.friendships[userID]; ok {
		delete(edges, friendID)
	}
	return nil
}

func (m *MemoryUserStore) FindFriends(ctx context.Context, userID int64) ([]domain.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	return m.usersByIDs(m.confirmedFriends(userID)), nil
}

func (m *MemoryUserStore) FindCommonFriends(ctx context.Context, userID, otherID int64) ([]domain.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	mine := m.confirmedFriends(userID)
	theirs := m.confirmedFriends(otherID)
	common := make(map[int64]struct{})
	for id := range mine {
		if _, ok := theirs[id]; ok {
			common[id] = struct{}{}
		}
	}
	return m.usersByIDs(common), nil
}

func (m *MemoryUserStore) FindFriendRequests(ctx context.Context, userID int64) ([]domain.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	requesters := make(map[int64]struct{})
	for fromID, edges := range m.db.friendships {
		if edges[userID] == domain.FriendshipUnconfirmed {
			requesters[fromID] = struct{}{}
		}
	}
	return m.usersByIDs(requesters), nil
}

func (m *MemoryUserStore) Ping(ctx context.Context) error {
	return nil
}
