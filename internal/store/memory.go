// internal/store/memory.go
package store

import (
	"log/slog"
	"sort"
	"sync"

	"filmorate/internal/domain"
)

// memoryDB общее состояние in-memory хранилищ.
// Фильмы и пользователи живут под одним мьютексом, чтобы удаление пользователя
// убирало его лайки так же, как каскад в PostgreSQL.
type memoryDB struct {
	mu sync.RWMutex

	films      map[int64]filmRecord
	likes      map[int64]map[int64]struct{} // film -> users
	nextFilmID int64

	users       map[int64]domain.User
	friendships map[int64]map[int64]domain.FriendshipStatus // user -> friend -> status
	nextUserID  int64

	genres map[int]string
	mpa    map[int]string

	logger *slog.Logger
}

// filmRecord фильм в том виде, в каком он лежит в "таблице".
type filmRecord struct {
	ID          int64
	Name        string
	Description string
	ReleaseDate *domain.Date
	Duration    *int
	MpaID       int
	GenreIDs    []int // по возрастанию
}

// NewMemoryStores создает пару связанных in-memory хранилищ со справочниками.
func NewMemoryStores(logger *slog.Logger) (*MemoryFilmStore, *MemoryUserStore) {
	db := &memoryDB{
		films:       make(map[int64]filmRecord),
		likes:       make(map[int64]map[int64]struct{}),
		users:       make(map[int64]domain.User),
		friendships: make(map[int64]map[int64]domain.FriendshipStatus),
		genres:      make(map[int]string, len(seedGenres)),
		mpa:         make(map[int]string, len(seedMpa)),
		logger:      logger,
	}
	for _, g := range seedGenres {
		db.genres[g.ID] = g.Name
	}
	for _, m := range seedMpa {
		db.mpa[m.ID] = m.Name
	}
	return &MemoryFilmStore{db: db}, &MemoryUserStore{db: db}
}

func cloneDate(d *domain.Date) *domain.Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
