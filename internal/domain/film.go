// internal/domain/film.go
package domain

// MaxDescriptionLength максимальная длина описания фильма в символах.
const MaxDescriptionLength = 200

// Genre справочник жанров.
type Genre struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// MpaRating справочник возрастных рейтингов MPA.
type MpaRating struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Film основная доменная модель фильма.
// Пустые Description, ReleaseDate и Duration означают "не задано".
type Film struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ReleaseDate *Date      `json:"releaseDate"`
	Duration    *int       `json:"duration"`
	Mpa         *MpaRating `json:"mpa"`
	Genres      []Genre    `json:"genres"`
	Likes       []int64    `json:"likes"` // id пользователей по возрастанию
}

// GenreIDs возвращает id жанров без повторов, в порядке первого появления.
func (f *Film) GenreIDs() []int {
	seen := make(map[int]struct{}, len(f.Genres))
	ids := make([]int, 0, len(f.Genres))
	for _, g := range f.Genres {
		if _, ok := seen[g.ID]; ok {
			continue
		}
		seen[g.ID] = struct{}{}
		ids = append(ids, g.ID)
	}
	return ids
}
