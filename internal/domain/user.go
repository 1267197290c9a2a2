// internal/domain/user.go
package domain

// FriendshipStatus статус направленной связи user -> friend.
type FriendshipStatus string

const (
	FriendshipUnconfirmed FriendshipStatus = "UNCONFIRMED"
	FriendshipConfirmed   FriendshipStatus = "CONFIRMED"
)

// User представляет основную доменную модель пользователя.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Email    string `json:"email" db:"email"`
	Login    string `json:"login" db:"login"`
	Name     string `json:"name" db:"name"`
	Birthday *Date  `json:"birthday" db:"birthday"`
}
