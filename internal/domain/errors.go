// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

// Kind категория ошибки, по которой API выбирает HTTP статус.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unexpected"
	}
}

// Error ошибка бизнес-логики с сообщением для клиента.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation создает ошибку валидации.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound создает ошибку "объект не найден".
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// KindOf возвращает категорию ошибки; всё, что не *Error, считается непредвиденным.
func KindOf(err error) Kind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindUnexpected
}
