// internal/service/validation.go
package service

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Теги правил, зарегистрированные в NewValidator.
const (
	tagNotBlank    = "notblank"
	tagNoSpace     = "nospace"
	tagCinemaEpoch = "cinema_epoch"
	tagNotFuture   = "notfuture"
)

// CinemaEpoch дата первого публичного киносеанса; раньше фильмов не бывает.
var CinemaEpoch = time.Date(1895, time.December, 28, 0, 0, 0, 0, time.UTC)

// NewValidator создает validator с правилами каталога.
// now задает "сегодня" для проверки дат рождения; nil означает time.Now.
func NewValidator(now func() time.Time) (*validator.Validate, error) {
	if now == nil {
		now = time.Now
	}
	v := validator.New(validator.WithRequiredStructEnabled())

	rules := map[string]validator.Func{
		tagNotBlank: validators.NotBlank,
		tagNoSpace: func(fl validator.FieldLevel) bool {
			return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
		},
		tagCinemaEpoch: func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			return ok && !t.Before(CinemaEpoch)
		},
		tagNotFuture: func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			if !ok {
				return false
			}
			y, m, d := now().Date()
			today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
			return !t.After(today)
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	return v, nil
}
