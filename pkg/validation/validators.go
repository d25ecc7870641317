package validation

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("not_blank", NotBlank)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("future_time", FutureTime)
}

// NotBlank rejects strings that are empty after trimming whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// NoEmoji rejects supplementary-plane runes and symbol categories.
func NoEmoji(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// FutureTime accepts a time.Time strictly after now. Zero values pass so the
// tag can be combined with omitempty semantics.
func FutureTime(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	if t.IsZero() {
		return true
	}
	return t.After(time.Now())
}
