package validator

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const (
	tagNotBlank       = "notblank"
	tagPhone          = "phone"
	tagStrongPassword = "strongpassword"
	tagUsername       = "username"

	specialChars = `!@#$%^&*(),.?":{}|<>`
)

var (
	phoneRe    = regexp.MustCompile(`^\+?[0-9\-]{10,15}$`)
	usernameRe = regexp.MustCompile(`^[\w.@+-]+$`)
)

func registerRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		tagNotBlank: func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
		tagPhone: func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || IsPhone(s)
		},
		tagStrongPassword: func(fl validator.FieldLevel) bool {
			return IsStrongPassword(fl.Field().String())
		},
		tagUsername: func(fl validator.FieldLevel) bool {
			return usernameRe.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register validation %q: %w", tag, err)
		}
	}
	return nil
}

// IsPhone checks the accepted phone format.
func IsPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// NormalizePhone strips dashes, keeping a leading +.
func NormalizePhone(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "-", "")
}

// IsStrongPassword requires at least 8 characters with an upper, a lower,
// a digit and one of the special characters.
func IsStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specialChars, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
