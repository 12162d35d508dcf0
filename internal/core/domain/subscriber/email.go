package subscriber

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the package-level singleton validator, initialised once.
var validate = validator.New()

// Email is a syntactically valid email address. The zero value is never
// produced by ParseEmail; constructing one directly bypasses validation.
type Email string

// ParseEmail checks raw against a standard email-address grammar.
func ParseEmail(raw string) (Email, error) {
	if raw == "" {
		return "", fmt.Errorf("subscriber email is empty")
	}
	if err := validate.Var(raw, "email"); err != nil {
		return "", fmt.Errorf("%q is not a valid subscriber email", raw)
	}
	return Email(raw), nil
}

func (e Email) String() string {
	return string(e)
}
