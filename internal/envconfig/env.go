// Package envconfig wraps environment lookups and struct-tag validation for
// the service configuration.
package envconfig

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Get returns the named environment variable, or fallback when it is unset or
// empty.
func Get(name string, fallback string) string {
	if value, ok := os.LookupEnv(name); ok && value != "" {
		return value
	}
	return fallback
}

// MustGet returns the named environment variable and panics when it is empty.
// Reserved for values the service cannot start without.
func MustGet(name string) string {
	value := os.Getenv(name)
	if value == "" {
		panic(fmt.Sprintf("expected env %s to be set", name))
	}
	return value
}

// Validate checks a configuration struct against its validator tags.
func Validate(v any) error {
	return validate.Struct(v)
}
