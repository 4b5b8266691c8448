package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// envHints points operators at the variables the original tooling used.
var envHints = map[string]string{ //nolint:gochecknoglobals // static lookup
	"supabase_url":      "SUPABASE_URL",
	"supabase_anon_key": "SUPABASE_ANON_KEY",
	"database_url":      "HOURLYPROBE_DATABASE_URL",
}

var credentialKeys = map[string]bool{ //nolint:gochecknoglobals // static lookup
	"supabase_url":      true,
	"supabase_anon_key": true,
}

func newValidator() *validator.Validate {
	v := validator.New()
	// report koanf keys instead of Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("koanf"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every key and joins all problems into one error.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	missing := false
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
		if fe.Tag() == "required" && credentialKeys[fe.Field()] {
			missing = true
		}
	}
	if missing {
		return fmt.Errorf("%w: %w: %s", ErrInvalidConfig, ErrMissingCredentials, strings.Join(msgs, "; "))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	key := fe.Field()
	switch fe.Tag() {
	case "required", "required_if":
		if env, ok := envHints[key]; ok {
			return fmt.Sprintf("%s is required (set %s)", key, env)
		}
		return key + " is required"
	case "url":
		return fmt.Sprintf("%s must be a valid URL, got %q", key, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "gt", "gte":
		return fmt.Sprintf("%s must be %s %s", key, fe.Tag(), fe.Param())
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s, got %q", key, fe.Tag(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}
