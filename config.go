package jsonmodel

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/broady/jsonmodel/compiler"
	"github.com/broady/jsonmodel/model"
)

// Config holds the settings of one generation.
type Config struct {
	// Language is the registered backend name, "go" by default.
	Language string `validate:"required"`

	// Name is the entry function of the generated code.
	Name string `validate:"required,identifier"`

	// Package names the generated package or module. Go output without a
	// package is a main package.
	Package string `validate:"omitempty,identifier"`

	// Main adds a command line driver.
	Main bool

	// Dispatch is "auto", "table" or "chain".
	Dispatch string `validate:"oneof=auto table chain"`

	// MinTableSize is the smallest key count dispatched through a table in
	// auto mode. Zero keeps the default.
	MinTableSize int `validate:"gte=0"`

	// Options are backend "key=value" settings such as "with_path=false".
	Options []string `validate:"dive,required"`

	// OutFile is the destination of ToFile.
	OutFile string

	Logger *slog.Logger `validate:"-"`
}

// applyConfigDefaults returns a copy of cfg with defaults filled in.
func applyConfigDefaults(cfg *Config) *Config {
	result := *cfg
	if result.Language == "" {
		result.Language = "go"
	}
	if result.Name == "" {
		result.Name = compiler.DefaultName
	}
	if result.Dispatch == "" {
		result.Dispatch = "auto"
	}
	return &result
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Entry and package names must be identifiers in every backend.
	err := v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for i, r := range s {
			switch {
			case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case i > 0 && r >= '0' && r <= '9':
			default:
				return false
			}
		}
		return s != ""
	})
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the configuration. Failures are model.CodeUnsupportedConfig
// errors listing every offending field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return model.Errorf(model.CodeUnsupportedConfig, "%v", err)
	}
	msgs := make([]string, len(errs))
	for i, fe := range errs {
		msgs[i] = fe.Field() + ": " + describeFieldError(fe)
	}
	return model.Errorf(model.CodeUnsupportedConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "identifier":
		return fmt.Sprintf("%q is not an identifier", fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}
