package language

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
)

// Options configures a backend.
type Options struct {
	// WithPath embeds path tracking in generated code.
	WithPath bool `schema:"with_path"`

	// WithReport embeds diagnostic reporting in generated code.
	WithReport bool `schema:"with_report"`

	// WithPredef enforces predefined formats; when false they degrade to a
	// string type test.
	WithPredef bool `schema:"with_predef"`

	// WithPackage wraps the output in a named package or module.
	WithPackage bool `schema:"with_package"`

	// Relib is the regex engine generated code relies on.
	// Empty selects the backend default.
	Relib string `schema:"relib"`

	// Debug adds schema documentation and locations as comments.
	Debug bool `schema:"debug"`
}

// DefaultOptions enables paths, reports, formats and packaging.
func DefaultOptions() Options {
	return Options{
		WithPath:    true,
		WithReport:  true,
		WithPredef:  true,
		WithPackage: true,
	}
}

var optionDecoder = schema.NewDecoder()

// ParseOptions decodes "key=value" pairs over base. Unknown keys are errors.
func ParseOptions(pairs []string, base Options) (Options, error) {
	values := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			// A bare key switches a flag on.
			value = "true"
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return base, fmt.Errorf("invalid option %q", pair)
		}
		values.Set(key, strings.TrimSpace(value))
	}
	opts := base
	if err := optionDecoder.Decode(&opts, values); err != nil {
		return base, fmt.Errorf("decode options: %w", err)
	}
	return opts, nil
}
