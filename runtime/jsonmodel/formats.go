package jsonmodel

import (
	"encoding/json"
	"net/url"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is safe for concurrent use once built.
var validate = validator.New()

// IsValidDate checks "YYYY-MM-DD".
func IsValidDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

var timeLayouts = []string{
	"15:04:05Z07:00",
	"15:04:05.999999999Z07:00",
	time.TimeOnly,
	"15:04:05.999999999",
}

// IsValidTime checks "HH:MM:SS" with optional fraction and zone.
func IsValidTime(s string) bool {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// IsValidDateTime checks an RFC 3339 timestamp.
func IsValidDateTime(s string) bool {
	_, err := time.Parse(time.RFC3339Nano, s)
	return err == nil
}

// IsValidEmail checks for basic email structure.
func IsValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// IsValidURL checks for an absolute URL with a scheme and a host, so
// "mailto:a@b.c" is a URI but not a URL.
func IsValidURL(s string) bool {
	if validate.Var(s, "required,url") != nil {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

// IsValidURI checks for a URI (scheme required, host optional).
func IsValidURI(s string) bool {
	return validate.Var(s, "required,uri") == nil
}

// IsValidUUID checks for the canonical 8-4-4-4-12 hex form.
// uuid.Parse also accepts urn and braced forms, which are rejected here.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsValidRegex checks if the string is a valid regex pattern.
func IsValidRegex(s string) bool {
	_, err := regexp.Compile(s)
	return err == nil
}

// IsValidJSON checks that s holds one JSON text.
func IsValidJSON(s string) bool {
	return json.Valid([]byte(s))
}
