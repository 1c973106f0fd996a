package model

import "strings"

// Format is a predefined string format.
type Format string

const (
	FormatUUID     Format = "UUID"
	FormatDate     Format = "DATE"
	FormatTime     Format = "TIME"
	FormatDateTime Format = "DATETIME"
	FormatRegex    Format = "REGEX"
	FormatURL      Format = "URL"
	FormatURI      Format = "URI"
	FormatEmail    Format = "EMAIL"
	FormatJSON     Format = "JSON"
)

// Formats lists every predefined format.
var Formats = []Format{
	FormatUUID, FormatDate, FormatTime, FormatDateTime, FormatRegex,
	FormatURL, FormatURI, FormatEmail, FormatJSON,
}

// aliases maps JSON Schema format names onto predefined formats.
var aliases = map[string]Format{
	"uuid":      FormatUUID,
	"date":      FormatDate,
	"time":      FormatTime,
	"date-time": FormatDateTime,
	"datetime":  FormatDateTime,
	"regex":     FormatRegex,
	"url":       FormatURL,
	"uri":       FormatURI,
	"email":     FormatEmail,
	"json":      FormatJSON,
}

// ParseFormat accepts "$UUID", "UUID" and JSON Schema names such as "date-time".
func ParseFormat(s string) (Format, bool) {
	name := strings.TrimPrefix(s, "$")
	if f := Format(name); f.Valid() {
		return f, true
	}
	f, ok := aliases[strings.ToLower(name)]
	return f, ok
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

// String returns the "$NAME" spelling used in diagnostics.
func (f Format) String() string {
	return "$" + string(f)
}
