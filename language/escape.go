package language

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// QuoteDouble returns s as a double-quoted literal using JSON escapes, which
// both Go and JavaScript accept.
func QuoteDouble(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return strconv.Quote(s)
	}
	return string(b)
}

// FormatNumber renders a finite float as a numeric literal. Whole values in
// the safe integer range print without fraction so they fit integer contexts.
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Replace substitutes the entry and package tokens in rendered code.
func Replace(code, entry, pkg string) string {
	return strings.NewReplacer(EntryToken, entry, PackageToken, pkg).Replace(code)
}

// CommentText flattens text to a single comment-safe line.
func CommentText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.ReplaceAll(text, "*/", "* /")
}

// Paren wraps e in parentheses unless it is a single operand: an identifier,
// a literal, a call or an index expression.
func Paren(e string) string {
	if isOperand(e) {
		return e
	}
	return "(" + e + ")"
}

func isOperand(e string) bool {
	if e == "" {
		return false
	}
	depth := 0
	var quote byte
	for i := 0; i < len(e); i++ {
		c := e[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ' ', '!', '&', '|', '<', '>', '=', '+', '-', '*', '/', '%', '?', ':':
			if depth == 0 {
				return false
			}
		}
	}
	return true
}
