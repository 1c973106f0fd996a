// Package jsonmodel is the runtime support library imported by Go validators
// generated by jmc.
//
// Generated checkers receive decoded JSON values as produced by encoding/json:
// nil, bool, float64 or json.Number, string, []any and map[string]any. Native Go
// integers are accepted as well so hand-built values can be checked.
//
// Every function in this package is pure. A Path is immutable once built and a
// nil Path or Report disables path tracking or reporting, so the same checker can
// run concurrently on independent values without locking.
package jsonmodel
