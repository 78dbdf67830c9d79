package parser

import (
	"fmt"
	"unicode/utf8"

	"github.com/pkg/errors"
)

var (
	ErrMalformed    = errors.New("malformed json")
	ErrMissingField = errors.New("missing field")
	ErrNotArray     = errors.New("not an array")
	ErrArity        = errors.New("level must have exactly 2 elements")
	ErrNotString    = errors.New("not a string")
	ErrNotNumber    = errors.New("not a decimal number")
	ErrInvalidLevel = errors.New("price must be positive and quantity non-negative")
)

const maxValueLen = 64

// ParseError reports the offending JSON path and value of a rejected payload.
type ParseError struct {
	// Field JSON path, e.g. "bids[1][0]"; "$" means the whole document.
	Field string
	// Value offending raw value, truncated.
	Value string
	Err   error
}

func newParseError(field string, value []byte, err error) *ParseError {
	v := string(value)
	if len(v) > maxValueLen {
		v = truncate(v, maxValueLen) + "..."
	}
	return &ParseError{Field: field, Value: v, Err: err}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v (value %q)", e.Field, e.Err, e.Value)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
