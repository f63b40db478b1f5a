package schedule

import (
	"errors"
	"fmt"
)

// ErrNoTokens is returned by ParseRule when neither a date nor a time token is set.
var ErrNoTokens = errors.New("no schedule tokens")

// ParseError reports a stored token that does not match the format its recurring kind expects.
type ParseError struct {
	Field  string // "date" or "time"
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s token %q: %s", e.Field, e.Token, e.Reason)
}

func dateError(token, format string, args ...any) *ParseError {
	return &ParseError{Field: "date", Token: token, Reason: fmt.Sprintf(format, args...)}
}

func timeError(token, format string, args ...any) *ParseError {
	return &ParseError{Field: "time", Token: token, Reason: fmt.Sprintf(format, args...)}
}
