package store

import (
	"errors"
	"fmt"
)

// Rule violation kinds. Match with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")
)

// RuleError is a domain rule violation with a message safe to show to clients.
type RuleError struct {
	Kind error
	Msg  string
}

func (e *RuleError) Error() string { return e.Msg }

func (e *RuleError) Unwrap() error { return e.Kind }

func notFound(format string, args ...any) error {
	return &RuleError{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func conflict(format string, args ...any) error {
	return &RuleError{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error {
	return &RuleError{Kind: ErrInvalid, Msg: fmt.Sprintf(format, args...)}
}
