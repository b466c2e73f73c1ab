package entity

import (
	"errors"
	"fmt"
)

// Code classifies an error for status mapping at the service boundary.
type Code string

const (
	CodeConfig     Code = "CONFIG_ERROR"
	CodeData       Code = "DATA_ERROR"
	CodeInfeasible Code = "INFEASIBLE"
	CodeBudget     Code = "BUDGET_EXCEEDED"
)

// Error carries a classification code alongside the message so callers
// can map failures onto run statuses without string matching.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code, so sentinel comparisons
// via errors.Is work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// NewError builds a classified error with a formatted message.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a classification to an underlying error.
func WrapError(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Sentinels for errors.Is checks. Matching is by code only.
var (
	ErrConfig     = &Error{Code: CodeConfig, Message: "configuration error"}
	ErrData       = &Error{Code: CodeData, Message: "data error"}
	ErrInfeasible = &Error{Code: CodeInfeasible, Message: "no feasible timetable"}
	ErrBudget     = &Error{Code: CodeBudget, Message: "time budget exceeded"}
)
