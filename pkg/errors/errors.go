// Package errors carries structured failures through every layer. An
// AppError holds a code, a message and optional remediation hints; at a
// public boundary it becomes a Result.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the structured error returned by domain, application and
// infrastructure code. It works with errors.Is, errors.As and errors.Unwrap.
//
//	return errors.New(errors.ErrCodeNoOverlap, "no overlapping locations")
//	return errors.Wrap(err, errors.ErrCodeProviderError, "grid request failed")
type AppError struct {
	Code    ErrorCode
	Message string
	// Detail is extra context such as the accepted values of a field.
	Detail      string
	Suggestions []string
	Cause       error
}

// Error formats as "[CODE] message" or "[CODE] message: detail".
func (e *AppError) Error() string {
	if e.Detail == "" {
		return "[" + string(e.Code) + "] " + e.Message
	}
	return "[" + string(e.Code) + "] " + e.Message + ": " + e.Detail
}

func (e *AppError) Unwrap() error { return e.Cause }

// with copies e and applies fn to the copy. A nil receiver stays nil so that
// sentinel chains like ErrX.WithCause(err) are safe.
func (e *AppError) with(fn func(*AppError)) *AppError {
	if e == nil {
		return nil
	}
	c := *e
	fn(&c)
	return &c
}

func (e *AppError) WithDetail(detail string) *AppError {
	return e.with(func(c *AppError) { c.Detail = detail })
}

func (e *AppError) WithCause(err error) *AppError {
	return e.with(func(c *AppError) { c.Cause = err })
}

// WithSuggestions replaces the remediation hints shown to the user.
func (e *AppError) WithSuggestions(suggestions ...string) *AppError {
	return e.with(func(c *AppError) { c.Suggestions = append([]string(nil), suggestions...) })
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns nil for a nil err. When err already carries an AppError its
// suggestions are kept, and so is its code if code is CodeUnknown.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	out := &AppError{Code: code, Message: message, Cause: err}
	var inner *AppError
	if errors.As(err, &inner) {
		if code == CodeUnknown {
			out.Code = inner.Code
		}
		out.Suggestions = inner.Suggestions
	}
	return out
}

// IsCode reports whether any AppError in err's chain has code. Unlike
// errors.As it does not stop at the first AppError.
func IsCode(err error, code ErrorCode) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if ae, ok := err.(*AppError); ok && ae.Code == code {
			return true
		}
	}
	return false
}

// validationCodes are failures caused by caller input. They are never
// retried.
var validationCodes = []ErrorCode{
	ErrCodeBadRequest,
	ErrCodeValidation,
	ErrCodeInvalidDemographic,
	ErrCodeInvalidLocation,
	ErrCodeInvalidPoliticalBase,
	ErrCodeInvalidCriteria,
}

func IsValidation(err error) bool {
	for _, c := range validationCodes {
		if IsCode(err, c) {
			return true
		}
	}
	return false
}

// GetCode returns the code of the outermost AppError, CodeOK for nil and
// CodeUnknown for an error without one.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Is and As save callers a second errors import.
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

//Personal.AI order the ending
