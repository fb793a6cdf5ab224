package errors

import (
	"fmt"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

// Result is the structured outcome handed across public boundaries (HTTP,
// CLI, application services).  A terminal failure never escapes as a panic or
// bare error; it is converted into a Result carrying a status, a message and,
// where applicable, remediation suggestions.
type Result struct {
	Status      string    `json:"status"`
	Code        ErrorCode `json:"code,omitempty"`
	Message     string    `json:"message"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// Error lets a failed Result travel through error-returning code paths.
func (r *Result) Error() string {
	if r.Code != "" {
		return fmt.Sprintf("[%s] %s", r.Code, r.Message)
	}
	return r.Message
}

// OK reports whether the result is not an error.
func (r *Result) OK() bool {
	return r == nil || r.Status != StatusError
}

// Success builds a success Result.
func Success(message string) *Result {
	return &Result{Status: StatusSuccess, Message: message}
}

// Warning builds a non-fatal warning Result.
func Warning(code ErrorCode, message string, suggestions ...string) *Result {
	return &Result{Status: StatusWarning, Code: code, Message: message, Suggestions: suggestions}
}

// ToResult converts any error into an error Result.  AppError codes and
// suggestions are preserved; other errors become internal failures.
func ToResult(err error) *Result {
	if err == nil {
		return nil
	}
	var r *Result
	if As(err, &r) {
		return r
	}
	var ae *AppError
	if As(err, &ae) {
		return &Result{
			Status:      StatusError,
			Code:        ae.Code,
			Message:     ae.Message,
			Suggestions: ae.Suggestions,
		}
	}
	return &Result{Status: StatusError, Code: ErrCodeInternal, Message: err.Error()}
}

// Recover converts a panic inside a public entry point into an error Result
// stored at *out.  Use as `defer errors.Recover(&res)`.
func Recover(out **Result) {
	if rec := recover(); rec != nil {
		*out = &Result{
			Status:  StatusError,
			Code:    ErrCodeInternal,
			Message: fmt.Sprintf("unexpected failure: %v", rec),
		}
	}
}

//Personal.AI order the ending
