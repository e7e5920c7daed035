// Package errors attaches stable codes to errors crossing the service
// boundary. The API maps codes to HTTP statuses and the CLI prints them.
package errors

import (
	"errors"
	"fmt"

	"gocorda/domain/core"
)

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyBuilt  = "ALREADY_BUILT"
	CodeDatabaseError = "DATABASE_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError carries a code and an optional message in front of its cause
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return e.Cause.Error()
	default:
		return e.Message + ": " + e.Cause.Error()
	}
}

func (e *AppError) Unwrap() error { return e.Cause }

func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap prefixes err with message and keeps the code GetCode reports for err
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: GetCode(err), Message: message, Cause: err}
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode overrides the code of err without changing its text
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Cause: err}
}

// GetCode returns the code of the outermost AppError in err. Errors without
// one are classified by the domain sentinels they wrap.
func GetCode(err error) string {
	var appErr *AppError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &appErr):
		return appErr.Code
	case core.IsNotFoundError(err):
		return CodeNotFound
	case core.IsValidationError(err):
		return CodeInvalidInput
	default:
		return CodeInternalError
	}
}

func HasCode(err error, code string) bool {
	return err != nil && GetCode(err) == code
}

func InvalidInput(message string) *AppError { return New(CodeInvalidInput, message) }

func ConfigInvalid(message string) *AppError { return New(CodeConfigInvalid, message) }

func AlreadyBuilt(message string) *AppError { return New(CodeAlreadyBuilt, message) }

func DatabaseError(message string) *AppError { return New(CodeDatabaseError, message) }

// NotFound names the missing resource, as in "run 0190... not found"
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}
