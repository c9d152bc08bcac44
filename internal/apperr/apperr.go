package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Code classifies a failure for callers of the moderation core.
type Code string

const (
	CodeValidation Code = "validation"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal"
)

// Error is the canonical error type returned by services and repositories.
type Error struct {
	Code    Code
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s", op, msg)
	case msg != "":
		return msg
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func NotFound(format string, args ...any) error {
	return New(CodeNotFound, "", fmt.Sprintf(format, args...), nil)
}

func Validation(format string, args ...any) error {
	return New(CodeValidation, "", fmt.Sprintf(format, args...), nil)
}

func Conflict(format string, args ...any) error {
	return New(CodeConflict, "", fmt.Sprintf(format, args...), nil)
}

// Wrap annotates err with a code unless it already carries one.
func Wrap(code Code, op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return err
	}
	return New(code, op, err.Error(), err)
}

// IsCode reports whether err (or a wrapped error) carries code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code of err; errors without one are internal.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return CodeInternal
	}
	return appErr.Code
}

// HTTPStatus maps err to the response status the REST surface uses.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return fiber.StatusBadRequest
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
