package bizerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("record not found")
	ErrConflict        = errors.New("conflict")
	ErrInactiveAccount = errors.New("account is inactive")
	ErrTooManyRequests = errors.New("too many requests")
)

// BizError is implemented by errors that know their own HTTP rendering
type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string
}

type ErrBadParam struct {
	Cause error
}

// BadParam wraps a formatted message as a 400 error
func BadParam(format string, args ...interface{}) *ErrBadParam {
	return &ErrBadParam{Cause: fmt.Errorf(format, args...)}
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}

func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}

func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message}
}

// Forbidden wraps ErrForbidden with a reason
func Forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the missing entity name
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}
