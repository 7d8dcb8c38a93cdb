package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed, status-aware application error.
type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message,omitempty"`
	Status  int            `json:"-"`
	Fields  map[string]any `json:"fields,omitempty"`
	Err     error          `json:"-"`
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return "error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Wrap(err error, base *Error, message string) *Error {
	if err == nil {
		return nil
	}
	if base == nil {
		base = ErrInternal
	}
	copy := *base
	if message != "" {
		copy.Message = message
	}
	copy.Err = err
	return &copy
}

// Validation reports the first invalid field of a create/update payload.
func Validation(field string) *Error {
	copy := *ErrValidation
	copy.Message = fmt.Sprintf("missing or invalid field: %s", field)
	copy.Fields = map[string]any{"field": field}
	return &copy
}

func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

func Status(err error) int {
	if e, ok := As(err); ok && e.Status != 0 {
		return e.Status
	}
	return http.StatusInternalServerError
}

func Code(err error) string {
	if e, ok := As(err); ok && e.Code != "" {
		return e.Code
	}
	return "internal_error"
}

func Message(err error) string {
	if e, ok := As(err); ok {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Code
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// Payload is the JSON body sent to clients. Wrapped causes are never included
// for 5xx errors; callers log those server-side.
func Payload(err error) map[string]any {
	if err == nil {
		return map[string]any{}
	}
	if e, ok := As(err); ok {
		msg := Message(e)
		if e.Status >= http.StatusInternalServerError {
			msg = "internal error"
		}
		payload := map[string]any{
			"code":    Code(e),
			"message": msg,
		}
		if len(e.Fields) > 0 {
			payload["fields"] = e.Fields
		}
		return payload
	}
	return map[string]any{
		"code":    "internal_error",
		"message": "internal error",
	}
}

var (
	ErrBadRequest   = New("bad_request", http.StatusBadRequest, "")
	ErrValidation   = New("validation_error", http.StatusBadRequest, "")
	ErrImage        = New("invalid_image", http.StatusBadRequest, "could not process uploaded image")
	ErrUnauthorized = New("unauthorized", http.StatusUnauthorized, "unauthorized")
	ErrOrigin       = New("origin_mismatch", http.StatusForbidden, "cross-origin request rejected")
	ErrNotFound     = New("not_found", http.StatusNotFound, "not found")
	ErrInternal     = New("internal_error", http.StatusInternalServerError, "")
	ErrStore        = New("store_error", http.StatusInternalServerError, "")
	ErrUpstream     = New("upstream_notification", http.StatusBadGateway, "failed to forward notification")
)
