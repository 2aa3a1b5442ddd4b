package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Error kinds. Every error returned by Client wraps exactly one of these, so
// callers can branch with errors.Is. ErrTimeout also matches ErrNetwork.
var (
	ErrAuthRequired     = errors.New("authentication required")
	ErrValidation       = errors.New("validation error")
	ErrDuplicateReport  = errors.New("duplicate found report")
	ErrSelfReport       = errors.New("self report not allowed")
	ErrInvalidItem      = errors.New("invalid item")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrServer           = errors.New("server error")
	ErrNetwork          = errors.New("network error")
	ErrTimeout          = fmt.Errorf("request timed out: %w", ErrNetwork)
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrUnsupportedMedia = errors.New("unsupported media type")
)

// User-facing messages per kind.
var defaultMessages = map[error]string{
	ErrAuthRequired:     "Authentication required. Please log in again.",
	ErrValidation:       "Invalid request. Please check your input and try again.",
	ErrDuplicateReport:  "You have already reported this item as found.",
	ErrSelfReport:       "You cannot report your own item as found.",
	ErrInvalidItem:      "This item no longer exists or has been removed.",
	ErrNotFound:         "The requested resource was not found.",
	ErrForbidden:        "You do not have permission to perform this action.",
	ErrServer:           "Server error. Please try again later.",
	ErrNetwork:          "Unable to connect to the server. Please check your internet connection.",
	ErrTimeout:          "The server is taking too long to respond. Please try again.",
	ErrPayloadTooLarge:  "Image file is too large. Please choose a smaller image.",
	ErrUnsupportedMedia: "Unsupported image format. Please use JPG, PNG, GIF or WebP.",
}

// Error is the single error type returned across the client boundary.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// newError builds an Error of the given kind. An empty message falls back to
// the default text for the kind.
func newError(kind error, status int, message string, cause error) *Error {
	if message == "" {
		message = defaultMessages[kind]
	}
	return &Error{Kind: kind, Status: status, Message: message, Err: cause}
}

// Message returns the user-facing text for err. Errors from outside the
// client are returned as-is.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// serverMessage extracts the human-readable text from an error body. The
// service uses either "message" or "error".
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if m := strings.TrimSpace(payload.Message); m != "" {
		return m
	}
	return strings.TrimSpace(payload.Error)
}

// fromResponse maps a non-2xx response to the error taxonomy.
func fromResponse(status int, body []byte) *Error {
	msg := serverMessage(body)
	cause := fmt.Errorf("http %d", status)

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return newError(ErrValidation, status, msg, cause)
	case status == http.StatusUnauthorized:
		return newError(ErrAuthRequired, status, "Your session has expired. Please log in again.", cause)
	case status == http.StatusForbidden:
		return newError(ErrForbidden, status, "", cause)
	case status == http.StatusNotFound:
		return newError(ErrNotFound, status, msg, cause)
	case status == http.StatusRequestEntityTooLarge:
		return newError(ErrPayloadTooLarge, status, "", cause)
	case status == http.StatusUnsupportedMediaType:
		return newError(ErrUnsupportedMedia, status, "", cause)
	case status >= 500:
		return newError(ErrServer, status, "", cause)
	default:
		if msg == "" {
			msg = fmt.Sprintf("Request failed (%d).", status)
		}
		return newError(ErrValidation, status, msg, cause)
	}
}

// fromTransport maps a failure to get any response at all.
func fromTransport(err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(ErrTimeout, 0, "", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(ErrTimeout, 0, "", err)
	}
	return newError(ErrNetwork, 0, "", err)
}

// classifyMarkFound refines a failure from POST /found/mark. A 404 means the
// item is gone; a 400 is told apart by the server text, which is the only
// signal the service gives for these cases.
func classifyMarkFound(e *Error) *Error {
	if e.Status == http.StatusNotFound {
		return newError(ErrInvalidItem, e.Status, "", e.Err)
	}
	if e.Status != http.StatusBadRequest {
		return e
	}
	msg := strings.ToLower(e.Message)
	switch {
	case strings.Contains(msg, "item not found"):
		return newError(ErrInvalidItem, e.Status, "", e.Err)
	case strings.Contains(msg, "cannot mark your item as found"):
		return newError(ErrSelfReport, e.Status, "", e.Err)
	case strings.Contains(msg, "already marked this item as found"):
		return newError(ErrDuplicateReport, e.Status, "", e.Err)
	}
	return e
}
