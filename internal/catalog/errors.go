package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"hakey-storefront/internal/domain"
)

// Kind classifies a gateway failure.
type Kind int

const (
	// KindTransport means no response was received from the catalog.
	KindTransport Kind = iota + 1
	// KindRejection means the catalog answered with a non-2xx status.
	KindRejection
	// KindDecode means a 2xx response body could not be parsed.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRejection:
		return "rejected"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

const (
	transportMessage = "Error de conexión con el catálogo"
	decodeMessage    = "Respuesta inválida del catálogo"
)

// Error is the only error type returned by Client. Error() yields the
// human-readable message meant for display.
type Error struct {
	Op      string
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is reports 404 rejections as domain.ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == domain.ErrNotFound && e.Kind == KindRejection && e.Status == http.StatusNotFound
}

// Retryable reports whether repeating the call may succeed.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindTransport:
		return true
	case KindRejection:
		return e.Status >= 500 || e.Status == http.StatusTooManyRequests || e.Status == http.StatusRequestTimeout
	default:
		return false
	}
}

// rejection builds the error for a non-2xx response, preferring the body's
// message field.
func rejection(op string, status int, body []byte) *Error {
	msg := fmt.Sprintf("Error: %d", status)
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Message) != "" {
		msg = payload.Message
	}
	return &Error{Op: op, Kind: KindRejection, Status: status, Message: msg}
}
