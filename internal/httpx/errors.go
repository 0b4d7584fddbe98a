package httpx

import (
	"net/http"

	"github.com/obiajulu/shortcode/internal/errx"
)

// ErrorKindToStatus maps errx.Kind to HTTP status codes.
//
// Conflict maps to 400 rather than 409: a taken code is reported to API
// clients the same way as any other rejected create input.
func ErrorKindToStatus(kind errx.Kind) int {
	switch kind {
	case errx.NotFound:
		return http.StatusNotFound
	case errx.Conflict:
		return http.StatusBadRequest
	case errx.Invalid:
		return http.StatusBadRequest
	case errx.Unavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ErrorKindToCode maps errx.Kind to machine-readable error codes for
// JSON responses.
func ErrorKindToCode(kind errx.Kind) string {
	switch kind {
	case errx.NotFound:
		return "not_found"
	case errx.Conflict:
		return "duplicate_code"
	case errx.Invalid:
		return "invalid_input"
	case errx.Unavailable:
		return "unavailable"
	default:
		return "internal_error"
	}
}
