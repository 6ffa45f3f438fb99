package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type debugContextKey struct{}

// WithDebug marks the request context so 500 responses carry the error text.
func WithDebug(ctx context.Context) context.Context {
	return context.WithValue(ctx, debugContextKey{}, true)
}

func debugEnabled(ctx context.Context) bool {
	v, _ := ctx.Value(debugContextKey{}).(bool)
	return v
}

// StatusFor maps a domain error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrInsufficientStock),
		errors.Is(err, shared.ErrProductNotFound):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrInvalidCredentials), errors.Is(err, shared.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to the failure envelope. Client errors
// expose their message; server errors expose a detail only in debug mode.
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		detail := ""
		if debugEnabled(r.Context()) {
			detail = err.Error()
		}
		Fail(w, status, "Internal server error", detail)
	case http.StatusUnauthorized:
		if errors.Is(err, shared.ErrInvalidCredentials) {
			Fail(w, status, "Invalid credentials", "")
			return
		}
		Fail(w, status, err.Error(), "")
	case http.StatusNotFound:
		Fail(w, status, notFoundMessage(err), "")
	default:
		Fail(w, status, err.Error(), "")
	}
}

func notFoundMessage(err error) string {
	if err == shared.ErrNotFound {
		return "Resource not found"
	}
	return err.Error()
}
