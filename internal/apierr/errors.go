// Package apierr provides shared error sentinels and a typed HTTP error
// for API clients. Provider-specific failures are classified into these
// sentinels at the adapter boundary.
//
// Clients wrap sentinels with context using fmt.Errorf("%s: %w", msg, sentinel).
// Callers check with errors.Is(err, apierr.ErrRateLimit) etc.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for API interaction failures.
var (
	// ErrRateLimit indicates the API rate limit was exceeded (temporary).
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrQuotaExceeded indicates the API quota was exceeded (billing issue).
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrTimeout indicates a request timed out.
	ErrTimeout = errors.New("request timeout")

	// ErrAuthFailed indicates API authentication failed (invalid key).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrBadRequest indicates a client error (4xx) that is not otherwise classified.
	ErrBadRequest = errors.New("bad request")
)

// HTTPError is a typed error carrying the HTTP status and provider message
// of a failed API call. Adapters return it from their transport layer and
// classify it into sentinels before handing errors to callers.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error %d", e.StatusCode)
}

// Classify maps an HTTPError status to a sentinel error, preserving the
// provider message as context. Remaining 4xx statuses map to ErrBadRequest;
// server errors and non-HTTP errors return unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("request timed out: %w", ErrTimeout)
		}
		return err
	}

	switch httpErr.StatusCode {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w", httpErr.Message, ErrRateLimit)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s: %w", httpErr.Message, ErrAuthFailed)
	case http.StatusPaymentRequired:
		return fmt.Errorf("%s: %w", httpErr.Message, ErrQuotaExceeded)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%s: %w", httpErr.Message, ErrTimeout)
	}

	if httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return fmt.Errorf("%s: %w", httpErr.Message, ErrBadRequest)
	}
	return err
}
