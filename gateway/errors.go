package gateway

import (
	"errors"
	"fmt"

	"photo-location-service/llm"
)

// ErrServiceBusy means every candidate model failed with an overload or
// transient network error. The caller should suggest retrying shortly.
var ErrServiceBusy = errors.New("AI service is busy, please try again later")

// UpstreamError is an exhausted fallback whose last failure was not a
// transient overload. Guidance carries operator-facing setup hints keyed to
// the provider status; it is intentionally verbose for debugging and safe
// to surface.
type UpstreamError struct {
	StatusCode int
	Guidance   string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure (status %d): %s", e.StatusCode, e.Guidance)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// classify maps the last error of an exhausted fallback loop into the
// user-facing taxonomy. Overloads and plain network failures become
// ErrServiceBusy; everything else becomes an UpstreamError with
// provider-specific guidance.
func classify(err error) error {
	status := llm.StatusOf(err)

	switch {
	case status == 0:
		// No HTTP status at all: connection failure, timeout, or a
		// malformed response envelope. Treated as transient.
		return fmt.Errorf("%w: %v", ErrServiceBusy, err)
	case status == 503 || status >= 500:
		return fmt.Errorf("%w: last status %d", ErrServiceBusy, status)
	case status == 401:
		return &UpstreamError{
			StatusCode: status,
			Guidance:   "provider authentication failed; the API key is invalid or expired, or the API is not enabled for this project",
			Err:        err,
		}
	case status == 403:
		return &UpstreamError{
			StatusCode: status,
			Guidance:   "provider denied access; check API key permissions, billing status, and regional availability",
			Err:        err,
		}
	case status == 429:
		return &UpstreamError{
			StatusCode: status,
			Guidance:   "provider rate limit or quota exceeded; wait a minute and retry, or review the provider billing plan",
			Err:        err,
		}
	default:
		return &UpstreamError{
			StatusCode: status,
			Guidance:   "provider request failed; check network connectivity and provider status",
			Err:        err,
		}
	}
}
