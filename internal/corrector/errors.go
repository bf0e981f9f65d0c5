package corrector

import (
	"errors"
	"fmt"
)

// ErrExhaustedRetries is the generic terminal failure when the attempt
// budget runs out without a more specific cause.
var ErrExhaustedRetries = errors.New("retry attempts exhausted")

// RateLimitError is returned when the final attempt was still rate-limited
type RateLimitError struct {
	Attempts int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit still in effect after %d attempts", e.Attempts)
}

// RemoteError is returned when the remote service failed with a
// non-retryable or final-attempt error status
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote model error: %s", e.Message)
}

// InvalidResponseError is returned when the final attempt produced a 2xx
// response without usable generated text
type InvalidResponseError struct {
	Reason string
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid model response: %s", e.Reason)
}
