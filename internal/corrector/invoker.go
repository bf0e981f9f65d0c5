package corrector

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MimeLyc/ref-sub-corrector/internal/llm"
	"github.com/MimeLyc/ref-sub-corrector/pkg/log"
)

// Sleeper performs retry and cooldown waits. The default honors context
// cancellation; tests inject a recorder instead of sleeping for real.
type Sleeper func(ctx context.Context, d time.Duration) error

// Invoker wraps one model call with the status-driven retry policy.
// Each Invoke makes at most cfg.MaxAttempts attempts:
//
//   - rate-limited (429): backoff grows with the attempt number, final
//     attempt still limited fails with *RateLimitError
//   - transient overload (503): fixed short delay, final attempt fails
//     with *RemoteError
//   - other non-2xx status: fixed delay, final attempt fails with
//     *RemoteError carrying the payload message when present
//   - 2xx without usable content (empty, refused, blocked): fixed delay,
//     final attempt fails with *InvalidResponseError
//   - transport fault (network, decode): treated like other failure status
type Invoker struct {
	transport Transport
	cfg       Config
	opts      *llm.CompletionOptions
	sleeper   Sleeper
}

// InvokerOption customizes an Invoker
type InvokerOption func(*Invoker)

// WithSleeper overrides how waits are performed (useful for tests)
func WithSleeper(sleeper Sleeper) InvokerOption {
	return func(in *Invoker) {
		if sleeper != nil {
			in.sleeper = sleeper
		}
	}
}

// WithCompletionOptions overrides the per-request generation parameters
func WithCompletionOptions(opts *llm.CompletionOptions) InvokerOption {
	return func(in *Invoker) {
		if opts != nil {
			in.opts = opts
		}
	}
}

// NewInvoker creates an invoker over the given transport
func NewInvoker(transport Transport, cfg Config, opts ...InvokerOption) *Invoker {
	in := &Invoker{
		transport: transport,
		cfg:       cfg.withDefaults(),
		// Determinism-favoring temperature for corrections.
		opts:    llm.NewCompletionOptions().WithTemperature(0),
		sleeper: sleepContext,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Invoke sends the prompt and returns the generated text, retrying per the
// policy above. The returned error is terminal: the attempt budget is spent.
func (in *Invoker) Invoke(ctx context.Context, prompt string) (string, error) {
	attempts := in.cfg.MaxAttempts
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		last := attempt == attempts

		response, err := in.transport.Complete(ctx, prompt, in.opts)
		if err == nil {
			content, finishReason := response.Content()
			if content != "" {
				return content, nil
			}

			reason := invalidResponseReason(response, finishReason)
			if last {
				return "", &InvalidResponseError{Reason: reason}
			}
			log.Warn("Model returned no usable content (%s), retrying attempt %d/%d", reason, attempt+1, attempts)
			if err := in.sleeper(ctx, in.cfg.RetryDelay); err != nil {
				return "", err
			}
			lastErr = &InvalidResponseError{Reason: reason}
			continue
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		var statusErr *llm.StatusError
		switch {
		case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests:
			if last {
				return "", &RateLimitError{Attempts: attempts}
			}
			delay := in.cfg.RateLimitBaseDelay + time.Duration(attempt-1)*in.cfg.RateLimitStep
			log.Warn("Rate limited by model API, backing off %s before attempt %d/%d", delay, attempt+1, attempts)
			if err := in.sleeper(ctx, delay); err != nil {
				return "", err
			}

		case errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusServiceUnavailable:
			if last {
				return "", &RemoteError{Message: remoteMessage(statusErr)}
			}
			log.Warn("Model API temporarily unavailable, retrying attempt %d/%d after %s", attempt+1, attempts, in.cfg.OverloadDelay)
			if err := in.sleeper(ctx, in.cfg.OverloadDelay); err != nil {
				return "", err
			}

		case errors.As(err, &statusErr):
			if last {
				return "", &RemoteError{Message: remoteMessage(statusErr)}
			}
			log.Warn("Model API error (%s), retrying attempt %d/%d", remoteMessage(statusErr), attempt+1, attempts)
			if err := in.sleeper(ctx, in.cfg.RetryDelay); err != nil {
				return "", err
			}

		default:
			// Transport-level fault: network failure or undecodable body.
			if last {
				return "", &RemoteError{Message: err.Error()}
			}
			log.Warn("Model request failed (%v), retrying attempt %d/%d", err, attempt+1, attempts)
			if err := in.sleeper(ctx, in.cfg.RetryDelay); err != nil {
				return "", err
			}
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown failure")
	}
	return "", errors.Join(ErrExhaustedRetries, lastErr)
}

// invalidResponseReason surfaces the most specific reason a 2xx response
// carried no usable text
func invalidResponseReason(response *llm.ChatResponse, finishReason string) string {
	if response.Blocked() {
		if finishReason != "" {
			return "generation blocked: " + finishReason
		}
		return "generation blocked"
	}
	if len(response.Choices) == 0 {
		return "empty choices"
	}
	if finishReason != "" {
		return "empty content (finish_reason=" + finishReason + ")"
	}
	return "empty content"
}

func remoteMessage(statusErr *llm.StatusError) string {
	if statusErr.Message != "" {
		return statusErr.Message
	}
	return statusErr.Error()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
