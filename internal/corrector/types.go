package corrector

import (
	"context"
	"time"

	"github.com/MimeLyc/ref-sub-corrector/internal/llm"
	"github.com/MimeLyc/ref-sub-corrector/internal/subtitle"
)

// LineSeparator is the token between the local index and the text in both
// the prompt rendering and the model's response lines.
const LineSeparator = ">>>"

// inlineBreakerPlaceholder stands in for embedded newlines inside a single
// cue so the model cannot confuse them with cue boundaries.
const inlineBreakerPlaceholder = "%%inline_breaker%%"

// Transport is the single network capability the pipeline depends on: send
// a prompt, receive a chat response or a classified failure. Injected so
// tests can script faults deterministically.
type Transport interface {
	Complete(ctx context.Context, prompt string, opts *llm.CompletionOptions) (*llm.ChatResponse, error)
}

// Progress reports batch completion. done counts finished batches, total is
// the overall batch count, percent is derived and monotonically
// non-decreasing across a run.
type Progress func(done, total, percent int)

// Corrector corrects subtitle lines against a reference transcript
type Corrector interface {
	// Correct corrects a single batch of lines, filling CorrectedText.
	Correct(
		ctx context.Context,
		batch []subtitle.Line,
		reference string,
	) ([]subtitle.Line, error)

	// BatchCorrect corrects the whole sequence in bounded sequential batches.
	BatchCorrect(
		ctx context.Context,
		lines []subtitle.Line,
		reference string,
	) ([]subtitle.Line, error)
}

// Config carries the tunables of the correction pipeline. Zero values fall
// back to the defaults below.
type Config struct {
	BatchSize          int           // lines per model invocation
	MaxAttempts        int           // attempts per batch before giving up
	RateLimitBaseDelay time.Duration // first backoff after a rate-limit signal
	RateLimitStep      time.Duration // backoff growth per further attempt
	OverloadDelay      time.Duration // delay after a transient-overload signal
	RetryDelay         time.Duration // delay after any other retryable failure
	BatchCooldown      time.Duration // pause between consecutive batches
	ReferenceLimit     int           // max runes of reference excerpt per prompt
	Rules              []string      // correction rule set embedded in prompts
}

const (
	defaultBatchSize          = 50
	defaultMaxAttempts        = 4
	defaultRateLimitBaseDelay = 5 * time.Second
	defaultRateLimitStep      = 5 * time.Second
	defaultOverloadDelay      = 3 * time.Second
	defaultRetryDelay         = 2 * time.Second
	defaultBatchCooldown      = 1 * time.Second
	defaultReferenceLimit     = 20000
)

// DefaultRules is the built-in correction rule set. Operators may override
// it via configuration; the output-format contract is appended separately
// and cannot be overridden.
var DefaultRules = []string{
	"Fix homophone and typo errors using the reference transcript as ground truth.",
	"Normalize punctuation to standard usage; do not invent new sentence breaks.",
	"Remove filler words (um, uh, you know) that the reference transcript does not contain.",
	"Normalize script and spelling to match the reference transcript's conventions.",
	"Only change text that is wrong; leave correct lines untouched.",
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.RateLimitBaseDelay <= 0 {
		c.RateLimitBaseDelay = defaultRateLimitBaseDelay
	}
	if c.RateLimitStep <= 0 {
		c.RateLimitStep = defaultRateLimitStep
	}
	if c.OverloadDelay <= 0 {
		c.OverloadDelay = defaultOverloadDelay
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.BatchCooldown <= 0 {
		c.BatchCooldown = defaultBatchCooldown
	}
	if c.ReferenceLimit <= 0 {
		c.ReferenceLimit = defaultReferenceLimit
	}
	if len(c.Rules) == 0 {
		c.Rules = DefaultRules
	}
	return c
}
