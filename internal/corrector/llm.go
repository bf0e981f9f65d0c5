package corrector

import (
	"context"
	"fmt"

	"github.com/MimeLyc/ref-sub-corrector/internal/subtitle"
	"github.com/MimeLyc/ref-sub-corrector/pkg/log"
)

// llmCorrector drives the per-batch pipeline: build prompt, invoke the
// model with retries, reconcile the indexed response onto the batch.
// Batches run strictly in sequence; batch k+1 never starts before batch
// k's round-trip (retries and cooldown included) finishes.
type llmCorrector struct {
	invoker  *Invoker
	cfg      Config
	progress Progress
	sleeper  Sleeper
}

// Option customizes a corrector
type Option func(*llmCorrector)

// WithProgress registers a progress callback invoked once per completed batch
func WithProgress(progress Progress) Option {
	return func(c *llmCorrector) {
		c.progress = progress
	}
}

// WithCooldownSleeper overrides the inter-batch cooldown wait (useful for tests)
func WithCooldownSleeper(sleeper Sleeper) Option {
	return func(c *llmCorrector) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// NewLLMCorrector creates a corrector over the given transport
func NewLLMCorrector(transport Transport, cfg Config, opts ...Option) Corrector {
	cfg = cfg.withDefaults()
	c := &llmCorrector{
		invoker: NewInvoker(transport, cfg),
		cfg:     cfg,
		sleeper: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewLLMCorrectorWithInvoker creates a corrector around a pre-built invoker,
// letting callers customize retry behavior separately.
func NewLLMCorrectorWithInvoker(invoker *Invoker, cfg Config, opts ...Option) Corrector {
	c := &llmCorrector{
		invoker: invoker,
		cfg:     cfg.withDefaults(),
		sleeper: sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *llmCorrector) Correct(
	ctx context.Context,
	batch []subtitle.Line,
	reference string,
) ([]subtitle.Line, error) {
	prompt := BuildPrompt(batch, reference, c.cfg)

	response, err := c.invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, err
	}

	corrections := ParseResponse(response, len(batch))
	log.Debug("Parsed %d corrections for a batch of %d lines", corrections.Len(), len(batch))

	return Reconcile(batch, corrections), nil
}

func (c *llmCorrector) BatchCorrect(
	ctx context.Context,
	lines []subtitle.Line,
	reference string,
) ([]subtitle.Line, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	batchSize := c.cfg.BatchSize
	totalBatches := (len(lines) + batchSize - 1) / batchSize

	corrected := make([]subtitle.Line, 0, len(lines))

	for i := 0; i < len(lines); i += batchSize {
		end := min(i+batchSize, len(lines))
		batchNum := i/batchSize + 1

		log.Info("Correcting batch %d/%d (lines %d-%d)", batchNum, totalBatches, i+1, end)

		batch, err := c.Correct(ctx, lines[i:end], reference)
		if err != nil {
			return nil, fmt.Errorf("batch correction failed for lines %d-%d: %w", i+1, end, err)
		}

		corrected = append(corrected, batch...)
		c.reportProgress(batchNum, totalBatches)

		// Cooldown between batches keeps rate-limit pressure down; the last
		// batch does not need one.
		if end < len(lines) {
			if err := c.sleeper(ctx, c.cfg.BatchCooldown); err != nil {
				return nil, err
			}
		}
	}

	return corrected, nil
}

func (c *llmCorrector) reportProgress(done, total int) {
	if c.progress == nil {
		return
	}
	c.progress(done, total, done*100/total)
}
