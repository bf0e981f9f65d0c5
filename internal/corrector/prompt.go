package corrector

import (
	"fmt"
	"strings"

	"github.com/MimeLyc/ref-sub-corrector/internal/subtitle"
)

// BuildPrompt renders the correction instruction for one batch.
// Deterministic given its inputs; no side effects.
//
// The batch is rendered with 1-based local indices, re-numbered from the
// start of the batch. The same local indices are expected back in the
// model's response, one line per entry.
func BuildPrompt(batch []subtitle.Line, reference string, cfg Config) string {
	cfg = cfg.withDefaults()

	var prompt strings.Builder

	prompt.WriteString("You are a subtitle proofreading expert. Correct machine-generated subtitle lines against the trusted reference transcript below.\n\n")

	prompt.WriteString("=== CORRECTION RULES ===\n")
	for i, rule := range cfg.Rules {
		prompt.WriteString(fmt.Sprintf("%d. %s\n", i+1, rule))
	}

	prompt.WriteString("\n=== REFERENCE TRANSCRIPT ===\n")
	prompt.WriteString(truncateRunes(reference, cfg.ReferenceLimit))
	prompt.WriteString("\n")

	prompt.WriteString("\n=== SUBTITLE LINES ===\n")
	for i, line := range batch {
		// Embedded newlines inside one cue would break the one-line-per-entry
		// contract, so mask them before sending.
		formattedText := strings.ReplaceAll(line.Text, "\n", inlineBreakerPlaceholder)
		prompt.WriteString(fmt.Sprintf("%d%s%s\n", i+1, LineSeparator, formattedText))
	}

	prompt.WriteString("\n=== OUTPUT FORMAT ===\n")
	prompt.WriteString("Return ONLY the corrected lines, one per input line, in the form <index>" + LineSeparator + "<corrected text>\n")
	prompt.WriteString("The number of output lines must exactly match the number of input lines.\n")
	prompt.WriteString("Keep every index from the input; do not merge, split, reorder, or drop lines.\n")
	prompt.WriteString("Preserve " + inlineBreakerPlaceholder + " inline break markers exactly.\n")
	prompt.WriteString("Do not include any explanations, notes, or additional text.\n")

	return prompt.String()
}

// truncateRunes bounds s to at most limit runes
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
