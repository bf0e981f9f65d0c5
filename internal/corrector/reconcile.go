package corrector

import (
	"strconv"
	"strings"

	"github.com/MimeLyc/ref-sub-corrector/internal/subtitle"
)

// ParseResponse parses the model's indexed-line response into a correction
// map bounded by batchLen.
//
// Each response line is split on the first separator occurrence; the left
// part is the local index, everything after it is kept verbatim (further
// separator occurrences stay part of the text). Lines without a separator
// and lines with an unusable index are ignored. Duplicate indices
// overwrite: the last line wins.
func ParseResponse(response string, batchLen int) *CorrectionMap {
	corrections := NewCorrectionMap(batchLen)

	for _, line := range strings.Split(response, "\n") {
		if !strings.Contains(line, LineSeparator) {
			continue
		}

		parts := strings.SplitN(line, LineSeparator, 2)
		index, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}

		text := strings.ReplaceAll(parts[1], inlineBreakerPlaceholder, "\n")
		corrections.Set(index, text)
	}

	return corrections
}

// Reconcile merges a correction map onto the original batch, producing a
// new slice of the same length and order. An entry whose local index is
// missing from the map keeps its original text verbatim: a partial or
// garbled response can never drop or corrupt entries, it only leaves some
// of them uncorrected.
func Reconcile(batch []subtitle.Line, corrections *CorrectionMap) []subtitle.Line {
	merged := make([]subtitle.Line, len(batch))
	for i, line := range batch {
		corrected := line.Text
		if text, ok := corrections.Get(i + 1); ok {
			corrected = text
		}
		merged[i] = subtitle.Line{
			Index:         line.Index,
			StartTime:     line.StartTime,
			EndTime:       line.EndTime,
			Text:          line.Text,
			CorrectedText: corrected,
		}
	}
	return merged
}
