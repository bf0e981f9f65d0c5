package corrector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/ref-sub-corrector/internal/subtitle"
)

func TestParseResponse_SeparatorRejoin(t *testing.T) {
	t.Parallel()

	corrections := ParseResponse("3>>>a>>>b", 3)

	text, ok := corrections.Get(3)
	require.True(t, ok)
	// Only the first separator splits; later occurrences stay verbatim.
	assert.Equal(t, "a>>>b", text)
}

func TestParseResponse_DuplicateLastWins(t *testing.T) {
	t.Parallel()

	corrections := ParseResponse("1>>>first try\n1>>>second try", 2)

	text, ok := corrections.Get(1)
	require.True(t, ok)
	assert.Equal(t, "second try", text)
	assert.Equal(t, 1, corrections.Len())
}

func TestParseResponse_IgnoresSeparatorlessLines(t *testing.T) {
	t.Parallel()

	corrections := ParseResponse("Sure, here are the corrections:\n1>>>fixed\nThanks!", 1)

	assert.Equal(t, 1, corrections.Len())
	text, ok := corrections.Get(1)
	require.True(t, ok)
	assert.Equal(t, "fixed", text)
}

func TestParseResponse_RejectsOutOfRangeIndices(t *testing.T) {
	t.Parallel()

	corrections := ParseResponse("0>>>zero\n3>>>beyond\n-1>>>negative\nx>>>letters\n2>>>ok", 2)

	assert.Equal(t, 1, corrections.Len())
	text, ok := corrections.Get(2)
	require.True(t, ok)
	assert.Equal(t, "ok", text)
}

func TestParseResponse_RestoresInlineBreakers(t *testing.T) {
	t.Parallel()

	corrections := ParseResponse("1>>>first"+inlineBreakerPlaceholder+"second", 1)

	text, ok := corrections.Get(1)
	require.True(t, ok)
	assert.Equal(t, "first\nsecond", text)
}

func testBatch(n int) []subtitle.Line {
	batch := make([]subtitle.Line, n)
	for i := range batch {
		batch[i] = subtitle.Line{
			Index:     i + 1,
			StartTime: time.Duration(i) * time.Second,
			EndTime:   time.Duration(i)*time.Second + 500*time.Millisecond,
			Text:      "original " + string(rune('a'+i)),
		}
	}
	return batch
}

func TestReconcile_FallbackToOriginal(t *testing.T) {
	t.Parallel()

	batch := testBatch(3)
	corrections := ParseResponse("2>>>corrected b", 3)

	merged := Reconcile(batch, corrections)

	require.Len(t, merged, 3)
	assert.Equal(t, "original a", merged[0].CorrectedText)
	assert.Equal(t, "corrected b", merged[1].CorrectedText)
	assert.Equal(t, "original c", merged[2].CorrectedText)
}

func TestReconcile_PreservesTimingAndOrder(t *testing.T) {
	t.Parallel()

	batch := testBatch(4)
	merged := Reconcile(batch, ParseResponse("garbage with no separators", 4))

	require.Len(t, merged, len(batch))
	for i := range batch {
		assert.Equal(t, batch[i].Index, merged[i].Index)
		assert.Equal(t, batch[i].StartTime, merged[i].StartTime)
		assert.Equal(t, batch[i].EndTime, merged[i].EndTime)
		assert.Equal(t, batch[i].Text, merged[i].Text)
		assert.Equal(t, batch[i].Text, merged[i].CorrectedText)
	}
}

func TestReconcile_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	batch := testBatch(2)
	_ = Reconcile(batch, ParseResponse("1>>>changed", 2))

	assert.Empty(t, batch[0].CorrectedText)
	assert.Equal(t, "original a", batch[0].Text)
}

func TestCorrectionMap_Bounds(t *testing.T) {
	t.Parallel()

	m := NewCorrectionMap(2)
	assert.False(t, m.Set(0, "a"))
	assert.False(t, m.Set(3, "a"))
	assert.True(t, m.Set(1, "a"))
	assert.True(t, m.Set(2, "b"))
	assert.Equal(t, 2, m.Len())
}
