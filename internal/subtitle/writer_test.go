package subtitle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodePrefersCorrectedText(t *testing.T) {
	file := &File{
		Lines: []Line{
			{
				Index:         1,
				StartTime:     time.Second,
				EndTime:       2 * time.Second,
				Text:          "helo world",
				CorrectedText: "Hello, world.",
			},
			{
				Index:     2,
				StartTime: 3 * time.Second,
				EndTime:   4 * time.Second,
				Text:      "untouched",
			},
		},
		Format: "SRT",
	}

	text, err := Encode(file)
	require.NoError(t, err)
	assert.Equal(t,
		"1\n00:00:01,000 --> 00:00:02,000\nHello, world.\n\n"+
			"2\n00:00:03,000 --> 00:00:04,000\nuntouched\n\n",
		text)
}

func TestEncodeRoundTripsTiming(t *testing.T) {
	original := &File{
		Lines: []Line{
			{
				Index:     1,
				StartTime: 2*time.Minute + 16*time.Second + 612*time.Millisecond,
				EndTime:   2*time.Minute + 19*time.Second + 376*time.Millisecond,
				Text:      "stays the same",
			},
		},
		Format: "SRT",
	}

	text, err := Encode(original)
	require.NoError(t, err)

	parsed, err := ReadSRTBytes([]byte(text), "roundtrip")
	require.NoError(t, err)
	require.Len(t, parsed.Lines, 1)
	assert.Equal(t, original.Lines[0].StartTime, parsed.Lines[0].StartTime)
	assert.Equal(t, original.Lines[0].EndTime, parsed.Lines[0].EndTime)
	assert.Equal(t, original.Lines[0].Text, parsed.Lines[0].Text)
}

func TestEncodeNil(t *testing.T) {
	_, err := Encode(nil)
	require.Error(t, err)
}
