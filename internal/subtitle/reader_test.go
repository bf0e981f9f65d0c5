package subtitle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestReadSRTFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.srt")
	content := "1\n00:00:20,410 --> 00:00:22,160\nDamn you!\n\n" +
		"2\n00:00:23,580 --> 00:00:25,080\nI'm really sorry.\nTruly.\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	file, err := NewReader(path).Read()
	require.NoError(t, err)
	require.Len(t, file.Lines, 2)

	assert.Equal(t, 1, file.Lines[0].Index)
	assert.Equal(t, 20*time.Second+410*time.Millisecond, file.Lines[0].StartTime)
	assert.Equal(t, 22*time.Second+160*time.Millisecond, file.Lines[0].EndTime)
	assert.Equal(t, "Damn you!", file.Lines[0].Text)
	assert.Equal(t, "I'm really sorry.\nTruly.", file.Lines[1].Text)
	assert.Equal(t, "SRT", file.Format)
	assert.Equal(t, path, file.Path)
}

func TestReadRejectsNonSRT(t *testing.T) {
	_, err := NewReader("/tmp/sample.vtt").Read()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SRT")
}

func TestDetectLanguage(t *testing.T) {
	lines := []Line{
		{
			Text: "Hello, world!",
		},
		{
			Text: "こんにちは、世界!",
		},
		{
			Text: "こんにちは、世界!",
		},

		{
			Text: "Привет, мир!",
		},
	}
	lang := detectLanguage(lines)
	if lang != language.Japanese {
		t.Errorf("expected ja, got %s", lang)
	}
}
