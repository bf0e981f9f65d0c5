package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DefaultWriter is the default subtitle file writer
type DefaultWriter struct{}

// NewWriter creates a new subtitle file writer
func NewWriter() Writer {
	return &DefaultWriter{}
}

// Write writes the subtitle file to the specified path
func (w *DefaultWriter) Write(path string, subtitle *File) error {
	if subtitle == nil {
		return fmt.Errorf("subtitle data is empty")
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	defer writer.Flush()

	return writeSRT(writer, subtitle)
}

// Encode renders the subtitle file to SRT text
func Encode(subtitle *File) (string, error) {
	if subtitle == nil {
		return "", fmt.Errorf("subtitle data is empty")
	}

	var sb strings.Builder
	if err := writeSRT(&sb, subtitle); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func writeSRT(writer io.Writer, subtitle *File) error {
	for _, line := range subtitle.Lines {
		// write index
		fmt.Fprintf(writer, "%d\n", line.Index)

		// write time
		startTime := formatDuration(line.StartTime)
		endTime := formatDuration(line.EndTime)
		fmt.Fprintf(writer, "%s --> %s\n", startTime, endTime)

		// write text (use corrected text, fallback to original if empty)
		text := line.CorrectedText
		if text == "" {
			text = line.Text
		}
		fmt.Fprintf(writer, "%s\n\n", text)
	}

	return nil
}

// formatDuration formats time.Duration to SRT time format
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}
