package subtitle

import (
	"time"

	"golang.org/x/text/language"
)

// Reader is the interface for reading subtitle files
type Reader interface {
	Read() (*File, error)
}

// Writer is the interface for writing subtitle files
type Writer interface {
	Write(path string, subtitle *File) error
}

// Line represents a single subtitle cue
type Line struct {
	Index         int           // 1-based position within the file
	StartTime     time.Duration // start time
	EndTime       time.Duration // end time
	Text          string        // original text
	CorrectedText string        // corrected text, empty until a correction run fills it
}

// File represents a subtitle file
type File struct {
	Lines    []Line
	Language language.Tag
	Format   string // e.g. SRT
	Path     string // source path or pseudo-URL for in-memory data
}
