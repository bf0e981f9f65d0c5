package service

import (
	"time"

	"github.com/MimeLyc/ref-sub-corrector/internal/subtitle"
	"golang.org/x/text/language"
)

// CorrectionResult represents the outcome of one correction run
type CorrectionResult struct {
	OriginalFile  subtitle.File
	CorrectedFile subtitle.File
	OutputPath    string
	Metadata      CorrectionMetadata
}

// CorrectionMetadata contains correction metadata
type CorrectionMetadata struct {
	Language       language.Tag
	ModelUsed      string
	ReferenceChars int
	CharCount      int
	CorrectionTime time.Duration
	BatchCount     int
}

// CorrectionPair is a subtitle file matched with its reference transcript
type CorrectionPair struct {
	SubtitlePath  string
	ReferencePath string
}

// correctedMarker tags output files so scans do not re-enqueue them
const correctedMarker = ".corrected"

var subtitleExts = []string{
	".srt", // SubRip, the only format the pipeline corrects today
}

var referenceExts = []string{
	".txt",            // plain transcript next to the subtitle
	".reference.txt",  // explicit reference marker
	".transcript.txt", // transcription tool output
}
