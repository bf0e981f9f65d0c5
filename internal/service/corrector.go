package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MimeLyc/ref-sub-corrector/internal/corrector"
	"github.com/MimeLyc/ref-sub-corrector/internal/subtitle"
	"github.com/MimeLyc/ref-sub-corrector/pkg/file"
)

// CorrectorConfig contains the inputs of one correction run
type CorrectorConfig struct {
	InputPath     string
	ReferencePath string

	// SubtitleFile and ReferenceText bypass file loading when the caller
	// already holds decoded data (e.g. in-memory pipelines and tests).
	SubtitleFile  *subtitle.File
	ReferenceText string

	OutputDir  string
	OutputName string
}

// OutputPath decides where the corrected subtitle is written. Defaults to
// the input path with the corrected marker inserted before the extension.
func (c CorrectorConfig) OutputPath() string {
	outputDir := c.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(c.InputPath)
	}
	outputName := c.OutputName
	if outputName == "" {
		outputName = filepath.Base(file.InsertSuffix(c.InputPath, correctedMarker))
	}
	return filepath.Join(outputDir, outputName)
}

// FileCorrector drives one correction run end to end: load inputs, validate
// preconditions, run the batch pipeline, write the corrected file.
type FileCorrector struct {
	subtitleWriter subtitle.Writer
	corrector      corrector.Corrector
	config         CorrectorConfig
	tracker        *RunTracker
}

// NewFileCorrector creates a correction run driver.
// The tracker may be nil when no observer cares about run state.
func NewFileCorrector(
	config CorrectorConfig,
	corr corrector.Corrector,
	tracker *RunTracker,
) (*FileCorrector, error) {
	if corr == nil {
		return nil, NewError(ErrConfig, "corrector not set")
	}
	if tracker == nil {
		tracker = NewRunTracker(nil)
	}
	return &FileCorrector{
		subtitleWriter: subtitle.NewWriter(),
		corrector:      corr,
		config:         config,
		tracker:        tracker,
	}, nil
}

// Tracker exposes the run state for presentation layers
func (t *FileCorrector) Tracker() *RunTracker {
	return t.tracker
}

// Correct runs the full pipeline. All preconditions are checked before any
// network activity; the first unrecovered batch failure aborts the run and
// no output file is produced.
func (t *FileCorrector) Correct(ctx context.Context) (*CorrectionResult, error) {
	startTime := time.Now()

	reference, err := t.loadReference()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(reference) == "" {
		return nil, NewError(ErrConfig, "reference transcript is empty").
			WithContext("reference", t.config.ReferencePath)
	}

	subtitleFile, err := t.loadSubtitle()
	if err != nil {
		return nil, err
	}
	if len(subtitleFile.Lines) == 0 {
		return nil, NewError(ErrEmptyInput, "subtitle file contains no entries").
			WithContext("subtitle", subtitleFile.Path)
	}

	t.tracker.Start()
	t.tracker.Logf("Loaded %d subtitle lines from %s", len(subtitleFile.Lines), subtitleFile.Path)

	corrected, err := t.corrector.BatchCorrect(ctx, subtitleFile.Lines, reference)
	if err != nil {
		classified := ClassifyCorrectorError(err).WithContext("subtitle", subtitleFile.Path)
		t.tracker.Fail(classified)
		return nil, classified
	}

	correctedFile := &subtitle.File{
		Lines:    corrected,
		Language: subtitleFile.Language,
		Format:   subtitleFile.Format,
		Path:     t.config.OutputPath(),
	}

	outputPath := t.config.OutputPath()
	if err := t.subtitleWriter.Write(outputPath, correctedFile); err != nil {
		wrapped := WrapError(err, ErrFileWrite, "failed to save corrected subtitle").
			WithContext("output", outputPath)
		t.tracker.Fail(wrapped)
		return nil, wrapped
	}

	t.tracker.Complete()
	finalState := t.tracker.Snapshot()

	return &CorrectionResult{
		OriginalFile:  *subtitleFile,
		CorrectedFile: *correctedFile,
		OutputPath:    outputPath,
		Metadata: CorrectionMetadata{
			Language:       subtitleFile.Language,
			ReferenceChars: len(reference),
			CharCount:      countCharacters(subtitleFile.Lines),
			CorrectionTime: time.Since(startTime),
			BatchCount:     finalState.BatchesTotal,
		},
	}, nil
}

func (t *FileCorrector) loadReference() (string, error) {
	if t.config.ReferenceText != "" {
		return t.config.ReferenceText, nil
	}
	if t.config.ReferencePath == "" {
		return "", NewError(ErrConfig, "reference transcript is required")
	}
	data, err := os.ReadFile(t.config.ReferencePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", WrapError(err, ErrFileNotFound, "reference transcript does not exist").
				WithContext("reference", t.config.ReferencePath)
		}
		return "", WrapError(err, ErrFileRead, "failed to read reference transcript").
			WithContext("reference", t.config.ReferencePath)
	}
	return string(data), nil
}

func (t *FileCorrector) loadSubtitle() (*subtitle.File, error) {
	if t.config.SubtitleFile != nil {
		return t.config.SubtitleFile, nil
	}
	if t.config.InputPath == "" {
		return nil, NewError(ErrConfig, "subtitle input path is required")
	}
	subtitleFile, err := subtitle.NewReader(t.config.InputPath).Read()
	if err != nil {
		return nil, WrapError(err, ErrParse, "failed to read subtitle file").
			WithContext("subtitle", t.config.InputPath)
	}
	return subtitleFile, nil
}

// GetCorrectionPreview renders the first lines of a result for operators
func GetCorrectionPreview(result *CorrectionResult, lines int) string {
	if lines <= 0 {
		lines = 5
	}

	var sb strings.Builder
	sb.WriteString("=== Correction Preview ===\n")

	showLines := lines
	if len(result.CorrectedFile.Lines) < showLines {
		showLines = len(result.CorrectedFile.Lines)
	}

	for i := 0; i < showLines; i++ {
		original := result.OriginalFile.Lines[i].Text
		corrected := result.CorrectedFile.Lines[i].CorrectedText

		sb.WriteString(fmt.Sprintf("Original: %s\n", original))
		sb.WriteString(fmt.Sprintf("Corrected: %s\n\n", corrected))
	}

	return sb.String()
}

// countCharacters calculates total subtitle characters
func countCharacters(lines []subtitle.Line) int {
	total := 0
	for _, line := range lines {
		total += len(line.Text)
	}
	return total
}
