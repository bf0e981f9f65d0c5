package persistence

import "time"

// RunRecord is the stored outcome of one completed correction run.
type RunRecord struct {
	JobID          string        `json:"job_id"`
	SubtitleFile   string        `json:"subtitle_file"`
	OutputFile     string        `json:"output_file"`
	Language       string        `json:"language"`
	ReferenceChars int           `json:"reference_chars"`
	CharCount      int           `json:"char_count"`
	BatchCount     int           `json:"batch_count"`
	Duration       time.Duration `json:"duration"`
	FinishedAt     time.Time     `json:"finished_at"`
}
