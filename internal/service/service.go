package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MimeLyc/ref-sub-corrector/internal/config"
	"github.com/MimeLyc/ref-sub-corrector/internal/jobs"
	"github.com/MimeLyc/ref-sub-corrector/pkg/file"
	"github.com/MimeLyc/ref-sub-corrector/pkg/icron"
	"github.com/MimeLyc/ref-sub-corrector/pkg/log"
	"github.com/robfig/cron/v3"
)

// Enqueuer accepts correction work discovered by the scanner
type Enqueuer interface {
	Enqueue(req jobs.EnqueueRequest) (*jobs.CorrectionJob, bool)
}

type scanService struct {
	cfg             config.Config
	lastTriggerTime time.Time
	cronExpr        string
	cron            *cron.Cron
	queue           Enqueuer
}

func NewRunnableScanService(
	cfg config.Config,
	cron *cron.Cron,
	queue Enqueuer,
) scanService {
	return scanService{
		cfg:      cfg,
		cronExpr: cfg.Server.CronExpr,
		cron:     cron,
		queue:    queue,
	}
}

var singleflightGroup singleflight.Group

func (s scanService) Schedule(
	ctx context.Context,
) error {
	log.Info("Run ScanService")

	runFunc := func() {
		_, _, _ = singleflightGroup.Do("scan", func() (any, error) {
			for _, dir := range s.cfg.Media.MediaPaths() {
				log.Info("Scanning dir %s", dir)
				err := s.scan(ctx, dir)
				if err != nil {
					log.Error("Failed to scan dir %s: %v", dir, err)
				}
			}
			return nil, nil
		})
	}
	_, err := s.cron.AddFunc(s.cronExpr, runFunc)
	return err
}

func (s scanService) scan(
	ctx context.Context,
	dir string,
) error {
	pairs, err := s.findCorrectionPairsInDir(ctx, dir)
	if err != nil {
		log.Error("Failed to find correction pairs in dir %s: %v", dir, err)
		return err
	}
	log.Info("Found %d correction pairs in dir %s", len(pairs), dir)

	for _, pair := range pairs {
		job, enqueued := s.queue.Enqueue(jobs.EnqueueRequest{
			Source:    "scanner",
			DedupeKey: pair.SubtitlePath,
			Payload: jobs.JobPayload{
				SubtitleFile:  pair.SubtitlePath,
				ReferenceFile: pair.ReferencePath,
			},
		})
		if enqueued {
			log.Info("Enqueued correction job %s for %s", job.ID, pair.SubtitlePath)
		} else {
			log.Debug("Correction already queued for %s (job %s)", pair.SubtitlePath, job.ID)
		}
	}
	return nil
}

func (s scanService) findCorrectionPairsInDir(
	_ context.Context,
	dir string,
) ([]CorrectionPair, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory %s does not exist", dir)
	}

	startTime, err := s.startTime()
	if err != nil {
		return nil, fmt.Errorf("failed to get start time: %w", err)
	}
	log.Info("Start searching subtitle files modified after: %v", startTime)

	recentFiles, err := file.FindRecentAfter(dir, startTime)
	if err != nil {
		return nil, fmt.Errorf("failed to find recent files: %w", err)
	}

	var pairs []CorrectionPair
	processed := make(map[string]bool)

	for _, filePath := range recentFiles {
		ext := strings.ToLower(filepath.Ext(filePath))
		if !isSubtitleFile(ext) {
			continue
		}
		if isCorrectedOutput(filePath) {
			continue
		}
		if processed[filePath] {
			continue
		}
		processed[filePath] = true

		if hasCorrectedSibling(filePath) {
			log.Debug("Corrected output already exists for %s", filePath)
			continue
		}

		referencePath := findMatchingReference(filePath)
		if referencePath == "" {
			log.Debug("No reference transcript found for %s", filePath)
			continue
		}

		pairs = append(pairs, CorrectionPair{
			SubtitlePath:  filePath,
			ReferencePath: referencePath,
		})
	}

	return pairs, nil
}

// isCorrectedOutput reports whether the path is a file this service produced
// e.g. "ep1.corrected.srt"
func isCorrectedOutput(path string) bool {
	base := filepath.Base(path)
	withoutExt := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.HasSuffix(withoutExt, correctedMarker)
}

// hasCorrectedSibling checks whether the corrected output already exists
// next to the subtitle
func hasCorrectedSibling(subtitlePath string) bool {
	correctedPath := file.InsertSuffix(subtitlePath, correctedMarker)
	_, err := os.Stat(correctedPath)
	return err == nil
}

// findMatchingReference locates a transcript file sharing the subtitle's
// base name, trying the known reference extensions in order.
// e.g. "ep1.srt" -> "ep1.txt" or "ep1.reference.txt"
func findMatchingReference(subtitlePath string) string {
	baseName := getBaseName(subtitlePath)
	baseDir := filepath.Dir(subtitlePath)

	for _, ext := range referenceExts {
		targetPath := filepath.Join(baseDir, baseName+ext)
		if _, err := os.Stat(targetPath); err == nil {
			return targetPath
		}
	}

	return ""
}

// getBaseName extracts the base name of a file
// e.g. "ep1.srt" -> "ep1"
// e.g. "ep1.eng.srt" -> "ep1"
func getBaseName(filePath string) string {
	fileName := filepath.Base(filePath)
	if !strings.Contains(fileName, ".") {
		return fileName
	}
	return strings.Split(fileName, ".")[0]
}

// isSubtitleFile checks if the file extension is a supported subtitle format
func isSubtitleFile(ext string) bool {
	return slices.Contains(subtitleExts, ext)
}

func (s scanService) startTime() (time.Time, error) {
	if s.lastTriggerTime.IsZero() {
		cronSchedule, err := icron.GetTriggerInfo(s.cronExpr, time.Now())
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to get cron schedule: %w", err)
		}

		if time.Now().Add(-24 * 1 * time.Hour).Before(cronSchedule.Last) {
			return time.Now().Add(-24 * 7 * time.Hour), nil
		}
		return cronSchedule.Last, nil
	}

	return s.lastTriggerTime, nil
}
