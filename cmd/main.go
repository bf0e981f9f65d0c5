package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/MimeLyc/ref-sub-corrector/internal/config"
	"github.com/MimeLyc/ref-sub-corrector/internal/corrector"
	"github.com/MimeLyc/ref-sub-corrector/internal/httpapi"
	"github.com/MimeLyc/ref-sub-corrector/internal/jobs"
	"github.com/MimeLyc/ref-sub-corrector/internal/llm"
	"github.com/MimeLyc/ref-sub-corrector/internal/persistence"
	"github.com/MimeLyc/ref-sub-corrector/internal/service"
	"github.com/MimeLyc/ref-sub-corrector/pkg/log"
)

type scheduler interface {
	Schedule(ctx context.Context) error
}

type cronEngine interface {
	Start()
	Stop() context.Context
}

type httpServer interface {
	ListenAndServe(addr string) error
	Shutdown(ctx context.Context) error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}
	log.InitLogger(log.ParseLevel(cfg.Server.LogLevel))

	store, err := persistence.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		log.Fatal("Failed to open job store: %v", err)
	}
	defer store.Close()

	queue := jobs.NewQueue(cfg.Server.WorkerCount, store)
	queue.Start(newJobExecutor(*cfg, store))
	defer queue.Stop()

	cronRunner := cron.New()
	scanSvc := service.NewRunnableScanService(*cfg, cronRunner, queue)
	apiSrv := httpapi.NewServer(queue, httpapi.WithRunRecordStore(store))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runWithComponents(ctx, cfg, scanSvc, cronRunner, apiSrv); err != nil {
		log.Fatal("Service terminated: %v", err)
	}
}

func runWithComponents(
	ctx context.Context,
	cfg *config.Config,
	scanSvc scheduler,
	cronRunner cronEngine,
	apiSrv httpServer,
) error {
	if err := scanSvc.Schedule(ctx); err != nil {
		return err
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API listening on %s", cfg.Server.HTTPAddr)
		err := apiSrv.ListenAndServe(cfg.Server.HTTPAddr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = apiSrv.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// newJobExecutor builds the worker body: one queue job is one full
// correction run over a subtitle/reference pair.
func newJobExecutor(cfg config.Config, store *persistence.SQLiteStore) jobs.Executor {
	return func(ctx context.Context, job *jobs.CorrectionJob) error {
		client, err := llm.NewClient(&llm.Config{
			APIKey:      cfg.LLM.APIKey,
			APIURL:      cfg.LLM.APIURL,
			Model:       cfg.LLM.Model,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			SiteURL:     cfg.LLM.SiteURL,
			AppName:     cfg.LLM.AppName,
		})
		if err != nil {
			return err
		}

		rules, err := cfg.Correct.Rules()
		if err != nil {
			return err
		}

		tracker := service.NewRunTracker(nil)
		corr := corrector.NewLLMCorrector(client, corrector.Config{
			BatchSize:          cfg.Correct.BatchSize,
			MaxAttempts:        cfg.Correct.MaxAttempts,
			RateLimitBaseDelay: cfg.Correct.RateLimitBaseDelay,
			RateLimitStep:      cfg.Correct.RateLimitStep,
			OverloadDelay:      cfg.Correct.OverloadDelay,
			RetryDelay:         cfg.Correct.RetryDelay,
			BatchCooldown:      cfg.Correct.BatchCooldown,
			ReferenceLimit:     cfg.Correct.ReferenceLimit,
			Rules:              rules,
		}, corrector.WithProgress(tracker.BatchDone))

		runConfig := service.CorrectorConfig{
			InputPath:     job.Payload.SubtitleFile,
			ReferencePath: job.Payload.ReferenceFile,
		}
		if job.Payload.OutputFile != "" {
			runConfig.OutputDir = filepath.Dir(job.Payload.OutputFile)
			runConfig.OutputName = filepath.Base(job.Payload.OutputFile)
		}

		fileCorrector, err := service.NewFileCorrector(runConfig, corr, tracker)
		if err != nil {
			return err
		}

		result, err := fileCorrector.Correct(ctx)
		if err != nil {
			log.Error("Correction job %s failed: %v", job.ID, err)
			return err
		}

		log.Info("Correction job %s wrote %s", job.ID, result.OutputPath)
		if saveErr := store.SaveRunRecord(ctx, persistence.RunRecord{
			JobID:          job.ID,
			SubtitleFile:   job.Payload.SubtitleFile,
			OutputFile:     result.OutputPath,
			Language:       result.Metadata.Language.String(),
			ReferenceChars: result.Metadata.ReferenceChars,
			CharCount:      result.Metadata.CharCount,
			BatchCount:     result.Metadata.BatchCount,
			Duration:       result.Metadata.CorrectionTime,
			FinishedAt:     time.Now().UTC(),
		}); saveErr != nil {
			log.Error("Failed to record run for job %s: %v", job.ID, saveErr)
		}
		return nil
	}
}
