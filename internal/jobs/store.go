package jobs

import "context"

// Store persists job states for queue restart recovery.
type Store interface {
	LoadJobs(ctx context.Context) ([]*CorrectionJob, error)
	UpsertJob(ctx context.Context, job *CorrectionJob) error
	DeleteJob(ctx context.Context, jobID string) error
	// DeleteJobData removes all auxiliary data (run events, temp caches) for a job.
	DeleteJobData(ctx context.Context, jobID string) error
}
