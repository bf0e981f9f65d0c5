package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/MimeLyc/ref-sub-corrector/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_JobsRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "refsub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	job := &jobs.CorrectionJob{
		ID:        "job-1",
		Source:    "manual",
		DedupeKey: "/media/a.srt",
		Payload: jobs.JobPayload{
			SubtitleFile:  "/media/a.srt",
			ReferenceFile: "/media/a.txt",
		},
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, store.UpsertJob(ctx, job))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, job.ID, all[0].ID)
	assert.Equal(t, job.Status, all[0].Status)
	assert.Equal(t, job.Payload.SubtitleFile, all[0].Payload.SubtitleFile)
	assert.Equal(t, job.Payload.ReferenceFile, all[0].Payload.ReferenceFile)
}

func TestSQLiteStore_UpsertUpdatesStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "refsub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	job := &jobs.CorrectionJob{
		ID:        "job-1",
		Status:    jobs.StatusPending,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.UpsertJob(ctx, job))

	job.Status = jobs.StatusFailed
	job.Error = "remote service reported an error"
	require.NoError(t, store.UpsertJob(ctx, job))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, jobs.StatusFailed, all[0].Status)
	assert.Equal(t, "remote service reported an error", all[0].Error)
}

func TestSQLiteStore_RunRecordsRoundTripAndCleanup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "refsub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	record := RunRecord{
		JobID:          "job-1",
		SubtitleFile:   "/media/a.srt",
		OutputFile:     "/media/a.corrected.srt",
		Language:       "en",
		ReferenceChars: 1200,
		CharCount:      800,
		BatchCount:     3,
		Duration:       42 * time.Second,
		FinishedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.SaveRunRecord(ctx, record))

	records, err := store.LoadRunRecords(ctx, "job-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, record.OutputFile, records[0].OutputFile)
	assert.Equal(t, record.BatchCount, records[0].BatchCount)
	assert.Equal(t, 42*time.Second, records[0].Duration)

	require.NoError(t, store.DeleteJobData(ctx, "job-1"))
	records, err = store.LoadRunRecords(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSQLiteStore_DeleteJob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := NewSQLiteStore(filepath.Join(dir, "refsub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	job := &jobs.CorrectionJob{
		ID:        "job-1",
		Status:    jobs.StatusSuccess,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.UpsertJob(ctx, job))
	require.NoError(t, store.DeleteJob(ctx, "job-1"))

	all, err := store.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
