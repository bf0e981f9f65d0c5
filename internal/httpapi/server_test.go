package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/ref-sub-corrector/internal/jobs"
	"github.com/MimeLyc/ref-sub-corrector/internal/persistence"
)

func TestServer_CreateJob_WithPayload(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	srv := NewServer(queue)

	body := []byte(`{"source":"manual","subtitle_path":"/media/ep1.srt","reference_path":"/media/ep1.txt"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var ret struct {
		Created bool                `json:"created"`
		Job     *jobs.CorrectionJob `json:"job"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	require.True(t, ret.Created)
	require.NotNil(t, ret.Job)
	require.Equal(t, "/media/ep1.srt", ret.Job.DedupeKey)
	require.Equal(t, "/media/ep1.srt", ret.Job.Payload.SubtitleFile)
	require.Equal(t, "/media/ep1.txt", ret.Job.Payload.ReferenceFile)
}

func TestServer_CreateJob_RequiresSubtitlePath(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	srv := NewServer(queue)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader([]byte(`{"source":"manual"}`)))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateJob_RequiresReferencePath(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	srv := NewServer(queue)

	body := []byte(`{"source":"manual","subtitle_path":"/media/ep1.srt"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateJob_DeduplicatesByDefaultKey(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	srv := NewServer(queue)

	body := []byte(`{"subtitle_path":"/media/ep1.srt","reference_path":"/media/ep1.txt"}`)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/jobs", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var ret struct {
		Created bool `json:"created"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ret))
	require.False(t, ret.Created)
}

func TestServer_ListJobs(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	_, created := queue.Enqueue(jobs.EnqueueRequest{
		Source:    "scanner",
		DedupeKey: "/media/ep1.srt",
		Payload: jobs.JobPayload{
			SubtitleFile:  "/media/ep1.srt",
			ReferenceFile: "/media/ep1.txt",
		},
	})
	require.True(t, created)

	srv := NewServer(queue)
	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var list []*jobs.CorrectionJob
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, jobs.StatusPending, list[0].Status)
}

func TestServer_GetJobDetail_IncludesRunRecords(t *testing.T) {
	tmp := t.TempDir()
	store, err := persistence.NewSQLiteStore(filepath.Join(tmp, "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	queue := jobs.NewQueue(1, store)
	job, created := queue.Enqueue(jobs.EnqueueRequest{
		Source:    "manual",
		DedupeKey: "/media/ep1.srt",
		Payload: jobs.JobPayload{
			SubtitleFile:  "/media/ep1.srt",
			ReferenceFile: "/media/ep1.txt",
		},
	})
	require.True(t, created)
	require.NoError(t, store.SaveRunRecord(context.Background(), persistence.RunRecord{
		JobID:      job.ID,
		OutputFile: "/media/ep1.corrected.srt",
		BatchCount: 2,
		Duration:   5 * time.Second,
		FinishedAt: time.Now().UTC(),
	}))

	srv := NewServer(queue, WithRunRecordStore(store))
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Job struct {
			ID string `json:"id"`
		} `json:"job"`
		Runs []struct {
			OutputFile string `json:"output_file"`
			BatchCount int    `json:"batch_count"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, job.ID, resp.Job.ID)
	require.Len(t, resp.Runs, 1)
	require.Equal(t, "/media/ep1.corrected.srt", resp.Runs[0].OutputFile)
	require.Equal(t, 2, resp.Runs[0].BatchCount)
}

func TestServer_GetJobDetail_NotFound(t *testing.T) {
	queue := jobs.NewQueue(1, nil)
	srv := NewServer(queue)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/no-such-job", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	srv := NewServer(jobs.NewQueue(1, nil))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}
