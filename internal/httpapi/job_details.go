package httpapi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/MimeLyc/ref-sub-corrector/internal/jobs"
	"github.com/MimeLyc/ref-sub-corrector/internal/persistence"
)

var errJobNotFound = errors.New("job not found")

type jobDetailResponse struct {
	Job  *jobs.CorrectionJob     `json:"job"`
	Runs []persistence.RunRecord `json:"runs"`
}

func (s *Server) handleJobDetailRoutes(w http.ResponseWriter, r *http.Request) {
	jobID, ok := parseJobRoute(r.URL.Path)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	detail, err := s.buildJobDetail(r, jobID)
	if err != nil {
		switch {
		case errors.Is(err, errJobNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func parseJobRoute(path string) (jobID string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/api/jobs/")
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" || strings.Contains(trimmed, "/") {
		return "", false
	}
	rawID, err := url.PathUnescape(trimmed)
	if err != nil || strings.TrimSpace(rawID) == "" {
		return "", false
	}
	return rawID, true
}

func (s *Server) buildJobDetail(r *http.Request, jobID string) (jobDetailResponse, error) {
	job, ok := s.queue.Get(jobID)
	if !ok {
		return jobDetailResponse{}, errJobNotFound
	}

	runs := make([]persistence.RunRecord, 0)
	if s.runs != nil {
		loaded, err := s.runs.LoadRunRecords(r.Context(), jobID)
		if err != nil {
			return jobDetailResponse{}, err
		}
		runs = loaded
	}

	return jobDetailResponse{
		Job:  job,
		Runs: runs,
	}, nil
}
