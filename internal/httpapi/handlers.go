package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/MimeLyc/ref-sub-corrector/internal/jobs"
)

type enqueueJobRequest struct {
	Source        string `json:"source"`
	DedupeKey     string `json:"dedupe_key"`
	SubtitlePath  string `json:"subtitle_path"`
	ReferencePath string `json:"reference_path"`
	OutputPath    string `json:"output_path"`
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.queue.List())
	case http.MethodPost:
		var req enqueueJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid json body")
			return
		}
		if req.Source == "" {
			req.Source = "manual"
		}
		if req.SubtitlePath == "" {
			writeError(w, http.StatusBadRequest, "subtitle_path is required")
			return
		}
		if req.ReferencePath == "" {
			writeError(w, http.StatusBadRequest, "reference_path is required")
			return
		}
		if req.DedupeKey == "" {
			req.DedupeKey = req.SubtitlePath
		}

		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Source:    req.Source,
			DedupeKey: req.DedupeKey,
			Payload: jobs.JobPayload{
				SubtitleFile:  req.SubtitlePath,
				ReferenceFile: req.ReferencePath,
				OutputFile:    req.OutputPath,
			},
		})
		code := http.StatusCreated
		if !created {
			code = http.StatusOK
		}
		writeJSON(w, code, map[string]any{
			"created": created,
			"job":     job,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}
