package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/address-precision/internal/rowio"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleUpload accepts a multipart form with a "file" field and registers a
// job for it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close() //nolint:errcheck

	job := &Job{
		ID:        uuid.New().String(),
		Filename:  header.Filename,
		State:     JobUploaded,
		CreatedAt: time.Now().UTC(),
	}
	job.inputPath = filepath.Join(s.workDir, job.ID+"-"+filepath.Base(header.Filename))

	dst, err := os.Create(job.inputPath)
	if err != nil {
		zap.L().Error("upload store failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close() //nolint:errcheck
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if err := dst.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}

	s.putJob(job)
	zap.L().Info("file uploaded",
		zap.String("job_id", job.ID),
		zap.String("filename", job.Filename))
	writeJSON(w, http.StatusCreated, job)
}

// handleRun starts processing a job asynchronously.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	started, found := s.startJob(id)
	if !found {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if !started {
		writeError(w, http.StatusConflict, "job already running")
		return
	}
	go s.runJob(context.WithoutCancel(r.Context()), id)

	writeJSON(w, http.StatusAccepted, map[string]string{"id": id, "state": string(JobRunning)})
}

func (s *Server) runJob(ctx context.Context, id string) {
	job, ok := s.getJob(id)
	if !ok {
		return
	}

	records, headers, err := rowio.ReadFile(job.inputPath, s.mapping)
	if err != nil {
		s.failJob(id, err)
		return
	}

	results, stats, err := s.orch.Process(ctx, records)
	if err != nil {
		s.failJob(id, err)
		return
	}

	outputPath := filepath.Join(s.workDir, id+"-out.csv")
	if err := rowio.WriteCSV(outputPath, headers, results); err != nil {
		s.failJob(id, err)
		return
	}

	now := time.Now().UTC()
	s.updateJob(id, func(j *Job) {
		j.State = JobDone
		j.Stats = &stats
		j.FinishedAt = &now
		j.outputPath = outputPath
	})
	zap.L().Info("job finished",
		zap.String("job_id", id),
		zap.Int("total", stats.Total),
		zap.Int("succeeded", stats.Succeeded))
}

func (s *Server) failJob(id string, err error) {
	zap.L().Error("job failed", zap.String("job_id", id), zap.Error(err))
	now := time.Now().UTC()
	s.updateJob(id, func(j *Job) {
		j.State = JobFailed
		j.Error = err.Error()
		j.FinishedAt = &now
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.getJob(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	job, ok := s.getJob(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	if job.State != JobDone {
		writeError(w, http.StatusConflict, "job is not done")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filepath.Base(job.outputPath)+`"`)
	http.ServeFile(w, r, job.outputPath)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
