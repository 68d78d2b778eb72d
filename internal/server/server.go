// Package server exposes the batch pipeline over HTTP: upload a file, run a
// job, poll its status, download the merged output.
package server

import (
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/address-precision/internal/batch"
	"github.com/sells-group/address-precision/internal/model"
	"github.com/sells-group/address-precision/internal/rowio"
)

// JobState tracks one uploaded file through its run.
type JobState string

const (
	JobUploaded JobState = "uploaded"
	JobRunning  JobState = "running"
	JobDone     JobState = "done"
	JobFailed   JobState = "failed"
)

// Job is the unit of server-side work.
type Job struct {
	ID         string            `json:"id"`
	Filename   string            `json:"filename"`
	State      JobState          `json:"state"`
	Error      string            `json:"error,omitempty"`
	Stats      *model.BatchStats `json:"stats,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	FinishedAt *time.Time        `json:"finished_at,omitempty"`

	inputPath  string
	outputPath string
}

// Server holds the HTTP surface and the in-memory job table.
type Server struct {
	orch    *batch.Orchestrator
	mapping rowio.ColumnMapping
	workDir string

	mu   sync.RWMutex
	jobs map[string]*Job
}

// New builds a server that stores uploads and outputs under workDir.
func New(orch *batch.Orchestrator, mapping rowio.ColumnMapping, workDir string) *Server {
	return &Server{
		orch:    orch,
		mapping: mapping,
		workDir: workDir,
		jobs:    make(map[string]*Job),
	}
}

// Router assembles the chi route tree.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/upload", s.handleUpload)
		r.Post("/jobs/{id}/run", s.handleRun)
		r.Get("/jobs/{id}", s.handleStatus)
		r.Get("/jobs/{id}/download", s.handleDownload)
	})
	return r
}

// getJob returns a copy so handlers never read a job the run goroutine is
// mutating.
func (s *Server) getJob(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

func (s *Server) putJob(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

// startJob moves a job to JobRunning. The check and the transition share one
// critical section so concurrent run requests cannot both claim the job.
func (s *Server) startJob(id string) (started, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return false, false
	}
	if job.State == JobRunning {
		return false, true
	}
	job.State = JobRunning
	job.Error = ""
	return true, true
}

func (s *Server) updateJob(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}
