// Package qaastest provides an in-memory fake of the QaaS control plane
// for tests.
//
// The fake covers the endpoints the client speaks: platform listing,
// session leasing with deduplication reuse, model upload, job creation
// and status polling, result records, and an unauthenticated blob store
// standing in for presigned object storage.
//
// Usage:
//
//	srv := qaastest.NewServer(t, qaastest.Options{})
//	client, _ := qaas.New(qaas.Config{
//	    ProjectID: qaastest.ProjectID,
//	    SecretKey: qaastest.Token,
//	    BaseURL:   srv.URL(),
//	})
package qaastest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openqaas/goqaas/pkg/qaas"
)

const (
	// Token is the API token the fake accepts.
	Token = "qaastest-token"

	// ProjectID is the project scope the fake expects.
	ProjectID = "qaastest-project"
)

// DefaultPlatforms is the platform catalog seeded into new servers.
var DefaultPlatforms = []qaas.Platform{
	{
		ID: "plat-aer-1", Name: "aer_simulation_h100", Version: "1.0",
		MaxQubitCount: 34, MaxShotCount: 100000, MaxCircuitCount: 100,
		Availability: "available", Type: "simulator", Technology: "gpu",
		BackendName: "aer", ProviderName: "quantum-cloud",
	},
	{
		ID: "plat-qsim-1", Name: "qsim_simulation_h100", Version: "0.21",
		MaxQubitCount: 32, MaxShotCount: 100000, MaxCircuitCount: 1,
		Availability: "available", Type: "simulator", Technology: "gpu",
		BackendName: "qsim", ProviderName: "quantum-cloud",
	},
	{
		ID: "plat-aqt-1", Name: "aqt_ibex_q12", Version: "1.0",
		MaxQubitCount: 12, MaxShotCount: 2000, MaxCircuitCount: 50,
		Availability: "available", Type: "qpu", Technology: "trapped_ion",
		BackendName: "aqt", ProviderName: "aqt",
	},
}

// Options configures a fake server.
type Options struct {
	// Platforms seeds the catalog. Nil uses DefaultPlatforms.
	Platforms []qaas.Platform

	// StatusSequence scripts the statuses each job reports on
	// successive GET /jobs/{id} calls, sticking on the last entry.
	// Nil means every job completes immediately ("completed").
	StatusSequence []string
}

type sessionRecord struct {
	session    qaas.Session
	platformID string
	live       bool
}

type jobRecord struct {
	job       qaas.Job
	sessionID string
	modelID   string
	statuses  []string // remaining scripted statuses
	polls     int
	results   []qaas.JobResult
}

// Server is an in-memory fake control plane.
type Server struct {
	ts *httptest.Server

	mu        sync.Mutex
	platforms []qaas.Platform
	sessions  map[string]*sessionRecord
	dedup     map[string]string // platformID + "/" + dedupID -> session id
	models    map[string]string
	jobs      map[string]*jobRecord
	blobs     map[string][]byte
	counts    map[string]int
	script    []string
}

// NewServer starts a fake control plane. The server shuts down with the
// test.
func NewServer(t *testing.T, opts Options) *Server {
	t.Helper()

	platforms := opts.Platforms
	if platforms == nil {
		platforms = DefaultPlatforms
	}
	script := opts.StatusSequence
	if script == nil {
		script = []string{string(qaas.JobStatusCompleted)}
	}

	s := &Server{
		platforms: platforms,
		sessions:  map[string]*sessionRecord{},
		dedup:     map[string]string{},
		models:    map[string]string{},
		jobs:      map[string]*jobRecord{},
		blobs:     map[string][]byte{},
		counts:    map[string]int{},
		script:    script,
	}

	r := chi.NewRouter()
	r.Use(s.countRequests)

	// Blob store is unauthenticated, like a presigned URL.
	r.Get("/store/{key}", s.handleBlob)

	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/platforms", s.handleListPlatforms)
		r.Post("/sessions", s.handleCreateSession)
		r.Patch("/sessions/{id}", s.handleUpdateSession)
		r.Post("/sessions/{id}/terminate", s.handleTerminateSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
		r.Post("/models", s.handleCreateModel)
		r.Post("/jobs", s.handleCreateJob)
		r.Get("/jobs/{id}", s.handleGetJob)
		r.Get("/jobs/{id}/results", s.handleGetJobResults)
	})

	s.ts = httptest.NewServer(r)
	t.Cleanup(s.ts.Close)
	return s
}

// URL returns the base URL of the fake control plane.
func (s *Server) URL() string {
	return s.ts.URL
}

// StoreBlob stores a payload in the fake object store and returns a
// presigned-style URL for it.
func (s *Server) StoreBlob(key string, data []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return s.ts.URL + "/store/" + key
}

// SetJobResults overrides the result records a completed job returns.
func (s *Server) SetJobResults(jobID string, results []qaas.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[jobID]; ok {
		rec.results = results
	}
}

// FailJob forces a job into the given terminal status on its next poll.
func (s *Server) FailJob(jobID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[jobID]; ok {
		rec.statuses = []string{status}
	}
}

// RequestCount returns how many requests matched method and path
// (exact match on the request path, e.g. "GET /store/r1").
func (s *Server) RequestCount(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+path]
}

// PollCount returns how often a job's status was queried.
func (s *Server) PollCount(jobID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.jobs[jobID]; ok {
		return rec.polls
	}
	return 0
}

// SessionCount returns the number of sessions ever created.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// LiveSessionCount returns the number of sessions that are neither
// terminated nor deleted.
func (s *Server) LiveSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.sessions {
		if rec.live {
			n++
		}
	}
	return n
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Auth-Token") != Token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleListPlatforms(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	providerName := r.URL.Query().Get("providerName")

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []qaas.Platform
	for _, p := range s.platforms {
		if name != "" && p.Name != name {
			continue
		}
		if providerName != "" && p.ProviderName != providerName {
			continue
		}
		out = append(out, p)
	}
	writeJSON(w, map[string]any{"platforms": out})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		ProjectID       string `json:"project_id"`
		PlatformID      string `json:"platform_id"`
		DeduplicationID string `json:"deduplication_id"`
		MaxDuration     string `json:"max_duration"`
		MaxIdleDuration string `json:"max_idle_duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.ProjectID != ProjectID {
		writeError(w, http.StatusForbidden, "unknown project")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Idempotent create: a live session with the same deduplication id
	// on the same platform is returned instead of a duplicate.
	if req.DeduplicationID != "" {
		key := req.PlatformID + "/" + req.DeduplicationID
		if id, ok := s.dedup[key]; ok {
			if rec := s.sessions[id]; rec != nil && rec.live {
				writeJSON(w, rec.session)
				return
			}
		}
	}

	maxDur, err := qaas.ParseDuration(req.MaxDuration)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid max_duration")
		return
	}
	maxIdle, err := qaas.ParseDuration(req.MaxIdleDuration)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid max_idle_duration")
		return
	}

	rec := &sessionRecord{
		session: qaas.Session{
			ID:              "ses-" + uuid.NewString()[:8],
			Name:            req.Name,
			Status:          "running",
			DeduplicationID: req.DeduplicationID,
			MaxDuration:     maxDur,
			MaxIdleDuration: maxIdle,
		},
		platformID: req.PlatformID,
		live:       true,
	}
	s.sessions[rec.session.ID] = rec
	if req.DeduplicationID != "" {
		s.dedup[req.PlatformID+"/"+req.DeduplicationID] = rec.session.ID
	}
	writeJSON(w, rec.session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		MaxDuration     string `json:"max_duration"`
		MaxIdleDuration string `json:"max_idle_duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[chi.URLParam(r, "id")]
	if !ok || !rec.live {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if req.Name != "" {
		rec.session.Name = req.Name
	}
	if d, err := qaas.ParseDuration(req.MaxDuration); err == nil {
		rec.session.MaxDuration = d
	}
	if d, err := qaas.ParseDuration(req.MaxIdleDuration); err == nil {
		rec.session.MaxIdleDuration = d
	}
	writeJSON(w, rec.session)
}

func (s *Server) handleTerminateSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	rec.live = false
	rec.session.Status = "terminated"
	writeJSON(w, rec.session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[chi.URLParam(r, "id")]
	if !ok {
		// Deleting an already reclaimed session is not an error.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	rec.live = false
	rec.session.Status = "deleted"
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Payload == "" {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := "mod-" + uuid.NewString()[:8]
	s.models[id] = req.Payload
	writeJSON(w, qaas.Model{ID: id})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		SessionID  string `json:"session_id"`
		ModelID    string `json:"model_id"`
		Parameters string `json:"parameters"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[req.SessionID]
	if !ok || !sess.live {
		writeError(w, http.StatusBadRequest, "session not found or terminated")
		return
	}
	payload, ok := s.models[req.ModelID]
	if !ok {
		writeError(w, http.StatusBadRequest, "model not found")
		return
	}

	rec := &jobRecord{
		job: qaas.Job{
			ID:     "job-" + uuid.NewString()[:8],
			Name:   req.Name,
			Status: qaas.JobStatusWaiting,
		},
		sessionID: req.SessionID,
		modelID:   req.ModelID,
		statuses:  append([]string(nil), s.script...),
		results:   defaultResults(payload),
	}
	s.jobs[rec.job.ID] = rec
	writeJSON(w, rec.job)
}

// defaultResults fabricates one inline result per circuit found in the
// model payload, so unconfigured jobs still return an ordered batch.
func defaultResults(payload string) []qaas.JobResult {
	var model struct {
		Run struct {
			Circuits []json.RawMessage `json:"circuits"`
		} `json:"run"`
	}
	n := 1
	if err := json.Unmarshal([]byte(payload), &model); err == nil && len(model.Run.Circuits) > 0 {
		n = len(model.Run.Circuits)
	}
	results := make([]qaas.JobResult, n)
	for i := range results {
		results[i] = qaas.JobResult{Result: fmt.Sprintf("result-%d", i)}
	}
	return results
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	rec.polls++
	if len(rec.statuses) > 0 {
		rec.job.Status = qaas.JobStatus(rec.statuses[0])
		if len(rec.statuses) > 1 {
			rec.statuses = rec.statuses[1:]
		}
	}
	writeJSON(w, rec.job)
}

func (s *Server) handleGetJobResults(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[chi.URLParam(r, "id")]
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, map[string]any{"job_results": rec.results})
}

func (s *Server) handleBlob(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	data, ok := s.blobs[chi.URLParam(r, "key")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "blob not found")
		return
	}
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
