// Package devserver is a local stand-in for the dataset host and the
// registration backend, for development and tests.
package devserver

import (
	"embed"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

//go:embed fixtures/*.json
var fixtures embed.FS

// Datasets served under /data/<name>.json
var Datasets = []string{"universities", "postcode", "regioncode"}

// Options configures a Server.
type Options struct {
	// Fail lists datasets that answer 500 instead of their fixture.
	Fail []string
	// Latency delays every dataset response.
	Latency time.Duration
}

// Server serves fixture datasets and a minimal in-memory backend.
type Server struct {
	opts Options
	fail map[string]bool

	mu       sync.Mutex
	hits     map[string]int
	students map[string]map[string]any // by passport
	tokens   map[string]string         // token -> passport
}

// New creates a Server
func New(opts Options) *Server {
	fail := make(map[string]bool, len(opts.Fail))
	for _, name := range opts.Fail {
		fail[strings.TrimSpace(name)] = true
	}
	return &Server{
		opts:     opts,
		fail:     fail,
		hits:     make(map[string]int),
		students: make(map[string]map[string]any),
		tokens:   make(map[string]string),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/data/{name}.json", s.handleDataset)
	r.Post("/api", s.handleAPI)
	return r
}

// DatasetHits returns how many times a dataset was requested
func (s *Server) DatasetHits(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[name]
}

// Seed stores an existing student so check can find it
func (s *Server) Seed(student map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	passport, _ := student["passport"].(string)
	s.students[passport] = student
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	s.hits[name]++
	s.mu.Unlock()

	if s.opts.Latency > 0 {
		select {
		case <-time.After(s.opts.Latency):
		case <-r.Context().Done():
			return
		}
	}

	if s.fail[name] {
		http.Error(w, "dataset unavailable", http.StatusInternalServerError)
		return
	}

	data, err := fixtures.ReadFile("fixtures/" + name + ".json")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	var req map[string]any
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	action, _ := req["action"].(string)
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	switch action {
	case "check":
		s.check(w, req)
	case "get":
		s.get(w, token)
	case "add":
		s.add(w, req)
	case "edit":
		s.edit(w, token, req)
	default:
		writeJSON(w, map[string]any{"success": false, "error": map[string]any{"message": "unknown action"}})
	}
}

func (s *Server) check(w http.ResponseWriter, req map[string]any) {
	passport, _ := req["passport"].(string)
	dob, _ := req["dob"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	student, ok := s.students[passport]
	if !ok || student["dob"] != dob {
		writeJSON(w, map[string]any{"success": true})
		return
	}
	token := newToken()
	s.tokens[token] = passport
	writeJSON(w, map[string]any{"success": true, "token": token, "student": student})
}

func (s *Server) get(w http.ResponseWriter, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	passport, ok := s.tokens[token]
	if !ok {
		writeJSON(w, map[string]any{"success": false, "error": map[string]any{"message": "invalid token"}})
		return
	}
	writeJSON(w, map[string]any{"success": true, "student": s.students[passport]})
}

func (s *Server) add(w http.ResponseWriter, req map[string]any) {
	if req["resource"] != "student" {
		writeJSON(w, map[string]any{"success": false, "error": map[string]any{"message": "unsupported resource"}})
		return
	}
	passport, _ := req["passport"].(string)
	if strings.TrimSpace(passport) == "" {
		writeJSON(w, map[string]any{"success": false, "error": map[string]any{"message": "passport required"}})
		return
	}

	student := make(map[string]any)
	for k, v := range req {
		switch k {
		case "action", "resource", "ua", "ugt", "dsw", "w":
			continue
		}
		student[k] = v
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.students[passport]; exists {
		writeJSON(w, map[string]any{"success": false, "error": map[string]any{"message": "student already registered"}})
		return
	}
	s.students[passport] = student
	token := newToken()
	s.tokens[token] = passport
	writeJSON(w, map[string]any{"success": true, "token": token, "student": student})
}

func (s *Server) edit(w http.ResponseWriter, token string, req map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	passport, ok := s.tokens[token]
	if !ok {
		writeJSON(w, map[string]any{"success": false, "error": map[string]any{"message": "invalid token"}})
		return
	}
	student := s.students[passport]
	for k, v := range req {
		switch k {
		case "action", "ua", "ugt", "dsw", "w", "passport", "token", "section":
			continue
		}
		student[k] = v
	}
	writeJSON(w, map[string]any{"success": true, "student": student})
}

func newToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: encode response: %v", err)
	}
}
