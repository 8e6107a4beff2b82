// Package apitest runs an in-memory todo server speaking the same REST
// contract as the real backend, for use in tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/idilsaglam/tada/internal/model"
)

// Request is a recorded inbound request.
type Request struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

type injected struct {
	status int
	body   string
}

// Server is an httptest server backed by an in-memory slice of items.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	items    []model.Item
	requests []Request
	failures []injected

	// Now stamps created_at; overridable in tests.
	Now func() time.Time
	// NewID assigns item ids; defaults to random UUIDs.
	NewID func() string
}

// NewServer starts a server. Call Close when done.
func NewServer() *Server {
	s := &Server{
		Now:   time.Now,
		NewID: func() string { return uuid.NewString() },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/todos", s.handleCollection)
	mux.HandleFunc("/todos/", s.handleItem)
	s.Server = httptest.NewServer(s.record(mux))
	return s
}

// Seed appends items as if they had been created earlier.
func (s *Server) Seed(items ...model.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, items...)
}

// Items returns a copy of the stored items.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// FailNext makes the next request answer with status and the raw body,
// bypassing the handlers. Calls queue up.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, injected{status: status, body: body})
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(b)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:      r.Method,
			Path:        r.URL.Path,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(b),
		})
		var fail *injected
		if len(s.failures) > 0 {
			f := s.failures[0]
			s.failures = s.failures[1:]
			fail = &f
		}
		s.mu.Unlock()

		if fail != nil {
			w.WriteHeader(fail.status)
			_, _ = io.WriteString(w, fail.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "TODO API is running!",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"GET /todos":         "Get all TODO items",
			"POST /todos":        "Create a new TODO item",
			"PUT /todos/{id}":    "Update a TODO item",
			"DELETE /todos/{id}": "Delete a TODO item",
		},
	})
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		items := s.Items()
		if items == nil {
			items = []model.Item{}
		}
		writeJSON(w, http.StatusOK, items)
	case http.MethodPost:
		var req model.CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
			return
		}
		text := strings.TrimSpace(req.Text)
		if text == "" {
			writeDetail(w, http.StatusBadRequest, "Todo text cannot be empty")
			return
		}
		it := model.Item{
			ID:        s.NewID(),
			Text:      text,
			Completed: false,
			CreatedAt: s.Now().UTC().Format(time.RFC3339Nano),
		}
		s.mu.Lock()
		s.items = append(s.items, it)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, it)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/todos/")
	switch r.Method {
	case http.MethodPut:
		var req model.UpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "invalid body: "+err.Error())
			return
		}
		s.update(w, id, req)
	case http.MethodDelete:
		s.delete(w, id)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (s *Server) update(w http.ResponseWriter, id string, req model.UpdateRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Todo not found")
		return
	}
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			writeDetail(w, http.StatusBadRequest, "Todo text cannot be empty")
			return
		}
		s.items[i].Text = text
	}
	if req.Completed != nil {
		s.items[i].Completed = *req.Completed
	}
	writeJSON(w, http.StatusOK, s.items[i])
}

func (s *Server) delete(w http.ResponseWriter, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		writeDetail(w, http.StatusNotFound, "Todo not found")
		return
	}
	gone := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	writeJSON(w, http.StatusOK, model.DeleteResponse{
		Message: fmt.Sprintf("Todo '%s' deleted successfully", gone.Text),
	})
}

// indexOf must be called with mu held.
func (s *Server) indexOf(id string) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
