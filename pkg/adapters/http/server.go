package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/sanitize"
)

// Engine defines the tree operations served over HTTP.
type Engine interface {
	Tree() domain.Tree
	FindNode(id string) (domain.Node, bool)
	AddNode(ctx context.Context, parentID, name string) domain.Tree
	RenameNode(ctx context.Context, id, newName string) domain.Tree
	DeleteNode(ctx context.Context, id string) domain.Tree
	ToggleExpand(ctx context.Context, id string) domain.Tree
}

// Server exposes an Engine as a JSON API.
// Commands are serialized so the engine only ever sees one caller.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Logger  *slog.Logger

	mu      sync.Mutex
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// MutationResponse is returned by every mutating endpoint.
type MutationResponse struct {
	Tree domain.Tree      `json:"tree"`
	Diff *domain.TreeDiff `json:"diff"`
}

type addRequest struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

type renameRequest struct {
	Name string `json:"name"`
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	r.Get("/tree", server.GetTree)
	r.Get("/events", server.SubscribeEvents)
	r.Route("/nodes", func(r chi.Router) {
		r.Post("/", server.AddNode)
		r.Get("/{id}", server.GetNode)
		r.Patch("/{id}", server.RenameNode)
		r.Delete("/{id}", server.DeleteNode)
		r.Post("/{id}/toggle", server.ToggleNode)
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "arbor-http",
		"version": strings.TrimSpace(arbor.Version),
	})
}

// GetTree handles the GET /tree request.
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tree := s.Engine.Tree()
	s.mu.Unlock()

	s.writeJSON(w, http.StatusOK, nonNil(tree))
}

// GetNode handles the GET /nodes/{id} request.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	node, ok := s.Engine.FindNode(id)
	s.mu.Unlock()

	if !ok {
		s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id))
		return
	}
	s.writeJSON(w, http.StatusOK, node)
}

// AddNode handles the POST /nodes request. An empty parent_id adds a root.
func (s *Server) AddNode(w http.ResponseWriter, r *http.Request) {
	var body addRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.Logger.Warn("AddNode: Invalid request body", "error", err)
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	name, err := sanitize.Name(body.Name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mutate(w, r, body.ParentID, body.ParentID != "", http.StatusCreated, func(ctx context.Context) domain.Tree {
		return s.Engine.AddNode(ctx, body.ParentID, name)
	})
}

// RenameNode handles the PATCH /nodes/{id} request.
func (s *Server) RenameNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body renameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.Logger.Warn("RenameNode: Invalid request body", "error", err)
		s.writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	name, err := sanitize.Name(body.Name)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	s.mutate(w, r, id, true, http.StatusOK, func(ctx context.Context) domain.Tree {
		return s.Engine.RenameNode(ctx, id, name)
	})
}

// DeleteNode handles the DELETE /nodes/{id} request.
func (s *Server) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, id, true, http.StatusOK, func(ctx context.Context) domain.Tree {
		return s.Engine.DeleteNode(ctx, id)
	})
}

// ToggleNode handles the POST /nodes/{id}/toggle request.
func (s *Server) ToggleNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, id, true, http.StatusOK, func(ctx context.Context) domain.Tree {
		return s.Engine.ToggleExpand(ctx, id)
	})
}

// mutate runs fn under the command lock. When mustExist is set, an unknown
// id is answered with 404 without calling the engine.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, id string, mustExist bool, status int, fn func(context.Context) domain.Tree) {
	s.mu.Lock()
	if mustExist {
		if _, ok := s.Engine.FindNode(id); !ok {
			s.mu.Unlock()
			s.writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", domain.ErrNodeNotFound, id))
			return
		}
	}
	before := s.Engine.Tree()
	after := fn(r.Context())
	s.mu.Unlock()

	diff := domain.Diff(before, after)
	if !diff.Empty() {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(string(payload))
		}
	}
	s.Logger.Debug("Mutation applied", "path", r.URL.Path, "node_id", id, "changed", !diff.Empty())

	s.writeJSON(w, status, MutationResponse{Tree: nonNil(after), Diff: diff})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("Response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func nonNil(tree domain.Tree) domain.Tree {
	if tree == nil {
		return domain.Tree{}
	}
	return tree
}
