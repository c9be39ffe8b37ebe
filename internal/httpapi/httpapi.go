// Package httpapi exposes the ingest and query contracts of spec §6 over
// plain net/http: enqueue an indexing request, poll its status, and run a
// ChessQL query against the feature store.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/atinm/chesstactics/internal/chesserr"
	"github.com/atinm/chesstactics/internal/chessql"
	"github.com/atinm/chesstactics/internal/store"
	"github.com/atinm/chesstactics/internal/worker"
	"github.com/google/uuid"
)

// Store is the subset of store.FeatureStore the API needs.
type Store interface {
	CreateIndexingRequest(ctx context.Context, req store.IndexingRequest) error
	GetIndexingRequest(ctx context.Context, id string) (*store.IndexingRequest, error)
	ExecuteQuery(ctx context.Context, compiled *chessql.Compiled, limit, offset int) ([]store.GameFeatureRow, error)
}

// NewServer wires s and q into a Server ready to serve Routes().
func NewServer(s Store, q *worker.Queue) *Server {
	return &Server{store: s, queue: q}
}

// Server wires the ingest and query endpoints to their handlers.
type Server struct {
	store Store
	queue *worker.Queue
}

// Routes returns a mux with every endpoint registered.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /index", s.handleEnqueue)
	mux.HandleFunc("GET /index/{id}", s.handleStatus)
	mux.HandleFunc("POST /query", s.handleQuery)
	return mux
}

type enqueueRequest struct {
	Player     string `json:"player"`
	Platform   string `json:"platform"`
	StartMonth string `json:"startMonth"`
	EndMonth   string `json:"endMonth"`
}

type enqueueResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleEnqueue(w http.ResponseWriter, r *http.Request) {
	var req enqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Player == "" || req.Platform == "" || req.StartMonth == "" || req.EndMonth == "" {
		writeError(w, http.StatusBadRequest, &chesserr.InvalidArgument{Detail: "player, platform, startMonth, endMonth are all required"})
		return
	}

	id := uuid.NewString()
	record := store.IndexingRequest{
		ID:         id,
		Player:     req.Player,
		Platform:   req.Platform,
		StartMonth: req.StartMonth,
		EndMonth:   req.EndMonth,
		Status:     store.StatusPending,
	}
	if err := s.store.CreateIndexingRequest(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.queue.Enqueue(worker.IndexMessage{
		RequestID:  id,
		Player:     req.Player,
		Platform:   req.Platform,
		StartMonth: req.StartMonth,
		EndMonth:   req.EndMonth,
	})

	writeJSON(w, http.StatusAccepted, enqueueResponse{ID: id})
}

type statusResponse struct {
	ID           string    `json:"id"`
	Player       string    `json:"player"`
	Platform     string    `json:"platform"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	GamesIndexed int       `json:"gamesIndexed"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, err := s.store.GetIndexingRequest(r.Context(), id)
	if err != nil {
		var notFound *chesserr.NotFound
		if errors.As(err, &notFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{
		ID: req.ID, Player: req.Player, Platform: req.Platform,
		Status: string(req.Status), CreatedAt: req.CreatedAt, UpdatedAt: req.UpdatedAt,
		ErrorMessage: req.ErrorMessage, GamesIndexed: req.GamesIndexed,
	})
}

type queryRequest struct {
	Query  string `json:"query"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Limit < 1 || req.Limit > 1000 {
		writeError(w, http.StatusBadRequest, &chesserr.InvalidArgument{Detail: "limit must be between 1 and 1000"})
		return
	}
	if req.Offset < 0 {
		writeError(w, http.StatusBadRequest, &chesserr.InvalidArgument{Detail: "offset must be >= 0"})
		return
	}

	node, err := chessql.Parse(req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	compiled, err := chessql.Compile(node)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := s.store.ExecuteQuery(r.Context(), compiled, req.Limit, req.Offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
