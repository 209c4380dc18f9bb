package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"factflow/internal/api"
	"factflow/internal/config"
	"factflow/internal/lifecycle"
	"factflow/internal/logging"
	"factflow/internal/services"
)

// RequestIDHeader carries the correlation id of an API request.
const RequestIDHeader = "X-Request-ID"

const maxBodyBytes = 1 << 20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	items   *api.ItemService
	handler http.Handler

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address is required")
	}
	srv := &apiServer{
		bind:   bind,
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
		items:  d.items,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", srv.handleStatus)
	mux.HandleFunc("GET /api/stats", srv.handleStats)
	mux.HandleFunc("GET /api/items", srv.handleListItems)
	mux.HandleFunc("POST /api/items", srv.handleCreateItem)
	mux.HandleFunc("GET /api/items/{id}", srv.handleGetItem)
	mux.HandleFunc("GET /api/items/{id}/history", srv.handleHistory)
	mux.HandleFunc("GET /api/items/{id}/duplicates", srv.handleDuplicates)
	mux.HandleFunc("POST /api/items/{id}/claims", srv.handleAddClaim)
	mux.HandleFunc("POST /api/items/{id}/transitions", srv.handleTransition)
	mux.HandleFunc("GET /api/stages/{stage}/transitions", srv.handleStageTransitions)

	limiter := newClientLimiter(cfg.API.RateLimitPerSecond, cfg.API.RateLimitBurst)
	srv.handler = requestContext(authMiddleware(cfg.Paths.APIToken, limiter.middleware(mux)))
	srv.server = &http.Server{
		Handler:           srv.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) listen() error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("api server is not listening")
	}
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api serve: %w", err)
	}
	return nil
}

func (s *apiServer) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}

func (s *apiServer) address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.bind
}

// requestContext assigns a request id and carries it, along with the acting
// user, on the request context for logging.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		ctx := services.WithRequestID(r.Context(), requestID)
		ctx = services.WithActorID(ctx, actorFromRequest(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":      status.Running,
		"address":      status.Address,
		"databasePath": status.DatabasePath,
		"lockFilePath": status.LockFilePath,
		"counts":       status.Counts,
	})
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.items.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	var stages []lifecycle.Stage
	for _, value := range r.URL.Query()["stage"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		stage, ok := lifecycle.ParseStage(trimmed)
		if !ok {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "list items", "unknown stage "+trimmed, nil))
			return
		}
		stages = append(stages, stage)
	}
	items, err := s.items.List(r.Context(), stages...)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []api.WorkItem{}
	}
	s.writeJSON(w, http.StatusOK, api.WorkItemListResponse{Items: items})
}

func (s *apiServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var req api.CreateItemRequest
	if !s.decode(w, r, &req) {
		return
	}
	item, err := s.items.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.WorkItemResponse{Item: *item})
}

func (s *apiServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}
	item, err := s.items.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.WorkItemResponse{Item: *item})
}

func (s *apiServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}
	history, err := s.items.History(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, history)
}

func (s *apiServer) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	var threshold float64
	if raw := strings.TrimSpace(query.Get("threshold")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "duplicates", "invalid threshold", err))
			return
		}
		threshold = parsed
	}
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "duplicates", "invalid limit", err))
			return
		}
		limit = parsed
	}
	resp, err := s.items.Duplicates(r.Context(), id, threshold, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleAddClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}
	var req api.AddClaimRequest
	if !s.decode(w, r, &req) {
		return
	}
	claim, err := s.items.AddClaim(r.Context(), id, req.Text)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ClaimResponse{Claim: *claim})
}

func (s *apiServer) handleTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := s.itemID(w, r)
	if !ok {
		return
	}
	var req api.TransitionRequest
	if !s.decode(w, r, &req) {
		return
	}
	item, err := s.items.Transition(r.Context(), id, actorFromRequest(r), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.WorkItemResponse{Item: *item})
}

func (s *apiServer) handleStageTransitions(w http.ResponseWriter, r *http.Request) {
	stage, ok := lifecycle.ParseStage(r.PathValue("stage"))
	if !ok {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "stage transitions", "unknown stage "+r.PathValue("stage"), nil))
		return
	}
	out, err := s.items.StageTransitions(stage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *apiServer) itemID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "parse item id", "invalid work item id", nil))
		return 0, false
	}
	return id, true
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "decode request", "invalid request body", err))
		return false
	}
	return true
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := api.StatusForError(err)
	if status >= http.StatusInternalServerError {
		logging.ErrorWithContext(logging.WithContext(r.Context(), s.logger), "api request failed", "api_request_failed",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
	}
	s.writeJSON(w, status, api.NewErrorResponse(err))
}
