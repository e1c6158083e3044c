// Package api - thin HTTP/SSE layer over the payment pipeline.
// The API is only responsible for input ingestion, pipeline invocation,
// and output serialization. It never performs payment logic.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0ji3/a2a-supply-chain-project/core/pipeline"
	"github.com/0ji3/a2a-supply-chain-project/core/protocol"
)

// Server exposes the pipeline and the payment ledger over HTTP
type Server struct {
	orchestrator *pipeline.Orchestrator
	client       *protocol.Client
	mux          *http.ServeMux
	logger       *zap.Logger
	allowOrigin  string
	events       *hub

	mu      sync.Mutex
	running bool
	states  map[string]PhaseState
	lastRun *pipeline.Result
}

// NewServer creates the API server. The orchestrator must already be
// wired with its event sink via Sink().
func NewServer(orch *pipeline.Orchestrator, client *protocol.Client, allowOrigin string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		orchestrator: orch,
		client:       client,
		mux:          http.NewServeMux(),
		logger:       logger,
		allowOrigin:  allowOrigin,
		events:       newHub(),
		states:       make(map[string]PhaseState),
	}
	for _, cfg := range orch.Phases() {
		s.states[cfg.Name] = PhaseState{Status: pipeline.PhasePending}
	}
	s.registerRoutes()
	return s
}

// Sink returns the event sink the orchestrator should be built with;
// it keeps live status current and feeds the SSE stream.
func (s *Server) Sink() pipeline.EventSink {
	return func(ev pipeline.Event) {
		s.mu.Lock()
		s.states[ev.PhaseName] = PhaseState{Status: ev.Status, Progress: ev.Progress}
		s.mu.Unlock()
		s.events.broadcast(ev)
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/optimize", s.handleOptimize)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)
	s.mux.HandleFunc("GET /api/result", s.handleResult)
	s.mux.HandleFunc("GET /api/stream", s.handleStream)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// handleOptimize starts a pipeline run in the background. One run at a
// time; concurrent submissions are rejected.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	params := req.params()
	if err := params.Validate(); err != nil {
		s.writeError(w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.writeError(w, "RUN_IN_PROGRESS", "a pipeline run is already in progress", http.StatusConflict)
		return
	}
	s.running = true
	for name := range s.states {
		s.states[name] = PhaseState{Status: pipeline.PhasePending}
	}
	s.mu.Unlock()

	runID := "run-" + uuid.New().String()
	go s.runPipeline(runID, params)

	s.writeJSON(w, OptimizeAccepted{
		RunID:   runID,
		Message: "optimization started",
	}, http.StatusAccepted)
}

func (s *Server) runPipeline(runID string, params pipeline.Params) {
	logger := s.logger.With(zap.String("run_id", runID))
	logger.Info("pipeline run accepted",
		zap.String("product", params.ProductName),
		zap.String("store", params.StoreName))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := s.orchestrator.Run(ctx, params)

	s.mu.Lock()
	s.running = false
	s.lastRun = result
	s.mu.Unlock()

	if err != nil {
		logger.Error("pipeline run failed", zap.Error(err))
		return
	}
	if !result.Success {
		logger.Warn("pipeline run aborted",
			zap.String("failed_phase", result.FailedPhase),
			zap.String("error", result.ErrorMessage))
		return
	}
	logger.Info("pipeline run finished",
		zap.String("total_cost", result.TotalCost.String()))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := StatusResponse{
		Running: s.running,
		Agents:  make(map[string]PhaseState, len(s.states)),
	}
	for name, st := range s.states {
		resp.Agents[name] = st
	}
	s.mu.Unlock()

	s.writeJSON(w, resp, http.StatusOK)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.client.Transactions(), http.StatusOK)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.client.TransactionSummary(), http.StatusOK)
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	result := s.lastRun
	s.mu.Unlock()

	if result == nil {
		s.writeError(w, "NO_RESULT", "no pipeline run has completed yet", http.StatusNotFound)
		return
	}
	s.writeJSON(w, result, http.StatusOK)
}

// handleStream serves pipeline progress events over SSE
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, "STREAMING_UNSUPPORTED", "response writer does not support streaming", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := s.events.subscribe()
	defer s.events.unsubscribe(ch)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := w.Write([]byte("data: " + string(data) + "\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.allowOrigin != "" {
			w.Header().Set("Access-Control-Allow-Origin", s.allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, errorResponse{Code: code, Message: message}, status)
}
