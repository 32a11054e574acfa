package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/pipedeck/internal/logging"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/aretw0/pipedeck/pkg/runner"
	"github.com/aretw0/pipedeck/pkg/status"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultEventInterval is how often the SSE stream polls a slot.
const DefaultEventInterval = 100 * time.Millisecond

// maxBodySize bounds trigger payloads.
const maxBodySize = 1 << 20

// Controller is the part of the Deck the HTTP API drives.
type Controller interface {
	Trigger(ctx context.Context, slot string, kind domain.ActionKind, params map[string]any) (*runner.Run, error)
	Snapshot(slot string) (*status.Snapshot, error)
	Cancel(ctx context.Context, slot string) error
	Active() []string
	Outcome(ctx context.Context, runID string) (*domain.Outcome, error)
	SearchUploads(ctx context.Context, term string) ([]domain.UploadRecord, error)
}

// Server serves the HTTP API over a Controller.
type Server struct {
	deck     Controller
	metrics  http.Handler
	interval time.Duration
	version  string
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithEventInterval sets the SSE polling interval.
func WithEventInterval(d time.Duration) Option {
	return func(s *Server) {
		s.interval = d
	}
}

// WithVersion is reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithLogger configures request and error logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// TriggerRequest is the body of POST /actions/{slot}.
type TriggerRequest struct {
	Kind   domain.ActionKind `json:"kind"`
	Params map[string]any    `json:"params,omitempty"`
}

// TriggerResponse acknowledges a started run.
type TriggerResponse struct {
	Slot  string            `json:"slot"`
	RunID string            `json:"run_id"`
	Kind  domain.ActionKind `json:"kind"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewHandler creates the HTTP handler for deck.
func NewHandler(deck Controller, opts ...Option) http.Handler {
	s := &Server{
		deck:     deck,
		interval: DefaultEventInterval,
		version:  "unknown",
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/actions", func(r chi.Router) {
		r.Get("/", s.ListActive)
		r.Route("/{slot}", func(r chi.Router) {
			r.Post("/", s.TriggerAction)
			r.Get("/", s.GetAction)
			r.Delete("/", s.CancelAction)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	r.Get("/uploads", s.ListUploads)
	r.Get("/outcomes/{id}", s.GetOutcome)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrSlotNotFound), errors.Is(err, domain.ErrOutcomeNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrSlotBusy):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrRemoteNotFound):
		code = http.StatusUnprocessableEntity
	}
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, code, ErrorResponse{Error: err.Error()})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "pipedeck-http",
		"version": s.version,
	})
}

// TriggerAction handles POST /actions/{slot}.
func (s *Server) TriggerAction(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")

	var body TriggerRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.writeError(w, fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidRequest, err))
		return
	}

	run, err := s.deck.Trigger(r.Context(), slot, body.Kind, body.Params)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.logger.Info("action triggered", "slot", slot, "kind", body.Kind, "run_id", run.ID)
	s.writeJSON(w, http.StatusAccepted, TriggerResponse{Slot: slot, RunID: run.ID, Kind: body.Kind})
}

// GetAction handles GET /actions/{slot}.
func (s *Server) GetAction(w http.ResponseWriter, r *http.Request) {
	snap, err := s.deck.Snapshot(chi.URLParam(r, "slot"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// CancelAction handles DELETE /actions/{slot}.
func (s *Server) CancelAction(w http.ResponseWriter, r *http.Request) {
	if err := s.deck.Cancel(r.Context(), chi.URLParam(r, "slot")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ListActive handles GET /actions.
func (s *Server) ListActive(w http.ResponseWriter, r *http.Request) {
	active := s.deck.Active()
	if active == nil {
		active = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"active": active})
}

// ListUploads handles GET /uploads?q=term.
func (s *Server) ListUploads(w http.ResponseWriter, r *http.Request) {
	records, err := s.deck.SearchUploads(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, records)
}

// GetOutcome handles GET /outcomes/{id}.
func (s *Server) GetOutcome(w http.ResponseWriter, r *http.Request) {
	outcome, err := s.deck.Outcome(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, outcome)
}

// SubscribeEvents handles GET /actions/{slot}/events (SSE).
// It sends a "status" event for every new snapshot and a final "done" event
// once the completion flag is set, then closes the stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	slot := chi.URLParam(r, "slot")
	if _, err := s.deck.Snapshot(slot); err != nil {
		s.writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var lastSeq uint64
	sent := false
	for {
		snap, err := s.deck.Snapshot(slot)
		if err != nil {
			// Torn down while streaming.
			fmt.Fprintf(w, "event: gone\ndata: %s\n\n", slot)
			flusher.Flush()
			return
		}
		if !sent || snap.Seq != lastSeq {
			data, err := json.Marshal(snap)
			if err != nil {
				s.logger.Error("snapshot encode failed", "err", err)
				return
			}
			event := "status"
			if snap.Done {
				event = "done"
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
			flusher.Flush()
			lastSeq, sent = snap.Seq, true
		}
		if snap.Done {
			return
		}

		select {
		case <-r.Context().Done():
			s.logger.Debug("SSE client disconnected", "slot", slot)
			return
		case <-ticker.C:
		}
	}
}
