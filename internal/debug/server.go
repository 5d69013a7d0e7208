package debug

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/Seyyyeddd/executive-ai-assistant/internal/interrupt"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/langgraph"
	"github.com/Seyyyeddd/executive-ai-assistant/internal/state"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/cerr"
	"github.com/Seyyyeddd/executive-ai-assistant/pkg/clog"
)

// API is the remote surface the inspection endpoints read from.
type API interface {
	GetThreadState(ctx context.Context, threadID string) (*langgraph.ThreadState, error)
	GetThreadHistory(ctx context.Context, threadID string) ([]langgraph.ThreadState, error)
}

// Server exposes read-only inspection endpoints: liveness, the tracked state
// document and a per-thread extraction report.
type Server struct {
	server  *http.Server
	manager *state.Manager
	api     API
	host    string
	port    string
}

func NewServer(manager *state.Manager, api API, host, port string) *Server {
	return &Server{
		manager: manager,
		api:     api,
		host:    host,
		port:    port,
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	r := chi.NewRouter()
	r.Use(clog.SlogChiMiddleware())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/debug/state", s.handleState)
	r.Get("/debug/threads/{threadID}", s.handleThread)

	addr := net.JoinHostPort(s.host, s.port)
	slog.Info("starting debug server", "addr", addr)

	s.server = &http.Server{
		Addr: addr,
		Handler: cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"*"},
		}).Handler(r),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// stateReport is the tracked document stripped to what an operator needs
// when poking at the bot.
type stateReport struct {
	Interrupts  map[string]state.StoredInterrupt `json:"interrupts"`
	LastChecked string                           `json:"last_checked,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	report := stateReport{Interrupts: s.manager.Snapshot()}
	if last := s.manager.LastChecked(); !last.IsZero() {
		report.LastChecked = last.Format("2006-01-02T15:04:05Z07:00")
	}
	writeJSON(r.Context(), w, http.StatusOK, report)
}

// threadReport mirrors what extraction sees for one thread, for diagnosing
// records that came out empty or misclassified.
type threadReport struct {
	ThreadID       string            `json:"thread_id"`
	ThreadExists   bool              `json:"thread_exists"`
	IsInterrupted  bool              `json:"is_interrupted"`
	HasTasks       bool              `json:"has_tasks"`
	HasInterrupts  bool              `json:"has_interrupts"`
	MetadataStatus string            `json:"metadata_status,omitempty"`
	Tracked        bool              `json:"tracked"`
	Record         *interrupt.Record `json:"record,omitempty"`
	Error          string            `json:"error,omitempty"`
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	threadID := chi.URLParam(r, "threadID")
	report := threadReport{ThreadID: threadID, Tracked: s.manager.Tracked(threadID)}

	threadState, err := s.api.GetThreadState(ctx, threadID)
	if err != nil {
		clog.AddError(ctx, err)
		report.Error = err.Error()
		writeJSON(ctx, w, cerr.CodeOf(err).HTTPCode(), report)
		return
	}

	report.ThreadExists = true
	report.IsInterrupted = langgraph.IsInterrupted(threadState)
	report.HasTasks = len(threadState.Tasks) > 0
	for _, task := range threadState.Tasks {
		if len(task.Interrupts) > 0 {
			report.HasInterrupts = true
			break
		}
	}
	if status, ok := threadState.Metadata["status"].(string); ok {
		report.MetadataStatus = status
	}

	history, err := s.api.GetThreadHistory(ctx, threadID)
	if err != nil {
		history = nil
	}
	report.Record = interrupt.ExtractFromState(threadID, threadState, history)
	writeJSON(ctx, w, http.StatusOK, report)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "failed to encode debug response", "error", err)
	}
}
