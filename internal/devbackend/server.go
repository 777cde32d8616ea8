// Package devbackend is an in-memory stand-in for the captioning backend.
//
// It speaks the same HTTP contract as the real service so the CLI can be
// exercised locally and in tests. It fabricates placeholder captions and
// never transcribes, generates, or publishes anything. Status changes follow
// the lifecycle transition table; illegal requests get the backend's usual
// {"message": ...} error body.
package devbackend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"captiondesk/internal/logging"
	"captiondesk/internal/queue"
)

// Options configures a Server.
type Options struct {
	// Token, when set, is required as a bearer token on every API route.
	Token  string
	Seed   bool
	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

// Server holds the fake backend state.
type Server struct {
	token  string
	logger *slog.Logger
	now    func() time.Time
	newID  func() string

	mu          sync.Mutex
	items       []*queue.Item
	activity    []activityRecord
	settings    map[string]any
	idempotency map[string]cachedResponse
}

type activityRecord struct {
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

type cachedResponse struct {
	status int
	body   []byte
}

// New constructs a Server, optionally seeded with sample items.
func New(opts Options) *Server {
	s := &Server{
		token:       strings.TrimSpace(opts.Token),
		logger:      logging.NewComponentLogger(opts.Logger, "dev-backend"),
		now:         opts.Now,
		newID:       opts.NewID,
		settings:    defaultSettings(),
		idempotency: make(map[string]cachedResponse),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if opts.Seed {
		s.seed()
	}
	return s
}

// Handler returns the routed handler with CORS and access logging applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("/submit/text", s.handleSubmitText).Methods(http.MethodPost)
	api.HandleFunc("/submit/audio", s.handleSubmitAudio).Methods(http.MethodPost)
	api.HandleFunc("/submit/tones", s.handleTones).Methods(http.MethodGet)

	api.HandleFunc("/queue", s.handleListQueue).Methods(http.MethodGet)
	api.HandleFunc("/queue/", s.handleListQueue).Methods(http.MethodGet)
	api.HandleFunc("/queue/{id}", s.handleGetItem).Methods(http.MethodGet)
	api.HandleFunc("/queue/{id}", s.handleUpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/queue/{id}", s.handleDeleteItem).Methods(http.MethodDelete)
	api.HandleFunc("/queue/{id}/caption", s.handleUpdateItem).Methods(http.MethodPut)
	api.HandleFunc("/queue/{id}/{action:approve|reject|post}", s.handleAction).Methods(http.MethodPost, http.MethodPut)

	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/analytics", s.handleAnalytics).Methods(http.MethodGet)
	api.HandleFunc("/activity", s.handleActivity).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "Idempotency-Key"}),
	)
	logged := handlers.CustomLoggingHandler(io.Discard, r, s.logAccess)
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(cors(logged))
}

func (s *Server) logAccess(_ io.Writer, params handlers.LogFormatterParams) {
	s.logger.Debug("request",
		logging.String("method", params.Request.Method),
		logging.String("path", params.URL.Path),
		logging.Int("status", params.StatusCode),
		logging.Int("size", params.Size),
	)
}

// ListenAndServe serves on addr until ctx is canceled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("development backend listening", logging.String("addr", listener.Addr().String()))
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("development backend stopped")
	return nil
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) != s.token {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "captiondesk development backend"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"message":"encode failed"}`, http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, body)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
