package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ytpulse/internal/api"
	"ytpulse/internal/config"
	"ytpulse/internal/events"
	"ytpulse/internal/jobs"
	"ytpulse/internal/logging"
)

// maxBodyBytes bounds request bodies; translate and summarize accept
// thousands of comments.
const maxBodyBytes = 32 << 20

type apiServer struct {
	bind    string
	logger  *slog.Logger
	daemon  *Daemon
	runner  *jobs.Runner
	handler http.Handler

	mu         sync.Mutex
	listener   net.Listener
	server     *http.Server
	cancelJobs context.CancelFunc
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Server.Bind),
		logger: logging.NewComponentLogger(logger, "api-server"),
		daemon: d,
		runner: d.runner,
	}
	srv.handler = srv.routes()
	return srv
}

func (s *apiServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/comments", s.handleComments)
	mux.HandleFunc("/api/translate", s.handleTranslate)
	mux.HandleFunc("/api/summarize", s.handleSummarize)
	return requestIDMiddleware(mux)
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	// Requests outlive ctx so shutdown can drain them; stop cancels them
	// once the drain timeout passes.
	base, cancel := context.WithCancel(context.WithoutCancel(ctx))
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		// Job streams run for minutes. A read or write deadline would cut
		// them off, so only headers and idle connections are bounded.
		IdleTimeout: 60 * time.Second,
		BaseContext: func(net.Listener) context.Context { return base },
	}
	s.mu.Lock()
	s.server = server
	s.listener = listener
	s.cancelJobs = cancel
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s.mu.Lock()
	server := s.server
	s.mu.Unlock()
	if server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.mu.Lock()
		if s.cancelJobs != nil {
			s.cancelJobs()
		}
		s.mu.Unlock()
		logging.WarnWithContext(s.logger, "api server shutdown incomplete", "shutdown_timeout",
			logging.Error(err),
			logging.Impact("in-flight job streams were cut off"),
		)
		_ = server.Close()
	}
	s.mu.Lock()
	if s.cancelJobs != nil {
		s.cancelJobs()
		s.cancelJobs = nil
	}
	s.listener = nil
	s.server = nil
	s.mu.Unlock()
}

func (s *apiServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status()
	s.writeJSON(w, http.StatusOK, api.StatusResponse{
		Running:      status.Running,
		PID:          status.PID,
		Address:      status.Address,
		LockFilePath: status.LockFilePath,
		StartedAt:    api.FormatTime(status.StartedAt),
		Jobs:         s.runner.Status(),
		Counters:     s.runner.Counters(),
		Strategies:   api.StrategyNames(),
	})
}

func (s *apiServer) handleComments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.CommentsRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Target() == "" {
		s.writeError(w, http.StatusBadRequest, "videoId or url is required")
		return
	}

	job, err := s.runner.StartVideo(req.ToVideoRequest(r.Header.Get(api.UserIDHeader)))
	if err != nil {
		s.writeJobError(w, r, err)
		return
	}
	stream := newNDJSONResponse(w)
	if _, err := job.Run(r.Context(), stream); err != nil {
		s.logFailure(r, "video job ended with error", err)
	}
}

func (s *apiServer) handleTranslate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.TranslateRequest
	if !s.decode(w, r, &req) {
		return
	}
	stream := newNDJSONResponse(w)
	err := s.runner.Translate(r.Context(), req.Comments, stream)
	if err == nil {
		return
	}
	if !stream.started() {
		s.writeJobError(w, r, err)
		return
	}
	s.logFailure(r, "translation ended with error", err)
}

func (s *apiServer) handleSummarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.SummarizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	report, err := s.runner.Summarize(r.Context(), req.Comments, req.Strategy)
	if err != nil {
		s.writeJobError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *apiServer) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer body.Close()
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, "request body is required")
			return false
		}
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *apiServer) writeJobError(w http.ResponseWriter, r *http.Request, err error) {
	var busy *jobs.BusyError
	if errors.As(err, &busy) {
		resp := api.FromBusy(busy)
		w.Header().Set("Retry-After", strconv.Itoa(resp.RetryAfter))
		s.writeJSON(w, http.StatusTooManyRequests, resp)
		return
	}
	status, body := api.FromError(err)
	if status >= http.StatusInternalServerError {
		s.logFailure(r, "request failed", err)
	}
	s.writeJSON(w, status, body)
}

func (s *apiServer) logFailure(r *http.Request, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		logging.WithContext(r.Context(), s.logger).Info("client went away", logging.String("path", r.URL.Path))
		return
	}
	logging.WarnWithContext(logging.WithContext(r.Context(), s.logger), msg, "request_failed",
		logging.String("path", r.URL.Path),
		logging.Error(err),
	)
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

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

// ndjsonResponse defers the 200 header until the first event so a job that
// fails validation can still answer with a JSON error.
type ndjsonResponse struct {
	w      http.ResponseWriter
	once   sync.Once
	writer *events.NDJSONWriter
	mu     sync.Mutex
	begun  bool
}

func newNDJSONResponse(w http.ResponseWriter) *ndjsonResponse {
	return &ndjsonResponse{w: w}
}

func (n *ndjsonResponse) Emit(e events.Event) error {
	n.once.Do(func() {
		n.w.Header().Set("Content-Type", api.ContentTypeNDJSON)
		n.w.Header().Set("Cache-Control", "no-cache")
		n.w.Header().Set("X-Content-Type-Options", "nosniff")
		n.w.WriteHeader(http.StatusOK)
		n.writer = events.NewNDJSONWriter(n.w)
		n.mu.Lock()
		n.begun = true
		n.mu.Unlock()
	})
	return n.writer.Emit(e)
}

func (n *ndjsonResponse) started() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.begun
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}
