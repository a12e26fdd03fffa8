package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docfed/docfed"
)

// Server is the gateway exposing the search and ingestion surfaces over
// HTTP. Provider failures surface inside the response body, never as a
// gateway error.
type Server struct {
	addr       string
	aggregator docfed.Aggregator
	scheduler  docfed.Scheduler
	logger     *slog.Logger

	server *http.Server
	ln     net.Listener
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the request logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a gateway listening on addr.
func NewServer(addr string, aggregator docfed.Aggregator, scheduler docfed.Scheduler, opts ...ServerOption) *Server {
	s := &Server{
		addr:       addr,
		aggregator: aggregator,
		scheduler:  scheduler,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /search", s.handleSearchGet)
	mux.HandleFunc("POST /search", s.handleSearchPost)
	mux.HandleFunc("GET /ingest/status", s.handleIngestStatus)
	mux.HandleFunc("GET /ingest/stats", s.handleIngestStats)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the gateway's HTTP handler, for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Open starts listening. It returns once the listener is bound; serving
// continues in the background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("gateway serve failed", "err", err)
		}
	}()

	s.logger.Info("gateway listening", "addr", ln.Addr().String())
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Close shuts the gateway down, draining in-flight requests.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request) {
	q := docfed.SearchQuery{
		Text:           r.URL.Query().Get("q"),
		TechnologyHint: r.URL.Query().Get("tech"),
	}
	if providers := r.URL.Query().Get("providers"); providers != "" {
		q.ProviderIDs = strings.Split(providers, ",")
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			s.writeError(w, r, docfed.Errorf(docfed.EINVALID, "invalid limit %q", limit))
			return
		}
		q.Limit = n
	}
	s.search(w, r, q)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request) {
	var q docfed.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		s.writeError(w, r, docfed.Errorf(docfed.EINVALID, "invalid request body: %v", err))
		return
	}
	s.search(w, r, q)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, q docfed.SearchQuery) {
	ctx := r.Context()
	if raw := r.URL.Query().Get("timeout_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms <= 0 {
			s.writeError(w, r, docfed.Errorf(docfed.EINVALID, "invalid timeout_ms %q", raw))
			return
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
	}

	set, err := s.aggregator.Search(ctx, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleIngestStatus(w http.ResponseWriter, r *http.Request) {
	fingerprint := r.URL.Query().Get("fingerprint")
	if fingerprint == "" {
		s.writeError(w, r, docfed.Errorf(docfed.EINVALID, "fingerprint required"))
		return
	}

	state, ok := s.scheduler.Status(fingerprint)
	if !ok {
		s.writeError(w, r, docfed.Errorf(docfed.ENOTFOUND, "no task for fingerprint %q", fingerprint))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fingerprint": fingerprint,
		"state":       state,
	})
}

func (s *Server) handleIngestStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.scheduler.Stats())
}

// errorResponse is the JSON body returned for failed requests.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeError maps an error to its HTTP status and writes the JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := docfed.ErrorCode(err)
	status := statusFromCode(code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	writeJSON(w, status, errorResponse{
		Error: docfed.ErrorMessage(err),
		Code:  code,
	})
}

func statusFromCode(code string) int {
	switch code {
	case docfed.EINVALID, docfed.EMALFORMED:
		return http.StatusBadRequest
	case docfed.ENOTFOUND:
		return http.StatusNotFound
	case docfed.ECONFIG, docfed.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	case docfed.ETIMEOUT:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
