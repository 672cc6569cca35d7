// Package server exposes an analysis engine over the HTTP contract the
// client speaks: three JSON POST endpoints plus a health probe.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/abhisek/resumebot/internal/analysis"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the reference analysis service.
type Server struct {
	engine   analysis.Client
	logger   *zap.Logger
	version  string
	cacheTTL time.Duration
	scans    *cache.Cache
	registry *prometheus.Registry
	metrics  *Metrics
	mux      *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithCacheTTL enables the scan cache. Zero or negative disables it.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Server) { s.cacheTTL = ttl }
}

// New creates a Server backed by engine.
func New(engine analysis.Client, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		logger:   zap.NewNop(),
		version:  "v0.0.0",
		registry: prometheus.NewRegistry(),
		mux:      http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheTTL > 0 {
		s.scans = cache.New(s.cacheTTL, 2*s.cacheTTL)
	}
	s.metrics = NewMetrics(s.registry)

	s.mux.HandleFunc("POST /scan_resume", s.handleScan)
	s.mux.HandleFunc("POST /generate_test", s.handleGenerate)
	s.mux.HandleFunc("POST /evaluate_test", s.handleEvaluate)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s
}

// Handler returns the full handler chain: CORS, request logging, routes.
func (s *Server) Handler() http.Handler {
	return cors(s.logRequests(s.mux))
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("serving analysis API", zap.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type scanRequest struct {
	Resume *string `json:"resume"`
}

type generateRequest struct {
	Skills *[]string `json:"skills"`
}

type evaluateRequest struct {
	Answers *[]string `json:"answers"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Resume == nil {
		writeError(w, missingField("resume"))
		return
	}

	key := resumeKey(*req.Resume)
	if s.scans != nil {
		if hit, ok := s.scans.Get(key); ok {
			s.metrics.cacheLookup.WithLabelValues("hit").Inc()
			writeJSON(w, http.StatusOK, hit)
			return
		}
		s.metrics.cacheLookup.WithLabelValues("miss").Inc()
	}

	res, err := observe(s, analysis.OpScanResume, func() (analysis.ScanResult, error) {
		return s.engine.ScanResume(r.Context(), *req.Resume)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Skills == nil {
		res.Skills = []string{}
	}
	if s.scans != nil {
		s.scans.SetDefault(key, res)
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Skills == nil {
		writeError(w, missingField("skills"))
		return
	}

	res, err := observe(s, analysis.OpGenerateTest, func() (analysis.TestResult, error) {
		return s.engine.GenerateTest(r.Context(), *req.Skills)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Questions == nil {
		res.Questions = []string{}
	}
	s.metrics.questions.Observe(float64(len(res.Questions)))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Answers == nil {
		writeError(w, missingField("answers"))
		return
	}

	res, err := observe(s, analysis.OpEvaluateTest, func() (analysis.Evaluation, error) {
		return s.engine.EvaluateTest(r.Context(), *req.Answers)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	s.metrics.scores.Observe(res.Score)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analysis.Health{Status: "ok", Version: s.version})
}

// observe runs one engine call and records its outcome and duration.
func observe[T any](s *Server, op analysis.Op, fn func() (T, error)) (T, error) {
	start := time.Now()
	res, err := fn()
	s.metrics.duration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if err != nil {
		outcome = "error"
		s.logger.Warn("engine call failed", zap.String("operation", string(op)), zap.Error(err))
	}
	s.metrics.requests.WithLabelValues(string(op), outcome).Inc()
	return res, err
}

func resumeKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func missingField(name string) error {
	return fmt.Errorf("missing field %q", name)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, fmt.Errorf("invalid JSON body: %w", err))
		return false
	}
	return true
}

// writeError replies 400 with {"error": msg}. Engine RemoteErrors pass
// their message through unchanged.
func writeError(w http.ResponseWriter, err error) {
	msg := err.Error()
	var remote *analysis.RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		msg = remote.Message
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
