package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/observability"
)

// maxReportBytes bounds a /decode request body. METAR reports are well under
// a kilobyte.
const maxReportBytes = 4 << 10

// Server exposes health, readiness, metrics and on-demand decode endpoints.
type Server struct {
	httpServer *http.Server
	decoder    *domain.Decoder
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// POST /decode routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, decoder *domain.Decoder, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		decoder: decoder,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /decode", s.handleDecode)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type parseErrorResponse struct {
	Error    string `json:"error"`
	Position int    `json:"position"`
	Expected string `json:"expected"`
	Found    string `json:"found,omitempty"`
}

// handleDecode decodes the plain-text report in the request body. The
// optional year and month query parameters pin the observation period;
// otherwise the current UTC month is used.
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	year, month, err := periodFromQuery(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxReportBytes))
	if err != nil {
		s.badRequest(w, "read body: "+err.Error())
		return
	}
	report := strings.TrimSpace(string(body))
	if report == "" {
		s.badRequest(w, "empty report")
		return
	}

	year, month = domain.ResolveYearMonth(year, month)
	obs, err := s.decoder.Parse(report, year, month)
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) {
			s.metrics.DecodeRequests.WithLabelValues("parse_error").Inc()
			writeJSON(w, http.StatusUnprocessableEntity, parseErrorResponse{
				Error:    pe.Error(),
				Position: pe.Pos,
				Expected: pe.Expected,
				Found:    pe.Found,
			})
			return
		}
		s.logger.Error("decode failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.metrics.DecodeRequests.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, domain.MarkDecoded(obs))
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.metrics.DecodeRequests.WithLabelValues("bad_request").Inc()
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// periodFromQuery reads the optional year and month parameters. Zero means
// "use the current UTC value".
func periodFromQuery(r *http.Request) (int, time.Month, error) {
	q := r.URL.Query()

	year := 0
	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			return 0, 0, errors.New("invalid year: " + v)
		}
		year = n
	}

	var month time.Month
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, errors.New("invalid month: " + v)
		}
		month = time.Month(n)
	}
	return year, month, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
