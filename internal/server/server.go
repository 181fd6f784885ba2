// Package server exposes the planner and the diagnosis engine over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/iwvelando/campaign-planner/internal/adsource"
	"github.com/iwvelando/campaign-planner/internal/apperr"
	"github.com/iwvelando/campaign-planner/internal/diagnosis"
	"github.com/iwvelando/campaign-planner/internal/planner"
	"github.com/iwvelando/campaign-planner/pkg/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Services are the domain components the handler serves. Nil fields are
// replaced with defaults: the default funnel with uniform pacing, and a
// diagnosis engine on the default table with no account source.
type Services struct {
	Planner   *planner.Planner
	Diagnoser *diagnosis.Service
}

type handler struct {
	logger      *zap.Logger
	maxBodySize int64
	version     string
	services    Services
	metrics     *metrics
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

// NewHandler constructs the HTTP handler that serves the planning and
// diagnosis API. Metrics are registered on registry; a nil registry gets a
// private one.
func NewHandler(logger *zap.Logger, maxBodySize int64, version string, services Services, registry *prometheus.Registry) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	if services.Planner == nil {
		p, err := planner.New(logger, planner.DefaultStages(), nil)
		if err != nil {
			return nil, err
		}
		services.Planner = p
	}
	if services.Diagnoser == nil {
		engine, err := diagnosis.NewEngine(logger, diagnosis.DefaultTable())
		if err != nil {
			return nil, err
		}
		services.Diagnoser = diagnosis.NewService(logger, engine, nil)
	}

	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m, err := newMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	h := &handler{
		logger:      logger,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
		services:    services,
		metrics:     m,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(h.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/plan", h.handlePlan)
		r.Post("/diagnose", h.handleDiagnose)
		r.Get("/version", h.handleVersion)
	})

	return r, nil
}

func (h *handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePlan"

	var input planner.CampaignPlanInput
	if !h.decode(w, r, &input, op) {
		return
	}

	result, err := h.services.Planner.Plan(input)
	if err != nil {
		h.respondDomainError(w, err, op)
		return
	}

	h.logger.Debug("plan computed",
		zap.String("op", op),
		zap.String("requestId", requestIDFrom(r.Context())),
		zap.Int("days", len(result.DailyBudgets)),
		zap.Stringer("totalBudget", result.TotalBudget),
	)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleDiagnose"

	var req diagnosis.Request
	if !h.decode(w, r, &req, op) {
		return
	}

	result, err := h.services.Diagnoser.Diagnose(r.Context(), req)
	if err != nil {
		h.respondDomainError(w, err, op)
		return
	}

	h.metrics.healthScore.Observe(float64(result.HealthScore))
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// decode reads a JSON body into v, answering the request itself on failure.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				errorResponse{Error: fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize)}, op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest,
			errorResponse{Error: fmt.Sprintf("failed to decode request: %v", err), Kind: string(apperr.InvalidInput)}, op)
		return false
	}
	return true
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, adsource.ErrAccountNotFound) {
		return http.StatusNotFound
	}
	switch apperr.KindOf(err) {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.DivisionByZero, apperr.InsufficientData:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (h *handler) respondDomainError(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), errorResponse{
		Error: err.Error(),
		Kind:  string(apperr.KindOf(err)),
		Field: apperr.FieldOf(err),
	}, op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, resp errorResponse, op string) {
	log := h.logger.Info
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("kind", resp.Kind),
		zap.String("field", resp.Field),
		zap.String("error", resp.Error),
	)

	h.writeJSON(w, status, resp)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// ListenAndServe runs handler on cfg.Address until the server fails.
func ListenAndServe(logger *zap.Logger, cfg *Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("starting HTTP server",
		zap.String("op", "server.ListenAndServe"),
		zap.String("address", cfg.Address),
		zap.Int64("maxBodySize", cfg.BodySizeBytes()),
	)
	return srv.ListenAndServe()
}
