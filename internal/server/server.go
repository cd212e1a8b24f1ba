// Package server exposes the pricer over a small HTTP API. Requests are
// the same YAML documents the CLI consumes; responses are JSON.
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/lowdisc/qmcpricer/internal/config"
	"github.com/lowdisc/qmcpricer/internal/pricer"
	"github.com/lowdisc/qmcpricer/pkg/constants"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the pricing API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}
	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	r := mux.NewRouter()
	r.HandleFunc("/api/price", h.handlePrice).Methods(http.MethodPost)
	r.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
	return r
}

type priceResponse struct {
	Scenarios []scenarioEstimate `json:"scenarios"`
	Warnings  []string           `json:"warnings,omitempty"`
	Duration  string             `json:"duration"`
}

type scenarioEstimate struct {
	Name        string   `json:"name"`
	Method      string   `json:"method"`
	Price       float64  `json:"price"`
	ErrBound    float64  `json:"errorBound"`
	Samples     int      `json:"samples"`
	Elapsed     string   `json:"elapsed"`
	Status      string   `json:"status"`
	Reference   *float64 `json:"reference,omitempty"`
	AbsoluteGap *float64 `json:"absoluteGap,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *handler) handlePrice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxUploadSize+1))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read request body: %w", err))
		return
	}
	if int64(len(body)) > h.maxUploadSize {
		h.writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", h.maxUploadSize))
		return
	}

	var conf config.Configuration
	if err := yaml.Unmarshal(body, &conf); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse YAML request: %w", err))
		return
	}

	if err := conf.ExpandMonitoringTimes(); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	warnings := conf.ValidateConfiguration()

	results, err := pricer.GetEstimates(h.logger, conf)
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	resp := priceResponse{
		Warnings: warnings,
		Duration: time.Since(start).String(),
	}
	for _, result := range results {
		se := scenarioEstimate{
			Name:     result.Name,
			Method:   result.Method,
			Price:    result.Estimate.Price,
			ErrBound: result.Estimate.ErrBound,
			Samples:  result.Estimate.Samples,
			Elapsed:  result.Estimate.Elapsed.String(),
			Status:   string(result.Estimate.Status),
		}
		if !math.IsNaN(result.Reference) {
			ref := result.Reference
			gap := math.Abs(result.Estimate.Price - ref)
			se.Reference = &ref
			se.AbsoluteGap = &gap
		}
		resp.Scenarios = append(resp.Scenarios, se)
	}

	h.logger.Info("pricing request served",
		zap.String("op", "server.handlePrice"),
		zap.Int("scenarios", len(resp.Scenarios)),
		zap.Duration("duration", time.Since(start)),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response",
			zap.String("op", "server.writeJSON"),
			zap.Error(err),
		)
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, err error) {
	h.logger.Warn("request failed",
		zap.String("op", "server.writeError"),
		zap.Int("status", status),
		zap.Error(err),
	)
	h.writeJSON(w, status, errorResponse{Error: err.Error()})
}
