// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/playsketch/internal/app"
	"github.com/okian/playsketch/pkg/logger"
)

// AnalyzePath is the analysis endpoint.
const AnalyzePath = "/v1/whiteboard/analyze"

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req service.Request) (*service.Response, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	analyzeHandler *AnalyzeHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(analyzer Analyzer, auth *Authenticator) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		analyzeHandler: NewAnalyzeHandler(analyzer, auth),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", RequestIDMiddleware(MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")))
	mux.HandleFunc(AnalyzePath, RequestIDMiddleware(MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze")))
}

// analyzeRequest mirrors the OpenAPI schema for POST /v1/whiteboard/analyze.
type analyzeRequest struct {
	ImageReference string `json:"imageReference"`
	TenantID       string `json:"tenantId"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes the JSON error body. Server-side
// failures are logged with the request id.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Named("api").Error(ctx, "request failed",
			logger.String("code", code),
			logger.Error(err),
		)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
