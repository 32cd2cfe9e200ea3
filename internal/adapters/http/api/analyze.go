package api

import (
	"encoding/json"
	"net/http"

	service "github.com/okian/playsketch/internal/app"
	"github.com/okian/playsketch/pkg/errs"
)

// maxRequestBytes bounds the JSON body; images are passed by reference.
const maxRequestBytes = 64 << 10

// AnalyzeHandler handles analysis requests.
type AnalyzeHandler struct {
	analyzer Analyzer
	auth     *Authenticator
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(analyzer Analyzer, auth *Authenticator) *AnalyzeHandler {
	if auth == nil {
		auth = &Authenticator{}
	}
	return &AnalyzeHandler{analyzer: analyzer, auth: auth}
}

// HandleAnalyze handles POST /v1/whiteboard/analyze requests. Soft failures
// are reported with 200 and success=false.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	caller := h.auth.Caller(r)
	if caller == "" {
		writeError(ctx, w, errs.NewKind(op, service.ErrAuth))
		return
	}

	var req analyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(ctx, w, errs.WrapKind(op, ErrBadRequest, err))
		return
	}

	resp, err := h.analyzer.Analyze(ctx, service.Request{
		Caller:         caller,
		ImageReference: req.ImageReference,
		TenantID:       req.TenantID,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
