// Package service runs the whiteboard analysis pipeline behind the HTTP API:
// quota, image load, vision request, validation, gate and normalization.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/okian/playsketch/internal/adapters/imagefetch"
	"github.com/okian/playsketch/internal/domain/model"
	"github.com/okian/playsketch/internal/domain/normalize"
	"github.com/okian/playsketch/internal/domain/quota"
	"github.com/okian/playsketch/internal/domain/validate"
	"github.com/okian/playsketch/pkg/errs"
	"github.com/okian/playsketch/pkg/logger"
	"github.com/okian/playsketch/pkg/metrics"
)

// DefaultTimeout bounds one analysis end to end.
const DefaultTimeout = 60 * time.Second

// ParseFailureMessage is returned when the model reply cannot be read.
const ParseFailureMessage = "Failed to parse AI analysis results. The image may be too unclear."

// Pipeline stage names used for latency metrics.
const (
	stageQuota     = "quota"
	stageLoad      = "load"
	stageVision    = "vision"
	stageParse     = "parse"
	stageGate      = "gate"
	stageNormalize = "normalize"
	stageTotal     = "total"
)

// Outcome labels used for the outcome counter.
const (
	outcomeSuccess         = "success"
	outcomeRejected        = "rejected"
	outcomeParseFailed     = "parse_failed"
	outcomeUnauthenticated = "unauthenticated"
	outcomeInvalid         = "invalid_argument"
	outcomeQuota           = "quota_exceeded"
	outcomeFetch           = "fetch_failed"
	outcomeModel           = "model_call_failed"
	outcomeInternal        = "internal"
)

var tenantPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// QuotaChecker consumes one unit of a tenant's allowance.
type QuotaChecker interface {
	CheckAndConsume(ctx context.Context, tenantID string) (quota.Remaining, error)
}

// ImageLoader resolves an image reference to bytes.
type ImageLoader interface {
	Load(ctx context.Context, ref string) (imagefetch.Image, error)
}

// Analyzer sends an image to the vision model and returns its raw reply.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mediaType string) (string, error)
}

// Gate decides whether a parsed analysis is worth normalizing.
type Gate interface {
	Check(result model.AnalysisResult) validate.Verdict
}

// Normalizer maps a usable analysis onto the canvas.
type Normalizer interface {
	Normalize(result model.AnalysisResult) model.PipelineOutput
}

// Request is one analysis request. Caller is the authenticated principal;
// empty means the request was not authenticated.
type Request struct {
	Caller         string
	ImageReference string
	TenantID       string
}

// Response is the caller-facing result. Success is false for soft failures,
// in which case Error explains why.
type Response struct {
	Success            bool                  `json:"success"`
	Data               *model.PipelineOutput `json:"data,omitempty"`
	RawAnalysis        *model.AnalysisResult `json:"rawAnalysis,omitempty"`
	Error              string                `json:"error,omitempty"`
	RateLimitRemaining *quota.Remaining      `json:"rateLimitRemaining,omitempty"`
}

// Service runs the pipeline. It holds no per-request state.
type Service struct {
	quota      QuotaChecker
	loader     ImageLoader
	analyzer   Analyzer
	gate       Gate
	normalizer Normalizer
	parseOpts  []validate.Option

	timeout time.Duration
	logger  logger.Logger
}

// New constructs a Service. The gate and normalizer default to the standard
// implementations.
func New(q QuotaChecker, l ImageLoader, a Analyzer, opts ...Option) *Service {
	s := &Service{
		quota:      q,
		loader:     l,
		analyzer:   a,
		gate:       validate.NewGate(),
		normalizer: normalize.New(),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Analyze runs one request through the pipeline. Hard failures are returned
// as errors carrying one of the package sentinels; soft failures come back as
// an unsuccessful Response. Quota is consumed before the image is fetched, so
// later failures still count against the tenant.
func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	const op = "service.analyze"

	start := time.Now()
	outcome := outcomeInternal
	defer func() {
		metrics.RecordAnalyzeOutcome(outcome)
		metrics.RecordStageLatency(stageTotal, sinceMs(start))
	}()

	if strings.TrimSpace(req.Caller) == "" {
		outcome = outcomeUnauthenticated
		return nil, errs.NewKind(op, ErrAuth)
	}
	if err := validateRequest(req); err != nil {
		outcome = outcomeInvalid
		return nil, errs.WrapKind(op, ErrInput, err)
	}

	// External calls outlive a disconnected client; the timeout still applies.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	remaining, err := timed(stageQuota, func() (quota.Remaining, error) {
		return s.quota.CheckAndConsume(ctx, req.TenantID)
	})
	if err != nil {
		if errors.Is(err, quota.ErrQuotaExceeded) {
			outcome = outcomeQuota
			return nil, errs.WrapKind(op, ErrQuotaExceeded, err)
		}
		s.logger.Error(ctx, "usage store failed",
			logger.String("tenant", req.TenantID),
			logger.Error(err),
		)
		return nil, errs.WrapKind(op, ErrInternal, err)
	}

	img, err := timed(stageLoad, func() (imagefetch.Image, error) {
		return s.loader.Load(ctx, req.ImageReference)
	})
	if err != nil {
		outcome = outcomeFetch
		return nil, errs.WrapKind(op, ErrFetch, err)
	}

	raw, err := timed(stageVision, func() (string, error) {
		return s.analyzer.Analyze(ctx, img.Bytes, img.MediaType)
	})
	if err != nil {
		outcome = outcomeModel
		return nil, errs.WrapKind(op, ErrModelCall, err)
	}

	result, err := timed(stageParse, func() (model.AnalysisResult, error) {
		return validate.Parse(raw, s.parseOpts...)
	})
	if err != nil {
		outcome = outcomeParseFailed
		s.logger.Warn(ctx, "model reply could not be parsed",
			logger.String("tenant", req.TenantID),
			logger.Int("chars", len(raw)),
			logger.Error(err),
		)
		return &Response{Error: ParseFailureMessage, RateLimitRemaining: &remaining}, nil
	}

	verdict, _ := timed(stageGate, func() (validate.Verdict, error) {
		return s.gate.Check(result), nil
	})
	if !verdict.Usable {
		outcome = outcomeRejected
		s.logger.Info(ctx, "analysis rejected",
			logger.String("tenant", req.TenantID),
			logger.String("reason", verdict.Reason),
		)
		return &Response{Error: verdict.Reason, RawAnalysis: &result, RateLimitRemaining: &remaining}, nil
	}
	metrics.RecordDetections(len(result.Players), len(result.Routes))

	out, _ := timed(stageNormalize, func() (model.PipelineOutput, error) {
		return s.normalizer.Normalize(result), nil
	})
	metrics.RecordNormalizationWarnings(len(out.Warnings))

	outcome = outcomeSuccess
	s.logger.Debug(ctx, "analysis complete",
		logger.String("tenant", req.TenantID),
		logger.Int("players", len(out.Players)),
		logger.Int("routes", len(out.Routes)),
		logger.Int("warnings", len(out.Warnings)),
	)
	return &Response{
		Success:            true,
		Data:               &out,
		RawAnalysis:        &result,
		RateLimitRemaining: &remaining,
	}, nil
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.ImageReference) == "" {
		return errors.New("imageReference is required")
	}
	if req.TenantID == "" {
		return errors.New("tenantId is required")
	}
	if !tenantPattern.MatchString(req.TenantID) {
		return errors.New("tenantId must be 1-128 letters, digits, '_' or '-'")
	}
	return nil
}

func timed[T any](stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := fn()
	metrics.RecordStageLatency(stage, sinceMs(start))
	return v, err
}

func sinceMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
