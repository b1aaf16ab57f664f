// Package facematch scores an ID photo against a live selfie through the
// face comparison vendor, behind the vendor budget and a circuit breaker.
package facematch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"farmgate/internal/verification/metrics"
	"farmgate/internal/verification/models"
	"farmgate/internal/verification/ports"
	"farmgate/internal/verification/providers"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/circuit"
)

const (
	DefaultThreshold  = 80.0
	DefaultLowCutoff  = 60.0
	DefaultHighCutoff = 85.0

	defaultTimeout = 15 * time.Second
)

type Engine struct {
	comparer   ports.FaceComparer
	budget     ports.BudgetGate
	breaker    *circuit.Breaker
	pacer      *rate.Limiter
	threshold  float64
	lowCutoff  float64
	highCutoff float64
	timeout    time.Duration
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithThreshold sets the score at or above which faces match.
func WithThreshold(t float64) Option {
	return func(e *Engine) {
		if t > 0 && t <= 100 {
			e.threshold = t
		}
	}
}

// WithConfidenceCutoffs sets the display buckets: below low is "low", above
// high is "high".
func WithConfidenceCutoffs(low, high float64) Option {
	return func(e *Engine) {
		if low > 0 && high > low {
			e.lowCutoff = low
			e.highCutoff = high
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(e *Engine) {
		e.breaker = b
	}
}

// WithRequestsPerSecond paces outgoing calls to the vendor's QPS allowance.
func WithRequestsPerSecond(rps float64) Option {
	return func(e *Engine) {
		if rps > 0 {
			e.pacer = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func New(comparer ports.FaceComparer, budget ports.BudgetGate, opts ...Option) (*Engine, error) {
	if comparer == nil {
		return nil, fmt.Errorf("face comparer is required")
	}
	if budget == nil {
		return nil, fmt.Errorf("budget gate is required")
	}
	e := &Engine{
		comparer:   comparer,
		budget:     budget,
		breaker:    circuit.New(providerFacePP),
		threshold:  DefaultThreshold,
		lowCutoff:  DefaultLowCutoff,
		highCutoff: DefaultHighCutoff,
		timeout:    defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Compare returns a result for every vendor answer, including low scores.
// When the budget is spent the vendor is not called and the result carries
// the limiter's reason. Transport failures return CodeVendorUnavailable.
func (e *Engine) Compare(ctx context.Context, idImage, selfie []byte) (models.FaceMatchResult, error) {
	reservation, err := e.budget.CheckAndReserve(ctx)
	if err != nil {
		return models.FaceMatchResult{}, err
	}
	if !reservation.Allowed {
		return rateLimited(reservation.Reason), nil
	}

	if !e.breaker.Allow() {
		e.metrics.IncrementVendorError(providerFacePP, string(providers.ErrorCircuitOpen))
		return models.FaceMatchResult{}, providers.AsVendorUnavailable(
			providers.NewProviderError(providers.ErrorCircuitOpen, providerFacePP, "circuit open", nil))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if e.pacer != nil {
		if err := e.pacer.Wait(ctx); err != nil {
			return models.FaceMatchResult{}, providers.AsVendorUnavailable(
				providers.NewProviderError(providers.ErrorTimeout, providerFacePP, "waiting for vendor capacity", err))
		}
	}

	// charge right before the call so a failed precondition costs nothing
	if err := e.budget.Commit(ctx, reservation); err != nil {
		if dErrors.HasCode(err, dErrors.CodeRateLimitExceeded) {
			return rateLimited(messageOf(err)), nil
		}
		return models.FaceMatchResult{}, err
	}

	start := time.Now()
	score, vendorMessage, err := e.comparer.Compare(ctx, idImage, selfie)
	e.metrics.ObserveVendorLatency(providerFacePP, time.Since(start))
	if err != nil {
		category := providers.GetCategory(err)
		e.metrics.IncrementVendorError(providerFacePP, string(category))
		retryable := providers.IsRetryable(err)
		// a vendor that answered with a refusal is up
		if retryable {
			e.recordFailure(ctx)
		}
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "face compare failed", "category", category, "retryable", retryable, "error", err)
		}
		return models.FaceMatchResult{}, providers.AsVendorUnavailable(err)
	}
	e.recordSuccess(ctx)

	if vendorMessage != "" {
		return models.FaceMatchResult{
			Score:           0,
			Passed:          false,
			ConfidenceLabel: models.ConfidenceLow,
			VendorMessage:   vendorMessage,
		}, nil
	}

	return models.FaceMatchResult{
		Score:           score,
		Passed:          score >= e.threshold,
		ConfidenceLabel: e.label(score),
	}, nil
}

// Threshold returns the configured pass mark.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

func (e *Engine) label(score float64) models.ConfidenceLabel {
	switch {
	case score < e.lowCutoff:
		return models.ConfidenceLow
	case score > e.highCutoff:
		return models.ConfidenceHigh
	default:
		return models.ConfidenceMedium
	}
}

func (e *Engine) recordFailure(ctx context.Context) {
	if _, change := e.breaker.RecordFailure(); change.Opened {
		e.metrics.SetCircuitOpen(providerFacePP, true)
		if e.logger != nil {
			e.logger.WarnContext(ctx, "face vendor circuit opened", "breaker", e.breaker.Name())
		}
	}
}

func (e *Engine) recordSuccess(ctx context.Context) {
	if _, change := e.breaker.RecordSuccess(); change.Closed {
		e.metrics.SetCircuitOpen(providerFacePP, false)
		if e.logger != nil {
			e.logger.InfoContext(ctx, "face vendor circuit closed", "breaker", e.breaker.Name())
		}
	}
}

func rateLimited(reason string) models.FaceMatchResult {
	return models.FaceMatchResult{
		Score:           0,
		Passed:          false,
		ConfidenceLabel: models.ConfidenceLow,
		VendorMessage:   reason,
		RateLimited:     true,
	}
}

func messageOf(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return err.Error()
}
