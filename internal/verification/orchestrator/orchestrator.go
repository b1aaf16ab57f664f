// Package orchestrator drives one verification attempt through an explicit
// state machine:
//
//	Received -> RateChecked -> Extracted -> FaceCompared -> Reconciled
//	  -> Accepted | RejectedFaceMismatch | RejectedNameMismatch | RejectedVendorError
//
// OCR and face comparison run concurrently once the budget check passes.
// The orchestrator holds no state between calls.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"farmgate/internal/verification/metrics"
	"farmgate/internal/verification/models"
	"farmgate/internal/verification/ports"
	"farmgate/internal/verification/reconcile"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/requestcontext"
)

const tracerName = "farmgate/verification"

type Orchestrator struct {
	extractor  ports.IDExtractor
	matcher    ports.FaceMatcher
	budget     ports.BudgetGate
	reconciler ports.NameReconciler
	tracer     trace.Tracer
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

func New(extractor ports.IDExtractor, matcher ports.FaceMatcher, budget ports.BudgetGate, reconciler ports.NameReconciler, opts ...Option) (*Orchestrator, error) {
	if extractor == nil {
		return nil, fmt.Errorf("id extractor is required")
	}
	if matcher == nil {
		return nil, fmt.Errorf("face matcher is required")
	}
	if budget == nil {
		return nil, fmt.Errorf("budget gate is required")
	}
	if reconciler == nil {
		return nil, fmt.Errorf("name reconciler is required")
	}
	o := &Orchestrator{
		extractor:  extractor,
		matcher:    matcher,
		budget:     budget,
		reconciler: reconciler,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Decide maps the two checks to a terminal state. A face failure is reported
// ahead of a name failure.
func Decide(face models.FaceMatchResult, nameMatches bool) models.State {
	switch {
	case !face.Passed:
		return models.StateRejectedFaceMismatch
	case !nameMatches:
		return models.StateRejectedNameMismatch
	default:
		return models.StateAccepted
	}
}

// run accumulates the trail for one attempt.
type run struct {
	outcome models.VerificationOutcome
}

func (r *run) advance(s models.State) {
	r.outcome.State = s
	r.outcome.Trail = append(r.outcome.Trail, s)
}

// Run executes one attempt. It returns an error only for a malformed
// request; vendor and budget failures end in RejectedVendorError with Cause
// set. Vendor calls are detached from ctx cancellation so a paid call is
// never abandoned; callers must check ctx themselves and discard the
// outcome if the client went away.
func (o *Orchestrator) Run(ctx context.Context, req models.VerificationRequest) (models.VerificationOutcome, error) {
	if len(req.IDImage) == 0 || len(req.SelfieImage) == 0 {
		return models.VerificationOutcome{}, dErrors.New(dErrors.CodeValidation, "both idImage and selfieImage are required")
	}

	ctx, span := o.tracer.Start(ctx, "verification.run", trace.WithAttributes(
		attribute.String("verification.temp_id", req.TempID),
		attribute.String("verification.id_type", string(req.ClaimedIDType)),
	))
	defer span.End()

	r := &run{}
	r.outcome.RegisteredName = joinName(req.RegisteredFirstName, req.RegisteredLastName)
	r.outcome.AttemptsRemaining = req.AttemptsRemaining
	r.advance(models.StateReceived)

	reservation, err := o.budget.CheckAndReserve(ctx)
	if err != nil {
		return o.finishVendorError(ctx, span, r, err), nil
	}
	if !reservation.Allowed {
		return o.finishVendorError(ctx, span, r, dErrors.New(dErrors.CodeRateLimitExceeded, reservation.Reason)), nil
	}
	r.advance(models.StateRateChecked)

	vendorCtx := context.WithoutCancel(ctx)
	var (
		idData models.ExtractedIDData
		face   models.FaceMatchResult
	)
	var g errgroup.Group
	g.Go(func() error {
		data, err := o.extractor.Extract(vendorCtx, req.IDImage)
		if err != nil {
			return &stageError{stage: "ocr", err: err}
		}
		idData = data
		return nil
	})
	g.Go(func() error {
		res, err := o.matcher.Compare(vendorCtx, req.IDImage, req.SelfieImage)
		if err != nil {
			return &stageError{stage: "face", err: err}
		}
		face = res
		return nil
	})
	if err := g.Wait(); err != nil {
		var se *stageError
		if errors.As(err, &se) {
			span.SetAttributes(attribute.String("verification.failed_stage", se.stage))
			err = se.err
		}
		return o.finishVendorError(ctx, span, r, err), nil
	}

	r.outcome.IDData = idData
	r.advance(models.StateExtracted)
	r.outcome.FaceMatch = face
	r.advance(models.StateFaceCompare)

	if face.RateLimited {
		return o.finishVendorError(ctx, span, r, dErrors.New(dErrors.CodeRateLimitExceeded, face.VendorMessage)), nil
	}

	extracted := ""
	if idData.FullName != nil {
		extracted = *idData.FullName
	}
	r.outcome.ExtractedName = extracted
	r.outcome.NameMatches = o.reconciler.Matches(extracted, req.RegisteredFirstName, req.RegisteredLastName)
	r.advance(models.StateReconciled)

	final := Decide(face, r.outcome.NameMatches)
	switch final {
	case models.StateRejectedFaceMismatch:
		r.outcome.Reason = faceReason(face)
	case models.StateRejectedNameMismatch:
		r.outcome.Reason = reconcile.Explain(extracted, req.RegisteredFirstName, req.RegisteredLastName)
	}
	r.outcome.Verified = final == models.StateAccepted
	return o.finish(ctx, span, r, final), nil
}

func (o *Orchestrator) finishVendorError(ctx context.Context, span trace.Span, r *run, cause error) models.VerificationOutcome {
	r.outcome.Cause = cause
	if de, ok := dErrors.As(cause); ok {
		r.outcome.Reason = de.Message
	} else {
		r.outcome.Reason = "identity verification service is temporarily unavailable, please try again"
	}
	span.RecordError(cause)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(cause)))
	if o.logger != nil {
		o.logger.WarnContext(ctx, "verification aborted by vendor or budget",
			"temp_id", requestcontext.TempID(ctx),
			"code", dErrors.CodeOf(cause),
			"error", cause,
		)
	}
	return o.finish(ctx, span, r, models.StateRejectedVendorError)
}

func (o *Orchestrator) finish(ctx context.Context, span trace.Span, r *run, final models.State) models.VerificationOutcome {
	r.advance(final)
	r.outcome.CompletedAt = requestcontext.Now(ctx)
	span.SetAttributes(
		attribute.String("verification.state", string(final)),
		attribute.Float64("verification.face_score", r.outcome.FaceMatch.Score),
		attribute.Bool("verification.name_matches", r.outcome.NameMatches),
	)
	o.metrics.IncrementOutcome(string(final))
	return r.outcome
}

type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func faceReason(face models.FaceMatchResult) string {
	if face.VendorMessage != "" {
		return face.VendorMessage
	}
	return fmt.Sprintf("Your selfie does not match the photo on your ID (score %.1f). Retake the selfie facing the camera in good light.", face.Score)
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}
