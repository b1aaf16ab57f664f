// Package service runs farmer ID verification against a provisional
// registration: it persists the uploaded images, runs the pipeline, counts
// failed attempts and attaches a passing outcome to the registration.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"farmgate/internal/platform/objectstore"
	regmodels "farmgate/internal/registration/models"
	regports "farmgate/internal/registration/ports"
	"farmgate/internal/verification/metrics"
	"farmgate/internal/verification/models"
	"farmgate/internal/verification/ports"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/audit"
	"farmgate/pkg/platform/device"
	"farmgate/pkg/platform/sentinel"
	"farmgate/pkg/requestcontext"
)

const DefaultMaxAttempts = 3

// Upload is one image from the multipart form.
type Upload struct {
	Data        []byte
	ContentType string
}

// Input is a verification submission for a provisional registration.
type Input struct {
	TempID   string
	IDType   models.IDType
	IDNumber string
	IDImage  Upload
	Selfie   Upload
}

// Result is what a completed attempt hands back to the caller.
type Result struct {
	Outcome models.VerificationOutcome
	IDImage objectstore.Object
	Selfie  objectstore.Object
	// RestartRequired is set when the attempt used the last allowance and
	// the provisional registration was discarded.
	RestartRequired bool
}

type Service struct {
	registrations  regports.ProvisionalStore
	pipeline       ports.Pipeline
	objects        objectstore.Store
	maxAttempts    int
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxAttempts sets how many failed attempts a registration may use.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func New(registrations regports.ProvisionalStore, pipeline ports.Pipeline, objects objectstore.Store, opts ...Option) (*Service, error) {
	if registrations == nil {
		return nil, fmt.Errorf("provisional store is required")
	}
	if pipeline == nil {
		return nil, fmt.Errorf("verification pipeline is required")
	}
	if objects == nil {
		return nil, fmt.Errorf("object store is required")
	}

	svc := &Service{
		registrations: registrations,
		pipeline:      pipeline,
		objects:       objects,
		maxAttempts:   DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// MaxAttempts returns the per-registration allowance.
func (s *Service) MaxAttempts() int {
	return s.maxAttempts
}

// Verify runs one attempt. A RejectedVendorError outcome is returned as a
// result, not an error; its Cause carries the coded failure.
func (s *Service) Verify(ctx context.Context, in Input) (*Result, error) {
	if len(in.IDImage.Data) == 0 || len(in.Selfie.Data) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "both idImage and selfieImage are required")
	}
	ctx = requestcontext.WithTempID(ctx, in.TempID)

	reg, err := s.loadRegistration(ctx, in.TempID)
	if err != nil {
		return nil, err
	}
	if !reg.FormData.Role.RequiresIDVerification() {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "ID verification is only required for farmer registrations")
	}
	if reg.IDVerified {
		return nil, dErrors.New(dErrors.CodeConflict, "this registration is already verified")
	}
	if reg.AttemptsUsed >= s.maxAttempts {
		return nil, dErrors.New(dErrors.CodeAttemptsExhausted, "no verification attempts remain, please restart registration")
	}

	// The attempt is reserved before any vendor call so concurrent
	// submissions cannot run past the allowance. Outcomes that are not the
	// caller's fault hand it back.
	used, err := s.registrations.RecordAttempt(ctx, in.TempID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeSessionExpired, "registration session expired, please start again")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification attempt")
	}
	consumed := false
	defer func() {
		if !consumed {
			s.releaseAttempt(context.WithoutCancel(ctx), in.TempID)
		}
	}()
	if used > s.maxAttempts {
		return nil, dErrors.New(dErrors.CodeAttemptsExhausted, "no verification attempts remain while other attempts are in progress")
	}

	idObj, selfieObj, err := s.storeImages(ctx, in)
	if err != nil {
		return nil, err
	}

	remaining := s.maxAttempts - used + 1
	audit.Log(ctx, s.logger, s.auditPublisher, audit.EventVerificationAttempted,
		"temp_id", in.TempID,
		"id_type", string(in.IDType),
		"attempts_remaining", remaining,
	)

	outcome, err := s.pipeline.Run(ctx, models.VerificationRequest{
		IDImage:             in.IDImage.Data,
		SelfieImage:         in.Selfie.Data,
		ClaimedIDType:       in.IDType,
		ClaimedIDNumber:     in.IDNumber,
		TempID:              in.TempID,
		RegisteredFirstName: reg.FormData.FirstName,
		RegisteredLastName:  reg.FormData.LastName,
		AttemptsRemaining:   remaining,
	})
	if err != nil {
		return nil, err
	}
	if !outcome.State.IsTerminal() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("verification stopped in non-terminal state %q", outcome.State))
	}

	// The vendor calls ran detached from the request; a caller that went
	// away gets nothing recorded.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "client aborted verification, discarding outcome",
				"temp_id", in.TempID,
				"state", string(outcome.State),
			)
		}
		return nil, dErrors.Wrap(ctxErr, dErrors.CodeTimeout, "request cancelled before verification completed")
	}

	result := &Result{IDImage: idObj, Selfie: selfieObj}

	switch {
	case outcome.State == models.StateAccepted:
		evidence := s.evidence(ctx, in, outcome, idObj, selfieObj)
		if err := s.registrations.AttachVerification(ctx, in.TempID, outcome.WithAttemptsRemaining(remaining), evidence); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.Wrap(err, dErrors.CodeSessionExpired, "registration session expired, please start again")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification")
		}
		audit.Log(ctx, s.logger, s.auditPublisher, audit.EventVerificationAccepted,
			"temp_id", in.TempID,
			"decision", string(outcome.State),
			"face_score", outcome.FaceMatch.Score,
			"device", evidence.Device,
		)

	case outcome.ConsumesAttempt():
		consumed = true
		remaining = max(s.maxAttempts-used, 0)
		audit.Log(ctx, s.logger, s.auditPublisher, audit.EventVerificationRejected,
			"temp_id", in.TempID,
			"decision", string(outcome.State),
			"reason", outcome.Reason,
			"attempts_remaining", remaining,
		)
		if remaining == 0 {
			s.discard(ctx, in.TempID)
			s.metrics.IncrementAttemptsExhausted()
			audit.Log(ctx, s.logger, s.auditPublisher, audit.EventAttemptsExhausted,
				"temp_id", in.TempID,
				"decision", "restart_required",
			)
			result.RestartRequired = true
		}

	default:
		audit.Log(ctx, s.logger, s.auditPublisher, audit.EventVerificationRejected,
			"temp_id", in.TempID,
			"decision", string(outcome.State),
			"reason", outcome.Reason,
			"cause", dErrors.CodeOf(outcome.Cause),
		)
	}

	result.Outcome = outcome.WithAttemptsRemaining(remaining)
	return result, nil
}

func (s *Service) loadRegistration(ctx context.Context, tempID string) (*regmodels.ProvisionalRegistration, error) {
	if tempID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tempId is required")
	}
	reg, err := s.registrations.Get(ctx, tempID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeSessionExpired, "registration session not found or expired, please start again")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if reg.IsExpiredAt(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeSessionExpired, "registration session expired, please start again")
	}
	return reg, nil
}

func (s *Service) storeImages(ctx context.Context, in Input) (idObj, selfieObj objectstore.Object, err error) {
	attempt := uuid.NewString()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		obj, err := s.objects.Put(gctx, imageKey(in.TempID, attempt, "id", in.IDImage.ContentType), in.IDImage.Data, in.IDImage.ContentType)
		idObj = obj
		return err
	})
	g.Go(func() error {
		obj, err := s.objects.Put(gctx, imageKey(in.TempID, attempt, "selfie", in.Selfie.ContentType), in.Selfie.Data, in.Selfie.ContentType)
		selfieObj = obj
		return err
	})
	if err := g.Wait(); err != nil {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to store verification images", "temp_id", in.TempID, "error", err)
		}
		return objectstore.Object{}, objectstore.Object{}, dErrors.Wrap(err, dErrors.CodeVendorUnavailable, "could not store uploaded images, please try again")
	}
	return idObj, selfieObj, nil
}

func (s *Service) evidence(ctx context.Context, in Input, outcome models.VerificationOutcome, idObj, selfieObj objectstore.Object) models.Evidence {
	ev := models.Evidence{
		FaceScore:       outcome.FaceMatch.Score,
		ConfidenceLabel: string(outcome.FaceMatch.ConfidenceLabel),
		ExtractedName:   outcome.ExtractedName,
		ClaimedIDType:   in.IDType,
		ClaimedIDNumber: in.IDNumber,
		IDImageKey:      idObj.Key,
		IDImageURL:      idObj.URL,
		SelfieImageKey:  selfieObj.Key,
		SelfieImageURL:  selfieObj.URL,
		ClientIP:        requestcontext.ClientIP(ctx),
		Device:          device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		VerifiedAt:      outcome.CompletedAt,
	}
	if outcome.IDData.IDNumber != nil {
		ev.ExtractedIDNo = *outcome.IDData.IDNumber
	}
	if outcome.IDData.Address != nil {
		ev.Address = *outcome.IDData.Address
	}
	return ev
}

func (s *Service) releaseAttempt(ctx context.Context, tempID string) {
	if err := s.registrations.ReleaseAttempt(ctx, tempID); err != nil && !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to release verification attempt", "temp_id", tempID, "error", err)
	}
}

// discard drops a registration whose attempts are spent. Failure only leaves
// the record to expire.
func (s *Service) discard(ctx context.Context, tempID string) {
	if err := s.registrations.Delete(ctx, tempID); err != nil && !errors.Is(err, sentinel.ErrNotFound) && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to delete exhausted registration", "temp_id", tempID, "error", err)
	}
}

func imageKey(tempID, attempt, kind, contentType string) string {
	return fmt.Sprintf("verification/%s/%s-%s%s", tempID, attempt, kind, extensionFor(contentType))
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	}
	return ""
}
