package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmgate/internal/platform/objectstore"
	regmodels "farmgate/internal/registration/models"
	regmocks "farmgate/internal/registration/ports/mocks"
	"farmgate/internal/registration/store/provisional"
	"farmgate/internal/verification/models"
	"farmgate/internal/verification/ports/mocks"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/audit"
	"farmgate/pkg/platform/audit/publisher"
	auditmemory "farmgate/pkg/platform/audit/store/memory"
	"farmgate/pkg/platform/sentinel"
	"farmgate/pkg/requestcontext"
)

func strPtr(s string) *string { return &s }

// =============================================================================
// Verification Service Test Suite
// =============================================================================

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	pipeline   *mocks.MockPipeline
	store      *provisional.InMemoryStore
	objects    *objectstore.MemoryStore
	auditStore *auditmemory.InMemoryStore
	svc        *Service
	input      Input
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.pipeline = mocks.NewMockPipeline(ctrl)
	s.store = provisional.NewInMemory()
	s.objects = objectstore.NewMemory()
	s.auditStore = auditmemory.NewInMemoryStore()

	var err error
	s.svc, err = New(s.store, s.pipeline, s.objects,
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
	)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithClientMetadata(s.ctx, "203.0.113.7",
		"Mozilla/5.0 (Linux; Android 13; SM-A536E) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36")

	s.seed("tmp-1", regmodels.RoleFarmer, 0)
	s.input = Input{
		TempID:   "tmp-1",
		IDType:   models.IDTypePhilSys,
		IDNumber: "1234-5678-9012-3456",
		IDImage:  Upload{Data: []byte("id-bytes"), ContentType: "image/jpeg"},
		Selfie:   Upload{Data: []byte("selfie-bytes"), ContentType: "image/png"},
	}
}

func (s *ServiceSuite) seed(tempID string, role regmodels.Role, attemptsUsed int) {
	s.Require().NoError(s.store.Create(context.Background(), &regmodels.ProvisionalRegistration{
		TempID: tempID,
		FormData: regmodels.FormData{
			Role:      role,
			FirstName: "Juan",
			LastName:  "Santos",
			Phone:     "+639171234567",
		},
		AttemptsUsed: attemptsUsed,
		CreatedAt:    s.now.Add(-time.Hour),
		ExpiresAt:    s.now.Add(23 * time.Hour),
	}))
}

func accepted() models.VerificationOutcome {
	return models.VerificationOutcome{
		Verified:      true,
		State:         models.StateAccepted,
		IDData:        models.ExtractedIDData{FullName: strPtr("Juan D. Santos"), IDNumber: strPtr("1234-5678-9012-3456"), Address: strPtr("Brgy. Poblacion, Nueva Ecija")},
		FaceMatch:     models.FaceMatchResult{Score: 92, Passed: true, ConfidenceLabel: models.ConfidenceHigh},
		NameMatches:   true,
		ExtractedName: "Juan D. Santos",
		CompletedAt:   time.Date(2026, 3, 10, 9, 0, 2, 0, time.UTC),
	}
}

func faceMismatch() models.VerificationOutcome {
	return models.VerificationOutcome{
		State:     models.StateRejectedFaceMismatch,
		FaceMatch: models.FaceMatchResult{Score: 41, ConfidenceLabel: models.ConfidenceLow},
		Reason:    "face does not match",
	}
}

func (s *ServiceSuite) actions() []string {
	events, err := s.auditStore.ListAll(context.Background())
	s.Require().NoError(err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

// =============================================================================
// Accepted
// =============================================================================

func (s *ServiceSuite) TestAccepted() {
	s.Run("attaches outcome and evidence to the registration", func() {
		s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, req models.VerificationRequest) (models.VerificationOutcome, error) {
				s.Equal("Juan", req.RegisteredFirstName)
				s.Equal("Santos", req.RegisteredLastName)
				s.Equal(3, req.AttemptsRemaining)
				s.Equal("tmp-1", requestcontext.TempID(ctx))
				return accepted(), nil
			})

		res, err := s.svc.Verify(s.ctx, s.input)
		s.Require().NoError(err)
		s.True(res.Outcome.Verified)
		s.Equal(3, res.Outcome.AttemptsRemaining)
		s.False(res.RestartRequired)
		s.True(strings.HasPrefix(res.IDImage.Key, "verification/tmp-1/"))
		s.True(strings.HasSuffix(res.IDImage.Key, "-id.jpg"))
		s.True(strings.HasSuffix(res.Selfie.Key, "-selfie.png"))

		stored, ok := s.objects.Get(res.IDImage.Key)
		s.Require().True(ok)
		s.Equal([]byte("id-bytes"), stored)

		reg, err := s.store.Get(context.Background(), "tmp-1")
		s.Require().NoError(err)
		s.True(reg.IDVerified)
		s.True(reg.ReadyForAccount())
		s.Require().NotNil(reg.Evidence)
		s.Equal(92.0, reg.Evidence.FaceScore)
		s.Equal("Juan D. Santos", reg.Evidence.ExtractedName)
		s.Equal("Brgy. Poblacion, Nueva Ecija", reg.Evidence.Address)
		s.Equal(res.IDImage.URL, reg.Evidence.IDImageURL)
		s.Equal("203.0.113.7", reg.Evidence.ClientIP)
		s.Contains(reg.Evidence.Device, "Chrome")

		s.Equal([]string{string(audit.EventVerificationAttempted), string(audit.EventVerificationAccepted)}, s.actions())
	})

	s.Run("second verification after success is a conflict", func() {
		_, err := s.svc.Verify(s.ctx, s.input)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
	})
}

// =============================================================================
// Attempts
// =============================================================================

func (s *ServiceSuite) TestFailedAttemptsConsumeAllowance() {
	s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).Return(faceMismatch(), nil).Times(3)

	res, err := s.svc.Verify(s.ctx, s.input)
	s.Require().NoError(err)
	s.Equal(2, res.Outcome.AttemptsRemaining)
	s.False(res.RestartRequired)

	res, err = s.svc.Verify(s.ctx, s.input)
	s.Require().NoError(err)
	s.Equal(1, res.Outcome.AttemptsRemaining)

	res, err = s.svc.Verify(s.ctx, s.input)
	s.Require().NoError(err)
	s.Equal(0, res.Outcome.AttemptsRemaining)
	s.True(res.RestartRequired)

	_, err = s.store.Get(context.Background(), "tmp-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.Contains(s.actions(), string(audit.EventAttemptsExhausted))

	_, err = s.svc.Verify(s.ctx, s.input)
	s.True(dErrors.Is(err, dErrors.CodeSessionExpired))
}

func (s *ServiceSuite) TestVendorErrorDoesNotConsumeAttempt() {
	s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).Return(models.VerificationOutcome{
		State: models.StateRejectedVendorError,
		Cause: dErrors.New(dErrors.CodeVendorUnavailable, "down"),
	}, nil)

	res, err := s.svc.Verify(s.ctx, s.input)
	s.Require().NoError(err)
	s.Equal(models.StateRejectedVendorError, res.Outcome.State)
	s.Equal(3, res.Outcome.AttemptsRemaining)
	s.True(dErrors.Is(res.Outcome.Cause, dErrors.CodeVendorUnavailable))

	reg, err := s.store.Get(context.Background(), "tmp-1")
	s.Require().NoError(err)
	s.Equal(0, reg.AttemptsUsed)
}

func (s *ServiceSuite) TestRegistrationAtCeilingIsRefused() {
	s.seed("tmp-spent", regmodels.RoleFarmer, 3)
	in := s.input
	in.TempID = "tmp-spent"

	_, err := s.svc.Verify(s.ctx, in)
	s.True(dErrors.Is(err, dErrors.CodeAttemptsExhausted))

	reg, err := s.store.Get(context.Background(), "tmp-spent")
	s.Require().NoError(err)
	s.Equal(3, reg.AttemptsUsed)
}

func (s *ServiceSuite) TestConcurrentSubmissionsStayWithinAllowance() {
	const submissions = 10
	gate := make(chan struct{})
	var runs atomic.Int32
	s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.VerificationRequest) (models.VerificationOutcome, error) {
			runs.Add(1)
			<-gate
			return faceMismatch(), nil
		}).AnyTimes()

	type reply struct {
		res *Result
		err error
	}
	replies := make(chan reply, submissions)
	var wg sync.WaitGroup
	for range submissions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.svc.Verify(s.ctx, s.input)
			replies <- reply{res, err}
		}()
	}

	// refused submissions return without reaching the pipeline
	refused := 0
	for refused < submissions-DefaultMaxAttempts {
		select {
		case r := <-replies:
			s.Require().Error(r.err)
			s.True(dErrors.Is(r.err, dErrors.CodeAttemptsExhausted))
			refused++
		case <-time.After(5 * time.Second):
			close(gate)
			wg.Wait()
			s.FailNow("submissions beyond the allowance were not refused", "pipeline runs: %d", runs.Load())
		}
	}
	close(gate)
	wg.Wait()
	close(replies)

	restarts := 0
	for r := range replies {
		s.Require().NoError(r.err)
		if r.res.RestartRequired {
			restarts++
		}
	}
	s.Equal(int32(DefaultMaxAttempts), runs.Load())
	s.Equal(1, restarts)
}

func (s *ServiceSuite) TestAcceptedAttemptIsHandedBack() {
	s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).Return(faceMismatch(), nil)
	s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).Return(accepted(), nil)

	_, err := s.svc.Verify(s.ctx, s.input)
	s.Require().NoError(err)
	res, err := s.svc.Verify(s.ctx, s.input)
	s.Require().NoError(err)
	s.Equal(2, res.Outcome.AttemptsRemaining)

	reg, err := s.store.Get(context.Background(), "tmp-1")
	s.Require().NoError(err)
	s.Equal(1, reg.AttemptsUsed)
	s.True(reg.IDVerified)
}

// =============================================================================
// Preconditions
// =============================================================================

func (s *ServiceSuite) TestPreconditions() {
	s.Run("unknown registration is a session expiry", func() {
		in := s.input
		in.TempID = "missing"
		_, err := s.svc.Verify(s.ctx, in)
		s.True(dErrors.Is(err, dErrors.CodeSessionExpired))
	})

	s.Run("expired registration is a session expiry", func() {
		ctx := requestcontext.WithTime(s.ctx, s.now.Add(24*time.Hour))
		_, err := s.svc.Verify(ctx, s.input)
		s.True(dErrors.Is(err, dErrors.CodeSessionExpired))
	})

	s.Run("consumer registrations are not verified", func() {
		s.seed("tmp-consumer", regmodels.RoleConsumer, 0)
		in := s.input
		in.TempID = "tmp-consumer"
		_, err := s.svc.Verify(s.ctx, in)
		s.True(dErrors.Is(err, dErrors.CodePreconditionFailed))
	})

	s.Run("missing selfie is a validation error", func() {
		in := s.input
		in.Selfie = Upload{}
		_, err := s.svc.Verify(s.ctx, in)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}

func (s *ServiceSuite) TestUnfinishedOutcomeIsRefused() {
	s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).Return(models.VerificationOutcome{
		State: models.StateExtracted,
	}, nil)

	_, err := s.svc.Verify(s.ctx, s.input)
	s.True(dErrors.Is(err, dErrors.CodeInvariantViolation))

	reg, err := s.store.Get(context.Background(), "tmp-1")
	s.Require().NoError(err)
	s.Equal(0, reg.AttemptsUsed)
	s.False(reg.IDVerified)
}

// =============================================================================
// Client abort
// =============================================================================

func (s *ServiceSuite) TestClientAbortDiscardsOutcome() {
	ctx, cancel := context.WithCancel(s.ctx)
	s.pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, models.VerificationRequest) (models.VerificationOutcome, error) {
			cancel()
			return faceMismatch(), nil
		})

	_, err := s.svc.Verify(ctx, s.input)
	s.True(dErrors.Is(err, dErrors.CodeTimeout))

	reg, err := s.store.Get(context.Background(), "tmp-1")
	s.Require().NoError(err)
	s.Equal(0, reg.AttemptsUsed)
	s.False(reg.IDVerified)
}

// =============================================================================
// Store failures
// =============================================================================

func TestAttachFailureIsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	registrations := regmocks.NewMockProvisionalStore(ctrl)
	pipeline := mocks.NewMockPipeline(ctrl)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	registrations.EXPECT().Get(gomock.Any(), "tmp-1").Return(&regmodels.ProvisionalRegistration{
		TempID:    "tmp-1",
		FormData:  regmodels.FormData{Role: regmodels.RoleFarmer, FirstName: "Juan", LastName: "Santos"},
		ExpiresAt: now.Add(time.Hour),
	}, nil)
	registrations.EXPECT().RecordAttempt(gomock.Any(), "tmp-1").Return(1, nil)
	pipeline.EXPECT().Run(gomock.Any(), gomock.Any()).Return(accepted(), nil)
	registrations.EXPECT().AttachVerification(gomock.Any(), "tmp-1", gomock.Any(), gomock.Any()).Return(errors.New("redis: connection refused"))
	registrations.EXPECT().ReleaseAttempt(gomock.Any(), "tmp-1").Return(nil)

	svc, err := New(registrations, pipeline, objectstore.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	_, err = svc.Verify(requestcontext.WithTime(context.Background(), now), Input{
		TempID:  "tmp-1",
		IDType:  models.IDTypePhilSys,
		IDImage: Upload{Data: []byte("id"), ContentType: "image/jpeg"},
		Selfie:  Upload{Data: []byte("selfie"), ContentType: "image/jpeg"},
	})
	if !dErrors.Is(err, dErrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := New(nil, mocks.NewMockPipeline(ctrl), objectstore.NewMemory())
	if err == nil {
		t.Fatal("expected error for nil provisional store")
	}
	_, err = New(provisional.NewInMemory(), nil, objectstore.NewMemory())
	if err == nil {
		t.Fatal("expected error for nil pipeline")
	}
	_, err = New(provisional.NewInMemory(), mocks.NewMockPipeline(ctrl), nil)
	if err == nil {
		t.Fatal("expected error for nil object store")
	}
}
