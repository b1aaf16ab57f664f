package facematch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmgate/internal/verification/models"
	"farmgate/internal/verification/ports/mocks"
	"farmgate/internal/verification/providers"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/circuit"
)

// =============================================================================
// Face Match Engine Test Suite
// =============================================================================

type EngineSuite struct {
	suite.Suite
	comparer *mocks.MockFaceComparer
	budget   *mocks.MockBudgetGate
	engine   *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

var (
	idImg  = []byte("id")
	selfie = []byte("selfie")
	okRes  = models.Reservation{Allowed: true, Window: models.BudgetWindow{Day: "2025-03-10", Month: "2025-03"}}
)

func (s *EngineSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.comparer = mocks.NewMockFaceComparer(ctrl)
	s.budget = mocks.NewMockBudgetGate(ctrl)

	var err error
	s.engine, err = New(s.comparer, s.budget)
	s.Require().NoError(err)
}

func (s *EngineSuite) expectCharge() {
	s.budget.EXPECT().CheckAndReserve(gomock.Any()).Return(okRes, nil)
	s.budget.EXPECT().Commit(gomock.Any(), okRes).Return(nil)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *EngineSuite) TestNew() {
	s.Run("nil comparer", func() {
		_, err := New(nil, s.budget)
		s.ErrorContains(err, "face comparer is required")
	})
	s.Run("nil budget", func() {
		_, err := New(s.comparer, nil)
		s.ErrorContains(err, "budget gate is required")
	})
}

// =============================================================================
// Scoring Tests
// =============================================================================

func (s *EngineSuite) TestScoring() {
	ctx := context.Background()

	tests := []struct {
		name   string
		score  float64
		passed bool
		label  models.ConfidenceLabel
	}{
		{"high score passes", 92, true, models.ConfidenceHigh},
		{"threshold is inclusive", 80, true, models.ConfidenceMedium},
		{"just under threshold fails", 79.9, false, models.ConfidenceMedium},
		{"low score is data", 35, false, models.ConfidenceLow},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.expectCharge()
			s.comparer.EXPECT().Compare(gomock.Any(), idImg, selfie).Return(tt.score, "", nil)

			res, err := s.engine.Compare(ctx, idImg, selfie)
			s.Require().NoError(err)
			s.Equal(tt.score, res.Score)
			s.Equal(tt.passed, res.Passed)
			s.Equal(tt.label, res.ConfidenceLabel)
		})
	}
}

func (s *EngineSuite) TestVendorRejectsImages() {
	s.expectCharge()
	s.comparer.EXPECT().Compare(gomock.Any(), idImg, selfie).Return(0.0, "No face detected in one of the images.", nil)

	res, err := s.engine.Compare(context.Background(), idImg, selfie)
	s.Require().NoError(err)
	s.False(res.Passed)
	s.Equal("No face detected in one of the images.", res.VendorMessage)
}

// =============================================================================
// Budget Tests
// =============================================================================

func (s *EngineSuite) TestBudget() {
	ctx := context.Background()

	s.Run("spent budget skips the vendor", func() {
		s.budget.EXPECT().CheckAndReserve(gomock.Any()).Return(models.Reservation{
			Allowed: false,
			Reason:  "Daily face verification limit reached (300/300). Please try again tomorrow.",
		}, nil)

		res, err := s.engine.Compare(ctx, idImg, selfie)
		s.Require().NoError(err)
		s.False(res.Passed)
		s.True(res.RateLimited)
		s.Contains(res.VendorMessage, "Daily")
	})

	s.Run("losing the last slot skips the vendor", func() {
		s.budget.EXPECT().CheckAndReserve(gomock.Any()).Return(okRes, nil)
		s.budget.EXPECT().Commit(gomock.Any(), okRes).
			Return(dErrors.New(dErrors.CodeRateLimitExceeded, "Monthly face verification limit reached (900/900). Please try again next month."))

		res, err := s.engine.Compare(ctx, idImg, selfie)
		s.Require().NoError(err)
		s.True(res.RateLimited)
		s.Contains(res.VendorMessage, "Monthly")
	})

	s.Run("budget store failure fails closed", func() {
		s.budget.EXPECT().CheckAndReserve(gomock.Any()).
			Return(models.Reservation{}, dErrors.New(dErrors.CodeVendorUnavailable, "vendor budget is unavailable"))

		_, err := s.engine.Compare(ctx, idImg, selfie)
		s.True(dErrors.HasCode(err, dErrors.CodeVendorUnavailable))
	})
}

// =============================================================================
// Failure Tests
// =============================================================================

func (s *EngineSuite) TestTransportFailure() {
	s.expectCharge()
	s.comparer.EXPECT().Compare(gomock.Any(), idImg, selfie).
		Return(0.0, "", providers.ClassifyTransport(providerFacePP, context.DeadlineExceeded))

	_, err := s.engine.Compare(context.Background(), idImg, selfie)
	s.True(dErrors.HasCode(err, dErrors.CodeVendorUnavailable))
	s.Equal(providers.ErrorTimeout, providers.GetCategory(err))
}

func (s *EngineSuite) TestOpenCircuitDoesNotCharge() {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New(providerFacePP,
		circuit.WithFailureThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	engine, err := New(s.comparer, s.budget, WithBreaker(breaker))
	s.Require().NoError(err)

	s.expectCharge()
	s.comparer.EXPECT().Compare(gomock.Any(), idImg, selfie).Return(0.0, "", providers.ClassifyStatus(providerFacePP, 502, ""))
	_, err = engine.Compare(context.Background(), idImg, selfie)
	s.Require().Error(err)
	s.True(breaker.IsOpen())

	// open: reservation is checked but nothing is committed or sent
	s.budget.EXPECT().CheckAndReserve(gomock.Any()).Return(okRes, nil)
	_, err = engine.Compare(context.Background(), idImg, selfie)
	s.True(dErrors.HasCode(err, dErrors.CodeVendorUnavailable))
	s.Equal(providers.ErrorCircuitOpen, providers.GetCategory(err))
}

func (s *EngineSuite) TestRefusalsDoNotTripBreaker() {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	breaker := circuit.New(providerFacePP,
		circuit.WithFailureThreshold(1),
		circuit.WithCooldown(time.Minute),
		circuit.WithClock(func() time.Time { return now }),
	)
	engine, err := New(s.comparer, s.budget, WithBreaker(breaker))
	s.Require().NoError(err)

	for _, status := range []int{400, 401} {
		s.expectCharge()
		s.comparer.EXPECT().Compare(gomock.Any(), idImg, selfie).Return(0.0, "", providers.ClassifyStatus(providerFacePP, status, ""))
		_, err = engine.Compare(context.Background(), idImg, selfie)
		s.True(dErrors.HasCode(err, dErrors.CodeVendorUnavailable))
	}
	s.False(breaker.IsOpen())

	s.expectCharge()
	s.comparer.EXPECT().Compare(gomock.Any(), idImg, selfie).Return(0.0, "", providers.ClassifyStatus(providerFacePP, 503, ""))
	_, err = engine.Compare(context.Background(), idImg, selfie)
	s.Require().Error(err)
	s.True(breaker.IsOpen())
}
