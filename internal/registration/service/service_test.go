package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"farmgate/internal/registration/models"
	"farmgate/internal/registration/ports/mocks"
	"farmgate/internal/registration/store/account"
	"farmgate/internal/registration/store/provisional"
	"farmgate/internal/registration/validation"
	vmodels "farmgate/internal/verification/models"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/audit"
	"farmgate/pkg/platform/audit/publisher"
	auditmemory "farmgate/pkg/platform/audit/store/memory"
	"farmgate/pkg/requestcontext"
)

type RegistrationServiceSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	store      *provisional.InMemoryStore
	directory  *account.InMemoryStore
	phones     *mocks.MockPhoneVerifier
	auditStore *auditmemory.InMemoryStore
	svc        *Service
}

func TestRegistrationServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistrationServiceSuite))
}

func (s *RegistrationServiceSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.store = provisional.NewInMemory()
	s.directory = account.NewInMemory()
	s.phones = mocks.NewMockPhoneVerifier(ctrl)
	s.auditStore = auditmemory.NewInMemoryStore()

	var err error
	s.svc, err = New(s.store, s.directory, s.phones,
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
	)
	s.Require().NoError(err)

	s.now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func farmerSignup() validation.SignupForm {
	return validation.SignupForm{
		Role:        "farmer",
		FirstName:   "Juan",
		LastName:    "Santos",
		Email:       "juan@example.com",
		Phone:       "09171234567",
		FarmName:    "Santos Rice Farm",
		FarmAddress: "Brgy. Poblacion, Nueva Ecija",
	}
}

func (s *RegistrationServiceSuite) TestCreate() {
	reg, err := s.svc.Create(s.ctx, farmerSignup())
	s.Require().NoError(err)
	s.NotEmpty(reg.TempID)
	s.Equal(s.now.Add(24*time.Hour), reg.ExpiresAt)
	s.Equal("+639171234567", reg.FormData.Phone)

	stored, err := s.store.Get(context.Background(), reg.TempID)
	s.Require().NoError(err)
	s.Equal("Santos Rice Farm", stored.FormData.FarmName)

	events, err := s.auditStore.ListAll(context.Background())
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventRegistrationStarted), events[0].Action)
	s.Equal(reg.TempID, events[0].Subject)
}

func (s *RegistrationServiceSuite) TestCreateRejectsInvalidForm() {
	in := farmerSignup()
	in.Phone = "12345"
	_, err := s.svc.Create(s.ctx, in)
	s.True(dErrors.Is(err, dErrors.CodeValidation))
	s.Equal("phone", validation.Details(err)[0].Field)
}

func (s *RegistrationServiceSuite) TestStatus() {
	reg, err := s.svc.Create(s.ctx, farmerSignup())
	s.Require().NoError(err)
	_, err = s.store.RecordAttempt(context.Background(), reg.TempID)
	s.Require().NoError(err)

	st, err := s.svc.Status(s.ctx, reg.TempID)
	s.Require().NoError(err)
	s.False(st.IDVerified)
	s.Equal(2, st.AttemptsRemaining)
	s.Equal(models.RoleFarmer, st.Role)

	s.Run("expired", func() {
		later := requestcontext.WithTime(context.Background(), s.now.Add(25*time.Hour))
		_, err := s.svc.Status(later, reg.TempID)
		s.True(dErrors.Is(err, dErrors.CodeSessionExpired))
	})
}

func (s *RegistrationServiceSuite) TestSendOTP() {
	reg, err := s.svc.Create(s.ctx, farmerSignup())
	s.Require().NoError(err)

	s.Run("unverified farmer cannot request a code", func() {
		err := s.svc.SendOTP(s.ctx, reg.TempID)
		s.True(dErrors.Is(err, dErrors.CodePreconditionFailed))
	})

	s.Run("verified farmer gets a code", func() {
		outcome := vmodels.VerificationOutcome{Verified: true, State: vmodels.StateAccepted}
		s.Require().NoError(s.store.AttachVerification(context.Background(), reg.TempID, outcome, vmodels.Evidence{FaceScore: 92}))
		s.phones.EXPECT().Send(gomock.Any(), "+639171234567").Return(nil)

		s.NoError(s.svc.SendOTP(s.ctx, reg.TempID))
	})

	s.Run("confirmed phone does not get another code", func() {
		s.Require().NoError(s.store.SetIdentity(context.Background(), reg.TempID, "uid-1"))
		err := s.svc.SendOTP(s.ctx, reg.TempID)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
	})
}

func (s *RegistrationServiceSuite) TestConsumerCanRequestCodeImmediately() {
	reg, err := s.svc.Create(s.ctx, validation.SignupForm{
		Role: "consumer", FirstName: "Maria", LastName: "Garcia",
		Email: "maria@example.com", Phone: "09181234567", DeliveryAddress: "12 Mabini St, Quezon City",
	})
	s.Require().NoError(err)
	s.phones.EXPECT().Send(gomock.Any(), "+639181234567").Return(nil)

	s.NoError(s.svc.SendOTP(s.ctx, reg.TempID))
}

func (s *RegistrationServiceSuite) TestAccount() {
	created, err := s.directory.UpsertAccount(context.Background(), &models.Account{
		ID: "acc-1", IdentityUID: "uid-1", Role: models.RoleFarmer, DisplayName: "Juan Santos",
	})
	s.Require().NoError(err)

	got, err := s.svc.Account(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Juan Santos", got.DisplayName)

	_, err = s.svc.Account(s.ctx, "missing")
	s.True(dErrors.Is(err, dErrors.CodeNotFound))
}
