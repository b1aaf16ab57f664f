package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	jwttoken "farmgate/internal/jwt_token"
	"farmgate/internal/registration/handler/mocks"
	"farmgate/internal/registration/materializer"
	"farmgate/internal/registration/models"
	"farmgate/internal/registration/service"
	"farmgate/internal/registration/validation"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/registration-mocks.go -package=mocks Service,Materializer

type RegistrationHandlerSuite struct {
	suite.Suite
	svc    *mocks.MockService
	mat    *mocks.MockMaterializer
	jwt    *jwttoken.JWTService
	router chi.Router
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.svc = mocks.NewMockService(ctrl)
	s.mat = mocks.NewMockMaterializer(ctrl)
	s.jwt = jwttoken.NewJWTService("test-key", "farmgate", "farmgate-marketplace", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.svc, s.mat, logger, jwttoken.NewJWTServiceAdapter(s.jwt)).Register(s.router)
}

func (s *RegistrationHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.NewRequestWithBody(s.T(), method, path, body))
}

func (s *RegistrationHandlerSuite) doAuthed(path, token string) *httptest.ResponseRecorder {
	return testutil.DoRequest(s.router, testutil.WithBearer(testutil.NewRequestWithBody(s.T(), http.MethodGet, path, ""), token))
}

func (s *RegistrationHandlerSuite) body(rec *httptest.ResponseRecorder) map[string]any {
	return *testutil.UnmarshalResponse[map[string]any](s.T(), rec)
}

// =============================================================================
// POST /api/register
// =============================================================================

func (s *RegistrationHandlerSuite) TestCreate() {
	s.Run("created", func() {
		expires := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
		s.svc.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ any, form validation.SignupForm) (*models.ProvisionalRegistration, error) {
				s.Equal("farmer", form.Role)
				s.Equal("Santos Rice Farm", form.FarmName)
				return &models.ProvisionalRegistration{TempID: "tmp-1", ExpiresAt: expires}, nil
			})

		rec := s.do(http.MethodPost, "/api/register",
			`{"role":"farmer","firstName":"Juan","lastName":"Santos","email":"juan@example.com","phone":"09171234567","farmName":"Santos Rice Farm","farmAddress":"Nueva Ecija"}`)
		s.Equal(http.StatusCreated, rec.Code)
		body := s.body(rec)
		s.Equal(true, body["success"])
		s.Equal("tmp-1", body["tempId"])
	})

	s.Run("validation details are returned", func() {
		_, verr := validation.Phone("123")
		s.svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, verr)

		rec := s.do(http.MethodPost, "/api/register", `{"phone":"123"}`)
		testutil.AssertStatusAndErrorCode(s.T(), rec, http.StatusBadRequest, string(dErrors.CodeValidation))
		body := s.body(rec)
		details := body["details"].([]any)
		s.Equal("phone", details[0].(map[string]any)["field"])
	})

	s.Run("malformed json", func() {
		rec := s.do(http.MethodPost, "/api/register", `{`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

// =============================================================================
// Status and OTP
// =============================================================================

func (s *RegistrationHandlerSuite) TestStatus() {
	s.svc.EXPECT().Status(gomock.Any(), "tmp-1").Return(&service.Status{TempID: "tmp-1", IDVerified: true, AttemptsRemaining: 2}, nil)

	rec := s.do(http.MethodGet, "/api/register/tmp-1", "")
	s.Equal(http.StatusOK, rec.Code)
	body := s.body(rec)
	s.Equal(true, body["idVerified"])
	s.Equal(float64(2), body["attemptsRemaining"])
}

func (s *RegistrationHandlerSuite) TestStatusExpired() {
	s.svc.EXPECT().Status(gomock.Any(), "tmp-old").Return(nil, dErrors.New(dErrors.CodeSessionExpired, "registration session expired, please start again"))

	rec := s.do(http.MethodGet, "/api/register/tmp-old", "")
	testutil.AssertStatusAndErrorCode(s.T(), rec, http.StatusGone, string(dErrors.CodeSessionExpired))
}

func (s *RegistrationHandlerSuite) TestSendOTP() {
	s.svc.EXPECT().SendOTP(gomock.Any(), "tmp-1").Return(nil)
	rec := s.do(http.MethodPost, "/api/register/tmp-1/otp", "")
	s.Equal(http.StatusAccepted, rec.Code)

	s.svc.EXPECT().SendOTP(gomock.Any(), "tmp-2").Return(dErrors.New(dErrors.CodePreconditionFailed, "complete ID verification before requesting a code"))
	rec = s.do(http.MethodPost, "/api/register/tmp-2/otp", "")
	s.Equal(http.StatusPreconditionFailed, rec.Code)
}

// =============================================================================
// Completion
// =============================================================================

func (s *RegistrationHandlerSuite) TestComplete() {
	s.Run("account created", func() {
		s.mat.EXPECT().Materialize(gomock.Any(), "tmp-1", models.OTPConfirmation{Code: "123456"}).Return(&models.Completion{
			Account:     &models.Account{ID: "acc-1", Role: models.RoleFarmer},
			AccessToken: "jwt",
		}, nil)

		rec := s.do(http.MethodPost, "/api/register/tmp-1/complete", `{"code":"123456"}`)
		s.Equal(http.StatusCreated, rec.Code)
		body := s.body(rec)
		s.Equal("jwt", body["accessToken"])
	})

	s.Run("partial account carries identity", func() {
		partial := dErrors.Wrap(
			&materializer.PartialAccountError{IdentityUID: "uid-1", Step: "profile", Err: errors.New("pq: timeout")},
			dErrors.CodePartialAccountCreated,
			"your phone is confirmed but the account was not finished, please retry",
		)
		s.mat.EXPECT().Materialize(gomock.Any(), "tmp-1", gomock.Any()).Return(nil, partial)

		rec := s.do(http.MethodPost, "/api/register/tmp-1/complete", `{"code":"123456"}`)
		s.Equal(http.StatusBadGateway, rec.Code)
		body := s.body(rec)
		s.Equal(string(dErrors.CodePartialAccountCreated), body["errorCode"])
		s.Equal("uid-1", body["identityUid"])
		s.NotContains(rec.Body.String(), "pq: timeout")
	})

	s.Run("retry profile", func() {
		s.mat.EXPECT().RetryProfile(gomock.Any(), "tmp-1", "uid-1").Return(&models.Completion{
			Account: &models.Account{ID: "acc-1"}, AccessToken: "jwt",
		}, nil)

		rec := s.do(http.MethodPost, "/api/register/tmp-1/retry-profile", `{"identityUid":"uid-1"}`)
		s.Equal(http.StatusCreated, rec.Code)
	})

	s.Run("retry requires identity", func() {
		rec := s.do(http.MethodPost, "/api/register/tmp-1/retry-profile", `{}`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

// =============================================================================
// GET /api/accounts/me
// =============================================================================

func (s *RegistrationHandlerSuite) TestMe() {
	account := &models.Account{ID: "acc-1", IdentityUID: "uid-1", Role: models.RoleFarmer, DisplayName: "Juan Santos"}
	token, _, err := s.jwt.Issue(account)
	s.Require().NoError(err)

	s.Run("authenticated", func() {
		s.svc.EXPECT().Account(gomock.Any(), "acc-1").Return(account, nil)
		rec := s.doAuthed("/api/accounts/me", token)
		s.Equal(http.StatusOK, rec.Code)
		s.Equal("Juan Santos", s.body(rec)["displayName"])
	})

	s.Run("missing token", func() {
		rec := s.do(http.MethodGet, "/api/accounts/me", "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("forged token", func() {
		rec := s.doAuthed("/api/accounts/me", token+"x")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})
}
