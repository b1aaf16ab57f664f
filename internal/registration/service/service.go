// Package service stages signups as provisional registrations and serves
// their status until an account is materialized.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"farmgate/internal/registration/models"
	"farmgate/internal/registration/ports"
	"farmgate/internal/registration/validation"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/audit"
	"farmgate/pkg/platform/sentinel"
	"farmgate/pkg/requestcontext"
)

const (
	DefaultTTL         = 24 * time.Hour
	DefaultMaxAttempts = 3
)

// Status is the client-facing view of a provisional registration.
type Status struct {
	TempID            string      `json:"tempId"`
	Role              models.Role `json:"role"`
	IDVerified        bool        `json:"idVerified"`
	PhoneConfirmed    bool        `json:"phoneConfirmed"`
	AttemptsRemaining int         `json:"attemptsRemaining"`
	ExpiresAt         time.Time   `json:"expiresAt"`
}

type Service struct {
	registrations  ports.ProvisionalStore
	directory      ports.AccountDirectory
	phones         ports.PhoneVerifier
	ttl            time.Duration
	maxAttempts    int
	auditPublisher ports.AuditPublisher
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

// WithTTL sets how long a provisional registration stays usable.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

func New(registrations ports.ProvisionalStore, directory ports.AccountDirectory, phones ports.PhoneVerifier, opts ...Option) (*Service, error) {
	if registrations == nil {
		return nil, fmt.Errorf("provisional store is required")
	}
	if directory == nil {
		return nil, fmt.Errorf("account directory is required")
	}
	if phones == nil {
		return nil, fmt.Errorf("phone verifier is required")
	}
	svc := &Service{
		registrations: registrations,
		directory:     directory,
		phones:        phones,
		ttl:           DefaultTTL,
		maxAttempts:   DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Create validates the signup form and stages it under a new temp ID.
func (s *Service) Create(ctx context.Context, form validation.SignupForm) (*models.ProvisionalRegistration, error) {
	data, err := validation.Form(form)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	reg := &models.ProvisionalRegistration{
		TempID:    uuid.NewString(),
		FormData:  data,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.registrations.Create(ctx, reg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start registration")
	}

	audit.Log(ctx, s.logger, s.auditPublisher, audit.EventRegistrationStarted,
		"temp_id", reg.TempID,
		"role", string(data.Role),
	)
	return reg, nil
}

// Status reports verification progress for a registration.
func (s *Service) Status(ctx context.Context, tempID string) (*Status, error) {
	reg, err := s.load(ctx, tempID)
	if err != nil {
		return nil, err
	}
	return &Status{
		TempID:            reg.TempID,
		Role:              reg.FormData.Role,
		IDVerified:        reg.IDVerified,
		PhoneConfirmed:    reg.IdentityUID != "",
		AttemptsRemaining: max(s.maxAttempts-reg.AttemptsUsed, 0),
		ExpiresAt:         reg.ExpiresAt,
	}, nil
}

// SendOTP texts a code to the registered phone. Farmers must pass ID
// verification first so SMS is only spent on signups that can finish.
func (s *Service) SendOTP(ctx context.Context, tempID string) error {
	reg, err := s.load(ctx, tempID)
	if err != nil {
		return err
	}
	if reg.IdentityUID != "" {
		return dErrors.New(dErrors.CodeConflict, "phone number is already confirmed")
	}
	if !reg.ReadyForAccount() {
		return dErrors.New(dErrors.CodePreconditionFailed, "complete ID verification before requesting a code")
	}

	if err := s.phones.Send(ctx, reg.FormData.Phone); err != nil {
		return err
	}
	audit.Log(ctx, s.logger, s.auditPublisher, audit.EventOTPSent,
		"temp_id", tempID,
	)
	return nil
}

// Account returns a materialized account by ID.
func (s *Service) Account(ctx context.Context, accountID string) (*models.Account, error) {
	account, err := s.directory.FindByID(ctx, accountID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

func (s *Service) load(ctx context.Context, tempID string) (*models.ProvisionalRegistration, error) {
	reg, err := s.registrations.Get(ctx, tempID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeSessionExpired, "registration session not found or expired, please start again")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if reg.IsExpiredAt(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeSessionExpired, "registration session expired, please start again")
	}
	return reg, nil
}
