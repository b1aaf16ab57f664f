// Package materializer turns a verified provisional registration into an
// account and role profile.
//
// The identity (phone OTP), the account row and the profile row live in
// separate systems with no shared transaction. A failure after the identity
// exists is reported as PartialAccountCreated carrying the identity UID, and
// RetryProfile finishes the remaining writes without confirming again.
package materializer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"farmgate/internal/platform/metrics"
	"farmgate/internal/registration/models"
	"farmgate/internal/registration/ports"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/audit"
	"farmgate/pkg/platform/sentinel"
	"farmgate/pkg/requestcontext"
)

const (
	stepAccount = "account"
	stepProfile = "profile"
)

// PartialAccountError identifies the identity left without a complete
// account so the caller can retry.
type PartialAccountError struct {
	IdentityUID string
	Step        string
	Err         error
}

func (e *PartialAccountError) Error() string {
	return fmt.Sprintf("account incomplete for identity %s at %s: %v", e.IdentityUID, e.Step, e.Err)
}

func (e *PartialAccountError) Unwrap() error { return e.Err }

// PartialIdentity returns the identity UID carried by a partial failure.
func PartialIdentity(err error) (string, bool) {
	var perr *PartialAccountError
	if errors.As(err, &perr) {
		return perr.IdentityUID, true
	}
	return "", false
}

type Materializer struct {
	registrations  ports.ProvisionalStore
	directory      ports.AccountDirectory
	phones         ports.PhoneVerifier
	tokens         ports.TokenIssuer
	auditPublisher ports.AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

type Option func(*Materializer)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Materializer) {
		m.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(m *Materializer) {
		m.auditPublisher = publisher
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Materializer) {
		m.metrics = mt
	}
}

func New(registrations ports.ProvisionalStore, directory ports.AccountDirectory, phones ports.PhoneVerifier, tokens ports.TokenIssuer, opts ...Option) (*Materializer, error) {
	if registrations == nil {
		return nil, fmt.Errorf("provisional store is required")
	}
	if directory == nil {
		return nil, fmt.Errorf("account directory is required")
	}
	if phones == nil {
		return nil, fmt.Errorf("phone verifier is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token issuer is required")
	}
	m := &Materializer{
		registrations: registrations,
		directory:     directory,
		phones:        phones,
		tokens:        tokens,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Materialize confirms the OTP and creates the account and profile. A
// registration whose phone was already confirmed skips the OTP check.
func (m *Materializer) Materialize(ctx context.Context, tempID string, otp models.OTPConfirmation) (*models.Completion, error) {
	ctx = requestcontext.WithTempID(ctx, tempID)
	reg, err := m.load(ctx, tempID)
	if err != nil {
		return nil, err
	}

	identityUID := reg.IdentityUID
	if identityUID == "" {
		if otp.Code == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "code is required")
		}
		identity, err := m.phones.Confirm(ctx, reg.FormData.Phone, otp.Code)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeOTPInvalid) {
				audit.Log(ctx, m.logger, m.auditPublisher, audit.EventOTPRejected,
					"temp_id", tempID,
					"decision", "rejected",
					"reason", err.Error(),
				)
			}
			return nil, err
		}
		// The code is spent and the identity is known; finish with it even
		// if the registration record could not remember it.
		if err := m.registrations.SetIdentity(ctx, tempID, identity.UID); err != nil && m.logger != nil {
			m.logger.WarnContext(ctx, "phone confirmed but not recorded on the registration",
				"temp_id", tempID,
				"identity_uid", identity.UID,
				"error", err,
			)
		}
		identityUID = identity.UID
	}

	return m.persist(ctx, reg, identityUID)
}

// RetryProfile repeats the account and profile writes for an identity that
// already passed OTP confirmation.
func (m *Materializer) RetryProfile(ctx context.Context, tempID, identityUID string) (*models.Completion, error) {
	ctx = requestcontext.WithTempID(ctx, tempID)
	reg, err := m.load(ctx, tempID)
	if err != nil {
		return nil, err
	}
	if reg.IdentityUID == "" || reg.IdentityUID != identityUID {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "phone confirmation for this registration is missing or does not match")
	}
	return m.persist(ctx, reg, identityUID)
}

func (m *Materializer) load(ctx context.Context, tempID string) (*models.ProvisionalRegistration, error) {
	if tempID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "tempId is required")
	}
	reg, err := m.registrations.Get(ctx, tempID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeSessionExpired, "registration session not found or expired, please start again")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
	}
	if reg.IsExpiredAt(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeSessionExpired, "registration session expired, please start again")
	}
	if !reg.ReadyForAccount() {
		return nil, dErrors.New(dErrors.CodePreconditionFailed, "ID verification must pass before an account can be created")
	}
	return reg, nil
}

func (m *Materializer) persist(ctx context.Context, reg *models.ProvisionalRegistration, identityUID string) (*models.Completion, error) {
	now := requestcontext.Now(ctx)
	form := reg.FormData

	existing, err := m.directory.FindByIdentity(ctx, identityUID)
	switch {
	case err == nil && existing.Role != form.Role:
		return nil, dErrors.New(dErrors.CodeConflict, "this phone number is already registered")
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return nil, m.partial(ctx, reg.TempID, identityUID, stepAccount, err)
	}

	account, err := m.directory.UpsertAccount(ctx, &models.Account{
		ID:          uuid.NewString(),
		IdentityUID: identityUID,
		Role:        form.Role,
		Email:       form.Email,
		Phone:       form.Phone,
		DisplayName: form.DisplayName(),
		CreatedAt:   now,
	})
	if err != nil {
		return nil, m.partial(ctx, reg.TempID, identityUID, stepAccount, err)
	}

	switch form.Role {
	case models.RoleFarmer:
		err = m.directory.UpsertFarmerProfile(ctx, &models.FarmerProfile{
			IdentityUID: identityUID,
			FarmName:    form.FarmName,
			FarmAddress: form.FarmAddress,
			Evidence:    *reg.Evidence,
			CreatedAt:   now,
		})
	default:
		err = m.directory.UpsertConsumerProfile(ctx, &models.ConsumerProfile{
			IdentityUID:     identityUID,
			DeliveryAddress: form.DeliveryAddress,
			CreatedAt:       now,
		})
	}
	if err != nil {
		return nil, m.partial(ctx, reg.TempID, identityUID, stepProfile, err)
	}

	if err := m.registrations.Delete(ctx, reg.TempID); err != nil && m.logger != nil {
		m.logger.WarnContext(ctx, "failed to delete materialized registration, it will expire",
			"temp_id", reg.TempID,
			"error", err,
		)
	}

	m.metrics.IncrementAccountsCreated(string(form.Role))
	audit.Log(ctx, m.logger, m.auditPublisher, audit.EventAccountMaterialized,
		"identity_uid", identityUID,
		"temp_id", reg.TempID,
		"account_id", account.ID,
		"role", string(form.Role),
		"decision", "created",
	)

	token, expiresAt, err := m.tokens.Issue(account)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "account created but the access token could not be issued")
	}
	return &models.Completion{Account: account, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (m *Materializer) partial(ctx context.Context, tempID, identityUID, step string, err error) error {
	m.metrics.IncrementPartialAccount(step)
	audit.Log(ctx, m.logger, m.auditPublisher, audit.EventAccountPartial,
		"identity_uid", identityUID,
		"temp_id", tempID,
		"decision", "partial",
		"reason", step+" write failed",
	)
	if m.logger != nil {
		m.logger.ErrorContext(ctx, "account materialization incomplete",
			"identity_uid", identityUID,
			"step", step,
			"error", err,
		)
	}
	return dErrors.Wrap(
		&PartialAccountError{IdentityUID: identityUID, Step: step, Err: err},
		dErrors.CodePartialAccountCreated,
		"your phone is confirmed but the account was not finished, please retry",
	)
}
