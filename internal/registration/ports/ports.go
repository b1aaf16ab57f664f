// Package ports defines the interfaces the registration module consumes.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks ProvisionalStore,AccountDirectory,PhoneVerifier,TokenIssuer

import (
	"context"
	"time"

	"farmgate/internal/registration/models"
	vmodels "farmgate/internal/verification/models"
	"farmgate/pkg/platform/audit"
)

type AuditPublisher = audit.Emitter

// ProvisionalStore is the single authoritative home of staged signups.
// Missing records return sentinel.ErrNotFound. Expiry is the reader's job.
type ProvisionalStore interface {
	Create(ctx context.Context, reg *models.ProvisionalRegistration) error
	Get(ctx context.Context, tempID string) (*models.ProvisionalRegistration, error)
	// AttachVerification flips IDVerified and stores the passing outcome.
	AttachVerification(ctx context.Context, tempID string, outcome vmodels.VerificationOutcome, evidence vmodels.Evidence) error
	// RecordAttempt reserves one verification attempt and returns the new
	// total. The increment is atomic so concurrent submissions see distinct
	// totals.
	RecordAttempt(ctx context.Context, tempID string) (int, error)
	// ReleaseAttempt hands back a reserved attempt that turned out not to
	// count. The total never drops below zero.
	ReleaseAttempt(ctx context.Context, tempID string) error
	// SetIdentity records the identity created by OTP confirmation.
	SetIdentity(ctx context.Context, tempID, identityUID string) error
	Delete(ctx context.Context, tempID string) error
}

// AccountDirectory persists accounts and role profiles. Writes are keyed by
// identity UID and idempotent so a retry after a partial failure is safe.
type AccountDirectory interface {
	UpsertAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	UpsertFarmerProfile(ctx context.Context, profile *models.FarmerProfile) error
	UpsertConsumerProfile(ctx context.Context, profile *models.ConsumerProfile) error
	FindByIdentity(ctx context.Context, identityUID string) (*models.Account, error)
	FindByID(ctx context.Context, accountID string) (*models.Account, error)
}

// PhoneVerifier proves possession of a phone number.
type PhoneVerifier interface {
	Send(ctx context.Context, phone string) error
	// Confirm checks the code and returns the identity bound to the phone.
	Confirm(ctx context.Context, phone, code string) (models.PhoneIdentity, error)
}

// TokenIssuer mints the access token handed out on completion.
type TokenIssuer interface {
	Issue(account *models.Account) (token string, expiresAt time.Time, err error)
}
