// Package phone proves possession of a phone number with an SMS one-time
// code and derives the stable identity bound to that number.
package phone

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"farmgate/internal/registration/models"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/sentinel"
	"farmgate/pkg/requestcontext"
)

const (
	DefaultCodeLength = 6
	DefaultCodeTTL    = 5 * time.Minute
	DefaultMaxChecks  = 5
)

// identityNamespace scopes the name-based UUIDs derived from phone numbers.
var identityNamespace = uuid.MustParse("6f1c2a8e-3d4b-5e6f-8a9b-0c1d2e3f4a5b")

// IdentityUID returns the identity for a phone number. The same number
// always yields the same UID, which keeps account upserts idempotent.
func IdentityUID(phone string) string {
	return uuid.NewSHA1(identityNamespace, []byte(phone)).String()
}

// Verifier sends and checks SMS codes.
type Verifier struct {
	codes      CodeStore
	sender     Sender
	codeLength int
	codeTTL    time.Duration
	maxChecks  int
	logger     *slog.Logger
}

type Option func(*Verifier)

func WithLogger(logger *slog.Logger) Option {
	return func(v *Verifier) {
		v.logger = logger
	}
}

func WithCodeLength(n int) Option {
	return func(v *Verifier) {
		if n >= 4 {
			v.codeLength = n
		}
	}
}

func WithCodeTTL(ttl time.Duration) Option {
	return func(v *Verifier) {
		if ttl > 0 {
			v.codeTTL = ttl
		}
	}
}

// WithMaxChecks bounds wrong guesses per code.
func WithMaxChecks(n int) Option {
	return func(v *Verifier) {
		if n > 0 {
			v.maxChecks = n
		}
	}
}

func NewVerifier(codes CodeStore, sender Sender, opts ...Option) (*Verifier, error) {
	if codes == nil {
		return nil, fmt.Errorf("code store is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sms sender is required")
	}
	v := &Verifier{
		codes:      codes,
		sender:     sender,
		codeLength: DefaultCodeLength,
		codeTTL:    DefaultCodeTTL,
		maxChecks:  DefaultMaxChecks,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Send issues a fresh code, replacing any pending one.
func (v *Verifier) Send(ctx context.Context, phone string) error {
	value, err := generateCode(v.codeLength)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate verification code")
	}

	code := Code{Value: value, ExpiresAt: requestcontext.Now(ctx).Add(v.codeTTL)}
	if err := v.codes.Save(ctx, phone, code); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store verification code")
	}

	body := fmt.Sprintf("Your Farmgate verification code is %s. It expires in %d minutes.", value, int(v.codeTTL.Minutes()))
	if err := v.sender.SendSMS(ctx, phone, body); err != nil {
		_ = v.codes.Delete(ctx, phone)
		if v.logger != nil {
			v.logger.ErrorContext(ctx, "failed to send verification sms", "error", err)
		}
		if _, ok := dErrors.As(err); ok {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeVendorUnavailable, "could not send the verification code, please try again")
	}
	return nil
}

// Confirm checks a code. A match consumes it and returns the phone's identity.
func (v *Verifier) Confirm(ctx context.Context, phone, submitted string) (models.PhoneIdentity, error) {
	code, err := v.codes.Get(ctx, phone)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.PhoneIdentity{}, dErrors.New(dErrors.CodeOTPInvalid, "no verification code is pending, request a new one")
	}
	if err != nil {
		return models.PhoneIdentity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification code")
	}

	if err := code.Usable(requestcontext.Now(ctx), v.maxChecks); err != nil {
		_ = v.codes.Delete(ctx, phone)
		if errors.Is(err, sentinel.ErrExpired) {
			return models.PhoneIdentity{}, dErrors.Wrap(err, dErrors.CodeOTPInvalid, "verification code expired, request a new one")
		}
		return models.PhoneIdentity{}, dErrors.Wrap(err, dErrors.CodeOTPInvalid, "too many incorrect codes, request a new one")
	}

	if subtle.ConstantTimeCompare([]byte(code.Value), []byte(submitted)) != 1 {
		attempts, err := v.codes.IncrementAttempts(ctx, phone)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return models.PhoneIdentity{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record verification attempt")
		}
		remaining := v.maxChecks - attempts
		if remaining <= 0 {
			_ = v.codes.Delete(ctx, phone)
			return models.PhoneIdentity{}, dErrors.New(dErrors.CodeOTPInvalid, "too many incorrect codes, request a new one")
		}
		return models.PhoneIdentity{}, dErrors.New(dErrors.CodeOTPInvalid, fmt.Sprintf("incorrect verification code, %d tries left", remaining))
	}

	if err := v.codes.Delete(ctx, phone); err != nil && v.logger != nil {
		v.logger.WarnContext(ctx, "failed to delete used verification code", "error", err)
	}
	return models.PhoneIdentity{UID: IdentityUID(phone), Phone: phone}, nil
}

func generateCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)
	for i := range length {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}
	return string(code), nil
}
