package models

import (
	"time"

	vmodels "farmgate/internal/verification/models"
	dErrors "farmgate/pkg/domain-errors"
)

// Role is the marketplace role a registrant signs up for.
type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleConsumer Role = "consumer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleFarmer, RoleConsumer:
		return Role(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "role must be farmer or consumer")
}

// RequiresIDVerification is true for roles that must pass the ID pipeline.
func (r Role) RequiresIDVerification() bool {
	return r == RoleFarmer
}

// FormData is the validated, role-specific signup form.
type FormData struct {
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	FarmName    string `json:"farmName,omitempty"`
	FarmAddress string `json:"farmAddress,omitempty"`

	DeliveryAddress string `json:"deliveryAddress,omitempty"`
}

// DisplayName is the registered full name.
func (f FormData) DisplayName() string {
	if f.LastName == "" {
		return f.FirstName
	}
	return f.FirstName + " " + f.LastName
}

// ProvisionalRegistration stages signup data until verification and OTP
// confirmation allow an account to be materialized. Readers must check
// IsExpiredAt; stores do not enforce expiry.
type ProvisionalRegistration struct {
	TempID   string   `json:"tempId"`
	FormData FormData `json:"formData"`

	IDVerified       bool                         `json:"idVerified"`
	VerificationData *vmodels.VerificationOutcome `json:"verificationData,omitempty"`
	Evidence         *vmodels.Evidence            `json:"evidence,omitempty"`
	AttemptsUsed     int                          `json:"attemptsUsed"`

	// IdentityUID is set once the phone OTP is confirmed; its presence means
	// the identity exists and a retry must not confirm again.
	IdentityUID string `json:"identityUid,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpiredAt reports whether the record is past its TTL at now.
func (p *ProvisionalRegistration) IsExpiredAt(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// ReadyForAccount reports whether verification requirements for the role are met.
func (p *ProvisionalRegistration) ReadyForAccount() bool {
	if !p.FormData.Role.RequiresIDVerification() {
		return true
	}
	return p.IDVerified && p.VerificationData != nil && p.VerificationData.Verified && p.Evidence != nil
}

// Account is the materialized marketplace account.
type Account struct {
	ID          string    `json:"id"`
	IdentityUID string    `json:"identityUid"`
	Role        Role      `json:"role"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FarmerProfile carries a snapshot of the verification evidence for audit.
type FarmerProfile struct {
	IdentityUID string           `json:"identityUid"`
	FarmName    string           `json:"farmName"`
	FarmAddress string           `json:"farmAddress"`
	Evidence    vmodels.Evidence `json:"evidence"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type ConsumerProfile struct {
	IdentityUID     string    `json:"identityUid"`
	DeliveryAddress string    `json:"deliveryAddress"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PhoneIdentity is the identity proven by OTP possession.
type PhoneIdentity struct {
	UID   string `json:"uid"`
	Phone string `json:"phone"`
}

// OTPConfirmation is what the registrant submits to finish signup.
type OTPConfirmation struct {
	Code string `json:"code"`
}

// Completion is returned when an account is materialized.
type Completion struct {
	Account     *Account  `json:"account"`
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
