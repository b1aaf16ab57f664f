package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// identity verification outcomes and account creation.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring:
	// budget exhaustion, attempt exhaustion, failed OTP confirmation.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine events useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Subject is the provisional registration ID or, after materialization,
	// the account's identity UID.
	Subject  string
	Action   string
	Decision string
	Reason   string
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string
	ClientIP  string
	Device    string
}

type AuditEvent string

const (
	// Registration events
	EventRegistrationStarted AuditEvent = "registration_started"
	EventOTPSent             AuditEvent = "otp_sent"
	EventOTPRejected         AuditEvent = "otp_rejected"

	// Verification events
	EventVerificationAttempted AuditEvent = "verification_attempted"
	EventVerificationAccepted  AuditEvent = "verification_accepted"
	EventVerificationRejected  AuditEvent = "verification_rejected"
	EventAttemptsExhausted     AuditEvent = "verification_attempts_exhausted"

	// Vendor budget events
	EventBudgetExhausted AuditEvent = "vendor_budget_exhausted"

	// Account events
	EventAccountMaterialized AuditEvent = "account_materialized"
	EventAccountPartial      AuditEvent = "account_partial"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventVerificationAccepted: CategoryCompliance,
	EventVerificationRejected: CategoryCompliance,
	EventAccountMaterialized:  CategoryCompliance,
	EventAccountPartial:       CategoryCompliance,

	EventOTPRejected:       CategorySecurity,
	EventAttemptsExhausted: CategorySecurity,
	EventBudgetExhausted:   CategorySecurity,

	EventRegistrationStarted:   CategoryOperations,
	EventOTPSent:               CategoryOperations,
	EventVerificationAttempted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
