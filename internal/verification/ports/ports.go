// Package ports defines the interfaces the verification module consumes.
// Interfaces are placed here when consumed by more than one service.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks BudgetStore,BudgetGate,TextDetector,FaceComparer,IDExtractor,FaceMatcher,NameReconciler,Pipeline

import (
	"context"

	"farmgate/internal/verification/models"
	"farmgate/pkg/platform/audit"
)

// AuditPublisher emits audit events for verification decisions.
type AuditPublisher = audit.Emitter

// BudgetStore holds the shared day and month vendor call counters.
type BudgetStore interface {
	// Usage returns the counts charged to the given window. Counters from an
	// earlier window read as zero.
	Usage(ctx context.Context, window models.BudgetWindow) (models.BudgetUsage, error)

	// Increment atomically charges one call if both ceilings still have room.
	// When allowed is false nothing was charged.
	Increment(ctx context.Context, window models.BudgetWindow, limits models.BudgetLimits) (usage models.BudgetUsage, allowed bool, err error)
}

// BudgetGate is the rate limiter surface the face engine and orchestrator need.
type BudgetGate interface {
	CheckAndReserve(ctx context.Context) (models.Reservation, error)
	Commit(ctx context.Context, reservation models.Reservation) error
}

// TextDetector runs document text detection over an image and returns the
// full text. Implementations return *providers.ProviderError on failure.
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// FaceComparer calls the face comparison vendor and returns its raw
// confidence in [0,100]. Implementations return *providers.ProviderError on
// transport failure and a non-empty vendorMessage when the vendor rejected
// the images.
type FaceComparer interface {
	Compare(ctx context.Context, idImage, selfie []byte) (confidence float64, vendorMessage string, err error)
}

// IDExtractor turns an ID image into structured fields.
type IDExtractor interface {
	Extract(ctx context.Context, image []byte) (models.ExtractedIDData, error)
}

// FaceMatcher scores an ID photo against a selfie.
type FaceMatcher interface {
	Compare(ctx context.Context, idImage, selfie []byte) (models.FaceMatchResult, error)
}

// NameReconciler decides whether an OCR name and a registered name belong to
// the same person.
type NameReconciler interface {
	Matches(ocrName, firstName, lastName string) bool
}

// Pipeline runs one verification attempt end to end.
type Pipeline interface {
	Run(ctx context.Context, req models.VerificationRequest) (models.VerificationOutcome, error)
}
