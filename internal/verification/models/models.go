package models

import (
	"time"

	dErrors "farmgate/pkg/domain-errors"
)

// IDType is the kind of government ID the farmer claims to have uploaded.
type IDType string

const (
	IDTypePhilSys        IDType = "philsys"
	IDTypeDriversLicense IDType = "drivers_license"
	IDTypeUMID           IDType = "umid"
	IDTypePassport       IDType = "passport"
	IDTypeVoters         IDType = "voters_id"
	IDTypePostal         IDType = "postal_id"
)

// ParseIDType validates a claimed ID type.
func ParseIDType(s string) (IDType, error) {
	t := IDType(s)
	switch t {
	case IDTypePhilSys, IDTypeDriversLicense, IDTypeUMID, IDTypePassport, IDTypeVoters, IDTypePostal:
		return t, nil
	case "":
		return "", dErrors.New(dErrors.CodeValidation, "idType is required")
	}
	return "", dErrors.New(dErrors.CodeValidation, "unsupported idType: "+s)
}

// VerificationRequest is one verification attempt. It is never persisted.
type VerificationRequest struct {
	IDImage         []byte
	SelfieImage     []byte
	ClaimedIDType   IDType
	ClaimedIDNumber string
	TempID          string
	// RegisteredFirstName and RegisteredLastName come from the provisional
	// registration, never from the upload form.
	RegisteredFirstName string
	RegisteredLastName  string
	AttemptsRemaining   int
}

// ExtractedIDData is what OCR recovered from the ID image. Nil fields were
// not found; that is data, not an error.
type ExtractedIDData struct {
	FullName *string `json:"fullName"`
	IDNumber *string `json:"idNumber"`
	Address  *string `json:"address"`
	RawText  string  `json:"rawText"`
}

// ConfidenceLabel is a coarse display bucket for a face score.
type ConfidenceLabel string

const (
	ConfidenceLow    ConfidenceLabel = "low"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceHigh   ConfidenceLabel = "high"
)

// FaceMatchResult is produced by the face match engine on every call that
// does not fail at the transport level.
type FaceMatchResult struct {
	Score           float64         `json:"score"`
	Passed          bool            `json:"passed"`
	ConfidenceLabel ConfidenceLabel `json:"confidenceLabel"`
	VendorMessage   string          `json:"vendorMessage,omitempty"`
	// RateLimited is set when the vendor was not called because the budget is spent.
	RateLimited bool `json:"rateLimited,omitempty"`
}

// State is a verification orchestrator state.
type State string

const (
	StateReceived    State = "received"
	StateRateChecked State = "rate_checked"
	StateExtracted   State = "extracted"
	StateFaceCompare State = "face_compared"
	StateReconciled  State = "reconciled"

	StateAccepted             State = "accepted"
	StateRejectedFaceMismatch State = "rejected_face_mismatch"
	StateRejectedNameMismatch State = "rejected_name_mismatch"
	StateRejectedVendorError  State = "rejected_vendor_error"
)

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	switch s {
	case StateAccepted, StateRejectedFaceMismatch, StateRejectedNameMismatch, StateRejectedVendorError:
		return true
	}
	return false
}

// VerificationOutcome is the immutable result of one attempt. Build it with
// the orchestrator; callers only read it.
type VerificationOutcome struct {
	Verified          bool            `json:"verified"`
	State             State           `json:"state"`
	IDData            ExtractedIDData `json:"idData"`
	FaceMatch         FaceMatchResult `json:"faceMatch"`
	NameMatches       bool            `json:"nameMatches"`
	AttemptsRemaining int             `json:"attemptsRemaining"`
	// ExtractedName and RegisteredName are echoed so a name mismatch can be
	// self-diagnosed.
	ExtractedName  string    `json:"extractedName,omitempty"`
	RegisteredName string    `json:"registeredName,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Trail          []State   `json:"-"`
	CompletedAt    time.Time `json:"completedAt"`
	// Cause is the coded error behind a RejectedVendorError outcome.
	Cause error `json:"-"`
}

// ConsumesAttempt reports whether the outcome counts against the caller's
// attempt allowance. Vendor and budget failures are not the user's fault.
func (o VerificationOutcome) ConsumesAttempt() bool {
	return o.State == StateRejectedFaceMismatch || o.State == StateRejectedNameMismatch
}

// WithAttemptsRemaining returns a copy carrying the caller-tracked attempt count.
func (o VerificationOutcome) WithAttemptsRemaining(n int) VerificationOutcome {
	o.AttemptsRemaining = n
	o.Trail = append([]State(nil), o.Trail...)
	return o
}

// Reservation is the rate limiter's answer to a budget check.
type Reservation struct {
	Allowed bool
	Reason  string
	Window  BudgetWindow
}

// BudgetWindow identifies the day and month counters a call is charged to.
type BudgetWindow struct {
	Day        string
	Month      string
	DayStart   time.Time
	MonthStart time.Time
	DayEnd     time.Time
	MonthEnd   time.Time
}

// BudgetLimits are the vendor tier ceilings.
type BudgetLimits struct {
	Daily   int
	Monthly int
}

// BudgetUsage is the number of calls charged in the current windows.
type BudgetUsage struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

// Evidence is the audit snapshot kept with a passed verification and copied
// onto the farmer profile at materialization.
type Evidence struct {
	FaceScore       float64   `json:"faceScore"`
	ConfidenceLabel string    `json:"confidenceLabel"`
	ExtractedName   string    `json:"extractedName,omitempty"`
	ExtractedIDNo   string    `json:"extractedIdNumber,omitempty"`
	Address         string    `json:"address,omitempty"`
	ClaimedIDType   IDType    `json:"claimedIdType"`
	ClaimedIDNumber string    `json:"claimedIdNumber"`
	IDImageKey      string    `json:"idImageKey"`
	IDImageURL      string    `json:"idImageUrl"`
	SelfieImageKey  string    `json:"selfieImageKey"`
	SelfieImageURL  string    `json:"selfieImageUrl"`
	ClientIP        string    `json:"clientIp,omitempty"`
	Device          string    `json:"device,omitempty"`
	VerifiedAt      time.Time `json:"verifiedAt"`
}
