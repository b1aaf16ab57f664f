package models

import (
	"fmt"
	"time"
)

// EndpointClass groups routes that share one per-client limit.
type EndpointClass string

const (
	// ClassVerify covers ID and selfie uploads; each one can spend vendor calls.
	ClassVerify EndpointClass = "verify"
	// ClassOTP covers OTP sends; each one is a paid SMS.
	ClassOTP EndpointClass = "otp"
	// ClassRegister covers signup creation and completion.
	ClassRegister EndpointClass = "register"
)

// Limit is a request ceiling over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// RateLimitResult is the outcome of one check against a bucket.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
	// RetryAfter is in whole seconds and only set when denied.
	RetryAfter int
}

// BucketKey builds the store key for a client within an endpoint class.
func BucketKey(class EndpointClass, ip string) string {
	return fmt.Sprintf("rl:%s:ip:%s", class, ip)
}

// RateLimitExceededResponse is the API response when a client is throttled.
type RateLimitExceededResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	ErrorCode  string `json:"errorCode"`
	RetryAfter int    `json:"retryAfter"`
}
