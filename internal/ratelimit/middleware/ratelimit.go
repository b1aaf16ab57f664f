// Package middleware throttles costly endpoints per client IP.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farmgate/internal/ratelimit/models"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/httputil"
	"farmgate/pkg/requestcontext"
)

// BucketStore admits or denies one request against a sliding window.
type BucketStore interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error)
}

type Middleware struct {
	store    BucketStore
	limits   map[models.EndpointClass]models.Limit
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns throttling off entirely (local development).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// WithLimit overrides the ceiling for one endpoint class.
func WithLimit(class models.EndpointClass, limit models.Limit) Option {
	return func(m *Middleware) {
		if limit.Requests > 0 && limit.Window > 0 {
			m.limits[class] = limit
		}
	}
}

// DefaultLimits are per client IP.
func DefaultLimits() map[models.EndpointClass]models.Limit {
	return map[models.EndpointClass]models.Limit{
		models.ClassVerify:   {Requests: 10, Window: time.Hour},
		models.ClassOTP:      {Requests: 5, Window: time.Hour},
		models.ClassRegister: {Requests: 20, Window: time.Hour},
	}
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: DefaultLimits(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// Classify maps a request to the class that throttles it. Reads and anything
// that cannot cost money are not throttled.
func Classify(r *http.Request) (models.EndpointClass, bool) {
	if r.Method != http.MethodPost {
		return "", false
	}
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/verify-farmer-id":
		return models.ClassVerify, true
	case strings.HasPrefix(path, "/api/register/") && strings.HasSuffix(path, "/otp"):
		return models.ClassOTP, true
	case path == "/api/register", strings.HasPrefix(path, "/api/register/"):
		return models.ClassRegister, true
	}
	return "", false
}

// Handler throttles classified requests by client IP. Store failures let the
// request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}
		class, ok := Classify(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		limit, ok := m.limits[class]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)
		result, err := m.store.Allow(ctx, models.BucketKey(class, ip), limit.Requests, limit.Window)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"class", string(class),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		addRateLimitHeaders(w, result)
		if !result.Allowed {
			m.logger.WarnContext(ctx, "client throttled",
				"class", string(class),
				"request_id", requestcontext.RequestID(ctx),
			)
			writeRateLimitExceeded(w, result)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:      "Too many requests from this address. Please try again later.",
		ErrorCode:  string(dErrors.CodeRateLimitExceeded),
		RetryAfter: result.RetryAfter,
	})
}
