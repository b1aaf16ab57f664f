// Package quota enforces the face vendor's daily and monthly call ceilings.
//
// CheckAndReserve is a read-only look at the shared counters. The charge
// happens in Commit, which re-checks and increments atomically in the store
// right before the vendor call, so concurrent instances cannot overspend.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"farmgate/internal/verification/metrics"
	"farmgate/internal/verification/models"
	"farmgate/internal/verification/ports"
	dErrors "farmgate/pkg/domain-errors"
	"farmgate/pkg/platform/audit"
	"farmgate/pkg/requestcontext"
)

const (
	DefaultDailyLimit   = 300
	DefaultMonthlyLimit = 900

	windowDaily   = "daily"
	windowMonthly = "monthly"
)

type (
	Store          = ports.BudgetStore
	AuditPublisher = ports.AuditPublisher
)

type Service struct {
	store          Store
	limits         models.BudgetLimits
	location       *time.Location
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLimits overrides the vendor tier ceilings.
func WithLimits(daily, monthly int) Option {
	return func(s *Service) {
		if daily > 0 {
			s.limits.Daily = daily
		}
		if monthly > 0 {
			s.limits.Monthly = monthly
		}
	}
}

// WithLocation sets the timezone whose calendar day and month bound the windows.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("budget store is required")
	}

	svc := &Service{
		store:    store,
		limits:   models.BudgetLimits{Daily: DefaultDailyLimit, Monthly: DefaultMonthlyLimit},
		location: time.Local,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// Limits returns the configured ceilings.
func (s *Service) Limits() models.BudgetLimits {
	return s.limits
}

// Window computes the day and month buckets containing now.
func (s *Service) Window(now time.Time) models.BudgetWindow {
	return WindowAt(now, s.location)
}

// WindowAt computes the budget buckets for now in loc.
func WindowAt(now time.Time, loc *time.Location) models.BudgetWindow {
	local := now.In(loc)
	y, m, d := local.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, loc)
	monthStart := time.Date(y, m, 1, 0, 0, 0, 0, loc)
	return models.BudgetWindow{
		Day:        dayStart.Format("2006-01-02"),
		Month:      monthStart.Format("2006-01"),
		DayStart:   dayStart,
		MonthStart: monthStart,
		DayEnd:     dayStart.AddDate(0, 0, 1),
		MonthEnd:   monthStart.AddDate(0, 1, 0),
	}
}

// CheckAndReserve reports whether a face comparison may be attempted now.
// The daily ceiling is checked before the monthly one.
func (s *Service) CheckAndReserve(ctx context.Context) (models.Reservation, error) {
	window := s.Window(requestcontext.Now(ctx))

	usage, err := s.store.Usage(ctx, window)
	if err != nil {
		return models.Reservation{}, dErrors.Wrap(err, dErrors.CodeVendorUnavailable, "vendor budget is unavailable")
	}

	if reason, which := s.denial(usage); reason != "" {
		s.metrics.IncrementBudgetDenied(which)
		audit.Log(ctx, s.logger, s.auditPublisher, audit.EventBudgetExhausted,
			"temp_id", requestcontext.TempID(ctx),
			"window", which,
			"reason", reason,
			"daily_used", usage.Daily,
			"monthly_used", usage.Monthly,
		)
		return models.Reservation{Allowed: false, Reason: reason, Window: window}, nil
	}

	return models.Reservation{Allowed: true, Window: window}, nil
}

// Commit charges one vendor call to the reservation's window. It fails with
// CodeRateLimitExceeded if another caller took the last slot in between.
func (s *Service) Commit(ctx context.Context, reservation models.Reservation) error {
	if !reservation.Allowed {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot commit a denied reservation")
	}

	usage, allowed, err := s.store.Increment(ctx, reservation.Window, s.limits)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeVendorUnavailable, "vendor budget is unavailable")
	}
	if !allowed {
		reason, which := s.denial(usage)
		if reason == "" {
			reason = "Face verification limit reached. Please try again later."
		}
		s.metrics.IncrementBudgetDenied(which)
		return dErrors.New(dErrors.CodeRateLimitExceeded, reason)
	}

	s.metrics.IncrementBudgetCommitted()
	s.metrics.SetBudgetUsed(usage.Daily, usage.Monthly)
	if s.logger != nil {
		s.logger.DebugContext(ctx, "face budget committed",
			"day", reservation.Window.Day,
			"daily_used", usage.Daily,
			"monthly_used", usage.Monthly,
		)
	}
	return nil
}

// Usage returns the counts charged in the current windows and publishes them
// to the budget gauge. The server polls it as the face_budget health check.
func (s *Service) Usage(ctx context.Context) (models.BudgetUsage, error) {
	usage, err := s.store.Usage(ctx, s.Window(requestcontext.Now(ctx)))
	if err != nil {
		return models.BudgetUsage{}, dErrors.Wrap(err, dErrors.CodeVendorUnavailable, "vendor budget is unavailable")
	}
	s.metrics.SetBudgetUsed(usage.Daily, usage.Monthly)
	return usage, nil
}

func (s *Service) denial(usage models.BudgetUsage) (reason, window string) {
	if usage.Daily >= s.limits.Daily {
		return fmt.Sprintf("Daily face verification limit reached (%d/%d). Please try again tomorrow.", usage.Daily, s.limits.Daily), windowDaily
	}
	if usage.Monthly >= s.limits.Monthly {
		return fmt.Sprintf("Monthly face verification limit reached (%d/%d). Please try again next month.", usage.Monthly, s.limits.Monthly), windowMonthly
	}
	return "", ""
}
