// Package ocr reads structured identity fields off a government ID photo.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"farmgate/internal/verification/metrics"
	"farmgate/internal/verification/models"
	"farmgate/internal/verification/ports"
	"farmgate/internal/verification/providers"
)

const defaultTimeout = 15 * time.Second

type Extractor struct {
	detector ports.TextDetector
	timeout  time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Extractor)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) {
		e.metrics = m
	}
}

// WithTimeout bounds a single vendor call.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func New(detector ports.TextDetector, opts ...Option) (*Extractor, error) {
	if detector == nil {
		return nil, fmt.Errorf("text detector is required")
	}
	e := &Extractor{
		detector: detector,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Extract runs text detection and parses the result. Fields that cannot be
// found come back nil. Only transport failures return an error, coded
// CodeVendorUnavailable.
func (e *Extractor) Extract(ctx context.Context, image []byte) (models.ExtractedIDData, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	text, err := e.detector.DetectText(ctx, image)
	e.metrics.ObserveVendorLatency(providerVision, time.Since(start))

	if err != nil {
		category := providers.GetCategory(err)
		e.metrics.IncrementVendorError(providerVision, string(category))
		if category == providers.ErrorBadData {
			// the vendor looked at the image and found nothing usable
			if e.logger != nil {
				e.logger.WarnContext(ctx, "ocr rejected image", "error", err)
			}
			return models.ExtractedIDData{}, nil
		}
		if e.logger != nil {
			e.logger.ErrorContext(ctx, "ocr vendor call failed", "category", category, "error", err)
		}
		return models.ExtractedIDData{}, providers.AsVendorUnavailable(err)
	}

	return Parse(text), nil
}
