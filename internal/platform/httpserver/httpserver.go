// Package httpserver builds the *http.Server the API listens on.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute

	// uploads of two images over a slow rural link
	defaultReadTimeout = 30 * time.Second

	defaultRequestTimeout = 40 * time.Second

	// room for the timeout middleware to write its own 503
	writeGrace = 5 * time.Second
)

type settings struct {
	readTimeout    time.Duration
	requestTimeout time.Duration
	logger         *slog.Logger
}

type Option func(*settings)

// WithRequestTimeout is the handler deadline. The write timeout is derived
// from it so a slow verification is answered before the connection drops.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.readTimeout = d
		}
	}
}

// WithLogger routes net/http's own error output (TLS handshakes, panics
// outside the router) through slog.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

func New(addr string, handler http.Handler, opts ...Option) *http.Server {
	cfg := settings{readTimeout: defaultReadTimeout, requestTimeout: defaultRequestTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       cfg.readTimeout,
		WriteTimeout:      cfg.requestTimeout + writeGrace,
		IdleTimeout:       idleTimeout,
	}
	if cfg.logger != nil {
		srv.ErrorLog = slog.NewLogLogger(cfg.logger.Handler(), slog.LevelWarn)
	}
	return srv
}
