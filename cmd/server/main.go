package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	jwttoken "farmgate/internal/jwt_token"
	"farmgate/internal/platform/config"
	"farmgate/internal/platform/httpserver"
	"farmgate/internal/platform/logger"
	"farmgate/internal/platform/metrics"
	"farmgate/internal/platform/objectstore"
	"farmgate/internal/platform/postgres"
	"farmgate/internal/platform/redis"
	ratelimit "farmgate/internal/ratelimit/middleware"
	rlmodels "farmgate/internal/ratelimit/models"
	"farmgate/internal/ratelimit/store/bucket"
	registrationhandler "farmgate/internal/registration/handler"
	"farmgate/internal/registration/materializer"
	"farmgate/internal/registration/phone"
	regports "farmgate/internal/registration/ports"
	registrationservice "farmgate/internal/registration/service"
	"farmgate/internal/registration/store/account"
	"farmgate/internal/registration/store/provisional"
	httptransport "farmgate/internal/transport/http"
	"farmgate/internal/verification/facematch"
	verificationhandler "farmgate/internal/verification/handler"
	verificationmetrics "farmgate/internal/verification/metrics"
	"farmgate/internal/verification/ocr"
	"farmgate/internal/verification/orchestrator"
	"farmgate/internal/verification/quota"
	"farmgate/internal/verification/reconcile"
	verificationservice "farmgate/internal/verification/service"
	"farmgate/internal/verification/store/budget"
	"farmgate/pkg/platform/audit"
	"farmgate/pkg/platform/audit/publisher"
	kafkastore "farmgate/pkg/platform/audit/store/kafka"
	auditmemory "farmgate/pkg/platform/audit/store/memory"
	auditpostgres "farmgate/pkg/platform/audit/store/postgres"
	"farmgate/pkg/platform/circuit"
)

// main wires the backends chosen by configuration, mounts the registration
// and verification modules, and serves until interrupted.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

type infra struct {
	redis   *redis.Client
	db      *sql.DB
	objects objectstore.Store
	audit   *publisher.Publisher
	closers []func()
	checks  map[string]httptransport.HealthCheck
}

func (in *infra) close() {
	for i := len(in.closers) - 1; i >= 0; i-- {
		in.closers[i]()
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.close()

	httpMetrics := metrics.New()
	vMetrics := verificationmetrics.New()

	pipeline, err := buildPipeline(ctx, cfg, log, in, vMetrics)
	if err != nil {
		return err
	}

	registrations := provisionalStore(in)
	directory := accountDirectory(in)

	phones, err := buildPhoneVerifier(cfg, log, in)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)

	verifier, err := verificationservice.New(registrations, pipeline, in.objects,
		verificationservice.WithLogger(log),
		verificationservice.WithAuditPublisher(in.audit),
		verificationservice.WithMetrics(vMetrics),
		verificationservice.WithMaxAttempts(cfg.Registration.MaxAttempts),
	)
	if err != nil {
		return fmt.Errorf("verification service: %w", err)
	}

	signups, err := registrationservice.New(registrations, directory, phones,
		registrationservice.WithLogger(log),
		registrationservice.WithAuditPublisher(in.audit),
		registrationservice.WithTTL(cfg.Registration.TTL),
		registrationservice.WithMaxAttempts(cfg.Registration.MaxAttempts),
	)
	if err != nil {
		return fmt.Errorf("registration service: %w", err)
	}

	accounts, err := materializer.New(registrations, directory, phones, tokens,
		materializer.WithLogger(log),
		materializer.WithAuditPublisher(in.audit),
		materializer.WithMetrics(httpMetrics),
	)
	if err != nil {
		return fmt.Errorf("materializer: %w", err)
	}

	// OCR and face compare each get a vendor timeout; leave room for storage.
	requestTimeout := 2*cfg.VendorTimeout + 10*time.Second
	router := httptransport.NewRouter(
		httptransport.Config{
			ClientOrigin:   cfg.ClientOrigin,
			RequestTimeout: requestTimeout,
			Middleware:     []func(http.Handler) http.Handler{throttle(cfg.RateLimit, log, in).Handler},
		},
		log, httpMetrics, in.checks,
		verificationhandler.New(verifier, log, cfg.MaxUploadBytes),
		registrationhandler.New(signups, accounts, log, jwttoken.NewJWTServiceAdapter(tokens)),
	)

	srv := httpserver.New(cfg.Addr, router,
		httpserver.WithRequestTimeout(requestTimeout),
		httpserver.WithLogger(log),
	)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting farmgate", "addr", cfg.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// openInfra connects the optional backends. Each one left unconfigured falls
// back to its in-memory implementation.
func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{checks: map[string]httptransport.HealthCheck{}}
	fail := func(err error) (*infra, error) {
		in.close()
		return nil, err
	}

	rc, err := redis.New(cfg.Redis)
	if err != nil {
		return fail(fmt.Errorf("redis: %w", err))
	}
	if rc != nil {
		in.redis = rc
		in.closers = append(in.closers, func() { _ = rc.Close() })
		in.checks["redis"] = rc.Health
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return fail(fmt.Errorf("postgres: %w", err))
	}
	if db != nil {
		in.db = db
		in.closers = append(in.closers, func() { _ = db.Close() })
		in.checks["postgres"] = db.PingContext
		if err := postgres.Migrate(ctx, db); err != nil {
			return fail(err)
		}
	}

	if cfg.Minio.Endpoint != "" {
		ms, err := objectstore.NewMinio(ctx, cfg.Minio)
		if err != nil {
			return fail(fmt.Errorf("minio: %w", err))
		}
		in.objects = ms
		in.checks["objectstore"] = ms.Health
	} else {
		log.Warn("MINIO_ENDPOINT not set, keeping verification images in memory")
		in.objects = objectstore.NewMemory()
	}

	var sink audit.Store
	switch {
	case len(cfg.Kafka.Brokers) > 0:
		client, err := kafkastore.NewClient(cfg.Kafka.Brokers, cfg.Kafka.ClientID)
		if err != nil {
			return fail(err)
		}
		in.closers = append(in.closers, client.Close)
		in.checks["kafka"] = client.Ping
		sink = kafkastore.New(client, cfg.Kafka.Topic)
	case in.db != nil:
		sink = auditpostgres.New(in.db)
	default:
		sink = auditmemory.NewInMemoryStore()
	}
	in.audit = publisher.NewPublisher(sink,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log),
	)
	in.closers = append(in.closers, in.audit.Close)

	return in, nil
}

func buildPipeline(ctx context.Context, cfg config.Server, log *slog.Logger, in *infra, m *verificationmetrics.Metrics) (*orchestrator.Orchestrator, error) {
	store, err := budgetStore(cfg.Budget.Backend, in)
	if err != nil {
		return nil, err
	}
	gate, err := quota.New(store,
		quota.WithLogger(log),
		quota.WithAuditPublisher(in.audit),
		quota.WithMetrics(m),
		quota.WithLimits(cfg.Budget.DailyLimit, cfg.Budget.MonthlyLimit),
		quota.WithLocation(cfg.Budget.Location),
	)
	if err != nil {
		return nil, fmt.Errorf("budget gate: %w", err)
	}
	in.checks["face_budget"] = func(ctx context.Context) error {
		_, err := gate.Usage(ctx)
		return err
	}

	detector, err := ocr.NewVision(ctx, cfg.OCR.CredentialsFile)
	if err != nil {
		return nil, err
	}
	extractor, err := ocr.New(detector,
		ocr.WithLogger(log),
		ocr.WithMetrics(m),
		ocr.WithTimeout(cfg.VendorTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("id extractor: %w", err)
	}

	comparer, err := facematch.NewFacePPClient(cfg.Face.BaseURL, cfg.Face.APIKey, cfg.Face.APISecret)
	if err != nil {
		return nil, err
	}
	matcher, err := facematch.New(comparer, gate,
		facematch.WithLogger(log),
		facematch.WithMetrics(m),
		facematch.WithThreshold(cfg.Face.Threshold),
		facematch.WithConfidenceCutoffs(cfg.Face.LowCutoff, cfg.Face.HighCutoff),
		facematch.WithRequestsPerSecond(cfg.Face.RequestsPerSecond),
		facematch.WithTimeout(cfg.VendorTimeout),
		facematch.WithBreaker(circuit.New("facepp",
			circuit.WithFailureThreshold(cfg.Face.BreakerFailures),
			circuit.WithCooldown(cfg.Face.BreakerCooldown),
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("face matcher: %w", err)
	}

	pipeline, err := orchestrator.New(extractor, matcher, gate, reconcile.New(),
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(m),
	)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return pipeline, nil
}

func budgetStore(backend config.BudgetBackend, in *infra) (quota.Store, error) {
	switch backend {
	case config.BudgetBackendRedis:
		if in.redis == nil {
			return nil, errors.New("BUDGET_BACKEND=redis requires REDIS_URL")
		}
		return budget.NewRedis(in.redis), nil
	case config.BudgetBackendPostgres:
		if in.db == nil {
			return nil, errors.New("BUDGET_BACKEND=postgres requires DATABASE_URL")
		}
		return budget.NewPostgres(in.db), nil
	case config.BudgetBackendMemory, "":
		return budget.NewInMemory(), nil
	default:
		return nil, fmt.Errorf("unknown budget backend %q", backend)
	}
}

func provisionalStore(in *infra) regports.ProvisionalStore {
	if in.redis != nil {
		return provisional.NewRedis(in.redis)
	}
	return provisional.NewInMemory()
}

func accountDirectory(in *infra) regports.AccountDirectory {
	if in.db != nil {
		return account.NewPostgres(in.db)
	}
	return account.NewInMemory()
}

func throttle(cfg config.RateLimitConfig, log *slog.Logger, in *infra) *ratelimit.Middleware {
	var store ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if in.redis != nil {
		store = bucket.NewRedis(in.redis)
	}
	return ratelimit.New(store, log,
		ratelimit.WithDisabled(cfg.Disabled),
		ratelimit.WithLimit(rlmodels.ClassVerify, rlmodels.Limit{Requests: cfg.VerifyPerHour, Window: time.Hour}),
		ratelimit.WithLimit(rlmodels.ClassOTP, rlmodels.Limit{Requests: cfg.OTPPerHour, Window: time.Hour}),
		ratelimit.WithLimit(rlmodels.ClassRegister, rlmodels.Limit{Requests: cfg.RegisterPerHour, Window: time.Hour}),
	)
}

func buildPhoneVerifier(cfg config.Server, log *slog.Logger, in *infra) (*phone.Verifier, error) {
	var codes phone.CodeStore = phone.NewInMemoryCodeStore()
	if in.redis != nil {
		codes = phone.NewRedisCodeStore(in.redis)
	}

	var sender phone.Sender
	if cfg.Twilio.AccountSID != "" {
		sender = phone.NewTwilioSender(cfg.Twilio)
	} else {
		log.Warn("TWILIO_ACCOUNT_SID not set, OTP codes will be logged instead of sent")
		sender = phone.NewLogSender(log)
	}

	return phone.NewVerifier(codes, sender,
		phone.WithLogger(log),
		phone.WithCodeLength(cfg.Twilio.CodeLength),
		phone.WithCodeTTL(cfg.Twilio.CodeTTL),
		phone.WithMaxChecks(cfg.Twilio.MaxChecks),
	)
}
