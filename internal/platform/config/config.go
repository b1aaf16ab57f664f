package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process level configuration.
type Server struct {
	Addr         string
	Environment  string
	LogLevel     string
	ClientOrigin string
	// MaxUploadBytes bounds each image part of a verification request.
	MaxUploadBytes int64
	// VendorTimeout bounds every OCR, face-compare and OTP vendor call.
	VendorTimeout time.Duration

	Redis    RedisConfig
	Postgres PostgresConfig
	Budget   BudgetConfig
	Face     FaceConfig
	OCR      OCRConfig
	Twilio   TwilioConfig
	Minio    MinioConfig
	Kafka    KafkaConfig
	JWT      JWTConfig

	Registration RegistrationConfig
	RateLimit    RateLimitConfig
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the account directory database. An empty DSN
// keeps the directory in memory.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// BudgetBackend selects where vendor budget counters live.
type BudgetBackend string

const (
	BudgetBackendMemory   BudgetBackend = "memory"
	BudgetBackendRedis    BudgetBackend = "redis"
	BudgetBackendPostgres BudgetBackend = "postgres"
)

// BudgetConfig bounds calls to the paid face-compare vendor.
type BudgetConfig struct {
	Backend      BudgetBackend
	DailyLimit   int
	MonthlyLimit int
	// Location anchors day and month rollover.
	Location *time.Location
}

type FaceConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
	Threshold float64
	// LowCutoff and HighCutoff split scores into low/medium/high labels.
	LowCutoff  float64
	HighCutoff float64
	// RequestsPerSecond paces outbound calls to the vendor.
	RequestsPerSecond float64
	BreakerFailures   int
	BreakerCooldown   time.Duration
}

type OCRConfig struct {
	// CredentialsFile is a Google service-account JSON key path.
	CredentialsFile string
}

// TwilioConfig configures SMS delivery of OTP codes. Without an account SID
// codes are logged instead of sent.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromPhone  string
	CodeLength int
	CodeTTL    time.Duration
	MaxChecks  int
}

// MinioConfig configures the object store for ID and selfie images. An empty
// endpoint keeps images in memory.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
	URLExpiry time.Duration
}

// KafkaConfig configures the audit sink. No brokers keeps audit in memory.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
	TTL        time.Duration
}

type RegistrationConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

// RateLimitConfig sets per-IP hourly ceilings on endpoints that spend money.
type RateLimitConfig struct {
	Disabled        bool
	VerifyPerHour   int
	OTPPerHour      int
	RegisterPerHour int
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables take precedence.
func FromEnv() Server {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getString("BUDGET_TIMEZONE", "Asia/Manila"))
	if err != nil {
		loc = time.UTC
	}

	return Server{
		Addr:           getString("FARMGATE_ADDR", ":8080"),
		Environment:    getString("ENVIRONMENT", "development"),
		LogLevel:       getString("LOG_LEVEL", "info"),
		ClientOrigin:   getString("CLIENT_ORIGIN", "http://localhost:5173"),
		MaxUploadBytes: int64(getInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		VendorTimeout:  getDuration("VENDOR_TIMEOUT", 15*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Budget: BudgetConfig{
			Backend:      BudgetBackend(getString("BUDGET_BACKEND", string(BudgetBackendMemory))),
			DailyLimit:   getInt("FACE_DAILY_LIMIT", 300),
			MonthlyLimit: getInt("FACE_MONTHLY_LIMIT", 900),
			Location:     loc,
		},
		Face: FaceConfig{
			APIKey:            os.Getenv("FACE_API_KEY"),
			APISecret:         os.Getenv("FACE_API_SECRET"),
			BaseURL:           getString("FACE_API_BASE_URL", "https://api-us.faceplusplus.com"),
			Threshold:         getFloat("FACE_MATCH_THRESHOLD", 80),
			LowCutoff:         getFloat("FACE_CONFIDENCE_LOW", 60),
			HighCutoff:        getFloat("FACE_CONFIDENCE_HIGH", 85),
			RequestsPerSecond: getFloat("FACE_API_QPS", 2),
			BreakerFailures:   getInt("FACE_BREAKER_FAILURES", 5),
			BreakerCooldown:   getDuration("FACE_BREAKER_COOLDOWN", 30*time.Second),
		},
		OCR: OCRConfig{
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		},
		Twilio: TwilioConfig{
			AccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
			AuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
			FromPhone:  os.Getenv("TWILIO_FROM_PHONE"),
			CodeLength: getInt("OTP_CODE_LENGTH", 6),
			CodeTTL:    getDuration("OTP_CODE_TTL", 10*time.Minute),
			MaxChecks:  getInt("OTP_MAX_CHECKS", 5),
		},
		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getString("MINIO_BUCKET", "farmer-verification"),
			Secure:    getBool("MINIO_SECURE", false),
			URLExpiry: getDuration("MINIO_URL_EXPIRY", 24*time.Hour),
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:    getString("KAFKA_AUDIT_TOPIC", "farmgate.audit"),
			ClientID: getString("KAFKA_CLIENT_ID", "farmgate"),
		},
		JWT: JWTConfig{
			// Development default; override in production.
			SigningKey: getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     getString("JWT_ISSUER", "farmgate"),
			Audience:   getString("JWT_AUDIENCE", "farmgate-marketplace"),
			TTL:        getDuration("JWT_TTL", time.Hour),
		},
		Registration: RegistrationConfig{
			TTL:         getDuration("REGISTRATION_TTL", 24*time.Hour),
			MaxAttempts: getInt("VERIFICATION_MAX_ATTEMPTS", 3),
		},
		RateLimit: RateLimitConfig{
			Disabled:        getBool("RATE_LIMIT_DISABLED", false),
			VerifyPerHour:   getInt("RATE_LIMIT_VERIFY_PER_HOUR", 10),
			OTPPerHour:      getInt("RATE_LIMIT_OTP_PER_HOUR", 5),
			RegisterPerHour: getInt("RATE_LIMIT_REGISTER_PER_HOUR", 20),
		},
	}
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
