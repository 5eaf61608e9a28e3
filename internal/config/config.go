// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, the database, the image store, uploads,
// rate limiting, like expiry, authentication, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tbourn/go-church-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-church-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
	Environment string  // copied from APP_ENV
}

// DBConfig selects and addresses the relational store.
type DBConfig struct {
	Driver string // DB_DRIVER: sqlite|postgres
	Path   string // DB_PATH (sqlite)
	URL    string // DATABASE_URL (postgres)
}

// DSN returns the driver-specific connection string.
func (d DBConfig) DSN() string {
	if d.Driver == "postgres" {
		return d.URL
	}
	return d.Path
}

// StorageConfig addresses the S3-compatible image store.
type StorageConfig struct {
	Driver    string // STORAGE_DRIVER: s3|memory
	Endpoint  string // S3_ENDPOINT, empty for AWS
	Region    string // S3_REGION
	Bucket    string // S3_BUCKET
	AccessKey string // S3_ACCESS_KEY
	SecretKey string // S3_SECRET_KEY
	PublicURL string // S3_PUBLIC_URL, base for served image URLs
}

// UploadConfig bounds multipart uploads and controls image optimization.
type UploadConfig struct {
	MaxBytes     int64 // UPLOAD_MAX_BYTES per file
	MaxFiles     int   // UPLOAD_MAX_FILES per request
	MaxDimension int   // IMAGE_MAX_DIMENSION, longest edge in pixels
	JPEGQuality  int   // IMAGE_JPEG_QUALITY [1..100]
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test
	AppEnv            string        // development|production

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// Persistence
	DB      DBConfig
	Storage StorageConfig
	Upload  UploadConfig

	// Likes
	LikeTTL           time.Duration // lifetime of a like record
	LikeSweepInterval time.Duration // how often expired likes are purged

	// Read cache for about/hero documents
	CacheTTL time.Duration

	// Auth
	JWTSecret string

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS           CORSConfig
	Security       SecurityConfig
	TrustedProxies []string // proxies whose X-Forwarded-For is honored

	// Idempotency
	IdempotencyTTL time.Duration // how long a given Idempotency-Key is valid

	// Observability
	OTEL OTELConfig
}

// Development reports whether error responses may carry debug detail.
func (c Config) Development() bool { return c.AppEnv == "development" }

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),
		AppEnv:            strings.ToLower(getenv("APP_ENV", "production")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api")),

		// Persistence
		DB: DBConfig{
			Driver: strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			Path:   getenv("DB_PATH", "app.db"),
			URL:    getenv("DATABASE_URL", ""),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(getenv("STORAGE_DRIVER", "s3")),
			Endpoint:  getenv("S3_ENDPOINT", ""),
			Region:    getenv("S3_REGION", "us-east-1"),
			Bucket:    getenv("S3_BUCKET", ""),
			AccessKey: getenv("S3_ACCESS_KEY", ""),
			SecretKey: getenv("S3_SECRET_KEY", ""),
			PublicURL: strings.TrimRight(getenv("S3_PUBLIC_URL", ""), "/"),
		},
		Upload: UploadConfig{
			MaxBytes:     int64(getint("UPLOAD_MAX_BYTES", 10<<20)),
			MaxFiles:     getint("UPLOAD_MAX_FILES", 10),
			MaxDimension: getint("IMAGE_MAX_DIMENSION", 2000),
			JPEGQuality:  getint("IMAGE_JPEG_QUALITY", 82),
		},

		// Likes
		LikeTTL:           getdur("LIKE_TTL", 90*24*time.Hour),
		LikeSweepInterval: getdur("LIKE_SWEEP_INTERVAL", time.Hour),

		CacheTTL: getdur("CACHE_TTL", 5*time.Minute),

		JWTSecret: getenv("JWT_SECRET", ""),

		// Rate limiting: 100 requests per 15 minutes per client.
		RateRPS:   getfloat("RATE_RPS", 100.0/900.0),
		RateBurst: getint("RATE_BURST", 100),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},
		TrustedProxies: splitCSV(getenv("TRUSTED_PROXIES", "")),

		// Idempotency
		IdempotencyTTL: getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-church-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}
	cfg.OTEL.Environment = cfg.AppEnv

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}
	if cfg.AppEnv == "dev" {
		cfg.AppEnv = "development"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	switch cfg.DB.Driver {
	case "sqlite":
		if strings.TrimSpace(cfg.DB.Path) == "" {
			return cfg, errors.New("DB_PATH must not be empty")
		}
	case "postgres":
		if strings.TrimSpace(cfg.DB.URL) == "" {
			return cfg, errors.New("DATABASE_URL is required when DB_DRIVER=postgres")
		}
	default:
		return cfg, errors.New("DB_DRIVER must be one of: sqlite, postgres")
	}
	switch cfg.Storage.Driver {
	case "memory":
	case "s3":
		if strings.TrimSpace(cfg.Storage.Bucket) == "" {
			return cfg, errors.New("S3_BUCKET is required when STORAGE_DRIVER=s3")
		}
	default:
		return cfg, errors.New("STORAGE_DRIVER must be one of: s3, memory")
	}
	if cfg.Upload.MaxBytes <= 0 || cfg.Upload.MaxFiles < 1 {
		return cfg, errors.New("UPLOAD_MAX_BYTES and UPLOAD_MAX_FILES must be positive")
	}
	if cfg.Upload.MaxDimension <= 0 {
		return cfg, errors.New("IMAGE_MAX_DIMENSION must be > 0")
	}
	if cfg.Upload.JPEGQuality < 1 || cfg.Upload.JPEGQuality > 100 {
		return cfg, errors.New("IMAGE_JPEG_QUALITY must be in [1,100]")
	}
	if cfg.LikeTTL <= 0 || cfg.LikeSweepInterval <= 0 {
		return cfg, errors.New("LIKE_TTL and LIKE_SWEEP_INTERVAL must be positive durations")
	}
	if cfg.CacheTTL <= 0 {
		return cfg, errors.New("CACHE_TTL must be > 0")
	}
	if cfg.JWTSecret == "" && cfg.GinMode != "test" {
		return cfg, errors.New("JWT_SECRET must be set")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return cfg, errors.New("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}
	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if b := sysutil.OptionalBool(os.Getenv(k)); b != nil {
		return *b
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
