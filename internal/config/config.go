package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

const (
	StorageBackendS3    = "s3"
	StorageBackendMinio = "minio"
	StorageBackendLocal = "local"

	URLPolicyPublic    = "public"
	URLPolicyPresigned = "presigned"

	CorrelationOneToOne  = "one_to_one"
	CorrelationOneToMany = "one_to_many"

	DatabaseDriverPostgres = "postgres"
	DatabaseDriverMySQL    = "mysql"
	DatabaseDriverSQLite   = "sqlite"

	EventsBackendNone  = "none"
	EventsBackendRedis = "redis"

	defaultBucket = "media"
)

// Config holds the environment driven configuration for the media service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"media-service"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MEDIA_API_PORT" envDefault:"5000"`
	LogLevel        string        `env:"MEDIA_LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"MEDIA_LOG_FORMAT" envDefault:"json"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database
	DatabaseDriver string        `env:"DB_DRIVER" envDefault:"postgres"` // postgres, mysql or sqlite
	DatabaseURL    string        `env:"DATABASE_URL,notEmpty"`
	DBMaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBMaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"15"`
	DBConnLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
	DBAutoMigrate  bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	// Storage Backend Selection
	StorageBackend string `env:"MEDIA_STORAGE_BACKEND" envDefault:"minio"` // s3, minio or local
	Bucket         string `env:"MEDIA_BUCKET"`                             // falls back to MINIO_BUCKET, then "media"
	PublicBaseURL  string `env:"MEDIA_PUBLIC_BASE_URL"`                    // falls back to MINIO_EXTERNAL_URL
	URLPolicy      string `env:"MEDIA_URL_POLICY" envDefault:"public"`

	// S3 Storage Configuration
	S3Endpoint     string `env:"MEDIA_S3_ENDPOINT"`
	S3Region       string `env:"MEDIA_S3_REGION" envDefault:"us-east-1"`
	S3AccessKeyID  string `env:"MEDIA_S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool   `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`

	// MinIO Storage Configuration
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL" envDefault:"false"`

	// Names used by earlier deployments of the service
	MinioBucket      string `env:"MINIO_BUCKET"`
	MinioExternalURL string `env:"MINIO_EXTERNAL_URL"`

	// Local Storage Configuration
	LocalStoragePath string `env:"MEDIA_LOCAL_STORAGE_PATH" envDefault:"./media-data"`

	// Media Configuration
	CorrelationPolicy string        `env:"MEDIA_CORRELATION_POLICY" envDefault:"one_to_one"`
	MaxMediaBytes     int64         `env:"MEDIA_MAX_BYTES" envDefault:"20971520"`
	MaxBatchKeys      int           `env:"MEDIA_MAX_BATCH_KEYS" envDefault:"500"`
	StagingDir        string        `env:"MEDIA_STAGING_DIR"`
	OperationTimeout  time.Duration `env:"MEDIA_OPERATION_TIMEOUT" envDefault:"30s"`
	MaxPresignHours   int           `env:"MEDIA_MAX_PRESIGN_HOURS" envDefault:"168"`

	// Events
	EventsBackend string `env:"MEDIA_EVENTS_BACKEND" envDefault:"none"`
	RedisURL      string `env:"REDIS_URL"`
	EventsChannel string `env:"MEDIA_EVENTS_CHANNEL" envDefault:"media.events"`
	EventsBuffer  int    `env:"MEDIA_EVENTS_BUFFER" envDefault:"256"`

	// HTTP
	HTTPReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"2m"`
	HTTPWriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"2m"`
	HTTPIdleTimeout    time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"2m"`
	UploadRateLimit    float64       `env:"UPLOAD_RATE_LIMIT" envDefault:"10"` // uploads per second per client IP
	UploadRateBurst    int           `env:"UPLOAD_RATE_BURST" envDefault:"20"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Authentication
	AuthEnabled  bool   `env:"AUTH_ENABLED" envDefault:"false"`
	AuthIssuer   string `env:"AUTH_ISSUER"`
	AuthAudience string `env:"AUTH_AUDIENCE"`
	AuthJWKSURL  string `env:"AUTH_JWKS_URL"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() error {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	c.URLPolicy = strings.ToLower(strings.TrimSpace(c.URLPolicy))
	c.CorrelationPolicy = strings.ToLower(strings.TrimSpace(c.CorrelationPolicy))
	c.EventsBackend = strings.ToLower(strings.TrimSpace(c.EventsBackend))
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.Bucket = firstNonEmpty(c.Bucket, c.MinioBucket, defaultBucket)
	c.PublicBaseURL = strings.TrimSuffix(firstNonEmpty(c.PublicBaseURL, c.MinioExternalURL), "/")
	c.S3AccessKeyID = strings.TrimSpace(c.S3AccessKeyID)
	c.S3SecretKey = strings.TrimSpace(c.S3SecretKey)
	c.S3Endpoint = strings.TrimSpace(c.S3Endpoint)
	c.MinioEndpoint = strings.TrimSpace(c.MinioEndpoint)

	if c.MaxMediaBytes <= 0 {
		c.MaxMediaBytes = 20 * 1024 * 1024
	}
	if c.MaxBatchKeys <= 0 {
		c.MaxBatchKeys = 500
	}
	if c.MaxPresignHours <= 0 {
		c.MaxPresignHours = 168
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 30 * time.Second
	}
	if c.HTTPReadTimeout <= 0 {
		c.HTTPReadTimeout = 2 * time.Minute
	}
	if c.HTTPWriteTimeout <= 0 {
		c.HTTPWriteTimeout = 2 * time.Minute
	}
	if c.HTTPIdleTimeout <= 0 {
		c.HTTPIdleTimeout = 2 * time.Minute
	}

	switch c.DatabaseDriver {
	case "":
		c.DatabaseDriver = DatabaseDriverPostgres
	case DatabaseDriverPostgres, DatabaseDriverMySQL, DatabaseDriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DatabaseDriver)
	}

	switch c.StorageBackend {
	case StorageBackendS3:
		if c.Bucket == "" || c.S3AccessKeyID == "" || c.S3SecretKey == "" {
			return fmt.Errorf("MEDIA_BUCKET, MEDIA_S3_ACCESS_KEY_ID and MEDIA_S3_SECRET_ACCESS_KEY are required for the s3 backend")
		}
	case StorageBackendMinio:
		if c.Bucket == "" || c.MinioEndpoint == "" || c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MEDIA_BUCKET, MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for the minio backend")
		}
	case StorageBackendLocal:
		if strings.TrimSpace(c.LocalStoragePath) == "" {
			return fmt.Errorf("MEDIA_LOCAL_STORAGE_PATH is required for the local backend")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.URLPolicy {
	case URLPolicyPublic, URLPolicyPresigned:
	default:
		return fmt.Errorf("unsupported MEDIA_URL_POLICY %q", c.URLPolicy)
	}

	switch c.CorrelationPolicy {
	case CorrelationOneToOne, CorrelationOneToMany:
	default:
		return fmt.Errorf("unsupported MEDIA_CORRELATION_POLICY %q", c.CorrelationPolicy)
	}

	switch c.EventsBackend {
	case "", EventsBackendNone:
		c.EventsBackend = EventsBackendNone
	case EventsBackendRedis:
		if strings.TrimSpace(c.RedisURL) == "" {
			return fmt.Errorf("REDIS_URL is required when MEDIA_EVENTS_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unsupported MEDIA_EVENTS_BACKEND %q", c.EventsBackend)
	}

	if c.AuthEnabled {
		if strings.TrimSpace(c.AuthIssuer) == "" {
			return fmt.Errorf("AUTH_ISSUER is required when AUTH_ENABLED is true")
		}
		if strings.TrimSpace(c.AuthJWKSURL) == "" {
			return fmt.Errorf("AUTH_JWKS_URL is required when AUTH_ENABLED is true")
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// OneToOne reports whether a post may own at most one media record.
func (c *Config) OneToOne() bool {
	return c.CorrelationPolicy == CorrelationOneToOne
}

// PresignedURLs reports whether clients are handed time-limited signed URLs.
func (c *Config) PresignedURLs() bool {
	return c.URLPolicy == URLPolicyPresigned
}

// ResolvedPublicBaseURL returns the external base used to build object URLs.
func (c *Config) ResolvedPublicBaseURL() string {
	if c.PublicBaseURL != "" {
		return c.PublicBaseURL
	}
	switch c.StorageBackend {
	case StorageBackendMinio:
		scheme := "http"
		if c.MinioUseSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s", scheme, c.MinioEndpoint)
	case StorageBackendS3:
		if c.S3Endpoint != "" {
			return strings.TrimSuffix(c.S3Endpoint, "/")
		}
		return fmt.Sprintf("https://s3.%s.amazonaws.com", c.S3Region)
	default:
		return fmt.Sprintf("http://localhost:%d/files", c.HTTPPort)
	}
}
