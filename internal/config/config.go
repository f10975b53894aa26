package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "gallery-development-secret"

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Admin (mock upload workflow)
	JWTSecret         string
	JWTExpiry         time.Duration
	AdminUsername     string
	AdminPasswordHash string // bcrypt, see `gallery hash-password`

	// Catalog seeding on first start
	CatalogFixture     string // path to a JSON fixture; empty uses the embedded demo set
	CatalogMarkdownDir string

	// Query
	PageSize        int
	YearOffset      int    // 543 displays Buddhist-era years
	PopularBy       string // "downloads" or "views"
	CollationLocale string
	Timezone        string

	// Attribution
	ViewCooldown   time.Duration
	HistoryLimit   int
	MaxUploadSize  int64
	LoginRateLimit int // attempts per minute per IP

	// Description render cache
	RenderCacheSize int
	RenderCacheTTL  time.Duration

	// Observability (optional)
	SentryDSN string

	// Storage (optional, S3-compatible: MinIO, AWS S3, Cloudflare R2, etc.)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string
	S3PresignExpiry time.Duration
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppName: envString("APP_NAME", "Campus Gallery"),
		AppEnv:  envString("APP_ENV", "development"),
		AppURL:  envString("APP_URL", "http://localhost:8090"),
		Port:    envString("PORT", "8090"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/gallery.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		JWTSecret:         envString("JWT_SECRET", ""),
		JWTExpiry:         envDuration("JWT_EXPIRY", 12*time.Hour),
		AdminUsername:     envString("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: envString("ADMIN_PASSWORD_HASH", ""),

		CatalogFixture:     envString("CATALOG_FIXTURE", ""),
		CatalogMarkdownDir: envString("CATALOG_MARKDOWN_DIR", ""),

		PageSize:        envInt("PAGE_SIZE", 12),
		YearOffset:      envInt("YEAR_OFFSET", 0),
		PopularBy:       envString("POPULAR_BY", "downloads"),
		CollationLocale: envString("COLLATION_LOCALE", "th"),
		Timezone:        envString("TIMEZONE", "Asia/Bangkok"),

		ViewCooldown:   envDuration("VIEW_COOLDOWN", 30*time.Minute),
		HistoryLimit:   envInt("HISTORY_LIMIT", 50),
		MaxUploadSize:  int64(envInt("MAX_UPLOAD_SIZE_MB", 50)) << 20,
		LoginRateLimit: envInt("LOGIN_RATE_LIMIT", 5),

		RenderCacheSize: envInt("RENDER_CACHE_SIZE", 256),
		RenderCacheTTL:  envDuration("RENDER_CACHE_TTL", 10*time.Minute),

		SentryDSN: envString("SENTRY_DSN", ""),

		S3Region:        envString("S3_REGION", "us-east-1"),
		S3Bucket:        envString("S3_BUCKET", ""),
		S3AccessKey:     envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     envString("S3_SECRET_KEY", ""),
		S3Endpoint:      envString("S3_ENDPOINT", ""),
		S3PresignExpiry: envDuration("S3_PRESIGN_EXPIRY", 15*time.Minute),
	}

	if cfg.IsProduction() {
		validateProduction(cfg)
	} else if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	return cfg
}

// validateProduction refuses to start production without real admin
// credentials. Development falls back to a known secret and password.
func validateProduction(cfg *Config) {
	cfg.JWTSecret = envRequired("JWT_SECRET")
	cfg.AdminPasswordHash = envRequired("ADMIN_PASSWORD_HASH")
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Secure reports whether cookies should carry the Secure flag.
func (c *Config) Secure() bool {
	return c.IsProduction() || envBool("SECURE_COOKIES", false)
}

// Sanitized returns a copy of the config with only public/safe fields.
// Secrets and credentials are excluded.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:         c.AppName,
		AppEnv:          c.AppEnv,
		AppURL:          c.AppURL,
		Port:            c.Port,
		PageSize:        c.PageSize,
		YearOffset:      c.YearOffset,
		PopularBy:       c.PopularBy,
		CollationLocale: c.CollationLocale,
		Timezone:        c.Timezone,
		ViewCooldown:    c.ViewCooldown,
		HistoryLimit:    c.HistoryLimit,
		MaxUploadSize:   c.MaxUploadSize,
		S3Endpoint:      c.S3Endpoint,
	}
}
