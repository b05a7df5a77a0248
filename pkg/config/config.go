package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend  BackendConfig
	Auth     AuthConfig
	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Review   ReviewConfig
	Cache    CacheConfig
	Audit    AuditConfig
	LiveFeed LiveFeedConfig
	Uploads  UploadConfig
	Exports  ExportLinkConfig
}

// BackendConfig points at the analysis API the gateway proxies.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
	// Token is only used by the CLI, the server forwards the caller's token.
	Token string
}

// AuthConfig verifies dashboard bearer tokens issued by the identity provider.
type AuthConfig struct {
	Secret     string
	Issuer     string
	AdminRoles []string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ReviewConfig tunes the job review tables.
type ReviewConfig struct {
	PageSize        int
	MaxPageSize     int
	ProductPageSize int
	SearchDebounce  time.Duration
}

// CacheConfig governs Redis caching of upstream lookups.
type CacheConfig struct {
	Enabled    bool
	ClientsTTL time.Duration
	JobTTL     time.Duration
}

// AuditConfig toggles persistence of status decisions.
type AuditConfig struct {
	Enabled    bool
	Workers    int
	MaxRetries int
}

// LiveFeedConfig toggles the websocket job feed.
type LiveFeedConfig struct {
	Enabled      bool
	PingInterval time.Duration
}

// UploadConfig bounds spreadsheet uploads.
type UploadConfig struct {
	MaxFileSizeBytes int64
	PreviewRows      int
}

// ExportLinkConfig toggles signed download links for rendered exports.
type ExportLinkConfig struct {
	Enabled bool
	Dir     string
	Secret  string
	TTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 30*time.Second),
		Token:   v.GetString("BACKEND_TOKEN"),
	}

	cfg.Auth = AuthConfig{
		Secret:     v.GetString("AUTH_JWT_SECRET"),
		Issuer:     v.GetString("AUTH_JWT_ISSUER"),
		AdminRoles: splitAndTrim(v.GetString("AUTH_ADMIN_ROLES")),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Review = ReviewConfig{
		PageSize:        positiveInt(v.GetInt("REVIEW_PAGE_SIZE"), 10),
		MaxPageSize:     positiveInt(v.GetInt("REVIEW_MAX_PAGE_SIZE"), 100),
		ProductPageSize: positiveInt(v.GetInt("PRODUCT_PAGE_SIZE"), 20),
		SearchDebounce:  parseDuration(v.GetString("SEARCH_DEBOUNCE"), 500*time.Millisecond),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_CACHE"),
		ClientsTTL: parseDuration(v.GetString("CLIENTS_CACHE_TTL"), 10*time.Minute),
		JobTTL:     parseDuration(v.GetString("JOB_CACHE_TTL"), 2*time.Minute),
	}

	cfg.Audit = AuditConfig{
		Enabled:    v.GetBool("ENABLE_AUDIT"),
		Workers:    positiveInt(v.GetInt("AUDIT_WORKERS"), 1),
		MaxRetries: positiveInt(v.GetInt("AUDIT_MAX_RETRIES"), 3),
	}

	cfg.LiveFeed = LiveFeedConfig{
		Enabled:      v.GetBool("ENABLE_LIVE_FEED"),
		PingInterval: parseDuration(v.GetString("LIVE_FEED_PING_INTERVAL"), 30*time.Second),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 20 * 1024 * 1024
	}
	cfg.Uploads = UploadConfig{
		MaxFileSizeBytes: maxUpload,
		PreviewRows:      positiveInt(v.GetInt("UPLOAD_PREVIEW_ROWS"), 10),
	}

	cfg.Exports = ExportLinkConfig{
		Enabled: v.GetBool("ENABLE_EXPORT_LINKS"),
		Dir:     v.GetString("EXPORT_DIR"),
		Secret:  v.GetString("EXPORT_LINK_SECRET"),
		TTL:     parseDuration(v.GetString("EXPORT_LINK_TTL"), 15*time.Minute),
	}
	if cfg.Exports.Secret == "" {
		cfg.Exports.Secret = cfg.Auth.Secret
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("BACKEND_BASE_URL", "http://localhost:8000")
	v.SetDefault("BACKEND_TIMEOUT", "30s")
	v.SetDefault("BACKEND_TOKEN", "")

	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_JWT_ISSUER", "")
	v.SetDefault("AUTH_ADMIN_ROLES", "admin")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pricelist_review")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REVIEW_PAGE_SIZE", 10)
	v.SetDefault("REVIEW_MAX_PAGE_SIZE", 100)
	v.SetDefault("PRODUCT_PAGE_SIZE", 20)
	v.SetDefault("SEARCH_DEBOUNCE", "500ms")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CLIENTS_CACHE_TTL", "10m")
	v.SetDefault("JOB_CACHE_TTL", "2m")

	v.SetDefault("ENABLE_AUDIT", false)
	v.SetDefault("AUDIT_WORKERS", 1)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)

	v.SetDefault("ENABLE_LIVE_FEED", false)
	v.SetDefault("LIVE_FEED_PING_INTERVAL", "30s")

	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 20*1024*1024)
	v.SetDefault("UPLOAD_PREVIEW_ROWS", 10)

	v.SetDefault("ENABLE_EXPORT_LINKS", false)
	v.SetDefault("EXPORT_DIR", "")
	v.SetDefault("EXPORT_LINK_SECRET", "")
	v.SetDefault("EXPORT_LINK_TTL", "15m")
}

// IsAdminRole reports whether role is configured as an administrator.
func (c AuthConfig) IsAdminRole(role string) bool {
	for _, r := range c.AdminRoles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
