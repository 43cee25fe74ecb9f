// Package config provides configuration management for the HR portal edge.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the complete application configuration.
type Config struct {
	Server       ServerConfig
	Upstream     UpstreamConfig
	Controller   ControllerConfig
	Storage      StorageConfig
	Auth         AuthConfig
	Database     DatabaseConfig
	Notification NotificationConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	RateLimit      int
	RateWindow     time.Duration
	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	CORSOrigins    []string
	LogLevel       string
	LogPretty      bool
}

// UpstreamConfig describes the portal origin the edge fronts.
type UpstreamConfig struct {
	URL          string
	MaxBodyBytes int64
}

// ControllerConfig holds the offline cache controller settings.
type ControllerConfig struct {
	CachePrefix    string
	CacheVersion   string
	PrecacheAssets []string
	ShellDocument  string
	SettingsPath   string
	// SettingsTimeout bounds the branding fetch made for each push.
	SettingsTimeout time.Duration
	// PublicOrigin is the portal's public scheme://host, used to decide
	// which windows a notification click may reuse.
	PublicOrigin string
}

// NotificationConfig holds push notification defaults.
type NotificationConfig struct {
	Title string
	Body  string
	Icon  string
	Badge string
}

// StorageConfig selects and configures the cache partition backend.
type StorageConfig struct {
	Backend        string
	BadgerPath     string
	BadgerInMemory bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisPrefix    string
}

// AuthConfig holds authentication configuration for the control plane.
type AuthConfig struct {
	Enabled      bool
	APIKeys      map[string]bool
	JWTSecretKey string
	TokenTTL     time.Duration
}

// DatabaseConfig holds MongoDB configuration.
type DatabaseConfig struct {
	URI            string
	DatabaseName   string
	JournalTTL     time.Duration
	Enabled        bool
	JournalEnabled bool
	// CircuitBreaker configuration
	CircuitBreakerFailureThreshold int
	CircuitBreakerSuccessThreshold int
	CircuitBreakerTimeout          time.Duration
}

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// DefaultPrecacheAssets is the app shell: the root document and nine icons.
var DefaultPrecacheAssets = []string{
	"/index.html",
	"/icons/icon-72x72.png",
	"/icons/icon-96x96.png",
	"/icons/icon-128x128.png",
	"/icons/icon-144x144.png",
	"/icons/icon-152x152.png",
	"/icons/icon-192x192.png",
	"/icons/icon-384x384.png",
	"/icons/icon-512x512.png",
	"/icons/apple-touch-icon-180x180.png",
}

// Load creates a Config from environment variables.
func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RateLimit:      getEnvInt("RATE_LIMIT", 100),
			RateWindow:     getEnvDuration("RATE_WINDOW", time.Minute),
			RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
			IdempotencyTTL: getEnvDuration("IDEMPOTENCY_TTL", 5*time.Minute),
			CORSOrigins:    parseCORSOrigins(os.Getenv("CORS_ORIGINS")),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogPretty:      getEnvBool("LOG_PRETTY", false),
		},
		Upstream: UpstreamConfig{
			URL:          getEnv("UPSTREAM_URL", "http://localhost:3000"),
			MaxBodyBytes: int64(getEnvInt("UPSTREAM_MAX_BODY_BYTES", 32<<20)),
		},
		Controller: ControllerConfig{
			CachePrefix:     getEnv("CACHE_PREFIX", "hr-portal"),
			CacheVersion:    getEnv("CACHE_VERSION", "v2"),
			PrecacheAssets:  parseList(os.Getenv("PRECACHE_ASSETS"), DefaultPrecacheAssets),
			ShellDocument:   getEnv("SHELL_DOCUMENT", "/index.html"),
			SettingsPath:    getEnv("SETTINGS_PATH", "/api/settings"),
			SettingsTimeout: getEnvDuration("SETTINGS_TIMEOUT", 5*time.Second),
			PublicOrigin:    getEnv("PUBLIC_ORIGIN", ""),
		},
		Notification: NotificationConfig{
			Title: getEnv("NOTIFICATION_TITLE", "HR Portal"),
			Body:  getEnv("NOTIFICATION_BODY", "You have a new notification"),
			Icon:  getEnv("NOTIFICATION_ICON", "/icons/icon-192x192.png"),
			Badge: getEnv("NOTIFICATION_BADGE", "/icons/icon-72x72.png"),
		},
		Storage: StorageConfig{
			Backend:        strings.ToLower(getEnv("CACHE_BACKEND", BackendMemory)),
			BadgerPath:     getEnv("BADGER_PATH", "./data/cache"),
			BadgerInMemory: getEnvBool("BADGER_IN_MEMORY", false),
			RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword:  getEnv("REDIS_PASSWORD", ""),
			RedisDB:        getEnvInt("REDIS_DB", 0),
			RedisPrefix:    getEnv("REDIS_PREFIX", "hr-edge"),
		},
		Auth: AuthConfig{
			Enabled:      getEnvBool("AUTH_ENABLED", false),
			APIKeys:      parseAPIKeys(os.Getenv("API_KEYS")),
			JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
			TokenTTL:     getEnvDuration("JWT_TTL", time.Hour),
		},
		Database: DatabaseConfig{
			URI:                            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			DatabaseName:                   getEnv("MONGODB_DATABASE", "hr_portal_edge"),
			JournalTTL:                     getEnvDuration("MONGODB_JOURNAL_TTL", 30*24*time.Hour),
			Enabled:                        getEnvBool("MONGODB_ENABLED", false),
			JournalEnabled:                 getEnvBool("JOURNAL_ENABLED", true),
			CircuitBreakerFailureThreshold: getEnvInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
			CircuitBreakerSuccessThreshold: getEnvInt("CIRCUIT_BREAKER_SUCCESS_THRESHOLD", 2),
			CircuitBreakerTimeout:          getEnvDuration("CIRCUIT_BREAKER_TIMEOUT", 30*time.Second),
		},
	}
}

// MongoRequired reports whether any component needs a MongoDB connection.
func (c Config) MongoRequired() bool {
	return c.Database.Enabled || c.Storage.Backend == BackendMongo
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

// parseList splits a comma separated list, returning a copy of defaults when empty.
func parseList(s string, defaults []string) []string {
	if strings.TrimSpace(s) == "" {
		return append([]string(nil), defaults...)
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			result = append(result, v)
		}
	}
	return result
}

func parseAPIKeys(s string) map[string]bool {
	if s == "" {
		return nil
	}
	keys := strings.Split(s, ",")
	result := make(map[string]bool, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			result[k] = true
		}
	}
	return result
}

func parseCORSOrigins(s string) []string {
	// Default origins for local development
	defaults := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	if s == "" {
		return defaults
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts)+len(defaults))
	result = append(result, defaults...)
	for _, p := range parts {
		if origin := strings.TrimSpace(p); origin != "" {
			result = append(result, origin)
		}
	}
	return result
}
