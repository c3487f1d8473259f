package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Cloudinary CloudinaryConfig
	Cache      CacheConfig
	Logging    LoggingConfig
	Security   SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	ServerName      string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                 string
	MaxOpenConns        int
	MaxIdleConns        int
	ConnMaxLifetime     time.Duration
	ConnMaxIdleTime     time.Duration
	ConnectTimeout      time.Duration
	SlowQueryThreshold  time.Duration
	EnableQueryLogging  bool
	EnableMetrics       bool
	HealthCheckInterval time.Duration
	MigrationsPath      string
	SSLMode             string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	SessionName     string
	SessionTTL      time.Duration
	SessionSecure   bool
	SessionHttpOnly bool
	SessionSameSite string
	BCryptCost      int
	JWTSecret       string
	JWTExpiry       time.Duration
}

// CloudinaryConfig holds Cloudinary configuration
type CloudinaryConfig struct {
	CloudName   string
	APIKey      string
	APISecret   string
	MaxFileSize int64
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider      string
	RedisURL      string
	RedisDB       int
	RedisPassword string
	PoolSize      int
	DefaultTTL    time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// SecurityConfig holds security middleware configuration
type SecurityConfig struct {
	CORSAllowedOrigins    []string
	CORSAllowedMethods    []string
	CORSAllowedHeaders    []string
	CORSAllowCredentials  bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	EnableSecurityHeaders bool
	FrameOptions          string
	ForceHTTPS            bool
}

// Load reads configuration from the environment, with a .env file for
// non-production environments.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	}

	config := &Config{
		Server:     loadServerConfig(env),
		Database:   loadDatabaseConfig(env),
		Auth:       loadAuthConfig(env),
		Cloudinary: loadCloudinaryConfig(),
		Cache:      loadCacheConfig(),
		Logging:    loadLoggingConfig(env),
		Security:   loadSecurityConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "8080"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		ServerName:      getEnv("SERVER_NAME", "GreenQuest"),
	}

	if env == "development" {
		config.GracefulTimeout = 10 * time.Second
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	return DatabaseConfig{
		URL:                 getEnv("DATABASE_URL", "postgres://localhost:5432/greenquest?sslmode=disable"),
		MaxOpenConns:        getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:        getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:     getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime:     getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		ConnectTimeout:      getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		SlowQueryThreshold:  getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		EnableQueryLogging:  getBoolEnv("DB_ENABLE_QUERY_LOGGING", env == "development"),
		EnableMetrics:       getBoolEnv("DB_ENABLE_METRICS", true),
		HealthCheckInterval: getDurationEnv("DB_HEALTH_CHECK_INTERVAL", 30*time.Second),
		MigrationsPath:      getEnv("DB_MIGRATIONS_PATH", "migrations"),
		SSLMode:             getEnv("DB_SSL_MODE", defaultSSLMode(env)),
	}
}

func loadAuthConfig(env string) AuthConfig {
	return AuthConfig{
		SessionName:     getEnv("SESSION_NAME", "gq_session"),
		SessionTTL:      getDurationEnv("SESSION_TTL", 24*time.Hour),
		SessionSecure:   getBoolEnv("SESSION_SECURE", env == "production"),
		SessionHttpOnly: getBoolEnv("SESSION_HTTP_ONLY", true),
		SessionSameSite: getEnv("SESSION_SAME_SITE", "lax"),
		BCryptCost:      getIntEnv("BCRYPT_COST", 12),
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTExpiry:       getDurationEnv("JWT_EXPIRY", 1*time.Hour),
	}
}

func loadCloudinaryConfig() CloudinaryConfig {
	return CloudinaryConfig{
		CloudName:   getEnv("CLOUDINARY_CLOUD_NAME", ""),
		APIKey:      getEnv("CLOUDINARY_API_KEY", ""),
		APISecret:   getEnv("CLOUDINARY_API_SECRET", ""),
		MaxFileSize: int64(getIntEnv("CLOUDINARY_MAX_FILE_SIZE", 10*1024*1024)),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:      getEnv("CACHE_PROVIDER", "memory"),
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		PoolSize:      getIntEnv("REDIS_POOL_SIZE", 10),
		DefaultTTL:    getDurationEnv("CACHE_DEFAULT_TTL", 15*time.Minute),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	defaultLevel := "info"
	defaultFormat := "json"
	if env == "development" {
		defaultLevel = "debug"
		defaultFormat = "console"
	}
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", defaultLevel),
		Format: getEnv("LOG_FORMAT", defaultFormat),
		Output: getEnv("LOG_OUTPUT", "stdout"),
	}
}

func loadSecurityConfig(env string) SecurityConfig {
	config := SecurityConfig{
		CORSAllowCredentials:  getBoolEnv("CORS_ALLOW_CREDENTIALS", true),
		RateLimitRequests:     getIntEnv("RATE_LIMIT_REQUESTS", rateLimitForEnv(env)),
		RateLimitWindow:       getDurationEnv("RATE_LIMIT_WINDOW", 1*time.Minute),
		EnableSecurityHeaders: true,
		FrameOptions:          getEnv("FRAME_OPTIONS", "SAMEORIGIN"),
		ForceHTTPS:            getBoolEnv("FORCE_HTTPS", env == "production"),
	}

	switch env {
	case "production":
		config.CORSAllowedOrigins = splitEnv("CORS_ALLOWED_ORIGINS", "")
		config.CORSAllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
		config.CORSAllowedHeaders = []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"}
	default:
		config.CORSAllowedOrigins = []string{"*"}
		config.CORSAllowedMethods = []string{"*"}
		config.CORSAllowedHeaders = []string{"*"}
	}

	return config
}

// ===============================
// VALIDATION
// ===============================

// Validate checks required settings
func (c *Config) Validate() error {
	var errors []string

	if c.Database.URL == "" {
		errors = append(errors, "DATABASE_URL is required")
	} else if _, err := url.Parse(c.Database.URL); err != nil {
		errors = append(errors, fmt.Sprintf("DATABASE_URL is invalid: %v", err))
	}

	if c.IsProduction() {
		if c.Auth.JWTSecret == "" {
			errors = append(errors, "JWT_SECRET is required in production")
		} else if len(c.Auth.JWTSecret) < 32 {
			errors = append(errors, "JWT_SECRET must be at least 32 characters")
		}
		if len(c.Security.CORSAllowedOrigins) == 0 {
			errors = append(errors, "CORS_ALLOWED_ORIGINS is required in production")
		}
	}

	if c.Auth.BCryptCost < 10 || c.Auth.BCryptCost > 16 {
		errors = append(errors, "BCRYPT_COST must be between 10 and 16")
	}

	if c.Cache.Provider == "redis" && c.Cache.RedisURL == "" {
		errors = append(errors, "REDIS_URL is required when CACHE_PROVIDER is redis")
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "; "))
	}
	return nil
}

// IsProduction reports whether the app runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment reports whether the app runs in development
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// Addr returns the server listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// ===============================
// ENV HELPERS
// ===============================

func defaultSSLMode(env string) string {
	if env == "production" {
		return "require"
	}
	return "disable"
}

func rateLimitForEnv(env string) int {
	if env == "production" {
		return 100
	}
	return 1000
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
