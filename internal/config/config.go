// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Metadata  MetadataConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Queue     QueueConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// MetadataConfig holds the data directory configuration.
type MetadataConfig struct {
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host               string
	Port               string
	PublicURL          string        // Base URL used in cover links (default: http://host:port)
	ReadTimeout        time.Duration // default: 15s
	WriteTimeout       time.Duration // default: 15s
	IdleTimeout        time.Duration // default: 60s
	CORSAllowedOrigins []string
}

// DatabaseConfig holds the relational store configuration.
type DatabaseConfig struct {
	Path string // default: {metadata}/openmusic.db
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for access tokens (32 bytes).
	// Empty means auth.ResolveKey generates or loads one.
	AccessTokenKeyHex    string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// Cache backends.
const (
	CacheBackendBadger = "badger"
	CacheBackendMemory = "memory"
)

// CacheConfig holds configuration for the derived-value cache.
type CacheConfig struct {
	Backend string
	TTL     time.Duration
	// MaxCost bounds the in-memory backend (number of entries).
	MaxCost int
	// Path is the badger directory shared with the export queue.
	Path string
}

// Storage backends.
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// StorageConfig holds cover image storage configuration.
type StorageConfig struct {
	Backend   string
	UploadDir string
	Bucket    string
	Region    string
}

// QueueConfig holds export queue configuration.
type QueueConfig struct {
	ExportQueue  string
	ExportDir    string
	PollInterval time.Duration
	Workers      int
}

// RateLimitConfig holds the per-IP limits for authentication endpoints.
type RateLimitConfig struct {
	AuthPerMinute int
	AuthBurst     int
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool
}

// LoadConfig loads configuration from the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load loads configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("openmusic", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	metadataPath := fs.String("metadata-path", "", "Base path for data storage")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	host := fs.String("host", "", "Listen host (default: localhost)")
	port := fs.String("port", "", "Listen port (default: 5000)")
	publicURL := fs.String("public-url", "", "Public base URL for generated links")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	dbPath := fs.String("database-path", "", "SQLite database file")

	accessTokenAge := fs.String("access-token-age", "", "Access token lifetime (e.g., 3h)")
	refreshTokenAge := fs.String("refresh-token-age", "", "Refresh token lifetime (e.g., 720h)")

	cacheBackend := fs.String("cache-backend", "", "Cache backend (badger, memory)")
	cacheTTL := fs.String("cache-ttl", "", "Cache entry lifetime (default: 30m)")

	storageBackend := fs.String("storage-backend", "", "Cover storage backend (local, s3)")
	uploadDir := fs.String("upload-dir", "", "Directory for locally stored covers")

	exportDir := fs.String("export-dir", "", "Directory where playlist exports are written")
	metricsEnabled := fs.String("metrics", "", "Expose Prometheus metrics (default: true)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Metadata: MetadataConfig{
			BasePath: getConfigValue(*metadataPath, "METADATA_PATH", ""),
		},
		Server: ServerConfig{
			Host:               getConfigValue(*host, "HOST", "localhost"),
			Port:               getConfigValue(*port, "PORT", "5000"),
			PublicURL:          getConfigValue(*publicURL, "PUBLIC_URL", ""),
			CORSAllowedOrigins: splitList(getConfigValue("", "CORS_ALLOWED_ORIGINS", "*")),
		},
		Database: DatabaseConfig{
			Path: getConfigValue(*dbPath, "DATABASE_PATH", ""),
		},
		Auth: AuthConfig{
			AccessTokenKeyHex: getConfigValue("", "ACCESS_TOKEN_KEY", ""),
		},
		Cache: CacheConfig{
			Backend: getConfigValue(*cacheBackend, "CACHE_BACKEND", CacheBackendBadger),
			MaxCost: getIntConfigValue("", "CACHE_MAX_COST", 10000),
			Path:    getConfigValue("", "CACHE_PATH", ""),
		},
		Storage: StorageConfig{
			Backend:   getConfigValue(*storageBackend, "STORAGE_BACKEND", StorageBackendLocal),
			UploadDir: getConfigValue(*uploadDir, "UPLOAD_DIR", ""),
			Bucket:    getConfigValue("", "AWS_BUCKET_NAME", ""),
			Region:    getConfigValue("", "AWS_REGION", "us-east-1"),
		},
		Queue: QueueConfig{
			ExportQueue: getConfigValue("", "EXPORT_QUEUE", "export:playlist"),
			ExportDir:   getConfigValue(*exportDir, "EXPORT_DIR", ""),
			Workers:     getIntConfigValue("", "QUEUE_WORKERS", 2),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: getIntConfigValue("", "AUTH_RATE_LIMIT", 20),
			AuthBurst:     getIntConfigValue("", "AUTH_RATE_BURST", 10),
		},
		Metrics: MetricsConfig{
			Enabled: getBoolConfigValue(*metricsEnabled, "METRICS_ENABLED", true),
		},
	}

	durations := []struct {
		flagValue, envKey, def string
		target                 *time.Duration
	}{
		{*accessTokenAge, "ACCESS_TOKEN_AGE", "3h", &cfg.Auth.AccessTokenDuration},
		{*refreshTokenAge, "REFRESH_TOKEN_AGE", "720h", &cfg.Auth.RefreshTokenDuration},
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
		{*cacheTTL, "CACHE_TTL", "30m", &cfg.Cache.TTL},
		{"", "QUEUE_POLL_INTERVAL", "2s", &cfg.Queue.PollInterval},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.envKey, raw, err)
		}
		*d.target = parsed
	}

	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = fmt.Sprintf("http://%s:%s", cfg.Server.Host, cfg.Server.Port)
	}
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Metadata.BasePath == "" {
		return errors.New("metadata base path cannot be empty after expansion")
	}

	switch c.Cache.Backend {
	case CacheBackendBadger, CacheBackendMemory:
	default:
		return fmt.Errorf("invalid cache backend: %s (must be badger or memory)", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache TTL must be positive")
	}

	switch c.Storage.Backend {
	case StorageBackendLocal:
	case StorageBackendS3:
		if c.Storage.Bucket == "" {
			return errors.New("AWS_BUCKET_NAME is required for the s3 storage backend")
		}
	default:
		return fmt.Errorf("invalid storage backend: %s (must be local or s3)", c.Storage.Backend)
	}

	if c.Queue.ExportQueue == "" {
		return errors.New("export queue name cannot be empty")
	}
	if c.Queue.Workers < 1 {
		return errors.New("queue workers must be at least 1")
	}

	return nil
}

// expandPaths resolves the data directory and every path derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	base, err := expandPath(c.Metadata.BasePath, filepath.Join(homeDir, ".openmusic"))
	if err != nil {
		return fmt.Errorf("invalid metadata path: %w", err)
	}
	c.Metadata.BasePath = base

	derived := []struct {
		target *string
		def    string
	}{
		{&c.Database.Path, filepath.Join(base, "openmusic.db")},
		{&c.Cache.Path, filepath.Join(base, "kv")},
		{&c.Storage.UploadDir, filepath.Join(base, "covers")},
		{&c.Queue.ExportDir, filepath.Join(base, "exports")},
	}
	for _, d := range derived {
		expanded, err := expandPath(*d.target, d.def)
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", *d.target, err)
		}
		*d.target = expanded
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
