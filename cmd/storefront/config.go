package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	sessionBackendCookie   = "cookie"
	sessionBackendMemory   = "memory"
	sessionBackendDatabase = "database"
	sessionBackendPGX      = "pgx"
	sessionBackendRedis    = "redis"

	configCodeInvalidSessionBackend   = "config.invalid_session_backend"
	configCodeMissingDatabaseURL      = "config.missing_session_database_url"
	configCodeMissingRedisAddr        = "config.missing_redis_addr"
	configCodeInvalidSessionTTL       = "config.invalid_session_ttl"
	configCodeInvalidAPITimeout       = "config.invalid_api_timeout"
	configCodeInvalidAPIBaseURL       = "config.invalid_api_base_url"
	configCodeMissingCORSOrigins      = "config.missing_cors_allowed_origins"
	configCodeUninitializedServerConf = "config.uninitialized_server_config"
	configCodeInvalidDotEnv           = "config.invalid_dotenv"
	configCodeMetricsInit             = "config.metrics_init"
	configCodeSessionBackendInit      = "config.session_backend_init"
	configCodeCLISessionInit          = "config.cli_session_init"
)

// ServerConfig is the resolved configuration of the storefront shell.
type ServerConfig struct {
	ListenAddr         string
	APIBaseURL         string
	APITimeout         time.Duration
	SessionBackend     string
	SessionDatabaseURL string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	SessionTTL         time.Duration
	SessionExpiryCheck bool
	CookieDomain       string
	DevInsecureHTTP    bool
	EnableCORS         bool
	CORSAllowedOrigins []string
	EnableMetrics      bool
	GoogleClientID     string
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

// LoadServerConfig reads and validates the shell configuration from viper.
func LoadServerConfig() (ServerConfig, error) {
	apiBaseURL, err := loadAPIBaseURL()
	if err != nil {
		return ServerConfig{}, err
	}

	apiTimeout := viper.GetDuration("api_timeout")
	if apiTimeout < 0 {
		return ServerConfig{}, configError(configCodeInvalidAPITimeout, "api_timeout must not be negative")
	}

	sessionBackend := strings.ToLower(strings.TrimSpace(viper.GetString("session_backend")))
	if sessionBackend == "" {
		sessionBackend = sessionBackendCookie
	}
	databaseURL := strings.TrimSpace(viper.GetString("session_database_url"))
	redisAddr := strings.TrimSpace(viper.GetString("redis_addr"))
	switch sessionBackend {
	case sessionBackendCookie, sessionBackendMemory:
	case sessionBackendDatabase, sessionBackendPGX:
		if databaseURL == "" {
			return ServerConfig{}, configError(configCodeMissingDatabaseURL, "session_database_url must be provided for the "+sessionBackend+" session backend")
		}
	case sessionBackendRedis:
		if redisAddr == "" {
			return ServerConfig{}, configError(configCodeMissingRedisAddr, "redis_addr must be provided for the redis session backend")
		}
	default:
		return ServerConfig{}, configError(configCodeInvalidSessionBackend, "session_backend must be one of cookie, memory, database, pgx, redis")
	}

	sessionTTL := viper.GetDuration("session_ttl")
	if sessionTTL <= 0 {
		return ServerConfig{}, configError(configCodeInvalidSessionTTL, "session_ttl must be greater than zero")
	}

	enableCORS := viper.GetBool("enable_cors")
	corsAllowedOrigins := viper.GetStringSlice("cors_allowed_origins")
	if enableCORS && len(corsAllowedOrigins) == 0 {
		return ServerConfig{}, configError(configCodeMissingCORSOrigins, "cors_allowed_origins must be provided when enable_cors is true")
	}

	listenAddr := viper.GetString("listen_addr")
	if strings.TrimSpace(listenAddr) == "" {
		listenAddr = ":8080"
	}

	return ServerConfig{
		ListenAddr:         listenAddr,
		APIBaseURL:         apiBaseURL,
		APITimeout:         apiTimeout,
		SessionBackend:     sessionBackend,
		SessionDatabaseURL: databaseURL,
		RedisAddr:          redisAddr,
		RedisPassword:      viper.GetString("redis_password"),
		RedisDB:            viper.GetInt("redis_db"),
		SessionTTL:         sessionTTL,
		SessionExpiryCheck: viper.GetBool("session_expiry_check"),
		CookieDomain:       viper.GetString("cookie_domain"),
		DevInsecureHTTP:    viper.GetBool("dev_insecure_http"),
		EnableCORS:         enableCORS,
		CORSAllowedOrigins: corsAllowedOrigins,
		EnableMetrics:      viper.GetBool("enable_metrics"),
		GoogleClientID:     viper.GetString("google_client_id"),
	}, nil
}

func loadAPIBaseURL() (string, error) {
	raw := strings.TrimSpace(viper.GetString("api_base_url"))
	if raw == "" {
		return "", nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", configError(configCodeInvalidAPIBaseURL, "api_base_url must be an http(s) origin, got "+raw)
	}
	return strings.TrimRight(raw, "/"), nil
}
