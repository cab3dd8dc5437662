package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tyemirov/storefront/internal/apiclient"
	"github.com/tyemirov/storefront/internal/session"
	"github.com/tyemirov/storefront/internal/telemetry"
	"github.com/tyemirov/storefront/internal/web"
	"github.com/tyemirov/storefront/pkg/tokenclaims"
	"go.uber.org/zap"
)

var serveHTTP = func(server *http.Server) error {
	return server.ListenAndServe()
}

func main() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return configError(configCodeInvalidDotEnv, err.Error())
	}
	return nil
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront shell and CLI for the software license store",
		PreRunE:       prepareServerConfig,
		RunE:          runServer,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String("api_base_url", apiclient.DefaultBaseURL, "Backend origin (also VITE_API_BASE_URL or VITE_API_URL)")
	rootCmd.PersistentFlags().Duration("api_timeout", apiclient.DefaultTimeout, "Timeout for each backend call; 0 disables it")
	rootCmd.PersistentFlags().Bool("session_expiry_check", true, "Treat sessions with an expired JWT as signed out")
	rootCmd.Flags().String("listen_addr", ":8080", "HTTP listen address")
	rootCmd.Flags().String("session_backend", sessionBackendCookie, "Session storage: cookie, memory, database, pgx, or redis")
	rootCmd.Flags().String("session_database_url", "", "Database URL for the database (postgres:// or sqlite://) and pgx session backends")
	rootCmd.Flags().String("redis_addr", "", "Redis address for the redis session backend")
	rootCmd.Flags().String("redis_password", "", "Redis password")
	rootCmd.Flags().Int("redis_db", 0, "Redis database number")
	rootCmd.Flags().Duration("session_ttl", 30*24*time.Hour, "Lifetime of session cookies and redis keys")
	rootCmd.Flags().String("cookie_domain", "", "Cookie domain; empty for host-only")
	rootCmd.Flags().Bool("dev_insecure_http", false, "Allow insecure HTTP for local dev")
	rootCmd.Flags().Bool("enable_cors", false, "Enable CORS for cross-origin clients")
	rootCmd.Flags().StringSlice("cors_allowed_origins", []string{}, "Allowed origins when CORS is enabled (required if enable_cors is true)")
	rootCmd.Flags().Bool("enable_metrics", true, "Expose prometheus metrics on /metrics")
	rootCmd.Flags().String("google_client_id", "", "Google client ID published on /config for the sign-in button")

	for _, key := range []string{"api_base_url", "api_timeout", "session_expiry_check"} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}
	for _, key := range []string{
		"listen_addr", "session_backend", "session_database_url", "redis_addr", "redis_password", "redis_db",
		"session_ttl", "cookie_domain", "dev_insecure_http", "enable_cors", "cors_allowed_origins",
		"enable_metrics", "google_client_id",
	} {
		_ = viper.BindPFlag(key, rootCmd.Flags().Lookup(key))
	}
	bindEnvironment()

	rootCmd.AddCommand(newCLICommands()...)
	return rootCmd
}

func bindEnvironment() {
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	_ = viper.BindEnv("api_base_url", "APP_API_BASE_URL", "VITE_API_BASE_URL", "VITE_API_URL")
}

type contextKey string

const serverConfigContextKey contextKey = "serverConfig"

func prepareServerConfig(command *cobra.Command, arguments []string) error {
	serverConfig, loadErr := LoadServerConfig()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, serverConfigContextKey, serverConfig))
	return nil
}

func runServer(command *cobra.Command, arguments []string) error {
	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(serverConfigContextKey)
	}
	serverConfig, ok := contextValue.(ServerConfig)
	if !ok {
		return configError(configCodeUninitializedServerConf, "server configuration not prepared; PreRunE must execute before RunE")
	}

	counters := telemetry.NewCounterMetrics()
	var metrics telemetry.MetricsRecorder = counters
	registry := prometheus.NewRegistry()
	if serverConfig.EnableMetrics {
		prometheusMetrics, registerErr := telemetry.NewPrometheusMetrics(registry)
		if registerErr != nil {
			return fmt.Errorf("%s: %w", configCodeMetricsInit, registerErr)
		}
		metrics = telemetry.Fanout{counters, prometheusMetrics}
	}

	provider, closeProvider, providerErr := buildStorageProvider(commandContext, serverConfig, logger)
	if providerErr != nil {
		return providerErr
	}
	defer closeProvider()

	sessionOptions := []session.Option{session.WithLogger(logger), session.WithMetrics(metrics)}
	if serverConfig.SessionExpiryCheck {
		sessionOptions = append(sessionOptions, session.WithExpiryCheck(tokenclaims.New(tokenclaims.Config{})))
	}

	apiClient := apiclient.New(apiclient.Config{
		BaseURL: serverConfig.APIBaseURL,
		Timeout: serverConfig.APITimeout,
	}, nil, apiclient.WithLogger(logger), apiclient.WithMetrics(metrics))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapLoggerMiddleware(logger))

	if serverConfig.EnableCORS {
		corsMiddleware, corsErr := web.ConfigureCORS(logger, serverConfig.CORSAllowedOrigins)
		if corsErr != nil {
			return corsErr
		}
		router.Use(corsMiddleware)
	}

	if serverConfig.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	web.MountShellRoutes(router, web.Shell{
		Scope:   &web.SessionScope{Provider: provider, Options: sessionOptions},
		API:     apiClient,
		Config:  web.ShellConfig{APIBaseURL: serverConfig.APIBaseURL, GoogleClientID: serverConfig.GoogleClientID},
		Logger:  logger,
		Metrics: metrics,
	})

	server := &http.Server{
		Addr:              serverConfig.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()

	go func() {
		stopSignals := make(chan os.Signal, 1)
		signal.Notify(stopSignals, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(stopSignals)
		select {
		case <-stopSignals:
		case <-shutdownCtx.Done():
			return
		}
		graceCtx, graceCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer graceCancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening",
		zap.String("addr", serverConfig.ListenAddr),
		zap.String("api_base_url", serverConfig.APIBaseURL),
		zap.String("session_backend", serverConfig.SessionBackend))
	if err := serveHTTP(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen error: %w", err)
	}
	return nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		startTime := time.Now()
		contextGin.Next()
		logger.Info("http",
			zap.String("method", contextGin.Request.Method),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Int("status", contextGin.Writer.Status()),
			zap.String("ip", contextGin.ClientIP()),
			zap.Duration("elapsed", time.Since(startTime)),
		)
	}
}
