package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
	"github.com/tyemirov/storefront/internal/session"
	"github.com/tyemirov/storefront/internal/sessionpg"
	"github.com/tyemirov/storefront/internal/web"
	"go.uber.org/zap"
)

func cookieConfig(serverConfig ServerConfig) session.CookieConfig {
	sameSite := http.SameSiteLaxMode
	// Browsers drop SameSite=None cookies that are not Secure.
	if serverConfig.EnableCORS && !serverConfig.DevInsecureHTTP {
		sameSite = http.SameSiteNoneMode
	}
	return session.CookieConfig{
		Domain:            serverConfig.CookieDomain,
		MaxAge:            serverConfig.SessionTTL,
		SameSite:          sameSite,
		AllowInsecureHTTP: serverConfig.DevInsecureHTTP,
	}
}

// buildStorageProvider opens the configured session backend. The returned
// function releases it.
func buildStorageProvider(ctx context.Context, serverConfig ServerConfig, logger *zap.Logger) (web.StorageProvider, func(), error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cookies := cookieConfig(serverConfig)
	noop := func() {}

	switch serverConfig.SessionBackend {
	case sessionBackendMemory:
		logger.Info("using in-memory session store")
		return web.NamespacedProvider{Backend: session.NewMemoryBackend(), Cookie: cookies}, noop, nil
	case sessionBackendDatabase:
		backend, err := session.NewDatabaseBackend(ctx, serverConfig.SessionDatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("%s: %w", configCodeSessionBackendInit, err)
		}
		logger.Info("using database session store", zap.String("driver", backend.Driver()))
		return web.NamespacedProvider{Backend: backend, Cookie: cookies}, func() {
			if closeErr := backend.Close(); closeErr != nil {
				logger.Warn("session database close failed", zap.Error(closeErr))
			}
		}, nil
	case sessionBackendPGX:
		pool, err := sessionpg.BuildPool(ctx, serverConfig.SessionDatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("%s: %w", configCodeSessionBackendInit, err)
		}
		if schemaErr := sessionpg.EnsureSchema(ctx, pool); schemaErr != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("%s: %w", configCodeSessionBackendInit, schemaErr)
		}
		logger.Info("using pgx session store")
		return web.NamespacedProvider{Backend: sessionpg.NewBackend(pool), Cookie: cookies}, pool.Close, nil
	case sessionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     serverConfig.RedisAddr,
			Password: serverConfig.RedisPassword,
			DB:       serverConfig.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("%s: %w", configCodeSessionBackendInit, err)
		}
		logger.Info("using redis session store", zap.String("addr", serverConfig.RedisAddr))
		return web.NamespacedProvider{Backend: session.NewRedisBackend(client, serverConfig.SessionTTL), Cookie: cookies}, func() {
			_ = client.Close()
		}, nil
	default:
		logger.Info("using cookie session store")
		return web.CookieProvider{Cookie: cookies}, noop, nil
	}
}
