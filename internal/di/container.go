// Package di provides dependency injection configuration for the OpenMusic server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/api"
	"github.com/openmusic/openmusic-server/internal/auth"
	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/di/providers"
	"github.com/openmusic/openmusic-server/internal/logger"
	"github.com/openmusic/openmusic-server/internal/media/images"
	"github.com/openmusic/openmusic-server/internal/metrics"
	"github.com/openmusic/openmusic-server/internal/queue"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideCollector)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideKV)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideQueue)
	do.Provide(injector, providers.ProvideCoverStorage)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideResolver)

	// Business services
	do.Provide(injector, providers.ProvideCoverService)
	do.Provide(injector, providers.ProvideAlbumService)
	do.Provide(injector, providers.ProvideLikeService)
	do.Provide(injector, providers.ProvideSongService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideAuthenticationService)
	do.Provide(injector, providers.ProvidePlaylistService)
	do.Provide(injector, providers.ProvideCollaborationService)
	do.Provide(injector, providers.ProvideExportService)
	do.Provide(injector, providers.ProvideServices)

	// Workers
	do.Provide(injector, providers.ProvideExportConsumer)
	do.Provide(injector, providers.ProvideAuthCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the background workers and the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*metrics.Collector](injector)

	// Storage
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CacheHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*queue.Queue](injector)
	if _, err := do.Invoke[images.Storage](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*access.Resolver](injector)
	_ = do.MustInvoke[*api.Services](injector)

	// Workers
	if _, err := do.Invoke[*providers.ExportConsumerHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*providers.AuthCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
