package providers

import (
	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/auth"
	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/logger"
	"github.com/openmusic/openmusic-server/internal/media/images"
	"github.com/openmusic/openmusic-server/internal/metrics"
	"github.com/openmusic/openmusic-server/internal/queue"
	"github.com/openmusic/openmusic-server/internal/service"
)

// ProvideResolver provides the playlist ownership and access resolver.
func ProvideResolver(i do.Injector) (*access.Resolver, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return access.NewResolver(storeHandle.Store, log.Logger), nil
}

// ProvideCoverService provides the album cover service.
func ProvideCoverService(i do.Injector) (*service.CoverService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	processor := do.MustInvoke[*images.Processor](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCoverService(storeHandle.Store, processor, log.Logger), nil
}

// ProvideAlbumService provides the album service.
func ProvideAlbumService(i do.Injector) (*service.AlbumService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	covers := do.MustInvoke[*service.CoverService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAlbumService(storeHandle.Store, cacheHandle.Cache, covers, log.Logger), nil
}

// ProvideLikeService provides the album like service.
func ProvideLikeService(i do.Injector) (*service.LikeService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	collector := do.MustInvoke[*metrics.Collector](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLikeService(storeHandle.Store, cacheHandle.Cache, cfg.Cache.TTL, collector, log.Logger), nil
}

// ProvideSongService provides the song service.
func ProvideSongService(i do.Injector) (*service.SongService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSongService(storeHandle.Store, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideAuthenticationService provides login, refresh and logout.
func ProvideAuthenticationService(i do.Injector) (*service.AuthenticationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthenticationService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvidePlaylistService provides the playlist service.
func ProvidePlaylistService(i do.Injector) (*service.PlaylistService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*access.Resolver](i)
	collector := do.MustInvoke[*metrics.Collector](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPlaylistService(storeHandle.Store, resolver, collector, log.Logger), nil
}

// ProvideCollaborationService provides the collaboration service.
func ProvideCollaborationService(i do.Injector) (*service.CollaborationService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	resolver := do.MustInvoke[*access.Resolver](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCollaborationService(storeHandle.Store, resolver, log.Logger), nil
}

// ProvideExportService provides the export request service.
func ProvideExportService(i do.Injector) (*service.ExportService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	resolver := do.MustInvoke[*access.Resolver](i)
	q := do.MustInvoke[*queue.Queue](i)
	collector := do.MustInvoke[*metrics.Collector](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewExportService(resolver, q, cfg.Queue.ExportQueue, collector, log.Logger), nil
}
