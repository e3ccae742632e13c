package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/logger"
	"github.com/openmusic/openmusic-server/internal/media/images"
)

// coverRoute is where the local backend's covers are served.
const coverRoute = "/api/v1/albums/covers"

// ProvideCoverStorage provides the cover storage for the configured backend.
func ProvideCoverStorage(i do.Injector) (images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		storage, err := images.NewS3Storage(context.Background(), cfg.Storage.Bucket, cfg.Storage.Region)
		if err != nil {
			return nil, fmt.Errorf("cover storage: %w", err)
		}
		log.Info("Cover storage initialized", "backend", "s3", "bucket", cfg.Storage.Bucket, "region", cfg.Storage.Region)
		return storage, nil
	case config.StorageBackendLocal:
		storage, err := images.NewLocalStorage(cfg.Storage.UploadDir, cfg.Server.PublicURL+coverRoute)
		if err != nil {
			return nil, fmt.Errorf("cover storage: %w", err)
		}
		log.Info("Cover storage initialized", "backend", "local", "dir", cfg.Storage.UploadDir)
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// ProvideImageProcessor provides the cover processor.
func ProvideImageProcessor(i do.Injector) (*images.Processor, error) {
	storage := do.MustInvoke[images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)
	return images.NewProcessor(storage, log.Logger), nil
}
