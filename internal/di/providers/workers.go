package providers

import (
	"context"
	"errors"
	"time"

	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/logger"
	"github.com/openmusic/openmusic-server/internal/metrics"
	"github.com/openmusic/openmusic-server/internal/queue"
	"github.com/openmusic/openmusic-server/internal/service"
)

// authCleanupInterval is how often expired refresh tokens are purged.
const authCleanupInterval = time.Hour

// ExportConsumerHandle runs the export queue consumer until shutdown.
type ExportConsumerHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Shutdown implements do.Shutdownable. In-flight messages finish first.
func (h *ExportConsumerHandle) Shutdown() error {
	h.cancel()
	select {
	case <-h.done:
		return nil
	case <-time.After(shutdownTimeout):
		return errors.New("export consumer did not stop in time")
	}
}

// ProvideExportConsumer starts the background export worker pool.
func ProvideExportConsumer(i do.Injector) (*ExportConsumerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	q := do.MustInvoke[*queue.Queue](i)
	collector := do.MustInvoke[*metrics.Collector](i)
	log := do.MustInvoke[*logger.Logger](i)

	worker, err := service.NewExportWorker(storeHandle.Store, cfg.Queue.ExportDir, log.Logger)
	if err != nil {
		return nil, err
	}

	consumer := queue.NewConsumer(q, queue.ConsumerConfig{
		Queue:        cfg.Queue.ExportQueue,
		Workers:      cfg.Queue.Workers,
		PollInterval: cfg.Queue.PollInterval,
	}, worker.Handle, log.WithComponent("export_consumer").Logger, collector)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Export consumer stopped")
		}
	}()

	log.Info("Export consumer started",
		"queue", cfg.Queue.ExportQueue,
		"workers", cfg.Queue.Workers,
		"export_dir", cfg.Queue.ExportDir,
	)

	return &ExportConsumerHandle{cancel: cancel, done: done}, nil
}

// AuthCleanupJob periodically deletes expired refresh tokens.
type AuthCleanupJob struct {
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (j *AuthCleanupJob) Shutdown() error {
	j.cancel()
	return nil
}

// ProvideAuthCleanupJob provides the periodic refresh token cleanup job.
func ProvideAuthCleanupJob(i do.Injector) (*AuthCleanupJob, error) {
	authService := do.MustInvoke[*service.AuthenticationService](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("auth_cleanup")

	ctx, cancel := context.WithCancel(context.Background())

	cleanup := func(phase string) {
		if count, err := authService.DeleteExpired(ctx); err != nil {
			log.WithError(err).Warn("Refresh token cleanup failed", "phase", phase)
		} else if count > 0 {
			log.Info("Refresh token cleanup completed", "phase", phase, "deleted", count)
		}
	}

	go func() {
		ticker := time.NewTicker(authCleanupInterval)
		defer ticker.Stop()

		cleanup("startup")
		for {
			select {
			case <-ticker.C:
				cleanup("periodic")
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info("Refresh token cleanup job started")

	return &AuthCleanupJob{cancel: cancel}, nil
}
