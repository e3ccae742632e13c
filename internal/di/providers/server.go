package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/api"
	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/logger"
	"github.com/openmusic/openmusic-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideServices bundles the services the HTTP layer depends on.
func ProvideServices(i do.Injector) (*api.Services, error) {
	return &api.Services{
		Album:         do.MustInvoke[*service.AlbumService](i),
		Cover:         do.MustInvoke[*service.CoverService](i),
		Like:          do.MustInvoke[*service.LikeService](i),
		Song:          do.MustInvoke[*service.SongService](i),
		User:          do.MustInvoke[*service.UserService](i),
		Auth:          do.MustInvoke[*service.AuthenticationService](i),
		Playlist:      do.MustInvoke[*service.PlaylistService](i),
		Collaboration: do.MustInvoke[*service.CollaborationService](i),
		Export:        do.MustInvoke[*service.ExportService](i),
	}, nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	kvHandle := do.MustInvoke[*KVHandle](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)
	services := do.MustInvoke[*api.Services](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(storeHandle.Store, services, api.Options{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		AuthRatePerMinute:  cfg.RateLimit.AuthPerMinute,
		AuthBurst:          cfg.RateLimit.AuthBurst,
		Metrics:            metricsHandle.Collector,
		MetricsHandler:     metricsHandle.Handler,
		Checks: map[string]api.HealthCheck{
			"kv": kvCheck(kvHandle.DB),
		},
		AccessLog: cfg.App.Environment == "development",
	}, log.Logger)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "public_url", cfg.Server.PublicURL)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}

// kvCheck reports whether the badger store still accepts reads.
func kvCheck(db *badger.DB) api.HealthCheck {
	return func(context.Context) error {
		if db.IsClosed() {
			return errors.New("badger is closed")
		}
		return db.View(func(*badger.Txn) error { return nil })
	}
}
