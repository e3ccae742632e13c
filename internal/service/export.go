package service

import (
	"context"
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/openmusic/openmusic-server/internal/access"
	"github.com/openmusic/openmusic-server/internal/domain"
	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/metrics"
	"github.com/openmusic/openmusic-server/internal/queue"
	"github.com/openmusic/openmusic-server/internal/store"
)

// ExportPayload is the body of an export request.
type ExportPayload struct {
	TargetEmail string `json:"targetEmail" validate:"required,email"`
}

// ExportService accepts playlist export requests and queues them.
type ExportService struct {
	access    *access.Resolver
	queue     *queue.Queue
	queueName string
	metrics   *metrics.Collector
	logger    *slog.Logger
}

// NewExportService creates a new export service publishing to queueName.
func NewExportService(resolver *access.Resolver, q *queue.Queue, queueName string, m *metrics.Collector, logger *slog.Logger) *ExportService {
	return &ExportService{
		access:    resolver,
		queue:     q,
		queueName: queueName,
		metrics:   m,
		logger:    logger,
	}
}

// Request queues an export of playlistID for delivery to p.TargetEmail.
// The caller must own or collaborate on the playlist.
func (s *ExportService) Request(ctx context.Context, playlistID, userID string, p ExportPayload) error {
	if err := validate.Validate(p); err != nil {
		return err
	}
	if err := s.access.VerifyAccess(ctx, playlistID, userID); err != nil {
		return err
	}

	body, err := json.Marshal(domain.ExportRequest{PlaylistID: playlistID, TargetEmail: p.TargetEmail})
	if err != nil {
		return fmt.Errorf("encode export request: %w", err)
	}

	msgID, err := s.queue.Publish(ctx, s.queueName, body)
	if err != nil {
		return fmt.Errorf("publish export request: %w", err)
	}
	s.metrics.ExportMessage("enqueued")

	s.logger.Info("playlist export queued", "playlist_id", playlistID, "message_id", msgID)
	return nil
}

// ExportWorker renders queued export requests to JSON files.
type ExportWorker struct {
	store  store.Store
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewExportWorker creates a worker writing exports under dir.
func NewExportWorker(store store.Store, dir string, logger *slog.Logger) (*ExportWorker, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &ExportWorker{store: store, dir: dir, logger: logger, now: time.Now}, nil
}

// Handle processes one export message. It is a queue.Handler.
func (w *ExportWorker) Handle(ctx context.Context, msg queue.Message) error {
	var req domain.ExportRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		return fmt.Errorf("decode export request: %w", err)
	}
	if req.PlaylistID == "" {
		return domainerrors.Validation("export request has no playlist")
	}

	summary, err := w.store.GetPlaylistSummary(ctx, req.PlaylistID)
	if err != nil {
		return fromStore(err, msgPlaylistNotFound, "get playlist")
	}
	songs, err := w.store.ListPlaylistSongs(ctx, req.PlaylistID)
	if err != nil {
		return fmt.Errorf("list playlist songs: %w", err)
	}

	now := w.now()
	doc := domain.PlaylistExport{
		Playlist:    domain.PlaylistWithSongs{PlaylistSummary: *summary, Songs: songs},
		TargetEmail: req.TargetEmail,
		ExportedAt:  now,
	}

	path, err := w.write(req.PlaylistID, now, doc)
	if err != nil {
		return err
	}

	w.logger.Info("playlist exported",
		"playlist_id", req.PlaylistID,
		"target_email", req.TargetEmail,
		"songs", len(songs),
		"path", path,
	)
	return nil
}

// write stores doc atomically so readers never see a partial file.
func (w *ExportWorker) write(playlistID string, at time.Time, doc domain.PlaylistExport) (string, error) {
	data, err := json.Marshal(doc, jsontext.WithIndent("  "))
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}

	tmp, err := os.CreateTemp(w.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}

	path := filepath.Join(w.dir, fmt.Sprintf("%s-%d.json", playlistID, at.UnixMilli()))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}
