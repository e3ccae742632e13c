package images

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
)

// MaxCoverBytes is the largest accepted cover upload.
const MaxCoverBytes = 512000

// Cover describes a stored cover image.
type Cover struct {
	Key         string
	URL         string
	ContentType string
	BlurHash    string
	Size        int
}

// Processor validates uploaded covers, stores them and computes their placeholders.
type Processor struct {
	storage  Storage
	maxBytes int
	logger   *slog.Logger
	now      func() time.Time
}

// NewProcessor creates a processor writing to storage.
func NewProcessor(storage Storage, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		storage:  storage,
		maxBytes: MaxCoverBytes,
		logger:   logger,
		now:      time.Now,
	}
}

// Storage returns the backing storage.
func (p *Processor) Storage() Storage {
	return p.storage
}

// Process checks that data is an image within the size limit and stores it
// under a key derived from ownerID. The content type is sniffed from the bytes;
// whatever the client declared is ignored.
func (p *Processor) Process(ctx context.Context, ownerID string, data []byte) (*Cover, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("cover is required")
	}
	if len(data) > p.maxBytes {
		return nil, domainerrors.PayloadTooLarge(fmt.Sprintf("cover must not exceed %d bytes", p.maxBytes))
	}

	mt := mimetype.Detect(data)
	if !isImage(mt) {
		return nil, domainerrors.Validationf("cover must be an image, got %s", mt.String())
	}

	key := fmt.Sprintf("%s-%d%s", ownerID, p.now().UnixMilli(), mt.Extension())
	if err := p.storage.Put(ctx, key, data, mt.String()); err != nil {
		return nil, fmt.Errorf("store cover: %w", err)
	}

	cover := &Cover{
		Key:         key,
		URL:         p.storage.URL(key),
		ContentType: mt.String(),
		Size:        len(data),
	}

	// Not every accepted format has a Go decoder (AVIF, SVG), so a missing hash is fine.
	if hash, err := ComputeBlurHash(data); err != nil {
		p.logger.Debug("blurhash skipped", "key", key, "content_type", cover.ContentType, "error", err)
	} else {
		cover.BlurHash = hash
	}

	return cover, nil
}

func isImage(mt *mimetype.MIME) bool {
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
