package api

import "github.com/openmusic/openmusic-server/internal/media/images"

// API limits and constants.
const (
	// APIPrefix is the path prefix of every versioned operation.
	APIPrefix = "/api/v1"

	// coverFormField is the multipart field carrying a cover upload.
	coverFormField = "cover"

	// maxCoverRequestBytes leaves room for multipart framing around the file.
	maxCoverRequestBytes = images.MaxCoverBytes + 16<<10
)

// Cache-Control header values.
const (
	CacheOneWeek = "public, max-age=604800"
	CacheNoStore = "no-cache"
)
