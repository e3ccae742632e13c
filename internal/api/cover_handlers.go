package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"

	domainerrors "github.com/openmusic/openmusic-server/internal/errors"
	"github.com/openmusic/openmusic-server/internal/http/response"
	"github.com/openmusic/openmusic-server/internal/media/images"
)

// CoverData is the data member of the cover upload response.
type CoverData struct {
	CoverURL string `json:"coverUrl"`
	BlurHash string `json:"blurHash,omitempty"`
}

// handleUploadCover accepts a multipart upload with the image in the "cover" field.
func (s *Server) handleUploadCover(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "id")

	data, err := readCoverPart(w, r)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	cover, err := s.services.Cover.Upload(r.Context(), albumID, data)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	response.Created(w, "Cover has been uploaded", CoverData{
		CoverURL: cover.URL,
		BlurHash: cover.BlurHash,
	}, s.logger)
}

// readCoverPart returns the bytes of the cover field, enforcing the size limit.
func readCoverPart(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		return nil, domainerrors.Validation("Cover must be sent as multipart/form-data")
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxCoverRequestBytes)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, domainerrors.Validation("Cover must be sent as multipart/form-data").WithCause(err)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, domainerrors.Validation("cover is required")
		}
		if err != nil {
			return nil, uploadError(err)
		}
		if part.FormName() != coverFormField {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, images.MaxCoverBytes+1))
		_ = part.Close()
		if err != nil {
			return nil, uploadError(err)
		}
		if len(data) > images.MaxCoverBytes {
			return nil, domainerrors.PayloadTooLarge("Cover is larger than 512000 bytes")
		}
		return data, nil
	}
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domainerrors.PayloadTooLarge("Cover is larger than 512000 bytes")
	}
	return domainerrors.Validation("Malformed multipart body").WithCause(err)
}

// handleServeCover streams a cover stored by the local backend.
func (s *Server) handleServeCover(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	if file == "" || file != path.Base(file) || strings.HasPrefix(file, ".") {
		response.NotFound(w, "Cover is not found", s.logger)
		return
	}

	rc, err := s.services.Cover.Open(r.Context(), file)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	defer rc.Close()

	// Sniff from the head of the file so the stored bytes decide the type.
	head := make([]byte, 3072)
	n, err := io.ReadFull(rc, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		response.HandleError(w, err, s.logger)
		return
	}
	head = head[:n]

	w.Header().Set("Content-Type", mimetype.Detect(head).String())
	w.Header().Set("Cache-Control", CacheOneWeek)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(head); err != nil {
		return
	}
	if _, err := io.Copy(w, rc); err != nil {
		s.logger.Debug("Cover stream interrupted", "file", file, "error", err)
	}
}
