package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/usetandem/tandem/internal/storage"
)

var (
	ErrAudioUnavailable  = errors.New("audio storage is not configured")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidAudioRef   = errors.New("invalid audio reference")
)

var audioContentTypes = map[string]string{
	"audio/webm": ".webm",
	"audio/mp4":  ".m4a",
	"audio/mpeg": ".mp3",
	"audio/ogg":  ".ogg",
}

// AudioService hands out presigned upload and download URLs for voice
// responses. The audioRef stored on a response is the object key; clients
// exchange it for a short-lived URL when they need the bytes.
type AudioService struct {
	store storage.BlobStore
}

func NewAudioService(store storage.BlobStore) *AudioService {
	return &AudioService{store: store}
}

// UploadURL mints an object key under the user's prefix and returns it
// with a presigned PUT URL.
func (s *AudioService) UploadURL(ctx context.Context, userID, contentType string) (ref, url string, err error) {
	if s.store == nil {
		return "", "", ErrAudioUnavailable
	}

	ext, ok := audioContentTypes[contentType]
	if !ok {
		return "", "", ErrUnsupportedFormat
	}

	ref = fmt.Sprintf("audio/%s/%s%s", userID, uuid.New().String(), ext)
	url, err = s.store.PresignUpload(ctx, ref, contentType)
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}

	return ref, url, nil
}

// DownloadURL resolves an audioRef to a presigned GET URL. Refs are keys
// under audio/, anything else is rejected before touching storage.
func (s *AudioService) DownloadURL(ctx context.Context, ref string) (string, error) {
	if s.store == nil {
		return "", ErrAudioUnavailable
	}

	if !strings.HasPrefix(ref, "audio/") || strings.Contains(ref, "..") {
		return "", ErrInvalidAudioRef
	}

	url, err := s.store.PresignDownload(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("failed to presign download: %w", err)
	}

	return url, nil
}
