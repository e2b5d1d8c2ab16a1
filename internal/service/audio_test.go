package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlobStore struct {
	uploads   []string
	downloads []string
}

func (s *fakeBlobStore) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	s.uploads = append(s.uploads, key)
	return "https://bucket.example/upload/" + key, nil
}

func (s *fakeBlobStore) PresignDownload(ctx context.Context, key string) (string, error) {
	s.downloads = append(s.downloads, key)
	return "https://bucket.example/download/" + key, nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, key string) error {
	return nil
}

func TestAudioUploadURL(t *testing.T) {
	store := &fakeBlobStore{}
	svc := NewAudioService(store)

	ref, url, err := svc.UploadURL(context.Background(), userOne, "audio/webm")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "audio/"+userOne+"/"))
	assert.True(t, strings.HasSuffix(ref, ".webm"))
	assert.Contains(t, url, ref)
}

func TestAudioUploadURLUnsupportedFormat(t *testing.T) {
	svc := NewAudioService(&fakeBlobStore{})

	_, _, err := svc.UploadURL(context.Background(), userOne, "video/mp4")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAudioDownloadURLValidatesRef(t *testing.T) {
	svc := NewAudioService(&fakeBlobStore{})

	_, err := svc.DownloadURL(context.Background(), "secrets/env")
	assert.ErrorIs(t, err, ErrInvalidAudioRef)

	_, err = svc.DownloadURL(context.Background(), "audio/../secrets")
	assert.ErrorIs(t, err, ErrInvalidAudioRef)

	url, err := svc.DownloadURL(context.Background(), "audio/user-1/clip.webm")
	require.NoError(t, err)
	assert.Contains(t, url, "audio/user-1/clip.webm")
}

func TestAudioUnavailableWithoutStore(t *testing.T) {
	svc := NewAudioService(nil)

	_, _, err := svc.UploadURL(context.Background(), userOne, "audio/webm")
	assert.ErrorIs(t, err, ErrAudioUnavailable)

	_, err = svc.DownloadURL(context.Background(), "audio/user-1/clip.webm")
	assert.ErrorIs(t, err, ErrAudioUnavailable)
}
