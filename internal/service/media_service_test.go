package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	cfg "github.com/quizsquirrel/social-api/configs"
)

func newTestMediaService() MediaService {
	c := cfg.Config{}
	c.R2.BucketName = "covers"
	c.R2.PublicURL = "https://cdn.example.com"
	return NewMediaService(c)
}

func serveCoverBytes(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
}

func TestMirrorCoverImage_RejectsGif(t *testing.T) {
	// Valid image, but not one of the two types we mirror.
	gif := []byte("GIF89a\x01\x00\x01\x00\x80\x00\x00")
	srv := serveCoverBytes(t, gif)
	defer srv.Close()

	svc := newTestMediaService()
	_, err := svc.MirrorCoverImage(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "png or jpeg")
	assert.Contains(t, err.Error(), "image/gif")
}

func TestMirrorCoverImage_RejectsNonImage(t *testing.T) {
	srv := serveCoverBytes(t, []byte("<html><body>not found</body></html>"))
	defer srv.Close()

	svc := newTestMediaService()
	_, err := svc.MirrorCoverImage(context.Background(), srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "png or jpeg")
}

func TestMirrorCoverImage_UnconfiguredStorage(t *testing.T) {
	svc := NewMediaService(cfg.Config{})
	_, err := svc.MirrorCoverImage(context.Background(), "https://example.com/cover.png")
	assert.EqualError(t, err, "media storage is not configured")
}
