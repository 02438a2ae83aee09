package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	gonanoid "github.com/matoous/go-nanoid/v2"

	cfg "github.com/quizsquirrel/social-api/configs"
)

// Covers above this size are skipped rather than resized; the platforms
// generate their own thumbnails anyway.
const maxCoverSize = 10 << 20

type MediaService interface {
	MirrorCoverImage(ctx context.Context, imageURL string) (string, error)
	UploadToR2(ctx context.Context, key string, file []byte, contentType string) error
}

type mediaService struct {
	config cfg.Config
}

func NewMediaService(cfg cfg.Config) MediaService {
	return &mediaService{config: cfg}
}

func (r *mediaService) r2Client() (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.config.R2.AccessKey, r.config.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.config.R2.AccountID))
	}), nil
}

// MirrorCoverImage copies a quiz cover into R2 and returns the public URL.
// Posts then reference storage we control instead of upload URLs that can
// move or expire.
func (r *mediaService) MirrorCoverImage(ctx context.Context, imageURL string) (string, error) {
	if r.config.R2.BucketName == "" || r.config.R2.PublicURL == "" {
		return "", errors.New("media storage is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := oauthHTTPClient.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("cover image fetch returned status %d", resp.StatusCode)
	}

	file, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize+1))
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	if len(file) > maxCoverSize {
		return "", errors.New("cover image is too large to mirror")
	}

	kind, err := filetype.Match(file)
	if err != nil {
		return "", err
	}
	switch kind.MIME.Value {
	case "image/png", "image/jpeg":
	default:
		return "", fmt.Errorf("cover must be png or jpeg, got %q", kind.MIME.Value)
	}

	id, err := gonanoid.New(21)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("covers/%s.%s", id, kind.Extension)

	if err := r.UploadToR2(ctx, key, file, kind.MIME.Value); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s/%s", r.config.R2.PublicURL, key), nil
}

func (r *mediaService) UploadToR2(ctx context.Context, key string, file []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(r.config.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file),
		ContentType: aws.String(contentType),
	}

	r2Client, err := r.r2Client()
	if err != nil {
		return err
	}

	_, err = r2Client.PutObject(ctx, input)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	return nil
}
