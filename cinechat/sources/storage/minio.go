package storage

import (
	"cinechat/cinechat/config"
	"context"
	"crypto/md5" // For simple URL hashing
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PosterCache mirrors enriched poster images into a bucket so the
// rendering layer can serve them without re-hitting the backend CDN.
type PosterCache struct {
	client *minio.Client
	bucket string
}

func NewPosterCache(cfg config.Config) (*PosterCache, error) {
	// Use insecure for local (no HTTPS)
	bucket := cfg.MinIOBucket
	client, err := minio.New(
		cfg.MinIOEndpoint,
		&minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIOAccessKey, cfg.MinIOSecretKey, ""),
			Secure: false,
		},
	)
	if err != nil {
		return nil, err
	}
	// Create bucket if not exists
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}
	return &PosterCache{client: client, bucket: bucket}, nil
}

// Key derives the object key for an image URL. Hashing keeps special
// characters out of the key.
func Key(imageURL string) string {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(imageURL)))
	return filepath.Join("posters", fmt.Sprintf("%s.img", hash))
}

// Mirror downloads the poster at imageURL and uploads it under its
// hashed key. Re-mirroring the same URL overwrites in place.
func (p *PosterCache) Mirror(ctx context.Context, title, imageURL string) error {
	resp, err := http.Get(imageURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bad status: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = p.client.PutObject(ctx, p.bucket, Key(imageURL), resp.Body, resp.ContentLength,
		minio.PutObjectOptions{
			ContentType:  contentType,
			UserMetadata: map[string]string{"title": title, "source-url": imageURL},
		})
	return err
}

// Fetch returns the cached poster bytes for an image URL.
func (p *PosterCache) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	obj, err := p.client.GetObject(ctx, p.bucket, Key(imageURL), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}
