package upload

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"portfolio-service/config"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSBucket writes uploads to Google Cloud Storage, or to a local emulator
// when STORAGE_EMULATOR_HOST is set.
type GCSBucket struct {
	client        *storage.Client
	publicBaseURL string
	emulatorHost  string
}

func NewGCSBucket(ctx context.Context, cfg config.StorageConfig) (*GCSBucket, error) {
	emulatorHost := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")

	var opts []option.ClientOption
	if emulatorHost != "" {
		_ = os.Setenv("STORAGE_EMULATOR_HOST", emulatorHost)
		opts = append(opts, option.WithoutAuthentication())
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &GCSBucket{
		client:        client,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		emulatorHost:  emulatorHost,
	}, nil
}

func (g *GCSBucket) Put(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := g.client.Bucket(bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s/%s: %w", bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close object %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (g *GCSBucket) PublicURL(bucket, key string) string {
	key = strings.TrimLeft(key, "/")
	if g.emulatorHost != "" && (g.publicBaseURL == "" || g.publicBaseURL == defaultPublicBaseURL) {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media",
			g.emulatorHost, url.PathEscape(bucket), url.PathEscape(key))
	}
	base := g.publicBaseURL
	if base == "" {
		base = defaultPublicBaseURL
	}
	return fmt.Sprintf("%s/%s/%s", base, bucket, key)
}

func (g *GCSBucket) Close() error {
	return g.client.Close()
}

const defaultPublicBaseURL = "https://storage.googleapis.com"
