// Package objectstore keeps uploaded images in Google Cloud Storage.
package objectstore

import (
	"context"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/bonsai-buddy/pkg/helpers"
)

const opTimeout = 15 * time.Second

// GCS stores objects in one bucket and serves them from the public host.
type GCS struct {
	Client *storage.Client
	Bucket string
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket}
}

func (g *GCS) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return helpers.UploadObject(ctx, g.Client, g.Bucket, key, contentType, r)
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return helpers.DeleteObject(ctx, g.Client, g.Bucket, key)
}

func (g *GCS) KeyFromURL(url string) (string, bool) {
	return helpers.ObjectPathFromURL(g.Bucket, url)
}
