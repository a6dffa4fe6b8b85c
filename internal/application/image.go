package application

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/oksasatya/bonsai-buddy/internal/domain/apperror"
)

// ImageUpload is a raw file received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

func (u *ImageUpload) Present() bool { return u != nil && len(u.Data) > 0 }

// NormalizedImage is what actually gets stored.
type NormalizedImage struct {
	Data        []byte
	ContentType string
	Ext         string
}

var acceptedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ImageProcessor checks and re-encodes uploaded images.
type ImageProcessor struct {
	MaxBytes int64
	MaxWidth int
	Quality  int
}

func DefaultImageProcessor() ImageProcessor {
	return ImageProcessor{MaxBytes: 5 << 20, MaxWidth: 1200, Quality: 85}
}

// Validate checks presence, size and the sniffed content type.
// The client-declared type is not trusted.
func (p ImageProcessor) Validate(u *ImageUpload) error {
	if !u.Present() {
		return apperror.Validation("image is required", map[string]string{"image": "is required"})
	}
	if p.MaxBytes > 0 && int64(len(u.Data)) > p.MaxBytes {
		return apperror.Validation("image too large", map[string]string{
			"image": fmt.Sprintf("must be at most %d MB", p.MaxBytes>>20),
		})
	}
	if !acceptedImageTypes[http.DetectContentType(u.Data)] {
		return apperror.Validation("unsupported image type", map[string]string{"image": "must be a JPEG, PNG or WebP image"})
	}
	return nil
}

// Normalize scales the image down to MaxWidth and re-encodes it. PNG input
// stays PNG; everything else becomes JPEG.
func (p ImageProcessor) Normalize(u *ImageUpload) (NormalizedImage, error) {
	if err := p.Validate(u); err != nil {
		return NormalizedImage{}, err
	}
	img, err := imaging.Decode(bytes.NewReader(u.Data), imaging.AutoOrientation(true))
	if err != nil {
		return NormalizedImage{}, apperror.Validation("image could not be decoded", map[string]string{"image": err.Error()})
	}
	if p.MaxWidth > 0 && img.Bounds().Dx() > p.MaxWidth {
		img = imaging.Resize(img, p.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if http.DetectContentType(u.Data) == "image/png" {
		if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
			return NormalizedImage{}, err
		}
		return NormalizedImage{Data: buf.Bytes(), ContentType: "image/png", Ext: "png"}, nil
	}
	quality := p.Quality
	if quality <= 0 {
		quality = 85
	}
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return NormalizedImage{}, err
	}
	return NormalizedImage{Data: buf.Bytes(), ContentType: "image/jpeg", Ext: "jpg"}, nil
}

// objectKey builds <prefix>/<user>/<unix-ms>-<rand>.<ext>.
func objectKey(prefix, userID, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d-%s.%s", prefix, userID, now.UnixMilli(), uuid.NewString()[:8], ext)
}

// storeImage normalizes u and uploads it under prefix, returning the public URL.
func (c *core) storeImage(ctx context.Context, prefix, userID string, u *ImageUpload) (string, error) {
	img, err := c.Images.Normalize(u)
	if err != nil {
		return "", err
	}
	if c.Objects == nil {
		return "", apperror.Upstream(nil, "object store unavailable")
	}
	key := objectKey(prefix, userID, img.Ext, time.Now())
	url, err := c.Objects.Upload(ctx, key, img.ContentType, bytes.NewReader(img.Data))
	if err != nil {
		return "", apperror.Upstream(err, "image upload failed")
	}
	return url, nil
}
