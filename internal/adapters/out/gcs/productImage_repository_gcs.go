// internal/adapters/out/gcs/productImage_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

// ProductImageRepositoryGCS stores product listing images.
//
// Layout (single bucket):
// - bucket: <configured>
// - objectPath: products/{farmerId}/{unixMillis}_{fileName}
//
// Public access:
//   - The bucket is expected to grant "allUsers: Storage Object Viewer"
//     (uniform access), so uploaded objects are publicly readable and
//     PublicURL works without per-object ACLs.
type ProductImageRepositoryGCS struct {
	Client *storage.Client
	Bucket string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string
}

func NewProductImageRepositoryGCS(client *storage.Client, bucket string) *ProductImageRepositoryGCS {
	return &ProductImageRepositoryGCS{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		PublicBaseURL: "https://storage.googleapis.com",
	}
}

// UploadProductImage writes the image bytes and returns the public URL.
// Implements usecase.ImageStore.
func (r *ProductImageRepositoryGCS) UploadProductImage(ctx context.Context, farmerID, filename, contentType string, data []byte) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("productImage_repository_gcs: storage client is nil")
	}
	b := strings.TrimSpace(r.Bucket)
	if b == "" {
		return "", errors.New("productImage_repository_gcs: bucket is empty")
	}
	fid := strings.TrimSpace(farmerID)
	if fid == "" {
		return "", errors.New("productImage_repository_gcs: farmerID is empty")
	}
	if len(data) == 0 {
		return "", errors.New("productImage_repository_gcs: image data is empty")
	}

	name := sanitizeFilename(filename)
	objPath := fmt.Sprintf("products/%s/%d_%s", fid, time.Now().UTC().UnixMilli(), name)

	w := r.Client.Bucket(b).Object(objPath).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.ChunkSize = 0
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	return r.publicURL(b, objPath), nil
}

// DeleteProductImage removes one image object by its public URL.
// Missing objects are treated as already deleted. Implements
// usecase.ImageStore.
func (r *ProductImageRepositoryGCS) DeleteProductImage(ctx context.Context, imageURL string) error {
	if r == nil || r.Client == nil {
		return errors.New("productImage_repository_gcs: storage client is nil")
	}
	b, objPath, ok := r.splitURL(imageURL)
	if !ok {
		return errors.New("productImage_repository_gcs: unrecognized image url")
	}
	err := r.Client.Bucket(b).Object(objPath).Delete(ctx)
	if err != nil && err != storage.ErrObjectNotExist {
		return err
	}
	return nil
}

func (r *ProductImageRepositoryGCS) publicURL(bucket, objectPath string) string {
	base := strings.TrimSpace(r.PublicBaseURL)
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	// Encode path but keep "/" separators.
	parts := strings.Split(objectPath, "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), bucket, strings.Join(parts, "/"))
}

func (r *ProductImageRepositoryGCS) splitURL(imageURL string) (bucket, objectPath string, ok bool) {
	base := strings.TrimSpace(r.PublicBaseURL)
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	prefix := strings.TrimRight(base, "/") + "/"
	rest, found := strings.CutPrefix(strings.TrimSpace(imageURL), prefix)
	if !found {
		return "", "", false
	}
	b, p, found := strings.Cut(rest, "/")
	if !found || b == "" || p == "" {
		return "", "", false
	}
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return "", "", false
	}
	return b, decoded, true
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
