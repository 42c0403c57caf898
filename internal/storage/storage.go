package storage

import (
	"context"
	"io"
)

// ImageStore keeps movie poster images in remote object storage. Upload
// reuses existingID when given so an updated poster overwrites the previous
// object instead of leaking it.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, contentType string, existingID string) (string, error)
	Delete(ctx context.Context, id string) error
}
