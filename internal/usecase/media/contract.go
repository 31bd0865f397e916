package media

import (
	"context"

	"github.com/lumakr/luma/internal/domain"
)

// Fetcher retrieves remote asset bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// BlobStore defines the storage contract for media assets and their
// derived thumbnails.
type BlobStore interface {
	Put(ctx context.Context, data []byte, url string) (domain.Handle, error)
	FindByURL(ctx context.Context, url string) (domain.Handle, error)
	Get(ctx context.Context, handle domain.Handle) (data []byte, formatHint string, err error)
	PutThumbnail(ctx context.Context, handle domain.Handle, data []byte) error
	GetThumbnail(ctx context.Context, handle domain.Handle) ([]byte, error)
}
