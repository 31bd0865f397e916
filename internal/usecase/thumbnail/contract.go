package thumbnail

import (
	"context"

	"github.com/lumakr/luma/internal/domain"
)

// BlobStore reads stored assets and writes derived thumbnails.
type BlobStore interface {
	ListHandles(ctx context.Context) ([]domain.Handle, error)
	Get(ctx context.Context, handle domain.Handle) (data []byte, formatHint string, err error)
	PutThumbnail(ctx context.Context, handle domain.Handle, data []byte) error
}

// FailureLog durably records assets that could not be processed.
type FailureLog interface {
	Record(ctx context.Context, handle domain.Handle, reason string) error
	Clear(ctx context.Context, handle domain.Handle) error
}
