package index

import (
	"context"

	"github.com/lumakr/luma/internal/domain"
)

// Repository reads records and their detail image metadata.
type Repository interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	GetMediaItem(ctx context.Context, id string) (domain.MediaItem, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// Index writes to the per-language search indices.
type Index interface {
	Setup(ctx context.Context) error
	Upsert(ctx context.Context, doc domain.SearchDocument) error
}
