package project

import (
	"context"

	"github.com/lumakr/luma/internal/domain"
)

// Repository defines the read contract over stored records and detail
// media metadata.
type Repository interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	GetBySlug(ctx context.Context, slug string) (domain.Record, error)
	GetMediaItem(ctx context.Context, id string) (domain.MediaItem, error)
	GetMediaGroup(ctx context.Context, id string) (domain.MediaGroup, error)
	ListByPalace(ctx context.Context, palaceCode int) ([]domain.Record, error)
	ListByPalaceOrdered(ctx context.Context, palaceCode int) ([]domain.Record, error)
	Sample(ctx context.Context, count int) ([]domain.Record, error)
}
