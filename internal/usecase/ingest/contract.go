package ingest

import (
	"context"

	"github.com/lumakr/luma/internal/domain"
)

// Repository defines the storage contract for records and detail media
// metadata. Insert methods honor a session context so they can run
// inside a transaction.
type Repository interface {
	FindBySerial(ctx context.Context, serial int) (domain.Record, error)
	InsertRecord(ctx context.Context, rec domain.Record) (string, error)
	InsertMediaItem(ctx context.Context, item domain.MediaItem) (string, error)
	InsertMediaGroup(ctx context.Context, group domain.MediaGroup) (string, error)
}

// MediaStore acquires remote assets.
type MediaStore interface {
	Store(ctx context.Context, url string, overwrite bool) (domain.Handle, error)
}

// Transactor runs fn inside a storage transaction; the context passed
// to fn carries the session.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
