// Package media orchestrates acquisition and retrieval of remote
// assets: fetch, URL deduplication, and the not-available contract for
// permanently missing sources.
package media

import (
	"context"
	"errors"
	"fmt"

	"github.com/lumakr/luma/internal/domain"
)

// Service handles media acquisition and retrieval.
type Service struct {
	fetcher Fetcher
	blobs   BlobStore
}

// New creates a media service.
func New(fetcher Fetcher, blobs BlobStore) *Service {
	return &Service{fetcher: fetcher, blobs: blobs}
}

// Store acquires the asset at url and returns its handle. An asset
// already stored from the same URL is reused unless overwrite is set.
// A permanently unavailable source yields a zero handle and nil error;
// transient fetch exhaustion propagates as an error.
func (s *Service) Store(ctx context.Context, url string, overwrite bool) (domain.Handle, error) {
	if url == "" {
		return "", nil
	}

	if !overwrite {
		handle, err := s.blobs.FindByURL(ctx, url)
		if err == nil {
			return handle, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return "", fmt.Errorf("dedup lookup: %w", err)
		}
	}

	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		if errors.Is(err, domain.ErrMediaUnavailable) {
			return "", nil
		}
		return "", err
	}

	handle, err := s.blobs.Put(ctx, data, url)
	if err != nil {
		return "", fmt.Errorf("store asset: %w", err)
	}
	return handle, nil
}

// Retrieve returns the asset bytes and format hint for a handle.
func (s *Service) Retrieve(ctx context.Context, handle domain.Handle) ([]byte, string, error) {
	return s.blobs.Get(ctx, handle)
}

// StoreThumbnail saves a derived thumbnail under the parent handle.
func (s *Service) StoreThumbnail(ctx context.Context, handle domain.Handle, data []byte) error {
	return s.blobs.PutThumbnail(ctx, handle, data)
}

// RetrieveThumbnail returns the derived thumbnail for a handle.
func (s *Service) RetrieveThumbnail(ctx context.Context, handle domain.Handle) ([]byte, error) {
	return s.blobs.GetThumbnail(ctx, handle)
}
