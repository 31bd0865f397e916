// Package ingest composes full records out of remote media and nested
// sub-documents inside a single storage transaction.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lumakr/luma/internal/domain"
	"github.com/lumakr/luma/internal/metrics"
)

// Service handles transactional record ingestion.
type Service struct {
	repo    Repository
	media   MediaStore
	tx      Transactor
	workers int
	log     *zap.Logger
}

// New creates an ingestion service. workers bounds SaveBatch fan-out.
func New(repo Repository, media MediaStore, tx Transactor, workers int, log *zap.Logger) *Service {
	if workers <= 0 {
		workers = 10
	}
	return &Service{repo: repo, media: media, tx: tx, workers: workers, log: log}
}

// SaveRecord ingests one record and returns its identity. Re-ingesting
// an already stored serial number without overwrite is a no-op that
// returns the existing identity. Any failure inside the transaction
// leaves no partial record or sub-document visible.
func (s *Service) SaveRecord(ctx context.Context, input RecordInput, overwrite bool) (string, error) {
	if !overwrite {
		existing, err := s.repo.FindBySerial(ctx, input.SerialNumber)
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, domain.ErrRecordNotFound) {
			return "", fmt.Errorf("idempotency check: %w", err)
		}
	}

	var recordID string
	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		id, err := s.saveRecordTx(txCtx, input, overwrite)
		if err != nil {
			return err
		}
		recordID = id
		return nil
	})
	if err != nil {
		// A unique index collision means another ingestion (or an
		// overwrite of an existing serial) won: adopt its identity.
		if errors.Is(err, domain.ErrAlreadyExists) {
			existing, findErr := s.repo.FindBySerial(ctx, input.SerialNumber)
			if findErr != nil {
				return "", fmt.Errorf("resolve duplicate serial %d: %w", input.SerialNumber, findErr)
			}
			return existing.ID, nil
		}
		metrics.IngestTotal.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.IngestTotal.WithLabelValues("ok").Inc()
	return recordID, nil
}

func (s *Service) saveRecordTx(ctx context.Context, input RecordInput, overwrite bool) (string, error) {
	thumbnail, err := s.media.Store(ctx, input.ThumbnailURL, overwrite)
	if err != nil {
		return "", fmt.Errorf("thumbnail: %w", err)
	}

	mainImages, err := s.storeAll(ctx, input.MainImageURLs, overwrite)
	if err != nil {
		return "", fmt.Errorf("main images: %w", err)
	}
	mainVideos, err := s.storeAll(ctx, input.MainVideoURLs, overwrite)
	if err != nil {
		return "", fmt.Errorf("main videos: %w", err)
	}

	detailImages := make([]string, 0, len(input.DetailImages))
	for i, item := range input.DetailImages {
		handle, err := s.media.Store(ctx, item.URL, overwrite)
		if err != nil {
			return "", fmt.Errorf("detail image %d: %w", i, err)
		}
		id, err := s.repo.InsertMediaItem(ctx, domain.MediaItem{
			Media:       handle,
			Name:        item.Name,
			Explanation: item.Explanation,
		})
		if err != nil {
			return "", fmt.Errorf("detail image %d: %w", i, err)
		}
		detailImages = append(detailImages, id)
	}

	detailVideos := make([]string, 0, len(input.DetailVideos))
	for i, group := range input.DetailVideos {
		handles, err := s.storeGroupVideos(ctx, group.VideoURLs, overwrite)
		if err != nil {
			return "", fmt.Errorf("detail video %d: %w", i, err)
		}
		id, err := s.repo.InsertMediaGroup(ctx, domain.MediaGroup{
			Name:  group.Name,
			Video: handles,
		})
		if err != nil {
			return "", fmt.Errorf("detail video %d: %w", i, err)
		}
		detailVideos = append(detailVideos, id)
	}

	return s.repo.InsertRecord(ctx, domain.Record{
		SerialNumber: input.SerialNumber,
		PalaceCode:   input.PalaceCode,
		DetailCode:   input.DetailCode,
		Slug:         input.Slug,
		Thumbnail:    thumbnail,
		Name:         input.Name,
		Explanation:  input.Explanation,
		MainImages:   mainImages,
		MainVideos:   mainVideos,
		DetailImages: detailImages,
		DetailVideos: detailVideos,
	})
}

// storeAll acquires every non-empty URL; not-available assets are
// simply absent from the result.
func (s *Service) storeAll(ctx context.Context, urls []string, overwrite bool) ([]domain.Handle, error) {
	var handles []domain.Handle
	for _, url := range urls {
		if url == "" {
			continue
		}
		handle, err := s.media.Store(ctx, url, overwrite)
		if err != nil {
			return nil, err
		}
		if handle != "" {
			handles = append(handles, handle)
		}
	}
	return handles, nil
}

// storeGroupVideos acquires each per-language URL independently; any
// subset may resolve to an absent handle without aborting the record.
func (s *Service) storeGroupVideos(ctx context.Context, urls LocalizedURLs, overwrite bool) (domain.LocalizedHandles, error) {
	var handles domain.LocalizedHandles
	for _, lang := range domain.Languages {
		url := urls.Get(lang)
		if url == "" {
			continue
		}
		handle, err := s.media.Store(ctx, url, overwrite)
		if err != nil {
			return domain.LocalizedHandles{}, err
		}
		switch lang {
		case domain.Korean:
			handles.KO = handle
		case domain.English:
			handles.EN = handle
		case domain.Japanese:
			handles.JA = handle
		case domain.Chinese:
			handles.ZH = handle
		}
	}
	return handles, nil
}

// BatchResult reports the outcome of one batch ingestion.
type BatchResult struct {
	Saved  int
	Failed int
}

// SaveBatch ingests many records with a bounded worker pool. Failures
// are isolated per record: one bad record does not stop the batch.
func (s *Service) SaveBatch(ctx context.Context, inputs []RecordInput, overwrite bool) (BatchResult, error) {
	results := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, input := range inputs {
		g.Go(func() error {
			_, err := s.SaveRecord(gctx, input, overwrite)
			if err != nil {
				s.log.Warn("record ingestion failed",
					zap.Int("serial_number", input.SerialNumber),
					zap.Error(err))
				results[i] = err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, err := range results {
		if err != nil {
			result.Failed++
		} else {
			result.Saved++
		}
	}
	return result, nil
}
