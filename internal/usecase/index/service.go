// Package index projects stored records into the per-language search
// indices.
package index

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/lumakr/luma/internal/domain"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Service synchronizes the search indices with the document store.
type Service struct {
	repo  Repository
	index Index
	log   *zap.Logger
}

// New creates an indexing service.
func New(repo Repository, index Index, log *zap.Logger) *Service {
	return &Service{repo: repo, index: index, log: log}
}

// Setup destroys and recreates every per-language index. Administrative
// operation, never part of normal traffic.
func (s *Service) Setup(ctx context.Context) error {
	return s.index.Setup(ctx)
}

// ReindexOne projects a single record into all language indices.
func (s *Service) ReindexOne(ctx context.Context, recordID string) error {
	rec, err := s.repo.GetByID(ctx, recordID)
	if err != nil {
		return fmt.Errorf("load record %s: %w", recordID, err)
	}

	items := make([]domain.MediaItem, 0, len(rec.DetailImages))
	for _, itemID := range rec.DetailImages {
		item, err := s.repo.GetMediaItem(ctx, itemID)
		if err != nil {
			return fmt.Errorf("load detail image %s: %w", itemID, err)
		}
		items = append(items, item)
	}

	for _, lang := range domain.Languages {
		doc := buildDocument(rec, items, lang)
		if err := s.index.Upsert(ctx, doc); err != nil {
			return fmt.Errorf("index %s/%s: %w", recordID, lang, err)
		}
	}
	return nil
}

// ReindexAll re-projects every stored record. Per-record failures are
// logged and skipped; the first error is reported alongside the count
// of successfully indexed records.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}

	indexed := 0
	var firstErr error
	for _, id := range ids {
		if err := s.ReindexOne(ctx, id); err != nil {
			s.log.Warn("reindex failed", zap.String("record_id", id), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		indexed++
	}
	return indexed, firstErr
}

// buildDocument assembles one language's search document: the record
// explanation plus every detail image whose localized name and
// explanation are both present, with markup stripped.
func buildDocument(rec domain.Record, items []domain.MediaItem, lang domain.Language) domain.SearchDocument {
	var body strings.Builder
	body.WriteString(rec.Explanation.Get(lang))

	for _, item := range items {
		name := item.Name.Get(lang)
		explanation := item.Explanation.Get(lang)
		if name == "" || explanation == "" {
			continue
		}
		body.WriteString("\n")
		body.WriteString(name)
		body.WriteString("\n")
		body.WriteString(explanation)
	}

	return domain.SearchDocument{
		RecordID:   rec.ID,
		Language:   lang,
		Title:      rec.Name.Get(lang),
		Body:       strings.TrimSpace(stripTags(body.String())),
		PalaceCode: rec.PalaceCode,
	}
}

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}
