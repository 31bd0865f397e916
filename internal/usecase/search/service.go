// Package search serves paginated full-text queries and autocomplete
// over the per-language indices.
package search

import (
	"context"

	"github.com/lumakr/luma/internal/domain"
)

// Service handles read-side search queries. Stateless.
type Service struct {
	index           Index
	defaultPageSize int
	maxPageSize     int
	suggestLimit    int
}

// New creates a search service.
func New(index Index) *Service {
	return &Service{
		index:           index,
		defaultPageSize: 30,
		maxPageSize:     100,
		suggestLimit:    10,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Search runs a relevance query. page starts at 1; pageSize falls back
// to the configured default and is capped at the maximum. A zero
// palaceCode means no palace filter.
func (s *Service) Search(ctx context.Context, keyword string, lang domain.Language, palaceCode, page, pageSize int) (domain.SearchPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}
	offset := (page - 1) * pageSize

	return s.index.Search(ctx, lang, keyword, palaceCode, offset, pageSize)
}

// Autocomplete returns title completions for a prefix, best first.
func (s *Service) Autocomplete(ctx context.Context, prefix string, lang domain.Language) ([]string, error) {
	return s.index.Suggest(ctx, lang, prefix, s.suggestLimit)
}
