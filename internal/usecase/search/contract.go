package search

import (
	"context"

	"github.com/lumakr/luma/internal/domain"
)

// Index runs relevance and completion queries against the per-language
// search indices.
type Index interface {
	Search(ctx context.Context, lang domain.Language, keyword string, palaceCode, offset, limit int) (domain.SearchPage, error)
	Suggest(ctx context.Context, lang domain.Language, prefix string, max int) ([]string, error)
}
