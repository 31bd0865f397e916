// Package db defines the search engine contract consumed by the
// repository layer, independent of the concrete backend.
package db

import (
	"context"
	"time"
)

// Store is the search engine facade combining all sub-interfaces.
type Store interface {
	Pinger
	HashStore
	IndexManager
	Searcher
	Suggester
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides the hash document operations backing FT indexes.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	// DropIndex removes an index; dropDocs also deletes the indexed documents.
	DropIndex(ctx context.Context, name string, dropDocs bool) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides paginated relevance queries over FT indexes.
type Searcher interface {
	Search(ctx context.Context, q *SearchQuery) (*SearchResult, error)
}

// Suggester provides completion dictionary operations.
type Suggester interface {
	SuggestAdd(ctx context.Context, dict, input string, weight float64) error
	Suggest(ctx context.Context, dict, prefix string, fuzzy bool, max int) ([]string, error)
}
