package searchindex

import (
	"context"
	"time"

	"github.com/lumakr/luma/internal/db"
)

// fakeStore is a hand-rolled in-memory db.Store recording every call.
type fakeStore struct {
	created     map[string]*db.IndexDefinition
	deleted     map[string]bool
	hashes      map[string]map[string]string
	suggestions map[string][]string

	dropErr          error
	searchResult     *db.SearchResult
	lastQuery        *db.SearchQuery
	lastSuggestFuzzy bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		created:     make(map[string]*db.IndexDefinition),
		deleted:     make(map[string]bool),
		hashes:      make(map[string]map[string]string),
		suggestions: make(map[string][]string),
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }
func (f *fakeStore) Close()                     {}
func (f *fakeStore) WaitForReady(context.Context, time.Duration) error {
	return nil
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.hashes[key] = fields
	return nil
}

func (f *fakeStore) Del(_ context.Context, key string) error {
	f.deleted[key] = true
	delete(f.hashes, key)
	return nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := f.hashes[key]
	return ok, nil
}

func (f *fakeStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	f.created[def.Name] = def
	return nil
}

func (f *fakeStore) DropIndex(_ context.Context, name string, _ bool) error {
	return f.dropErr
}

func (f *fakeStore) IndexExists(_ context.Context, name string) (bool, error) {
	_, ok := f.created[name]
	return ok, nil
}

func (f *fakeStore) Search(_ context.Context, q *db.SearchQuery) (*db.SearchResult, error) {
	f.lastQuery = q
	if f.searchResult == nil {
		return &db.SearchResult{}, nil
	}
	return f.searchResult, nil
}

func (f *fakeStore) SuggestAdd(_ context.Context, dict, input string, _ float64) error {
	f.suggestions[dict] = append(f.suggestions[dict], input)
	return nil
}

func (f *fakeStore) Suggest(_ context.Context, dict, _ string, fuzzy bool, _ int) ([]string, error) {
	f.lastSuggestFuzzy = fuzzy
	return f.suggestions[dict], nil
}
