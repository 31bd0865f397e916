package searchindex

import (
	"context"
	"strings"
	"testing"

	"github.com/lumakr/luma/internal/db"
	"github.com/lumakr/luma/internal/domain"
)

func TestSetup_RebuildsEveryLanguage(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, "luma:")

	if err := repo.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	if len(store.created) != len(domain.Languages) {
		t.Fatalf("expected %d indices, got %d", len(domain.Languages), len(store.created))
	}

	en := store.created["luma:articles_en:idx"]
	if en == nil {
		t.Fatal("missing english index")
	}
	if en.Language != "english" {
		t.Errorf("expected english analyzer, got %q", en.Language)
	}
	if len(en.Prefixes) != 1 || en.Prefixes[0] != "luma:articles_en:" {
		t.Errorf("unexpected prefixes: %v", en.Prefixes)
	}
	if en.Fields[0].Name != "title" || en.Fields[0].Weight != 3 {
		t.Errorf("expected title weight 3, got %+v", en.Fields[0])
	}

	ko := store.created["luma:articles_ko:idx"]
	if ko == nil {
		t.Fatal("missing korean index")
	}
	if ko.Language != "" {
		t.Errorf("korean index must use the default tokenizer, got %q", ko.Language)
	}

	// Destructive: existing data dropped.
	for _, lang := range domain.Languages {
		dict := "luma:suggest:" + string(lang)
		if !store.deleted[dict] {
			t.Errorf("suggestion dict %s not cleared", dict)
		}
	}
}

func TestSetup_ToleratesMissingIndex(t *testing.T) {
	store := newFakeStore()
	store.dropErr = db.ErrIndexNotFound
	repo := NewRepository(store, "luma:")

	if err := repo.Setup(context.Background()); err != nil {
		t.Fatalf("Setup should ignore missing indices: %v", err)
	}
}

func TestUpsert_ReplacesAndSuggests(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, "luma:")

	doc := domain.SearchDocument{
		RecordID:   "abc123",
		Language:   domain.English,
		Title:      "Geunjeongjeon Hall",
		Body:       "The throne hall of Gyeongbokgung.",
		PalaceCode: 1,
	}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	key := "luma:articles_en:abc123"
	if !store.deleted[key] {
		t.Error("expected full replace to delete the old document first")
	}
	fields := store.hashes[key]
	if fields["title"] != doc.Title || fields["body"] != doc.Body || fields["palace_code"] != "1" {
		t.Errorf("unexpected fields: %v", fields)
	}

	suggestions := store.suggestions["luma:suggest:en"]
	if len(suggestions) != 1 || suggestions[0] != "Geunjeongjeon Hall" {
		t.Errorf("unexpected suggestions: %v", suggestions)
	}
}

func TestUpsert_TruncatesSuggestionInput(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, "luma:")

	long := strings.Repeat("가", 80)
	doc := domain.SearchDocument{
		RecordID: "x", Language: domain.Korean, Title: long, PalaceCode: 2,
	}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got := store.suggestions["luma:suggest:ko"][0]
	if len([]rune(got)) != 50 {
		t.Errorf("expected 50 runes, got %d", len([]rune(got)))
	}
}

func TestUpsert_EmptyTitleSkipsSuggestion(t *testing.T) {
	store := newFakeStore()
	repo := NewRepository(store, "luma:")

	doc := domain.SearchDocument{RecordID: "x", Language: domain.English, Body: "text"}
	if err := repo.Upsert(context.Background(), doc); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if len(store.suggestions) != 0 {
		t.Errorf("expected no suggestions, got %v", store.suggestions)
	}
}

func TestSearch_BuildsQueryAndStripsPrefix(t *testing.T) {
	store := newFakeStore()
	store.searchResult = &db.SearchResult{
		Total: 1,
		Entries: []db.SearchEntry{
			{Key: "luma:articles_en:abc123", Score: 1.2, Fields: map[string]string{
				"title": "Throne Hall", "body": "text",
			}},
		},
	}
	repo := NewRepository(store, "luma:")

	page, err := repo.Search(context.Background(), domain.English, "throne hall", 1, 30, 30)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := store.lastQuery
	if q.IndexName != "luma:articles_en:idx" {
		t.Errorf("unexpected index: %s", q.IndexName)
	}
	if q.Query != "@palace_code:{1} @title|body:(throne hall)" {
		t.Errorf("unexpected query: %q", q.Query)
	}
	if q.Offset != 30 || q.Limit != 30 {
		t.Errorf("unexpected pagination: offset=%d limit=%d", q.Offset, q.Limit)
	}

	if page.Total != 1 || len(page.Hits) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Hits[0].ID != "abc123" {
		t.Errorf("expected stripped record id, got %q", page.Hits[0].ID)
	}
}

func TestSearch_NoPalaceFilter(t *testing.T) {
	store := newFakeStore()
	store.searchResult = &db.SearchResult{}
	repo := NewRepository(store, "luma:")

	if _, err := repo.Search(context.Background(), domain.Japanese, "寺", 0, 0, 10); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if store.lastQuery.Query != "@title|body:(寺)" {
		t.Errorf("unexpected query: %q", store.lastQuery.Query)
	}
}

func TestSearch_EscapesKeyword(t *testing.T) {
	store := newFakeStore()
	store.searchResult = &db.SearchResult{}
	repo := NewRepository(store, "luma:")

	if _, err := repo.Search(context.Background(), domain.English, `hall @{x}`, 0, 0, 10); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if store.lastQuery.Query != `@title|body:(hall \@\{x\})` {
		t.Errorf("unexpected query: %q", store.lastQuery.Query)
	}
}

func TestSuggest_UsesFuzzyDict(t *testing.T) {
	store := newFakeStore()
	store.suggestions["luma:suggest:en"] = []string{"Gyeongbokgung", "Gyeonghoeru"}
	repo := NewRepository(store, "luma:")

	got, err := repo.Suggest(context.Background(), domain.English, "gyeon", 5)
	if err != nil {
		t.Fatalf("Suggest: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("unexpected suggestions: %v", got)
	}
	if !store.lastSuggestFuzzy {
		t.Error("expected fuzzy matching")
	}
}
