// Package searchindex maintains the per-language full-text indices and
// completion dictionaries on the search engine.
package searchindex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lumakr/luma/internal/db"
	"github.com/lumakr/luma/internal/domain"
)

const (
	suggestWeight   = 10
	suggestMaxInput = 50
)

// indexLanguages maps a content language to the engine analyzer used
// for its index. Korean and Japanese have no stemmer in RediSearch and
// use the default tokenizer.
var indexLanguages = map[domain.Language]string{
	domain.English: "english",
	domain.Chinese: "chinese",
}

// Repository manages one FT index and one suggestion dictionary per
// serviced language.
type Repository struct {
	store  db.Store
	prefix string
}

// NewRepository creates a search index repository. prefix namespaces
// every key the repository touches (e.g. "luma:").
func NewRepository(store db.Store, prefix string) *Repository {
	return &Repository{store: store, prefix: prefix}
}

func (r *Repository) keyPrefix(lang domain.Language) string {
	return fmt.Sprintf("%sarticles_%s:", r.prefix, lang)
}

func (r *Repository) indexName(lang domain.Language) string {
	return r.keyPrefix(lang) + "idx"
}

func (r *Repository) suggestDict(lang domain.Language) string {
	return fmt.Sprintf("%ssuggest:%s", r.prefix, lang)
}

// DocumentKey returns the hash key of one record's document in one
// language's index.
func (r *Repository) DocumentKey(lang domain.Language, recordID string) string {
	return r.keyPrefix(lang) + recordID
}

// Setup destroys and recreates every per-language index and suggestion
// dictionary. All indexed documents are dropped with the index.
func (r *Repository) Setup(ctx context.Context) error {
	for _, lang := range domain.Languages {
		if err := r.store.DropIndex(ctx, r.indexName(lang), true); err != nil {
			if !errors.Is(err, db.ErrIndexNotFound) {
				return fmt.Errorf("drop index %s: %w", lang, err)
			}
		}
		if err := r.store.Del(ctx, r.suggestDict(lang)); err != nil {
			return fmt.Errorf("clear suggestions %s: %w", lang, err)
		}

		def := &db.IndexDefinition{
			Name:     r.indexName(lang),
			Prefixes: []string{r.keyPrefix(lang)},
			Language: indexLanguages[lang],
			Fields: []db.IndexField{
				{Name: "title", Type: db.IndexFieldText, Weight: 3},
				{Name: "body", Type: db.IndexFieldText},
				{Name: "palace_code", Type: db.IndexFieldTag},
			},
		}
		if err := r.store.CreateIndex(ctx, def); err != nil {
			return fmt.Errorf("create index %s: %w", lang, err)
		}
	}
	return nil
}

// Upsert fully replaces one record's document in the given language's
// index and registers its title in the completion dictionary.
func (r *Repository) Upsert(ctx context.Context, doc domain.SearchDocument) error {
	key := r.DocumentKey(doc.Language, doc.RecordID)

	// Full replace: a shrinking document must not keep stale fields.
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	err := r.store.HSet(ctx, key, map[string]string{
		"title":       doc.Title,
		"body":        doc.Body,
		"palace_code": strconv.Itoa(doc.PalaceCode),
	})
	if err != nil {
		return fmt.Errorf("index document: %w", err)
	}

	if input := truncateRunes(doc.Title, suggestMaxInput); input != "" {
		if err := r.store.SuggestAdd(ctx, r.suggestDict(doc.Language), input, suggestWeight); err != nil {
			return fmt.Errorf("add suggestion: %w", err)
		}
	}
	return nil
}

// Search runs a relevance query over title and body in one language's
// index, optionally restricted to a palace.
func (r *Repository) Search(ctx context.Context, lang domain.Language, keyword string, palaceCode, offset, limit int) (domain.SearchPage, error) {
	var query strings.Builder
	if palaceCode > 0 {
		fmt.Fprintf(&query, "@palace_code:{%d} ", palaceCode)
	}
	fmt.Fprintf(&query, "@title|body:(%s)", escapeQuery(keyword))

	result, err := r.store.Search(ctx, &db.SearchQuery{
		IndexName:    r.indexName(lang),
		Query:        query.String(),
		Offset:       offset,
		Limit:        limit,
		ReturnFields: []string{"title", "body"},
	})
	if err != nil {
		return domain.SearchPage{}, fmt.Errorf("search %s: %w", lang, err)
	}

	hits := make([]domain.SearchHit, 0, len(result.Entries))
	for _, entry := range result.Entries {
		hits = append(hits, domain.SearchHit{
			ID:    strings.TrimPrefix(entry.Key, r.keyPrefix(lang)),
			Title: entry.Fields["title"],
			Body:  entry.Fields["body"],
		})
	}
	return domain.SearchPage{Total: result.Total, Hits: hits}, nil
}

// Suggest returns completion candidates for a title prefix.
func (r *Repository) Suggest(ctx context.Context, lang domain.Language, prefix string, max int) ([]string, error) {
	suggestions, err := r.store.Suggest(ctx, r.suggestDict(lang), prefix, true, max)
	if err != nil {
		return nil, fmt.Errorf("suggest %s: %w", lang, err)
	}
	return suggestions, nil
}

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
