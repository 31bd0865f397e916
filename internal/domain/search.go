package domain

// SearchDocument is the per-(record, language) projection fed to the
// search engine. It is regenerated wholesale on every reindex, never
// patched.
type SearchDocument struct {
	RecordID   string
	Language   Language
	Title      string
	Body       string
	PalaceCode int
}

// SearchHit is a single relevance-ranked match.
type SearchHit struct {
	ID    string
	Title string
	Body  string
}

// SearchPage is one page of matches plus the unpaginated total.
type SearchPage struct {
	Total int
	Hits  []SearchHit
}
