package db

// IndexFieldType enumerates supported FT schema field types.
type IndexFieldType string

const (
	IndexFieldText IndexFieldType = "TEXT"
	IndexFieldTag  IndexFieldType = "TAG"
)

// IndexField is one field of an FT index schema.
type IndexField struct {
	Name   string
	Type   IndexFieldType
	Weight float64 // TEXT relevance weight; 0 means engine default
}

// IndexDefinition describes an FT index over hash documents.
type IndexDefinition struct {
	Name     string
	Prefixes []string
	Language string // engine stemmer language; empty uses the default tokenizer
	Fields   []IndexField
}

// SearchQuery is the input for a paginated relevance search.
type SearchQuery struct {
	IndexName    string
	Query        string
	Offset       int
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search: the unpaginated total plus the
// requested page of entries.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
