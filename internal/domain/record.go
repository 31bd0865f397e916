package domain

// Handle is the opaque identifier the blob store assigns to a stored asset.
// The zero value means "no asset".
type Handle string

// MediaItem is a detail image owned by exactly one Record: a stored asset
// plus its localized caption and explanation.
type MediaItem struct {
	ID          string
	Media       Handle
	Name        Localized
	Explanation Localized
}

// MediaGroup is a detail video set owned by exactly one Record. Each
// language may carry its own independently fetched asset; any subset may
// be absent.
type MediaGroup struct {
	ID    string
	Name  Localized
	Video LocalizedHandles
}

// Record is a top-level palace/building entry. SerialNumber is the
// externally assigned identity used to collapse duplicate ingestion;
// Slug is the unique lookup key for URL-based reads.
type Record struct {
	ID           string
	SerialNumber int
	PalaceCode   int
	DetailCode   int
	Slug         string
	Thumbnail    Handle
	Name         Localized
	Explanation  Localized
	MainImages   []Handle
	MainVideos   []Handle
	DetailImages []string // MediaItem ids
	DetailVideos []string // MediaGroup ids
}
