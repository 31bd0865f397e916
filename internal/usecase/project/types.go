package project

// ClientRecord is the caller-facing flattened form of one record in
// one language. All handles and references are stringified.
type ClientRecord struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Slug         string   `json:"url"`
	PalaceCode   int      `json:"palace_code"`
	DetailCode   int      `json:"detail_code"`
	Explanation  string   `json:"explanation"`
	Thumbnail    string   `json:"thumbnail,omitempty"`
	MainImages   []string `json:"main_image"`
	MainVideos   []string `json:"main_video"`
	DetailImages []string `json:"detail_image"`
	DetailVideos []string `json:"detail_video"`
}

// RecordPreview is the reduced listing shape: no media reference lists.
type RecordPreview struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"url"`
	PalaceCode  int    `json:"palace_code"`
	Explanation string `json:"explanation"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// ClientMediaItem is one detail image flattened to a language.
type ClientMediaItem struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
	Media       string `json:"media,omitempty"`
}

// ClientMediaGroup is one detail video flattened to a language. Video
// may resolve through the language fallback chain; Name never does.
type ClientMediaGroup struct {
	Name  string `json:"name"`
	Video string `json:"video,omitempty"`
}

// GroupMember is one entry of a palace listing.
type GroupMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"url"`
}
