package ingest

import "github.com/lumakr/luma/internal/domain"

// LocalizedURLs carries one optional source URL per serviced language.
type LocalizedURLs struct {
	KO string `json:"ko,omitempty"`
	EN string `json:"en,omitempty"`
	JA string `json:"ja,omitempty"`
	ZH string `json:"zh,omitempty"`
}

// Get returns the URL for the requested language.
func (u LocalizedURLs) Get(lang domain.Language) string {
	switch lang {
	case domain.Korean:
		return u.KO
	case domain.English:
		return u.EN
	case domain.Japanese:
		return u.JA
	case domain.Chinese:
		return u.ZH
	}
	return ""
}

// MediaItemInput describes one detail image to ingest.
type MediaItemInput struct {
	URL         string           `json:"url"`
	Name        domain.Localized `json:"name"`
	Explanation domain.Localized `json:"explanation"`
}

// MediaGroupInput describes one detail video group to ingest.
type MediaGroupInput struct {
	Name      domain.Localized `json:"name"`
	VideoURLs LocalizedURLs    `json:"video_urls"`
}

// RecordInput is the full ingestion payload for one record.
type RecordInput struct {
	SerialNumber  int               `json:"serial_number"`
	PalaceCode    int               `json:"palace_code"`
	DetailCode    int               `json:"detail_code"`
	Slug          string            `json:"url_slug"`
	Name          domain.Localized  `json:"name"`
	Explanation   domain.Localized  `json:"explanation"`
	ThumbnailURL  string            `json:"thumbnail_url,omitempty"`
	MainImageURLs []string          `json:"main_image_urls,omitempty"`
	MainVideoURLs []string          `json:"main_video_urls,omitempty"`
	DetailImages  []MediaItemInput  `json:"detail_images,omitempty"`
	DetailVideos  []MediaGroupInput `json:"detail_videos,omitempty"`
}
