// Package project flattens stored records into caller-facing,
// single-language shapes.
package project

import (
	"context"
	"sort"

	"github.com/lumakr/luma/internal/domain"
)

const defaultSampleCount = 20

// Service handles read-side record projection. Stateless and safe for
// unbounded concurrent use.
type Service struct {
	repo Repository
}

// New creates a projection service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record returns one record flattened to the requested language.
func (s *Service) Record(ctx context.Context, id string, lang domain.Language) (ClientRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return ClientRecord{}, err
	}
	return toClientRecord(rec, lang), nil
}

// RecordBySlug returns one record looked up by URL slug.
func (s *Service) RecordBySlug(ctx context.Context, slug string, lang domain.Language) (ClientRecord, error) {
	rec, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return ClientRecord{}, err
	}
	return toClientRecord(rec, lang), nil
}

// MediaItem returns one detail image's metadata in the requested
// language.
func (s *Service) MediaItem(ctx context.Context, id string, lang domain.Language) (ClientMediaItem, error) {
	item, err := s.repo.GetMediaItem(ctx, id)
	if err != nil {
		return ClientMediaItem{}, err
	}
	return ClientMediaItem{
		Name:        item.Name.Get(lang),
		Explanation: item.Explanation.Get(lang),
		Media:       string(item.Media),
	}, nil
}

// MediaGroup returns one detail video in the requested language. A
// missing video falls back across languages in fixed priority order;
// the name stays in the requested language regardless.
func (s *Service) MediaGroup(ctx context.Context, id string, lang domain.Language) (ClientMediaGroup, error) {
	group, err := s.repo.GetMediaGroup(ctx, id)
	if err != nil {
		return ClientMediaGroup{}, err
	}
	out := ClientMediaGroup{Name: group.Name.Get(lang)}
	if handle, ok := group.Video.Resolve(lang); ok {
		out.Video = string(handle)
	}
	return out, nil
}

// GroupMembers lists a palace's records sorted lexicographically by
// localized name.
func (s *Service) GroupMembers(ctx context.Context, palaceCode int, lang domain.Language) ([]GroupMember, error) {
	records, err := s.repo.ListByPalace(ctx, palaceCode)
	if err != nil {
		return nil, err
	}

	members := make([]GroupMember, 0, len(records))
	for _, rec := range records {
		members = append(members, GroupMember{
			ID:   rec.ID,
			Name: rec.Name.Get(lang),
			Slug: rec.Slug,
		})
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].Name < members[j].Name
	})
	return members, nil
}

// Sample returns record previews: all members of one palace in tour
// order when palaceCode is positive (count is ignored in that branch),
// otherwise a uniform random sample of size count.
func (s *Service) Sample(ctx context.Context, lang domain.Language, palaceCode, count int) ([]RecordPreview, error) {
	var records []domain.Record
	var err error
	if palaceCode > 0 {
		records, err = s.repo.ListByPalaceOrdered(ctx, palaceCode)
	} else {
		if count <= 0 {
			count = defaultSampleCount
		}
		records, err = s.repo.Sample(ctx, count)
	}
	if err != nil {
		return nil, err
	}

	previews := make([]RecordPreview, 0, len(records))
	for _, rec := range records {
		previews = append(previews, RecordPreview{
			ID:          rec.ID,
			Name:        rec.Name.Get(lang),
			Slug:        rec.Slug,
			PalaceCode:  rec.PalaceCode,
			Explanation: rec.Explanation.Get(lang),
			Thumbnail:   string(rec.Thumbnail),
		})
	}
	return previews, nil
}

func toClientRecord(rec domain.Record, lang domain.Language) ClientRecord {
	return ClientRecord{
		ID:           rec.ID,
		Name:         rec.Name.Get(lang),
		Slug:         rec.Slug,
		PalaceCode:   rec.PalaceCode,
		DetailCode:   rec.DetailCode,
		Explanation:  rec.Explanation.Get(lang),
		Thumbnail:    string(rec.Thumbnail),
		MainImages:   handleStrings(rec.MainImages),
		MainVideos:   handleStrings(rec.MainVideos),
		DetailImages: emptyIfNil(rec.DetailImages),
		DetailVideos: emptyIfNil(rec.DetailVideos),
	}
}

func handleStrings(hs []domain.Handle) []string {
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, string(h))
	}
	return out
}

// emptyIfNil keeps JSON list fields as [] instead of null.
func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
