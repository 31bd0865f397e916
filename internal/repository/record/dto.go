package record

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lumakr/luma/internal/domain"
)

type localizedDoc struct {
	KO string `bson:"ko,omitempty"`
	EN string `bson:"en,omitempty"`
	JA string `bson:"ja,omitempty"`
	ZH string `bson:"zh,omitempty"`
}

type recordDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	SerialNumber int                  `bson:"serial_number"`
	PalaceCode   int                  `bson:"palace_code"`
	DetailCode   int                  `bson:"detail_code"`
	Slug         string               `bson:"url_slug"`
	Thumbnail    string               `bson:"thumbnail,omitempty"`
	Name         localizedDoc         `bson:"name"`
	Explanation  localizedDoc         `bson:"explanation"`
	MainImages   []string             `bson:"main_image,omitempty"`
	MainVideos   []string             `bson:"main_video,omitempty"`
	DetailImages []primitive.ObjectID `bson:"detail_image,omitempty"`
	DetailVideos []primitive.ObjectID `bson:"detail_video,omitempty"`
}

// mediaMetaDoc stores both detail image and detail video metadata in a
// single collection. Media+Explanation are set for images, Video for
// video groups.
type mediaMetaDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Media       string             `bson:"media,omitempty"`
	Name        localizedDoc       `bson:"name"`
	Explanation localizedDoc       `bson:"explanation,omitempty"`
	Video       *localizedDoc      `bson:"video,omitempty"`
}

func toLocalizedDoc(l domain.Localized) localizedDoc {
	return localizedDoc{KO: l.KO, EN: l.EN, JA: l.JA, ZH: l.ZH}
}

func fromLocalizedDoc(d localizedDoc) domain.Localized {
	return domain.Localized{KO: d.KO, EN: d.EN, JA: d.JA, ZH: d.ZH}
}

func toHandlesDoc(h domain.LocalizedHandles) *localizedDoc {
	return &localizedDoc{
		KO: string(h.KO), EN: string(h.EN), JA: string(h.JA), ZH: string(h.ZH),
	}
}

func fromHandlesDoc(d *localizedDoc) domain.LocalizedHandles {
	if d == nil {
		return domain.LocalizedHandles{}
	}
	return domain.LocalizedHandles{
		KO: domain.Handle(d.KO), EN: domain.Handle(d.EN),
		JA: domain.Handle(d.JA), ZH: domain.Handle(d.ZH),
	}
}

func toRecordDoc(r domain.Record) (recordDoc, error) {
	detailImages, err := toObjectIDs(r.DetailImages)
	if err != nil {
		return recordDoc{}, fmt.Errorf("detail images: %w", err)
	}
	detailVideos, err := toObjectIDs(r.DetailVideos)
	if err != nil {
		return recordDoc{}, fmt.Errorf("detail videos: %w", err)
	}

	doc := recordDoc{
		SerialNumber: r.SerialNumber,
		PalaceCode:   r.PalaceCode,
		DetailCode:   r.DetailCode,
		Slug:         r.Slug,
		Thumbnail:    string(r.Thumbnail),
		Name:         toLocalizedDoc(r.Name),
		Explanation:  toLocalizedDoc(r.Explanation),
		MainImages:   handlesToStrings(r.MainImages),
		MainVideos:   handlesToStrings(r.MainVideos),
		DetailImages: detailImages,
		DetailVideos: detailVideos,
	}
	if r.ID != "" {
		id, err := primitive.ObjectIDFromHex(r.ID)
		if err != nil {
			return recordDoc{}, fmt.Errorf("record id: %w", err)
		}
		doc.ID = id
	}
	return doc, nil
}

func fromRecordDoc(d recordDoc) domain.Record {
	return domain.Record{
		ID:           d.ID.Hex(),
		SerialNumber: d.SerialNumber,
		PalaceCode:   d.PalaceCode,
		DetailCode:   d.DetailCode,
		Slug:         d.Slug,
		Thumbnail:    domain.Handle(d.Thumbnail),
		Name:         fromLocalizedDoc(d.Name),
		Explanation:  fromLocalizedDoc(d.Explanation),
		MainImages:   stringsToHandles(d.MainImages),
		MainVideos:   stringsToHandles(d.MainVideos),
		DetailImages: objectIDsToStrings(d.DetailImages),
		DetailVideos: objectIDsToStrings(d.DetailVideos),
	}
}

func toMediaItemDoc(m domain.MediaItem) (mediaMetaDoc, error) {
	doc := mediaMetaDoc{
		Media:       string(m.Media),
		Name:        toLocalizedDoc(m.Name),
		Explanation: toLocalizedDoc(m.Explanation),
	}
	if m.ID != "" {
		id, err := primitive.ObjectIDFromHex(m.ID)
		if err != nil {
			return mediaMetaDoc{}, fmt.Errorf("media item id: %w", err)
		}
		doc.ID = id
	}
	return doc, nil
}

func fromMediaItemDoc(d mediaMetaDoc) domain.MediaItem {
	return domain.MediaItem{
		ID:          d.ID.Hex(),
		Media:       domain.Handle(d.Media),
		Name:        fromLocalizedDoc(d.Name),
		Explanation: fromLocalizedDoc(d.Explanation),
	}
}

func toMediaGroupDoc(g domain.MediaGroup) (mediaMetaDoc, error) {
	doc := mediaMetaDoc{
		Name:  toLocalizedDoc(g.Name),
		Video: toHandlesDoc(g.Video),
	}
	if g.ID != "" {
		id, err := primitive.ObjectIDFromHex(g.ID)
		if err != nil {
			return mediaMetaDoc{}, fmt.Errorf("media group id: %w", err)
		}
		doc.ID = id
	}
	return doc, nil
}

func fromMediaGroupDoc(d mediaMetaDoc) domain.MediaGroup {
	return domain.MediaGroup{
		ID:    d.ID.Hex(),
		Name:  fromLocalizedDoc(d.Name),
		Video: fromHandlesDoc(d.Video),
	}
}

func handlesToStrings(hs []domain.Handle) []string {
	if len(hs) == 0 {
		return nil
	}
	out := make([]string, 0, len(hs))
	for _, h := range hs {
		out = append(out, string(h))
	}
	return out
}

func stringsToHandles(ss []string) []domain.Handle {
	if len(ss) == 0 {
		return nil
	}
	out := make([]domain.Handle, 0, len(ss))
	for _, s := range ss {
		out = append(out, domain.Handle(s))
	}
	return out
}

func toObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, s := range ids {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", s, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func objectIDsToStrings(ids []primitive.ObjectID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
