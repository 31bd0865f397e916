package record

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/lumakr/luma/internal/domain"
)

func TestRecordDoc_RoundTrip(t *testing.T) {
	itemID := primitive.NewObjectID().Hex()
	groupID := primitive.NewObjectID().Hex()

	rec := domain.Record{
		ID:           primitive.NewObjectID().Hex(),
		SerialNumber: 101,
		PalaceCode:   1,
		DetailCode:   7,
		Slug:         "geunjeongjeon",
		Thumbnail:    "64f000000000000000000001",
		Name:         domain.Localized{KO: "근정전", EN: "Geunjeongjeon Hall"},
		Explanation:  domain.Localized{EN: "The throne hall.", JA: "正殿"},
		MainImages:   []domain.Handle{"64f000000000000000000002"},
		MainVideos:   []domain.Handle{"64f000000000000000000003"},
		DetailImages: []string{itemID},
		DetailVideos: []string{groupID},
	}

	doc, err := toRecordDoc(rec)
	if err != nil {
		t.Fatalf("toRecordDoc: %v", err)
	}
	got := fromRecordDoc(doc)

	if !reflect.DeepEqual(got, rec) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rec)
	}
}

func TestRecordDoc_InvalidDetailID(t *testing.T) {
	_, err := toRecordDoc(domain.Record{DetailImages: []string{"not-hex"}})
	if err == nil {
		t.Fatal("expected error for invalid detail image id")
	}
}

func TestMediaItemDoc_RoundTrip(t *testing.T) {
	item := domain.MediaItem{
		ID:          primitive.NewObjectID().Hex(),
		Media:       "64f000000000000000000004",
		Name:        domain.Localized{KO: "일월오봉도", EN: "Irworobongdo"},
		Explanation: domain.Localized{EN: "Screen behind the throne."},
	}

	doc, err := toMediaItemDoc(item)
	if err != nil {
		t.Fatalf("toMediaItemDoc: %v", err)
	}
	got := fromMediaItemDoc(doc)

	if !reflect.DeepEqual(got, item) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, item)
	}
}

func TestMediaGroupDoc_RoundTrip(t *testing.T) {
	group := domain.MediaGroup{
		ID:   primitive.NewObjectID().Hex(),
		Name: domain.Localized{KO: "왕실 의례", EN: "Royal Ceremony"},
		Video: domain.LocalizedHandles{
			KO: "64f000000000000000000005",
			EN: "64f000000000000000000006",
		},
	}

	doc, err := toMediaGroupDoc(group)
	if err != nil {
		t.Fatalf("toMediaGroupDoc: %v", err)
	}
	got := fromMediaGroupDoc(doc)

	if !reflect.DeepEqual(got, group) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, group)
	}
}

func TestMediaGroupDoc_NilVideo(t *testing.T) {
	got := fromMediaGroupDoc(mediaMetaDoc{Name: localizedDoc{EN: "x"}})
	if got.Video != (domain.LocalizedHandles{}) {
		t.Errorf("expected zero handles, got %+v", got.Video)
	}
}
