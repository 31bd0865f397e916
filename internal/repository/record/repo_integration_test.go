package record

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lumakr/luma/internal/domain"
)

func testMongoURI() string {
	if uri := os.Getenv("MONGO_TEST_URI"); uri != "" {
		return uri
	}
	return "mongodb://localhost:27017"
}

// setupTestRepo connects to MongoDB and returns a Repository over a
// unique test database. Calls t.Skip if MongoDB is unreachable.
func setupTestRepo(t *testing.T) (*Repository, func()) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	uri := testMongoURI()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(3*time.Second))
	if err != nil {
		t.Skipf("MongoDB not available at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		t.Skipf("MongoDB ping failed at %s: %v", uri, err)
	}

	dbName := fmt.Sprintf("luma_test_%d", time.Now().UnixNano())
	repo := NewRepository(client.Database(dbName))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		t.Fatalf("EnsureIndexes: %v", err)
	}

	cleanup := func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = client.Database(dbName).Drop(ctx2)
		_ = client.Disconnect(ctx2)
	}
	return repo, cleanup
}

func makeRecord(serial, palace, detail int, slug string) domain.Record {
	return domain.Record{
		SerialNumber: serial,
		PalaceCode:   palace,
		DetailCode:   detail,
		Slug:         slug,
		Name:         domain.Localized{KO: "이름", EN: "Name " + slug},
		Explanation:  domain.Localized{EN: "Explanation for " + slug},
	}
}

func TestInsertRecord_AndLookups(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	id, err := repo.InsertRecord(ctx, makeRecord(1, 1, 3, "throne-hall"))
	if err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	byID, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.SerialNumber != 1 || byID.Slug != "throne-hall" {
		t.Errorf("unexpected record: %+v", byID)
	}

	bySlug, err := repo.GetBySlug(ctx, "throne-hall")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if bySlug.ID != id {
		t.Errorf("expected id %s, got %s", id, bySlug.ID)
	}

	bySerial, err := repo.FindBySerial(ctx, 1)
	if err != nil {
		t.Fatalf("FindBySerial: %v", err)
	}
	if bySerial.ID != id {
		t.Errorf("expected id %s, got %s", id, bySerial.ID)
	}
}

func TestInsertRecord_DuplicateSerial(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := repo.InsertRecord(ctx, makeRecord(5, 1, 1, "first")); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}
	_, err := repo.InsertRecord(ctx, makeRecord(5, 1, 2, "second"))
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()

	_, err := repo.GetByID(context.Background(), "ffffffffffffffffffffffff")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}

	_, err = repo.GetByID(context.Background(), "malformed")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for malformed id, got %v", err)
	}
}

func TestListByPalaceOrdered(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	// Inserted out of order on purpose.
	for i, detail := range []int{3, 1, 2} {
		if _, err := repo.InsertRecord(ctx, makeRecord(10+i, 2, detail, fmt.Sprintf("b-%d", detail))); err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
	}
	if _, err := repo.InsertRecord(ctx, makeRecord(99, 3, 1, "other-palace")); err != nil {
		t.Fatalf("InsertRecord: %v", err)
	}

	records, err := repo.ListByPalaceOrdered(ctx, 2)
	if err != nil {
		t.Fatalf("ListByPalaceOrdered: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, want := range []int{1, 2, 3} {
		if records[i].DetailCode != want {
			t.Errorf("position %d: expected detail code %d, got %d", i, want, records[i].DetailCode)
		}
	}
}

func TestSample(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.InsertRecord(ctx, makeRecord(20+i, 1, i, fmt.Sprintf("s-%d", i))); err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
	}

	records, err := repo.Sample(ctx, 3)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("expected 3 records, got %d", len(records))
	}
}

func TestListIDs(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := repo.InsertRecord(ctx, makeRecord(30+i, 1, i, fmt.Sprintf("l-%d", i))); err != nil {
			t.Fatalf("InsertRecord: %v", err)
		}
	}

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		t.Fatalf("ListIDs: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("expected 3 ids, got %d", len(ids))
	}
}

func TestMediaMeta_RoundTrip(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	itemID, err := repo.InsertMediaItem(ctx, domain.MediaItem{
		Media:       "64f000000000000000000001",
		Name:        domain.Localized{EN: "Screen"},
		Explanation: domain.Localized{EN: "Folding screen."},
	})
	if err != nil {
		t.Fatalf("InsertMediaItem: %v", err)
	}

	item, err := repo.GetMediaItem(ctx, itemID)
	if err != nil {
		t.Fatalf("GetMediaItem: %v", err)
	}
	if item.Name.EN != "Screen" || item.Media != "64f000000000000000000001" {
		t.Errorf("unexpected item: %+v", item)
	}

	groupID, err := repo.InsertMediaGroup(ctx, domain.MediaGroup{
		Name:  domain.Localized{EN: "Ceremony"},
		Video: domain.LocalizedHandles{KO: "64f000000000000000000002"},
	})
	if err != nil {
		t.Fatalf("InsertMediaGroup: %v", err)
	}

	group, err := repo.GetMediaGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("GetMediaGroup: %v", err)
	}
	if group.Video.KO != "64f000000000000000000002" {
		t.Errorf("unexpected group: %+v", group)
	}

	_, err = repo.GetMediaItem(ctx, "ffffffffffffffffffffffff")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
