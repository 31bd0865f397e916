package faillog

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
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

	cleanup := func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = client.Database(dbName).Drop(ctx2)
		_ = client.Disconnect(ctx2)
	}
	return repo, cleanup
}

func TestRecordListClear(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.Record(ctx, "h1", "decode jpg: truncated"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := repo.Record(ctx, "h2", "unsupported format \"mp4\""); err != nil {
		t.Fatalf("Record: %v", err)
	}

	failures, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}

	if err := repo.Clear(ctx, "h1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	failures, err = repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failures) != 1 || failures[0].Handle != "h2" {
		t.Errorf("unexpected failures after clear: %+v", failures)
	}
}

func TestRecord_ReplacesPreviousEntry(t *testing.T) {
	repo, cleanup := setupTestRepo(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.Record(ctx, "h1", "first reason"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := repo.Record(ctx, "h1", "second reason"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	failures, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected a single entry per handle, got %d", len(failures))
	}
	if failures[0].Reason != "second reason" {
		t.Errorf("reason = %q", failures[0].Reason)
	}
}
