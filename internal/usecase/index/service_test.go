package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/lumakr/luma/internal/domain"
)

// --- Mocks ---

type mockRepo struct {
	records map[string]domain.Record
	items   map[string]domain.MediaItem
	ids     []string
	listErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		records: make(map[string]domain.Record),
		items:   make(map[string]domain.MediaItem),
	}
}

func (m *mockRepo) GetByID(_ context.Context, id string) (domain.Record, error) {
	if rec, ok := m.records[id]; ok {
		return rec, nil
	}
	return domain.Record{}, domain.ErrRecordNotFound
}

func (m *mockRepo) GetMediaItem(_ context.Context, id string) (domain.MediaItem, error) {
	if item, ok := m.items[id]; ok {
		return item, nil
	}
	return domain.MediaItem{}, domain.ErrNotFound
}

func (m *mockRepo) ListIDs(_ context.Context) ([]string, error) {
	return m.ids, m.listErr
}

type mockIndex struct {
	setupCalled bool
	docs        []domain.SearchDocument
	upsertErr   map[string]error // keyed by record id
}

func (m *mockIndex) Setup(_ context.Context) error {
	m.setupCalled = true
	return nil
}

func (m *mockIndex) Upsert(_ context.Context, doc domain.SearchDocument) error {
	if err := m.upsertErr[doc.RecordID]; err != nil {
		return err
	}
	m.docs = append(m.docs, doc)
	return nil
}

// --- Tests ---

func TestReindexOne_FansOutToEveryLanguage(t *testing.T) {
	repo := newMockRepo()
	repo.records["r1"] = domain.Record{
		ID:          "r1",
		PalaceCode:  2,
		Name:        domain.Localized{KO: "근정전", EN: "Geunjeongjeon"},
		Explanation: domain.Localized{KO: "조선의 정전", EN: "The throne hall."},
	}
	idx := &mockIndex{}
	svc := New(repo, idx, zap.NewNop())

	if err := svc.ReindexOne(context.Background(), "r1"); err != nil {
		t.Fatalf("ReindexOne: %v", err)
	}

	if len(idx.docs) != len(domain.Languages) {
		t.Fatalf("expected %d documents, got %d", len(domain.Languages), len(idx.docs))
	}
	seen := map[domain.Language]domain.SearchDocument{}
	for _, doc := range idx.docs {
		seen[doc.Language] = doc
		if doc.RecordID != "r1" || doc.PalaceCode != 2 {
			t.Errorf("unexpected document: %+v", doc)
		}
	}
	if seen[domain.English].Title != "Geunjeongjeon" || seen[domain.English].Body != "The throne hall." {
		t.Errorf("unexpected english doc: %+v", seen[domain.English])
	}
	if seen[domain.Japanese].Title != "" {
		t.Errorf("missing translation must index empty, got %+v", seen[domain.Japanese])
	}
}

func TestReindexOne_BodyIncludesCompleteDetailImages(t *testing.T) {
	repo := newMockRepo()
	repo.records["r1"] = domain.Record{
		ID:           "r1",
		Explanation:  domain.Localized{EN: "Main text."},
		DetailImages: []string{"i1", "i2"},
	}
	// i1 has name and explanation; i2 is missing the explanation and
	// must be excluded.
	repo.items["i1"] = domain.MediaItem{
		Name:        domain.Localized{EN: "Screen"},
		Explanation: domain.Localized{EN: "Folding screen."},
	}
	repo.items["i2"] = domain.MediaItem{
		Name: domain.Localized{EN: "Orphan"},
	}
	idx := &mockIndex{}
	svc := New(repo, idx, zap.NewNop())

	if err := svc.ReindexOne(context.Background(), "r1"); err != nil {
		t.Fatalf("ReindexOne: %v", err)
	}

	var en domain.SearchDocument
	for _, doc := range idx.docs {
		if doc.Language == domain.English {
			en = doc
		}
	}
	want := "Main text.\nScreen\nFolding screen."
	if en.Body != want {
		t.Errorf("expected body %q, got %q", want, en.Body)
	}
	if strings.Contains(en.Body, "Orphan") {
		t.Error("incomplete detail image must not appear in body")
	}
}

func TestReindexOne_StripsMarkup(t *testing.T) {
	repo := newMockRepo()
	repo.records["r1"] = domain.Record{
		ID:          "r1",
		Explanation: domain.Localized{EN: "<p>The <b>throne</b> hall.</p>"},
	}
	idx := &mockIndex{}
	svc := New(repo, idx, zap.NewNop())

	if err := svc.ReindexOne(context.Background(), "r1"); err != nil {
		t.Fatalf("ReindexOne: %v", err)
	}

	for _, doc := range idx.docs {
		if strings.ContainsAny(doc.Body, "<>") {
			t.Errorf("residual markup in body: %q", doc.Body)
		}
		if doc.Language == domain.English && doc.Body != "The throne hall." {
			t.Errorf("unexpected body: %q", doc.Body)
		}
	}
}

func TestReindexAll_LogsAndContinues(t *testing.T) {
	repo := newMockRepo()
	repo.ids = []string{"r1", "r2", "r3"}
	repo.records["r1"] = domain.Record{ID: "r1"}
	repo.records["r3"] = domain.Record{ID: "r3"}
	// r2 is missing and must not stop the run.
	idx := &mockIndex{}
	svc := New(repo, idx, zap.NewNop())

	indexed, err := svc.ReindexAll(context.Background())
	if err == nil {
		t.Error("expected first error to be reported")
	}
	if indexed != 2 {
		t.Errorf("expected 2 indexed records, got %d", indexed)
	}
}

func TestReindexAll_ListError(t *testing.T) {
	repo := newMockRepo()
	repo.listErr = errors.New("cursor broke")
	svc := New(repo, &mockIndex{}, zap.NewNop())

	if _, err := svc.ReindexAll(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestSetup_Delegates(t *testing.T) {
	idx := &mockIndex{}
	svc := New(newMockRepo(), idx, zap.NewNop())

	if err := svc.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !idx.setupCalled {
		t.Error("expected setup to reach the index")
	}
}
