package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lacedup/footwork/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testPosting(id string) model.Posting {
	now := time.Now().UTC()
	return model.Posting{
		ID:       id,
		Title:    "Footwear Design Intern",
		Company:  "Acme Shoes",
		Location: "Portland, OR",
		URL:      "https://example.com/jobs/" + id,
		Source:   model.SourceCareerSite,
		PostedAt: &now,
	}
}

func TestMarkSeenThenHasSeen(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen(testPosting("workday-acme-123")); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := s.HasSeen("workday-acme-123")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after MarkSeen")
	}
}

func TestHasSeenUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.HasSeen("does-not-exist")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if seen {
		t.Error("expected HasSeen to return false for unknown identity")
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)

	p := testPosting("jsearch-abc")
	if err := s.MarkSeen(p); err != nil {
		t.Fatalf("first MarkSeen: %v", err)
	}
	if err := s.MarkSeen(p); err != nil {
		t.Fatalf("second MarkSeen (duplicate): %v", err)
	}

	seen, err := s.HasSeen(p.ID)
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after duplicate MarkSeen")
	}
}

func TestCatalogAppendAndAll(t *testing.T) {
	s := newTestStore(t)
	cat := s.Catalog()

	if err := cat.Append(testPosting("a")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := cat.Append(testPosting("b")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	// Duplicate append is a no-op.
	if err := cat.Append(testPosting("a")); err != nil {
		t.Fatalf("duplicate Append: %v", err)
	}

	all, err := cat.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("catalog has %d entries, want 2", len(all))
	}
	if all[0].Title != "Footwear Design Intern" || all[0].Company != "Acme Shoes" {
		t.Errorf("unexpected catalog entry: %+v", all[0])
	}
}

func TestCatalogRemove(t *testing.T) {
	s := newTestStore(t)
	cat := s.Catalog()

	if err := cat.Append(testPosting("gone")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := cat.Remove("gone"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	all, err := cat.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("catalog has %d entries after remove, want 0", len(all))
	}

	// Removing the seen-set entry must not happen: the posting stays seen
	// even after leaving the catalog.
	if err := s.MarkSeen(testPosting("gone")); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}
	if err := cat.Remove("gone"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	seen, err := s.HasSeen("gone")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("catalog prune must not forget the identity in the seen-set")
	}
}

func TestCatalogSetApplied(t *testing.T) {
	s := newTestStore(t)
	cat := s.Catalog()

	if err := cat.Append(testPosting("x")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := cat.SetApplied("x", true); err != nil {
		t.Fatalf("SetApplied: %v", err)
	}

	all, err := cat.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || !all[0].Applied {
		t.Errorf("expected applied flag set, got %+v", all)
	}
}
