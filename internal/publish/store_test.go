package publish

import (
	"errors"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "publications.db"))
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	return store
}

func samplePublication(id, slug string) *Publication {
	return &Publication{
		ID:          id,
		Slug:        slug,
		ProjectName: "Demo",
		TemplateID:  "quiz",
		Technology:  "arjs",
		HTML:        "<!DOCTYPE html><html></html>",
	}
}

func TestStoreSaveAndGet(t *testing.T) {
	store := testStore(t)
	if err := store.Save(samplePublication("pub-1", "demo")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetBySlug("demo")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if got.ID != "pub-1" || got.HTML == "" {
		t.Errorf("loaded publication = %+v", got)
	}

	got, err = store.GetByID("pub-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Slug != "demo" {
		t.Errorf("slug = %q, want demo", got.Slug)
	}
}

func TestStoreSaveUpdates(t *testing.T) {
	store := testStore(t)
	p := samplePublication("pub-1", "demo")
	if err := store.Save(p); err != nil {
		t.Fatal(err)
	}
	p.ProjectName = "Renamed"
	if err := store.Save(p); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err := store.GetByID("pub-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ProjectName != "Renamed" {
		t.Errorf("project name = %q, want Renamed", got.ProjectName)
	}
}

func TestStoreNotFound(t *testing.T) {
	store := testStore(t)
	if _, err := store.GetBySlug("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBySlug error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID error = %v, want ErrNotFound", err)
	}
	if err := store.Delete("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete error = %v, want ErrNotFound", err)
	}
}

func TestStoreListOmitsHTML(t *testing.T) {
	store := testStore(t)
	for _, p := range []*Publication{
		samplePublication("pub-1", "one"),
		samplePublication("pub-2", "two"),
	} {
		if err := store.Save(p); err != nil {
			t.Fatal(err)
		}
	}

	list, err := store.List(0, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("listed %d publications, want 2", len(list))
	}
	for _, p := range list {
		if p.HTML != "" {
			t.Errorf("listing leaked HTML body for %s", p.ID)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	store := testStore(t)
	if err := store.Save(samplePublication("pub-1", "demo")); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete("pub-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetByID("pub-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
