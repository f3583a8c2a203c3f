package memory

import (
	"context"
	"testing"

	"memeboard/core"
)

func sampleDoc(id string) *core.SceneDoc {
	return &core.SceneDoc{
		ID:   id,
		Name: "Test Scene",
		Elements: []core.Element{
			{ID: "e1", Kind: core.KindTextbox, Content: "hello", FontSize: 32},
			{ID: "e2", Kind: core.KindShape, Shape: core.ShapeCircle, Width: 120, Height: 120, FillColor: "#ff0000"},
		},
		ScrollX: 100,
		ScrollY: 50,
	}
}

func TestSceneRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Save(ctx, sampleDoc("s1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Test Scene" || len(got.Elements) != 2 {
		t.Errorf("got %+v", got)
	}
	if got.ScrollX != 100 || got.ScrollY != 50 {
		t.Errorf("scroll = (%v, %v), want (100, 50)", got.ScrollX, got.ScrollY)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set on save")
	}
}

func TestGetReturnsIsolatedCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.Save(ctx, sampleDoc("s1")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, _ := s.Get(ctx, "s1")
	first.Elements[0].Content = "mutated"

	second, _ := s.Get(ctx, "s1")
	if second.Elements[0].Content != "hello" {
		t.Error("mutating a returned doc leaked into the store")
	}
}

func TestSavePreservesCreatedAt(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.Save(ctx, sampleDoc("s1"))
	first, _ := s.Get(ctx, "s1")

	s.Save(ctx, sampleDoc("s1"))
	second, _ := s.Get(ctx, "s1")

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("re-saving changed CreatedAt")
	}
}

func TestSaveRejectsEmptyID(t *testing.T) {
	s := NewStore()
	if err := s.Save(context.Background(), &core.SceneDoc{}); err == nil {
		t.Error("expected an error for an empty scene id")
	}
}

func TestListOmitsElements(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.Save(ctx, sampleDoc("s1"))
	s.Save(ctx, sampleDoc("s2"))

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	for _, d := range docs {
		if d.Elements != nil {
			t.Errorf("list entry %s carries the element payload", d.ID)
		}
	}
}

func TestGetMissingScene(t *testing.T) {
	s := NewStore()
	if _, err := s.Get(context.Background(), "nope"); err == nil {
		t.Error("expected an error for a missing scene")
	}
}

func TestDeleteScene(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.Save(ctx, sampleDoc("s1"))

	if err := s.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "s1"); err == nil {
		t.Error("scene still retrievable after delete")
	}
	if err := s.Delete(ctx, "s1"); err == nil {
		t.Error("expected an error deleting a missing scene")
	}
}

func TestBlobRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	payload := []byte{0x89, 0x50, 0x4e, 0x47}

	if err := s.PutBlob(ctx, "e1", payload); err != nil {
		t.Fatalf("PutBlob: %v", err)
	}
	got, err := s.GetBlob(ctx, "e1")
	if err != nil {
		t.Fatalf("GetBlob: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("got %v, want %v", got, payload)
	}

	// The returned slice is a copy.
	got[0] = 0
	again, _ := s.GetBlob(ctx, "e1")
	if again[0] != 0x89 {
		t.Error("mutating a returned blob leaked into the store")
	}

	if err := s.DeleteBlob(ctx, "e1"); err != nil {
		t.Fatalf("DeleteBlob: %v", err)
	}
	if _, err := s.GetBlob(ctx, "e1"); err == nil {
		t.Error("blob still retrievable after delete")
	}
}
