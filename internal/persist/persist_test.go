package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Gauravmangate27/novasearch/internal/models"
	"github.com/Gauravmangate27/novasearch/internal/vector"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snap.nova")

	idx := vector.NewFlatIndex()
	docs := []*models.Document{
		models.NewTextDocument("a", "first document"),
		models.NewImageDocument("b", "img/b.jpg", "second"),
	}
	if _, err := idx.Add([]float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Add([]float32{4, 5, 6}); err != nil {
		t.Fatal(err)
	}

	if err := Save(path, idx, docs); err != nil {
		t.Fatal(err)
	}

	restored := vector.NewFlatIndex()
	got, err := Load(path, restored)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Size() != 2 || restored.Dimensions() != 3 {
		t.Errorf("restored index shape: size=%d dim=%d", restored.Size(), restored.Dimensions())
	}
	if len(got) != 2 {
		t.Fatalf("restored %d metadata records, want 2", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("metadata order lost: %q, %q", got[0].ID, got[1].ID)
	}
	if got[1].Kind != models.KindImage || got[1].Content != "img/b.jpg" {
		t.Errorf("image fields lost: %+v", got[1])
	}
}

func TestSaveLoad_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.nova")
	idx := vector.NewFlatIndex()
	if err := Save(path, idx, nil); err != nil {
		t.Fatal(err)
	}
	restored := vector.NewFlatIndex()
	docs, err := Load(path, restored)
	if err != nil {
		t.Fatal(err)
	}
	if restored.Size() != 0 || len(docs) != 0 {
		t.Errorf("expected empty snapshot, got %d vectors, %d docs", restored.Size(), len(docs))
	}
}

func TestSave_RejectsMisalignment(t *testing.T) {
	idx := vector.NewFlatIndex()
	if _, err := idx.Add([]float32{1}); err != nil {
		t.Fatal(err)
	}
	err := Save(filepath.Join(t.TempDir(), "bad.nova"), idx, nil)
	if err == nil {
		t.Error("saving with mismatched metadata count should fail")
	}
}

func TestLoad_RejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.nova")
	if err := os.WriteFile(path, []byte("this is not a snapshot"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, vector.NewFlatIndex()); err == nil {
		t.Error("loading a non-snapshot file should fail")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.nova"), vector.NewFlatIndex()); err == nil {
		t.Error("loading a missing file should fail")
	}
}
