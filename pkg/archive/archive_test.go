package archive

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"curatord/pkg/models"
	"curatord/pkg/seal"
)

type memIndex struct {
	m map[string]models.DocumentMeta
}

func newMemIndex() *memIndex { return &memIndex{m: map[string]models.DocumentMeta{}} }

func (i *memIndex) SaveDocMeta(meta models.DocumentMeta) error {
	i.m[meta.Name] = meta
	return nil
}

func (i *memIndex) GetDocMeta(name string) (models.DocumentMeta, bool, error) {
	meta, ok := i.m[name]
	return meta, ok, nil
}

func (i *memIndex) DeleteDocMeta(name string) error {
	delete(i.m, name)
	return nil
}

func (i *memIndex) ListDocMetas() ([]models.DocumentMeta, error) {
	out := make([]models.DocumentMeta, 0, len(i.m))
	for _, meta := range i.m {
		out = append(out, meta)
	}
	return out, nil
}

func newTestArchive(t *testing.T) (*Archive, *memIndex) {
	t.Helper()
	idx := newMemIndex()
	sealer := seal.New(bytes.Repeat([]byte{0x07}, 32), "")
	a, err := New(t.TempDir(), sealer, idx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, idx
}

func TestSaveAndLoad(t *testing.T) {
	a, idx := newTestArchive(t)
	const content = "длинный текст документа"
	meta, err := a.Save(content, "заметка")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(meta.Name, "doc_") || !strings.HasSuffix(meta.Name, ".txt") {
		t.Fatalf("unexpected name %q", meta.Name)
	}
	if meta.Size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", meta.Size, len(content))
	}
	if _, ok := idx.m[meta.Name]; !ok {
		t.Fatal("metadata not indexed")
	}

	got, ok, err := a.Load(meta.Name)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got != content {
		t.Fatalf("Load = %q, want %q", got, content)
	}
}

func TestLoadMissing(t *testing.T) {
	a, _ := newTestArchive(t)
	if _, ok, err := a.Load("no_such_doc.txt"); ok || err != nil {
		t.Fatalf("Load missing: ok=%v err=%v", ok, err)
	}
	// path traversal is reduced to the base name
	if _, ok, _ := a.Load("../../etc/passwd"); ok {
		t.Fatal("traversal loaded a file")
	}
}

func TestCleanupByAge(t *testing.T) {
	a, idx := newTestArchive(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a.SetClock(func() time.Time { return now })

	old, err := a.Save("старый", "old")
	if err != nil {
		t.Fatalf("Save old: %v", err)
	}
	now = now.Add(31 * 24 * time.Hour)
	fresh, err := a.Save("свежий", "fresh")
	if err != nil {
		t.Fatalf("Save fresh: %v", err)
	}

	deleted, err := a.Cleanup(30 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if _, ok, _ := a.Load(old.Name); ok {
		t.Fatal("old document survived cleanup")
	}
	if _, ok, _ := a.Load(fresh.Name); !ok {
		t.Fatal("fresh document was removed")
	}
	if _, ok := idx.m[old.Name]; ok {
		t.Fatal("old metadata survived cleanup")
	}
}

func TestPreview(t *testing.T) {
	short := "короткий текст"
	if got := Preview(short, 100); got != short {
		t.Fatalf("short preview = %q", got)
	}
	long := strings.Repeat("я", 600)
	got := Preview(long, 0)
	if !strings.HasPrefix(got, strings.Repeat("я", PreviewLength)) {
		t.Fatal("preview head truncated incorrectly")
	}
	if !strings.HasSuffix(got, "[full text available on request]") {
		t.Fatalf("preview missing marker: %q", got[len(got)-60:])
	}
}
