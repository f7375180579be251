// Package archive stores long texts as sealed file-per-document entries
// with metadata indexed in the store. Documents are retrievable by name
// and cleaned up by age.
package archive

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"curatord/pkg/logger"
	"curatord/pkg/models"
	"curatord/pkg/seal"
)

// PreviewLength is the default cut-off for document previews.
const PreviewLength = 500

// Index persists document metadata.
type Index interface {
	SaveDocMeta(meta models.DocumentMeta) error
	GetDocMeta(name string) (models.DocumentMeta, bool, error)
	DeleteDocMeta(name string) error
	ListDocMetas() ([]models.DocumentMeta, error)
}

// Archive is a directory of sealed documents plus a metadata index.
type Archive struct {
	dir    string
	sealer *seal.Sealer
	index  Index
	now    func() time.Time
}

// New creates the archive directory if needed.
func New(dir string, sealer *seal.Sealer, index Index) (*Archive, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Archive{dir: dir, sealer: sealer, index: index, now: time.Now}, nil
}

// SetClock overrides the archive clock; for tests.
func (a *Archive) SetClock(now func() time.Time) { a.now = now }

// Save seals content into a new document file and indexes its metadata.
// Returns the stored metadata; the Name is the retrieval handle.
func (a *Archive) Save(content, title string) (models.DocumentMeta, error) {
	now := a.now().UTC()
	name := fmt.Sprintf("doc_%s_%s.txt", randName(), now.Format("20060102_150405"))
	sealed, _ := a.sealer.Seal(content)
	path := filepath.Join(a.dir, name)
	if err := os.WriteFile(path, []byte(sealed), 0o600); err != nil {
		return models.DocumentMeta{}, fmt.Errorf("write document: %w", err)
	}
	meta := models.DocumentMeta{
		Name:      name,
		Title:     title,
		Size:      int64(len(content)),
		CreatedTS: now.UnixNano(),
	}
	if err := a.index.SaveDocMeta(meta); err != nil {
		return models.DocumentMeta{}, fmt.Errorf("index document: %w", err)
	}
	logger.Info("document_saved", "name", name, "title", title, "size", meta.Size)
	return meta, nil
}

// Load returns the unsealed content of a document, or false when the
// document does not exist.
func (a *Archive) Load(name string) (string, bool, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, filepath.Base(name)))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return a.sealer.Open(string(data)), true, nil
}

// Meta returns the indexed metadata for a document.
func (a *Archive) Meta(name string) (models.DocumentMeta, bool, error) {
	return a.index.GetDocMeta(name)
}

// List returns metadata for all indexed documents.
func (a *Archive) List() ([]models.DocumentMeta, error) {
	return a.index.ListDocMetas()
}

// Cleanup deletes documents older than maxAge and returns how many were
// removed. Index and file removal are best effort per document.
func (a *Archive) Cleanup(maxAge time.Duration) (int, error) {
	metas, err := a.index.ListDocMetas()
	if err != nil {
		return 0, err
	}
	cutoff := a.now().Add(-maxAge).UnixNano()
	deleted := 0
	for _, meta := range metas {
		if meta.CreatedTS >= cutoff {
			continue
		}
		if err := os.Remove(filepath.Join(a.dir, meta.Name)); err != nil && !os.IsNotExist(err) {
			logger.Error("document_delete_failed", "name", meta.Name, "error", err)
			continue
		}
		if err := a.index.DeleteDocMeta(meta.Name); err != nil {
			logger.Error("document_index_delete_failed", "name", meta.Name, "error", err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		logger.Info("documents_cleaned", "count", deleted)
	}
	return deleted, nil
}

// Preview returns the head of content truncated to max runes with a
// trailing marker; max <= 0 uses PreviewLength.
func Preview(content string, max int) string {
	if max <= 0 {
		max = PreviewLength
	}
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "...\n\n[full text available on request]"
}

func randName() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
