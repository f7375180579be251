package store

import "curatord/pkg/models"

// DocIndex adapts the package-level document metadata accessors to the
// archive.Index interface.
type DocIndex struct{}

func (DocIndex) SaveDocMeta(meta models.DocumentMeta) error { return SaveDocMeta(meta) }

func (DocIndex) GetDocMeta(name string) (models.DocumentMeta, bool, error) {
	return GetDocMeta(name)
}

func (DocIndex) DeleteDocMeta(name string) error { return DeleteDocMeta(name) }

func (DocIndex) ListDocMetas() ([]models.DocumentMeta, error) { return ListDocMetas() }
