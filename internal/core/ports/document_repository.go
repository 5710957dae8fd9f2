package ports

import (
	"context"
	"io"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// DocumentRepository defines persistence operations for documents.
type DocumentRepository interface {
	Create(ctx context.Context, d *domain.Document) error
	List(ctx context.Context) ([]*domain.Document, error)
	FindByID(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) (*domain.Document, error)
}

// StoredFile describes a file kept by a FileStore.
type StoredFile struct {
	ID          string
	Name        string
	ContentType string
	Size        int64
}

// FileStore keeps the binary content of uploaded documents.
type FileStore interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (*StoredFile, error)
	Open(ctx context.Context, id string) (io.ReadCloser, *StoredFile, error)
	Delete(ctx context.Context, id string) error
}
