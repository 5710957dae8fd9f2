package ports

import (
	"context"
	"io"

	"github.com/reqforge/requirements-api/internal/core/domain"
)

// CreateDocumentInput carries a document record submitted as JSON.
type CreateDocumentInput struct {
	DocumentID       string
	OriginalFileName string
	StoredFilePath   string
	FileType         string
	AgentOutputID    string
	Status           string
	FinalJSONPath    string
	FinalDocxPath    string
	VersionHistory   []string
}

// UploadedFile is one file of a multipart upload.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// DocumentService defines document use cases. The uploader is always taken
// from the claims attached to ctx.
type DocumentService interface {
	Create(ctx context.Context, in CreateDocumentInput) (*domain.Document, error)
	Upload(ctx context.Context, files []UploadedFile) ([]*domain.Document, error)
	List(ctx context.Context) ([]*domain.Document, error)
	Get(ctx context.Context, id string) (*domain.Document, error)
	OpenFile(ctx context.Context, id string) (io.ReadCloser, *StoredFile, error)
	Delete(ctx context.Context, id string) error
}
