package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

// DocumentService stores document records and their uploaded files.
type DocumentService struct {
	repo   ports.DocumentRepository
	files  ports.FileStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewDocumentService(repo ports.DocumentRepository, files ports.FileStore, logger zerolog.Logger) *DocumentService {
	return &DocumentService{repo: repo, files: files, logger: logger, now: time.Now}
}

// Create stores a document record submitted as JSON, stamped with the caller.
func (s *DocumentService) Create(ctx context.Context, in ports.CreateDocumentInput) (*domain.Document, error) {
	status := domain.DocumentStatus(in.Status)
	if status == "" {
		status = domain.DocumentUploaded
	}

	now := s.now().UTC()
	doc := &domain.Document{
		DocumentID:       orNewID(in.DocumentID),
		UploadedBy:       actorID(ctx),
		OriginalFileName: in.OriginalFileName,
		StoredFilePath:   in.StoredFilePath,
		FileType:         in.FileType,
		UploadDate:       now,
		AgentOutputID:    in.AgentOutputID,
		Status:           status,
		FinalJSONPath:    in.FinalJSONPath,
		FinalDocxPath:    in.FinalDocxPath,
		VersionHistory:   nonNilStrings(in.VersionHistory),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Upload stores every file and creates one document per file with status
// "uploaded". The batch is all or nothing: on any failure the files and
// records created so far are removed again.
func (s *DocumentService) Upload(ctx context.Context, files []ports.UploadedFile) ([]*domain.Document, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files uploaded", domain.ErrValidation)
	}

	stored := make([]*ports.StoredFile, 0, len(files))
	for _, f := range files {
		file, err := s.store(ctx, f)
		if err != nil {
			s.rollback(ctx, nil, stored)
			return nil, err
		}
		stored = append(stored, file)
	}

	uploader := actorID(ctx)
	docs := make([]*domain.Document, 0, len(stored))
	for i, file := range stored {
		doc := s.uploadedDocument(uploader, files[i].ContentType, file)
		if err := s.repo.Create(ctx, doc); err != nil {
			s.rollback(ctx, docs, stored)
			return nil, fmt.Errorf("record upload %q: %w", file.Name, err)
		}
		docs = append(docs, doc)
	}

	for _, doc := range docs {
		s.logger.Info().Str("document_id", doc.DocumentID).Int64("size", doc.SizeBytes).Msg("document uploaded")
	}
	return docs, nil
}

// store saves one upload under its base name.
func (s *DocumentService) store(ctx context.Context, f ports.UploadedFile) (*ports.StoredFile, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %q: %w", f.Name, err)
	}
	defer rc.Close()

	name := path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
	file, err := s.files.Save(ctx, name, f.ContentType, rc)
	if err != nil {
		return nil, fmt.Errorf("store upload %q: %w", name, err)
	}
	if file.Name == "" {
		file.Name = name
	}
	return file, nil
}

func (s *DocumentService) uploadedDocument(uploader, contentType string, file *ports.StoredFile) *domain.Document {
	now := s.now().UTC()
	return &domain.Document{
		DocumentID:       uuid.NewString(),
		UploadedBy:       uploader,
		OriginalFileName: file.Name,
		StoredFilePath:   "gridfs://" + file.ID,
		FileID:           file.ID,
		FileType:         fileType(file.Name, contentType),
		SizeBytes:        file.Size,
		UploadDate:       now,
		Status:           domain.DocumentUploaded,
		VersionHistory:   []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// rollback removes the records and files of a failed upload. It runs even
// when the request context is already cancelled.
func (s *DocumentService) rollback(ctx context.Context, docs []*domain.Document, files []*ports.StoredFile) {
	ctx = context.WithoutCancel(ctx)
	for _, doc := range docs {
		if _, err := s.repo.Delete(ctx, doc.ID); err != nil {
			s.logger.Warn().Err(err).Str("document_id", doc.DocumentID).Msg("upload rollback: record not removed")
		}
	}
	for _, file := range files {
		if err := s.files.Delete(ctx, file.ID); err != nil {
			s.logger.Warn().Err(err).Str("file_id", file.ID).Msg("upload rollback: file not removed")
		}
	}
}

func (s *DocumentService) List(ctx context.Context) ([]*domain.Document, error) {
	return s.repo.List(ctx)
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.repo.FindByID(ctx, id)
}

// OpenFile streams the stored file of a document.
func (s *DocumentService) OpenFile(ctx context.Context, id string) (io.ReadCloser, *ports.StoredFile, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc.FileID == "" {
		return nil, nil, domain.ErrFileNotFound
	}
	rc, file, err := s.files.Open(ctx, doc.FileID)
	if err != nil {
		return nil, nil, err
	}
	if doc.OriginalFileName != "" {
		file.Name = doc.OriginalFileName
	}
	return rc, file, nil
}

// Delete removes the document and, when it has one, its stored file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if doc.FileID == "" {
		return nil
	}
	if err := s.files.Delete(ctx, doc.FileID); err != nil && !errors.Is(err, domain.ErrFileNotFound) {
		s.logger.Warn().Err(err).Str("file_id", doc.FileID).Msg("stored file not removed")
	}
	return nil
}

func fileType(name, contentType string) string {
	if ext := strings.TrimPrefix(path.Ext(name), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return contentType
}

// actorID returns the account id of the authenticated caller, if any.
func actorID(ctx context.Context) string {
	if claims, ok := domain.ClaimsFromContext(ctx); ok {
		return claims.AccountID
	}
	return ""
}

func orNewID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
