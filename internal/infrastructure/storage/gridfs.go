// Package storage keeps uploaded document content in MongoDB GridFS, next to
// the document records that reference it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reqforge/requirements-api/internal/core/domain"
	"github.com/reqforge/requirements-api/internal/core/ports"
)

const bucketName = "uploads"

// GridFSStore implements ports.FileStore on a GridFS bucket.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

// NewGridFSStore opens the "uploads" bucket of db.
func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

// Save streams r into a new GridFS file.
func (s *GridFSStore) Save(ctx context.Context, name, contentType string, r io.Reader) (*ports.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	counter := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.D{{Key: "content_type", Value: contentType}})

	oid, err := s.bucket.UploadFromStream(name, counter, opts)
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", name, err)
	}

	return &ports.StoredFile{
		ID:          oid.Hex(),
		Name:        name,
		ContentType: contentType,
		Size:        counter.n,
	}, nil
}

// Open returns a reader over the stored file. The caller closes it.
func (s *GridFSStore) Open(ctx context.Context, id string) (io.ReadCloser, *ports.StoredFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil, domain.ErrFileNotFound
	}

	stream, err := s.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, nil, domain.ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("open file %s: %w", id, err)
	}

	file := stream.GetFile()
	info := &ports.StoredFile{ID: id, Name: file.Name, Size: file.Length}
	if len(file.Metadata) > 0 {
		if ct, ok := file.Metadata.Lookup("content_type").StringValueOK(); ok {
			info.ContentType = ct
		}
	}
	return stream, info, nil
}

// Delete removes the file and its chunks.
func (s *GridFSStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrFileNotFound
	}
	if err := s.bucket.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.ErrFileNotFound
		}
		return fmt.Errorf("delete file %s: %w", id, err)
	}
	return nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
