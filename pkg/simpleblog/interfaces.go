package simpleblog

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for storage backends
type BlobStore interface {
	// Upload uploads content directly
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download downloads content directly
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete deletes content
	Delete(ctx context.Context, objectKey string) error
}

// Repository defines the interface for blog persistence.
//
// CreatedAt and UpdatedAt are owned by the repository: CreateBlog stamps both,
// UpdateBlog and UpdateBlogFields bump UpdatedAt. Last write wins; no
// compare-and-swap is provided.
type Repository interface {
	CreateBlog(ctx context.Context, blog *Blog) error
	GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error)
	UpdateBlog(ctx context.Context, blog *Blog) error
	UpdateBlogFields(ctx context.Context, id uuid.UUID, fields BlogFields) error
	DeleteBlog(ctx context.Context, id uuid.UUID) error
	ListBlogs(ctx context.Context, filter ListBlogsFilter) ([]*Blog, error)
}
