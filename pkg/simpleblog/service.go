package simpleblog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the main interface for the simple-blog library. It is the
// only writer of a blog's Status and PublishedAt fields.
type Service interface {
	// CreateDraft validates the request, stores any submitted assets and
	// creates a new blog in the draft state.
	CreateDraft(ctx context.Context, req CreateDraftRequest) (*Blog, error)

	// Publish either publishes an existing draft (when req.BlogID is set) or
	// creates a new blog directly in the published state.
	Publish(ctx context.Context, req PublishRequest) (*Blog, error)

	// UpdateBlog applies only the fields explicitly supplied. It never
	// touches the lifecycle fields.
	UpdateBlog(ctx context.Context, id uuid.UUID, req UpdateBlogRequest) (*Blog, error)

	// DeleteBlog soft-deletes a published blog (back to draft) and
	// hard-deletes a draft.
	DeleteBlog(ctx context.Context, id uuid.UUID) (*DeleteResult, error)

	GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error)
	ListBlogs(ctx context.Context, req ListBlogsRequest) ([]*Blog, error)
}
