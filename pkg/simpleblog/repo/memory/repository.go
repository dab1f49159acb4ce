package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// Repository implements simpleblog.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	blogs map[uuid.UUID]*simpleblog.Blog
}

// New creates a new in-memory repository
func New() simpleblog.Repository {
	return &Repository{
		blogs: make(map[uuid.UUID]*simpleblog.Blog),
	}
}

func (r *Repository) CreateBlog(ctx context.Context, blog *simpleblog.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The repository owns the record timestamps.
	now := time.Now().UTC()
	blog.CreatedAt = now
	blog.UpdatedAt = now

	// Create a copy to avoid external modifications
	blogCopy := *blog
	r.blogs[blog.ID] = &blogCopy

	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*simpleblog.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	blog, exists := r.blogs[id]
	if !exists {
		return nil, simpleblog.ErrBlogNotFound
	}

	// Return a copy to prevent external modifications
	blogCopy := *blog
	return &blogCopy, nil
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *simpleblog.Blog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.blogs[blog.ID]
	if !exists {
		return simpleblog.ErrBlogNotFound
	}

	blog.CreatedAt = existing.CreatedAt
	blog.UpdatedAt = time.Now().UTC()

	// Create a copy to avoid external modifications
	blogCopy := *blog
	r.blogs[blog.ID] = &blogCopy

	return nil
}

func (r *Repository) UpdateBlogFields(ctx context.Context, id uuid.UUID, fields simpleblog.BlogFields) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	blog, exists := r.blogs[id]
	if !exists {
		return simpleblog.ErrBlogNotFound
	}

	if fields.Title != nil {
		blog.Title = *fields.Title
	}
	if fields.SubTitle != nil {
		blog.SubTitle = *fields.SubTitle
	}
	if fields.Content != nil {
		blog.Content = *fields.Content
	}
	if fields.CoverImage != nil {
		blog.CoverImage = fields.CoverImage
	}
	if fields.Tags != nil {
		blog.Tags = *fields.Tags
	}
	blog.UpdatedAt = time.Now().UTC()

	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.blogs[id]; !exists {
		return simpleblog.ErrBlogNotFound
	}

	delete(r.blogs, id)
	return nil
}

func (r *Repository) ListBlogs(ctx context.Context, filter simpleblog.ListBlogsFilter) ([]*simpleblog.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*simpleblog.Blog
	for _, blog := range r.blogs {
		if filter.Status != nil && blog.Status != *filter.Status {
			continue
		}
		blogCopy := *blog
		result = append(result, &blogCopy)
	}

	switch filter.SortBy {
	case simpleblog.SortByPublishedAtDesc:
		// Records without a publish time sort last.
		sort.Slice(result, func(i, j int) bool {
			if result[i].PublishedAt == nil {
				return false
			}
			if result[j].PublishedAt == nil {
				return true
			}
			return result[i].PublishedAt.After(*result[j].PublishedAt)
		})
	default:
		sort.Slice(result, func(i, j int) bool {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		})
	}

	return result, nil
}
