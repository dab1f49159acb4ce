package simpleblog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	gateway    *StorageGateway
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithStorageGateway sets the storage gateway for the service
func WithStorageGateway(gateway *StorageGateway) Option {
	return func(s *service) {
		s.gateway = gateway
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, errors.New("repository is required")
	}
	if s.gateway == nil {
		return nil, errors.New("storage gateway is required")
	}

	return s, nil
}

func (s *service) CreateDraft(ctx context.Context, req CreateDraftRequest) (*Blog, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	// All uploads happen before the record exists: a storage failure aborts
	// the operation with nothing persisted.
	cover, err := s.uploadCover(ctx, req.CoverImage)
	if err != nil {
		return nil, err
	}
	content, err := s.normalizeContent(ctx, req.Content, req.ContentImages)
	if err != nil {
		return nil, err
	}

	blog := &Blog{
		ID:         uuid.New(),
		Title:      title,
		SubTitle:   req.SubTitle,
		Content:    content,
		CoverImage: cover,
		Tags:       req.Tags,
		Status:     BlogStatusDraft,
	}
	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	if err := s.repository.CreateBlog(ctx, blog); err != nil {
		return nil, &BlogError{BlogID: blog.ID, Op: "create_draft", Err: err}
	}

	return forResponse(blog), nil
}

func (s *service) Publish(ctx context.Context, req PublishRequest) (*Blog, error) {
	if req.BlogID != nil {
		return s.publishExisting(ctx, *req.BlogID, req.Fields)
	}
	return s.publishDirect(ctx, req.Fields)
}

// publishExisting promotes a draft to published, applying any supplied field
// updates first.
func (s *service) publishExisting(ctx context.Context, id uuid.UUID, fields UpdateBlogRequest) (*Blog, error) {
	blog, err := s.repository.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := canPublish(blog.Status); err != nil {
		return nil, err
	}

	if err := s.applyFields(ctx, blog, fields); err != nil {
		return nil, err
	}

	// Status and publish time always change together.
	now := time.Now().UTC()
	blog.Status = BlogStatusPublished
	blog.PublishedAt = &now

	if err := s.repository.UpdateBlog(ctx, blog); err != nil {
		return nil, &BlogError{BlogID: blog.ID, Op: "publish", Err: err}
	}

	return forResponse(blog), nil
}

// publishDirect creates a new blog straight into the published state.
func (s *service) publishDirect(ctx context.Context, fields UpdateBlogRequest) (*Blog, error) {
	if fields.Title == nil || strings.TrimSpace(*fields.Title) == "" {
		return nil, ErrTitleRequired
	}

	cover, err := s.uploadCover(ctx, fields.CoverImage)
	if err != nil {
		return nil, err
	}
	var raw string
	if fields.Content != nil {
		raw = *fields.Content
	}
	content, err := s.normalizeContent(ctx, raw, fields.ContentImages)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	blog := &Blog{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(*fields.Title),
		Content:     content,
		CoverImage:  cover,
		Tags:        []string{},
		Status:      BlogStatusPublished,
		PublishedAt: &now,
	}
	if fields.SubTitle != nil {
		blog.SubTitle = *fields.SubTitle
	}
	if fields.Tags != nil {
		blog.Tags = *fields.Tags
	}

	if err := s.repository.CreateBlog(ctx, blog); err != nil {
		return nil, &BlogError{BlogID: blog.ID, Op: "publish", Err: err}
	}

	return forResponse(blog), nil
}

func (s *service) UpdateBlog(ctx context.Context, id uuid.UUID, req UpdateBlogRequest) (*Blog, error) {
	if _, err := s.repository.GetBlog(ctx, id); err != nil {
		return nil, err
	}

	// Build the partial set, uploading any new assets first. Lifecycle fields
	// are never part of an update.
	var fields BlogFields
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		fields.Title = &title
	}
	if req.SubTitle != nil {
		fields.SubTitle = req.SubTitle
	}
	if req.Tags != nil {
		fields.Tags = req.Tags
	}
	if req.CoverImage != nil {
		cover, err := s.uploadCover(ctx, req.CoverImage)
		if err != nil {
			return nil, err
		}
		fields.CoverImage = cover
	}
	if req.Content != nil {
		content, err := s.normalizeContent(ctx, *req.Content, req.ContentImages)
		if err != nil {
			return nil, err
		}
		fields.Content = &content
	}

	if err := s.repository.UpdateBlogFields(ctx, id, fields); err != nil {
		return nil, &BlogError{BlogID: id, Op: "update", Err: err}
	}

	updated, err := s.repository.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	return forResponse(updated), nil
}

func (s *service) DeleteBlog(ctx context.Context, id uuid.UUID) (*DeleteResult, error) {
	blog, err := s.repository.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}

	soft, err := deleteMode(blog.Status)
	if err != nil {
		return nil, err
	}

	if soft {
		blog.Status = BlogStatusDraft
		blog.PublishedAt = nil
		if err := s.repository.UpdateBlog(ctx, blog); err != nil {
			return nil, &BlogError{BlogID: id, Op: "unpublish", Err: err}
		}
		return &DeleteResult{Unpublished: true}, nil
	}

	if err := s.repository.DeleteBlog(ctx, id); err != nil {
		return nil, &BlogError{BlogID: id, Op: "delete", Err: err}
	}
	return &DeleteResult{}, nil
}

func (s *service) GetBlog(ctx context.Context, id uuid.UUID) (*Blog, error) {
	blog, err := s.repository.GetBlog(ctx, id)
	if err != nil {
		return nil, err
	}
	return forResponse(blog), nil
}

func (s *service) ListBlogs(ctx context.Context, req ListBlogsRequest) ([]*Blog, error) {
	filter := ListBlogsFilter{SortBy: req.SortBy}
	if filter.SortBy == "" {
		filter.SortBy = SortByCreatedAtDesc
	}

	// An unrecognized filter value means no filter, not an error.
	if status := BlogStatus(req.StatusFilter); status.IsValid() {
		filter.Status = &status
	}

	blogs, err := s.repository.ListBlogs(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i, blog := range blogs {
		blogs[i] = forResponse(blog)
	}
	return blogs, nil
}

// applyFields mutates the in-memory blog from the supplied partial fields,
// uploading replacement assets before any repository write happens.
func (s *service) applyFields(ctx context.Context, blog *Blog, fields UpdateBlogRequest) error {
	if fields.Title != nil {
		title := strings.TrimSpace(*fields.Title)
		if title == "" {
			return ErrTitleRequired
		}
		blog.Title = title
	}
	if fields.SubTitle != nil {
		blog.SubTitle = *fields.SubTitle
	}
	if fields.Tags != nil {
		blog.Tags = *fields.Tags
	}
	if fields.CoverImage != nil {
		cover, err := s.uploadCover(ctx, fields.CoverImage)
		if err != nil {
			return err
		}
		blog.CoverImage = cover
	}
	if fields.Content != nil {
		content, err := s.normalizeContent(ctx, *fields.Content, fields.ContentImages)
		if err != nil {
			return err
		}
		blog.Content = content
	}
	return nil
}

// uploadCover stores a submitted cover image and returns its URI, or nil when
// no cover was submitted.
func (s *service) uploadCover(ctx context.Context, asset *UploadAsset) (*string, error) {
	if asset == nil {
		return nil, nil
	}
	result, err := s.gateway.Upload(ctx, *asset)
	if err != nil {
		return nil, err
	}
	return &result.URI, nil
}

// normalizeContent parses the raw payload, uploads any submitted inline
// images and resolves their positional placeholders to storage URIs.
func (s *service) normalizeContent(ctx context.Context, raw string, images []UploadAsset) ([]Block, error) {
	blocks := ParseBlocks(raw)

	if len(images) == 0 {
		return blocks, nil
	}

	resolved := make(map[string]string, len(images))
	for i, asset := range images {
		result, err := s.gateway.Upload(ctx, asset)
		if err != nil {
			return nil, err
		}
		resolved[ContentImagePlaceholder(i)] = result.URI
	}

	return ResolveImagePlaceholders(blocks, resolved), nil
}

// forResponse strips transient block identifiers before a blog leaves the
// service.
func forResponse(blog *Blog) *Blog {
	blog.Content = SanitizeBlocks(blog.Content)
	return blog
}
