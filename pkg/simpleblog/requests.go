package simpleblog

import "github.com/google/uuid"

// Request DTOs

// UploadAsset is a temp-staged binary payload submitted alongside a request.
// The staging path is owned by the request handling it; the gateway removes it
// on every upload exit path.
type UploadAsset struct {
	TempPath     string
	OriginalName string
}

// CreateDraftRequest contains parameters for creating a draft blog.
// Content is the raw submitted payload: either a serialized block list or
// free-form text.
type CreateDraftRequest struct {
	Title         string
	SubTitle      string
	Content       string
	Tags          []string
	CoverImage    *UploadAsset
	ContentImages []UploadAsset
}

// PublishRequest contains parameters for publishing a blog.
//
// When BlogID is set, the existing draft is published in place and any
// non-nil Fields are applied first. When BlogID is nil, a new blog is created
// directly in the published state from Fields (Title and Content required the
// same way CreateDraft requires them).
type PublishRequest struct {
	BlogID *uuid.UUID
	Fields UpdateBlogRequest
}

// UpdateBlogRequest contains partial-update parameters. Nil fields are left
// untouched. New asset uploads replace prior asset references. Status and
// publish time are never touched by an update.
type UpdateBlogRequest struct {
	Title         *string
	SubTitle      *string
	Content       *string
	Tags          *[]string
	CoverImage    *UploadAsset
	ContentImages []UploadAsset
}

// ListBlogsRequest contains parameters for listing blogs. StatusFilter is the
// raw caller-supplied filter value; an unrecognized value is ignored rather
// than rejected. An empty SortBy means newest-created first.
type ListBlogsRequest struct {
	StatusFilter string
	SortBy       BlogSort
}

// DeleteResult reports which deletion path was taken: a published blog is
// unpublished back to draft (record persists), a draft is removed permanently.
type DeleteResult struct {
	Unpublished bool
}
