package simpleblog

import (
	"time"

	"github.com/google/uuid"
)

// BlogStatus is the domain type for blog lifecycle states.
type BlogStatus string

// Blog status constants (typed).
const (
	BlogStatusDraft     BlogStatus = "DRAFT"
	BlogStatusPublished BlogStatus = "PUBLISHED"
)

// IsValid reports whether the status is one of the known lifecycle states.
func (s BlogStatus) IsValid() bool {
	return s == BlogStatusDraft || s == BlogStatusPublished
}

// BlockType is the domain type for content block kinds.
type BlockType string

// Block type constants (typed).
const (
	BlockTypeText  BlockType = "text"
	BlockTypeImage BlockType = "image"
)

// Block is one unit of blog content. RefID is a transient editor-side
// identifier that may arrive with submitted content; it is internal-only and
// is stripped before any block is returned to a caller.
type Block struct {
	Type  BlockType `json:"type"`
	Value string    `json:"value"`
	RefID string    `json:"_id,omitempty"`
}

// Blog represents an editorial content item.
//
// Status and PublishedAt are owned by the Service and always change together.
// CreatedAt and UpdatedAt are maintained by the repository.
type Blog struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	SubTitle    string     `json:"subTitle,omitempty"`
	Content     []Block    `json:"content"`
	CoverImage  *string    `json:"coverImage"`
	Tags        []string   `json:"tags"`
	Status      BlogStatus `json:"status"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// StorageBackendKind identifies which storage tier served an upload.
type StorageBackendKind string

// Storage backend kind constants (typed).
const (
	StorageBackendRemote StorageBackendKind = "remote"
	StorageBackendLocal  StorageBackendKind = "local"
)

// StorageResult is the ephemeral outcome of a gateway upload. Only URI is
// retained inside a blog record (cover image or content blocks).
type StorageResult struct {
	Identifier string
	URI        string
	Backend    StorageBackendKind
}

// BlogSort determines the ordering of listed blogs.
type BlogSort string

// Sort constants. Admin views order by creation time, published-only views by
// publish time (both newest first).
const (
	SortByCreatedAtDesc   BlogSort = "created_at_desc"
	SortByPublishedAtDesc BlogSort = "published_at_desc"
)

// ListBlogsFilter defines filtering and ordering options for listing blogs.
type ListBlogsFilter struct {
	Status *BlogStatus
	SortBy BlogSort
}

// BlogFields is a partial field set for repository-level updates. Nil fields
// are left untouched. Status and PublishedAt are deliberately absent: only the
// Service writes those, via full saves.
type BlogFields struct {
	Title      *string
	SubTitle   *string
	Content    *[]Block
	CoverImage *string
	Tags       *[]string
}
