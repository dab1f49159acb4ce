package simpleblog

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrBlogNotFound indicates a blog was not found
	ErrBlogNotFound = errors.New("blog not found")

	// ErrAlreadyPublished indicates a publish was attempted on an already-published blog
	ErrAlreadyPublished = errors.New("blog already published")

	// ErrTitleRequired indicates a required title was missing or empty
	ErrTitleRequired = errors.New("title is required")

	// ErrInvalidBlogStatus indicates an unknown blog status
	ErrInvalidBlogStatus = errors.New("invalid blog status")

	// ErrStorageFailed indicates all storage tiers failed for an upload
	ErrStorageFailed = errors.New("storage upload failed")
)

// BlogError represents an error related to blog operations
type BlogError struct {
	BlogID uuid.UUID
	Op     string
	Err    error
}

func (e *BlogError) Error() string {
	return fmt.Sprintf("blog operation %s failed for blog %s: %v", e.Op, e.BlogID, e.Err)
}

func (e *BlogError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
