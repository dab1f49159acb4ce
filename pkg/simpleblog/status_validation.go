package simpleblog

import "fmt"

// canPublish checks whether a blog can transition to the published state.
// Returns true if publishing is allowed, false with an error otherwise.
//
// Note: this is a read-then-write check; two concurrent publishes on the same
// draft are not mutually excluded and the last repository write wins.
func canPublish(status BlogStatus) (bool, error) {
	switch status {
	case BlogStatusDraft:
		return true, nil
	case BlogStatusPublished:
		return false, fmt.Errorf("%w: blog is already in the published state", ErrAlreadyPublished)
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidBlogStatus, status)
	}
}

// deleteMode decides the deletion path for the given state: published blogs
// are soft-deleted (unpublished back to draft), drafts are removed
// permanently. The state space is exhaustive over the two lifecycle states.
func deleteMode(status BlogStatus) (soft bool, err error) {
	switch status {
	case BlogStatusPublished:
		return true, nil
	case BlogStatusDraft:
		return false, nil
	default:
		return false, fmt.Errorf("%w: unknown status %s", ErrInvalidBlogStatus, status)
	}
}
