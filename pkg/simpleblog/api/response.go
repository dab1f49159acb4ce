package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// Envelope is the uniform response body: every endpoint, success or failure,
// answers with it.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// BlogResponse is a blog record plus its rendered HTML content string.
type BlogResponse struct {
	*simpleblog.Blog
	ContentString string `json:"contentString"`
}

func newBlogResponse(blog *simpleblog.Blog) BlogResponse {
	return BlogResponse{
		Blog:          blog,
		ContentString: simpleblog.RenderBlocks(blog.Content),
	}
}

func newBlogListResponse(blogs []*simpleblog.Blog) []BlogResponse {
	resp := make([]BlogResponse, 0, len(blogs))
	for _, blog := range blogs {
		resp = append(resp, newBlogResponse(blog))
	}
	return resp
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body Envelope) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

// writeError maps service errors onto HTTP status codes. Unknown errors are
// logged and reported as a generic 500 so internals never leak to callers.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	var message string

	switch {
	case errors.Is(err, simpleblog.ErrTitleRequired):
		status, message = http.StatusBadRequest, "Title is required"
	case errors.Is(err, simpleblog.ErrBlogNotFound):
		status, message = http.StatusNotFound, "Blog not found"
	case errors.Is(err, simpleblog.ErrAlreadyPublished):
		status, message = http.StatusConflict, "Blog is already published"
	case errors.Is(err, simpleblog.ErrStorageFailed):
		status, message = http.StatusBadGateway, "Failed to store uploaded file"
	default:
		status, message = http.StatusInternalServerError, "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
	} else {
		slog.Warn("Request rejected", "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, r, status, Envelope{Success: false, Message: message})
}

func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, r, http.StatusBadRequest, Envelope{Success: false, Message: message})
}
