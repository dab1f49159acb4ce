package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// PublicHandler serves the reader-facing endpoints. Only published blogs are
// visible here; drafts answer 404 the same way missing records do.
type PublicHandler struct {
	service simpleblog.Service
	pages   *PageRenderer
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(service simpleblog.Service, pages *PageRenderer) *PublicHandler {
	return &PublicHandler{service: service, pages: pages}
}

// Routes returns the routes for public blog reads
func (h *PublicHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/blogs", h.ListPublished)
	r.Get("/blog/{blogID}", h.GetPublished)

	return r
}

// ListPublished lists published blogs, most recently published first.
func (h *PublicHandler) ListPublished(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListBlogs(r.Context(), simpleblog.ListBlogsRequest{
		StatusFilter: string(simpleblog.BlogStatusPublished),
		SortBy:       simpleblog.SortByPublishedAtDesc,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	count := len(blogs)
	writeJSON(w, r, http.StatusOK, Envelope{
		Success: true,
		Count:   &count,
		Data:    newBlogListResponse(blogs),
	})
}

// GetPublished retrieves a single published blog.
func (h *PublicHandler) GetPublished(w http.ResponseWriter, r *http.Request) {
	blog, err := h.publishedBlog(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, Envelope{Success: true, Data: newBlogResponse(blog)})
}

// ArticlePage renders a published blog as a standalone HTML page. Mounted at
// the site root rather than under the API prefix.
func (h *PublicHandler) ArticlePage(w http.ResponseWriter, r *http.Request) {
	blog, err := h.publishedBlog(r)
	if err != nil {
		if errors.Is(err, simpleblog.ErrBlogNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("Failed to load article", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.RenderArticle(w, blog); err != nil {
		slog.Error("Failed to render article", "blog_id", blog.ID.String(), "error", err)
	}
}

// publishedBlog loads the requested blog and hides anything not published.
func (h *PublicHandler) publishedBlog(r *http.Request) (*simpleblog.Blog, error) {
	id, err := uuid.Parse(chi.URLParam(r, "blogID"))
	if err != nil {
		return nil, simpleblog.ErrBlogNotFound
	}

	blog, err := h.service.GetBlog(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if blog.Status != simpleblog.BlogStatusPublished {
		return nil, simpleblog.ErrBlogNotFound
	}

	return blog, nil
}
