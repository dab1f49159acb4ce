package api

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// parseMemoryLimit is how much of the multipart form chi keeps in memory
// before spilling to disk. Staged files are copied out regardless.
const parseMemoryLimit = 8 << 20

// BlogHandler handles the administrative blog endpoints: drafting,
// publishing, updating, listing and deleting.
type BlogHandler struct {
	service simpleblog.Service
	stager  *Stager
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(service simpleblog.Service, stager *Stager) *BlogHandler {
	return &BlogHandler{service: service, stager: stager}
}

// Routes returns the routes for blog administration
func (h *BlogHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.CreateDraft)
	r.Post("/publish", h.Publish)
	r.Post("/{blogID}/publish", h.Publish)
	r.Get("/", h.ListBlogs)
	r.Get("/{blogID}", h.GetBlog)
	r.Put("/{blogID}", h.UpdateBlog)
	r.Delete("/{blogID}", h.DeleteBlog)

	return r
}

// CreateDraft saves a new blog in the draft state.
func (h *BlogHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeBadRequest(w, r, "Invalid form payload")
		return
	}

	cover, images, err := h.stager.stageBlogFiles(r)
	defer releaseAssets(cover, images)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	req := simpleblog.CreateDraftRequest{
		Title:         r.FormValue("title"),
		SubTitle:      r.FormValue("subTitle"),
		Content:       r.FormValue("content"),
		Tags:          simpleblog.ParseTags(r.FormValue("tags")),
		CoverImage:    cover,
		ContentImages: images,
	}

	blog, err := h.service.CreateDraft(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Draft created", "blog_id", blog.ID.String())
	writeJSON(w, r, http.StatusCreated, Envelope{
		Success: true,
		Message: "Blog saved as draft",
		Data:    newBlogResponse(blog),
	})
}

// Publish publishes an existing draft when the URL carries a blog ID, or
// creates a new blog directly in the published state when it does not.
func (h *BlogHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if err := parseForm(r); err != nil {
		writeBadRequest(w, r, "Invalid form payload")
		return
	}

	var blogID *uuid.UUID
	if idStr := chi.URLParam(r, "blogID"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeBadRequest(w, r, "Invalid blog ID")
			return
		}
		blogID = &id
	}

	fields, cover, images, err := h.stageFields(r)
	defer releaseAssets(cover, images)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	blog, err := h.service.Publish(r.Context(), simpleblog.PublishRequest{
		BlogID: blogID,
		Fields: fields,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Blog published", "blog_id", blog.ID.String())
	writeJSON(w, r, http.StatusOK, Envelope{
		Success: true,
		Message: "Blog published",
		Data:    newBlogResponse(blog),
	})
}

// UpdateBlog applies a partial update to an existing blog. Only the submitted
// fields change; lifecycle state is untouched.
func (h *BlogHandler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "blogID"))
	if err != nil {
		writeBadRequest(w, r, "Invalid blog ID")
		return
	}

	if err := parseForm(r); err != nil {
		writeBadRequest(w, r, "Invalid form payload")
		return
	}

	fields, cover, images, err := h.stageFields(r)
	defer releaseAssets(cover, images)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	blog, err := h.service.UpdateBlog(r.Context(), id, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("Blog updated", "blog_id", id.String())
	writeJSON(w, r, http.StatusOK, Envelope{
		Success: true,
		Message: "Blog updated",
		Data:    newBlogResponse(blog),
	})
}

// GetBlog retrieves a single blog by ID.
func (h *BlogHandler) GetBlog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "blogID"))
	if err != nil {
		writeBadRequest(w, r, "Invalid blog ID")
		return
	}

	blog, err := h.service.GetBlog(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, Envelope{Success: true, Data: newBlogResponse(blog)})
}

// ListBlogs lists blogs, optionally filtered by a ?status= query value.
// Unrecognized filter values list everything.
func (h *BlogHandler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.service.ListBlogs(r.Context(), simpleblog.ListBlogsRequest{
		StatusFilter: r.URL.Query().Get("status"),
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

// DeleteBlog deletes a blog. Published blogs are unpublished back to draft;
// drafts are removed permanently.
func (h *BlogHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "blogID"))
	if err != nil {
		writeBadRequest(w, r, "Invalid blog ID")
		return
	}

	result, err := h.service.DeleteBlog(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "Draft blog deleted permanently"
	if result.Unpublished {
		message = "Blog unpublished and moved to drafts"
	}

	slog.Info("Blog deleted", "blog_id", id.String(), "unpublished", result.Unpublished)
	writeJSON(w, r, http.StatusOK, Envelope{Success: true, Message: message})
}

// stageFields builds a partial-update request from the submitted form. A form
// field that was not submitted stays nil so the service leaves it untouched.
func (h *BlogHandler) stageFields(r *http.Request) (simpleblog.UpdateBlogRequest, *simpleblog.UploadAsset, []simpleblog.UploadAsset, error) {
	cover, images, err := h.stager.stageBlogFiles(r)
	if err != nil {
		return simpleblog.UpdateBlogRequest{}, cover, images, err
	}

	fields := simpleblog.UpdateBlogRequest{
		Title:         formField(r, "title"),
		SubTitle:      formField(r, "subTitle"),
		Content:       formField(r, "content"),
		CoverImage:    cover,
		ContentImages: images,
	}
	if raw := formField(r, "tags"); raw != nil {
		tags := simpleblog.ParseTags(*raw)
		fields.Tags = &tags
	}

	return fields, cover, images, nil
}

// parseForm parses either a multipart or a urlencoded form body.
func parseForm(r *http.Request) error {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return r.ParseMultipartForm(parseMemoryLimit)
	}
	return r.ParseForm()
}

// formField reports a form value only when the field was actually submitted,
// so absent and empty can be told apart.
func formField(r *http.Request, name string) *string {
	var values url.Values
	if r.MultipartForm != nil {
		values = url.Values(r.MultipartForm.Value)
	} else {
		values = r.PostForm
	}

	if vs, ok := values[name]; ok && len(vs) > 0 {
		v := vs[0]
		return &v
	}
	return nil
}
