package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// UploadHandler handles standalone file uploads through the storage gateway,
// outside any blog record.
type UploadHandler struct {
	gateway *simpleblog.StorageGateway
	stager  *Stager
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(gateway *simpleblog.StorageGateway, stager *Stager) *UploadHandler {
	return &UploadHandler{gateway: gateway, stager: stager}
}

// Routes returns the routes for standalone uploads
func (h *UploadHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Upload)
	return r
}

// Upload stores a single submitted file and returns its URI.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(parseMemoryLimit); err != nil {
		writeBadRequest(w, r, "Invalid form payload")
		return
	}

	_, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, r, "No file uploaded")
		return
	}

	asset, err := h.stager.Stage(header)
	if err != nil {
		writeBadRequest(w, r, err.Error())
		return
	}

	result, err := h.gateway.Upload(r.Context(), *asset)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("File uploaded", "backend", result.Backend, "uri", result.URI)
	writeJSON(w, r, http.StatusCreated, Envelope{
		Success: true,
		Message: "File uploaded",
		Data:    map[string]string{"url": result.URI},
	})
}
