package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

const (
	// maxUploadBytes caps each submitted file at 5 MiB.
	maxUploadBytes = 5 << 20

	// maxContentImages caps the number of inline images per request.
	maxContentImages = 10

	coverImageField    = "coverImage"
	contentImagesField = "contentImages"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Stager copies multipart file parts into a temp directory so the service
// layer works with plain file paths. Staged files are handed to the storage
// gateway, which removes them after upload; releaseAssets covers the paths
// that never reach the gateway.
type Stager struct {
	tempDir string
}

// NewStager creates a stager rooted at tempDir, creating it if needed.
func NewStager(tempDir string) (*Stager, error) {
	if tempDir == "" {
		return nil, errors.New("temp directory is required")
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &Stager{tempDir: tempDir}, nil
}

// Stage writes one multipart file part to the temp directory and returns the
// staged asset. Only image extensions are accepted.
func (s *Stager) Stage(header *multipart.FileHeader) (*simpleblog.UploadAsset, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExts[ext] {
		return nil, fmt.Errorf("unsupported file type %q: only jpg, jpeg, png and gif are allowed", ext)
	}
	if header.Size > maxUploadBytes {
		return nil, fmt.Errorf("file %q exceeds the %d byte limit", header.Filename, maxUploadBytes)
	}

	src, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	tempPath := filepath.Join(s.tempDir, uuid.New().String()+ext)
	dst, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(tempPath)
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	return &simpleblog.UploadAsset{TempPath: tempPath, OriginalName: header.Filename}, nil
}

// stageBlogFiles stages the cover image and inline content images from an
// already-parsed multipart form.
func (s *Stager) stageBlogFiles(r *http.Request) (cover *simpleblog.UploadAsset, images []simpleblog.UploadAsset, err error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}

	if headers := r.MultipartForm.File[coverImageField]; len(headers) > 0 {
		cover, err = s.Stage(headers[0])
		if err != nil {
			return nil, nil, err
		}
	}

	headers := r.MultipartForm.File[contentImagesField]
	if len(headers) > maxContentImages {
		return cover, nil, fmt.Errorf("at most %d content images are allowed", maxContentImages)
	}
	for _, header := range headers {
		asset, err := s.Stage(header)
		if err != nil {
			return cover, images, err
		}
		images = append(images, *asset)
	}

	return cover, images, nil
}

// releaseAssets removes staged temp files that are still on disk. Files the
// gateway already consumed are gone; missing paths are not an error.
func releaseAssets(cover *simpleblog.UploadAsset, images []simpleblog.UploadAsset) {
	remove := func(path string) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove staged file", "path", path, "error", err)
		}
	}
	if cover != nil {
		remove(cover.TempPath)
	}
	for _, asset := range images {
		remove(asset.TempPath)
	}
}
