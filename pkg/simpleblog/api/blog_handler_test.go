package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/api"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/memory"
	memorystorage "github.com/tendant/simple-blog/pkg/simpleblog/storage/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
}

type blogPayload struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	SubTitle      string             `json:"subTitle"`
	Status        string             `json:"status"`
	PublishedAt   *string            `json:"publishedAt"`
	Content       []simpleblog.Block `json:"content"`
	ContentString string             `json:"contentString"`
}

type filePart struct {
	field string
	name  string
	data  []byte
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	gw, err := simpleblog.NewStorageGateway(memorystorage.New(), memorystorage.New())
	require.NoError(t, err)

	svc, err := simpleblog.New(
		simpleblog.WithRepository(memory.New()),
		simpleblog.WithStorageGateway(gw),
	)
	require.NoError(t, err)

	stager, err := api.NewStager(t.TempDir())
	require.NoError(t, err)

	pages, err := api.NewPageRenderer()
	require.NoError(t, err)

	publicHandler := api.NewPublicHandler(svc, pages)

	r := chi.NewRouter()
	r.Mount("/api/blog", api.NewBlogHandler(svc, stager).Routes())
	r.Mount("/api/public", publicHandler.Routes())
	r.Mount("/api/upload", api.NewUploadHandler(gw, stager).Routes())
	r.Get("/blog/{blogID}", publicHandler.ArticlePage)

	return r
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...filePart) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func doJSON(t *testing.T, router http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func decodeBlog(t *testing.T, data json.RawMessage) blogPayload {
	t.Helper()
	var blog blogPayload
	require.NoError(t, json.Unmarshal(data, &blog))
	return blog
}

func createDraft(t *testing.T, router http.Handler, fields map[string]string, files ...filePart) blogPayload {
	t.Helper()

	req := multipartRequest(t, http.MethodPost, "/api/blog/", fields, files...)
	rec, env := doJSON(t, router, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)
	return decodeBlog(t, env.Data)
}

func TestCreateDraftEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("creates draft with envelope", func(t *testing.T) {
		blog := createDraft(t, router, map[string]string{
			"title":    "Hello",
			"subTitle": "World",
			"content":  "plain text body",
			"tags":     "go, blog",
		})

		assert.Equal(t, "Hello", blog.Title)
		assert.Equal(t, "DRAFT", blog.Status)
		assert.Nil(t, blog.PublishedAt)
		assert.Equal(t, "<p>plain text body</p>", blog.ContentString)
	})

	t.Run("missing title is a 400", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/blog/", map[string]string{
			"content": "no title",
		})
		rec, env := doJSON(t, router, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("cover image is stored and referenced", func(t *testing.T) {
		blog := createDraft(t, router,
			map[string]string{"title": "With Cover"},
			filePart{field: "coverImage", name: "cover.png", data: []byte("png bytes")},
		)

		assert.Equal(t, "With Cover", blog.Title)
	})

	t.Run("rejects non-image upload", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/blog/",
			map[string]string{"title": "Bad Upload"},
			filePart{field: "coverImage", name: "payload.exe", data: []byte("nope")},
		)
		rec, env := doJSON(t, router, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("inline image placeholders resolve", func(t *testing.T) {
		content := `[{"type":"text","value":"see"},{"type":"image","value":"contentImages[0]"}]`
		blog := createDraft(t, router,
			map[string]string{"title": "Inline", "content": content},
			filePart{field: "contentImages", name: "pic.jpg", data: []byte("jpg bytes")},
		)

		require.Len(t, blog.Content, 2)
		assert.NotEqual(t, "contentImages[0]", blog.Content[1].Value)
	})
}

func TestPublishEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("publish existing draft", func(t *testing.T) {
		draft := createDraft(t, router, map[string]string{"title": "To Publish"})

		req := multipartRequest(t, http.MethodPost, "/api/blog/"+draft.ID+"/publish", nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		blog := decodeBlog(t, env.Data)
		assert.Equal(t, "PUBLISHED", blog.Status)
		assert.NotNil(t, blog.PublishedAt)
	})

	t.Run("double publish conflicts", func(t *testing.T) {
		draft := createDraft(t, router, map[string]string{"title": "Once Only"})

		req := multipartRequest(t, http.MethodPost, "/api/blog/"+draft.ID+"/publish", nil)
		rec, _ := doJSON(t, router, req)
		require.Equal(t, http.StatusOK, rec.Code)

		req = multipartRequest(t, http.MethodPost, "/api/blog/"+draft.ID+"/publish", nil)
		rec, env := doJSON(t, router, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, env.Success)
	})

	t.Run("direct publish without blog ID", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/blog/publish", map[string]string{
			"title": "Direct",
		})
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		blog := decodeBlog(t, env.Data)
		assert.Equal(t, "PUBLISHED", blog.Status)
	})
}

func TestUpdateEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("partial update", func(t *testing.T) {
		draft := createDraft(t, router, map[string]string{
			"title":    "Before",
			"subTitle": "Unchanged",
		})

		req := multipartRequest(t, http.MethodPut, "/api/blog/"+draft.ID, map[string]string{
			"title": "After",
		})
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		blog := decodeBlog(t, env.Data)
		assert.Equal(t, "After", blog.Title)
		assert.Equal(t, "Unchanged", blog.SubTitle)
	})

	t.Run("update missing blog", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPut, "/api/blog/00000000-0000-0000-0000-000000000001", map[string]string{
			"title": "Nobody Home",
		})
		rec, _ := doJSON(t, router, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetAndListEndpoints(t *testing.T) {
	router := newTestRouter(t)

	draft := createDraft(t, router, map[string]string{"title": "Only One"})

	t.Run("get by ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/blog/"+draft.ID, nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		blog := decodeBlog(t, env.Data)
		assert.Equal(t, "Only One", blog.Title)
	})

	t.Run("invalid ID is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/blog/not-a-uuid", nil)
		rec, _ := doJSON(t, router, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing blog is a 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/blog/00000000-0000-0000-0000-000000000001", nil)
		rec, _ := doJSON(t, router, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list reports count", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/blog/", nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 1, *env.Count)
	})

	t.Run("status filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/blog/?status=PUBLISHED", nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 0, *env.Count)
	})
}

func TestDeleteEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("deleting a draft removes it", func(t *testing.T) {
		draft := createDraft(t, router, map[string]string{"title": "Short Lived"})

		req := httptest.NewRequest(http.MethodDelete, "/api/blog/"+draft.ID, nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, env.Message, "deleted permanently")
	})

	t.Run("deleting a published blog unpublishes it", func(t *testing.T) {
		draft := createDraft(t, router, map[string]string{"title": "Resilient"})
		req := multipartRequest(t, http.MethodPost, "/api/blog/"+draft.ID+"/publish", nil)
		rec, _ := doJSON(t, router, req)
		require.Equal(t, http.StatusOK, rec.Code)

		req = httptest.NewRequest(http.MethodDelete, "/api/blog/"+draft.ID, nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, env.Message, "unpublished")

		// The record is still there, back in draft.
		req = httptest.NewRequest(http.MethodGet, "/api/blog/"+draft.ID, nil)
		rec, env = doJSON(t, router, req)
		require.Equal(t, http.StatusOK, rec.Code)
		blog := decodeBlog(t, env.Data)
		assert.Equal(t, "DRAFT", blog.Status)
	})
}

func TestPublicEndpoints(t *testing.T) {
	router := newTestRouter(t)

	draft := createDraft(t, router, map[string]string{"title": "Hidden Draft"})
	published := createDraft(t, router, map[string]string{"title": "Visible Post"})
	req := multipartRequest(t, http.MethodPost, "/api/blog/"+published.ID+"/publish", nil)
	rec, _ := doJSON(t, router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("public list shows only published", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/public/blogs", nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, env.Count)
		assert.Equal(t, 1, *env.Count)
	})

	t.Run("public get hides drafts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/public/blog/"+draft.ID, nil)
		rec, _ := doJSON(t, router, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("public get serves published", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/public/blog/"+published.ID, nil)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusOK, rec.Code)
		blog := decodeBlog(t, env.Data)
		assert.Equal(t, "Visible Post", blog.Title)
	})

	t.Run("article page renders HTML", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/blog/"+published.ID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Visible Post")
	})

	t.Run("article page hides drafts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/blog/"+draft.ID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUploadEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("stores a file and returns its URI", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/upload/", nil,
			filePart{field: "file", name: "standalone.png", data: []byte("bytes")},
		)
		rec, env := doJSON(t, router, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.True(t, env.Success)

		var data map[string]string
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.NotEmpty(t, data["url"])
	})

	t.Run("missing file is a 400", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/api/upload/", map[string]string{"other": "field"})
		rec, env := doJSON(t, router, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
	})
}
