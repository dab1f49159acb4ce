package simpleblog_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	memorystorage "github.com/tendant/simple-blog/pkg/simpleblog/storage/memory"
)

// failStore simulates an unreachable backend.
type failStore struct{}

func (failStore) Upload(context.Context, string, io.Reader) error {
	return errors.New("backend offline")
}

func (failStore) Download(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("backend offline")
}

func (failStore) Delete(context.Context, string) error {
	return errors.New("backend offline")
}

// stageTemp writes a staged payload the way the HTTP layer would.
func stageTemp(t *testing.T, name, data string) simpleblog.UploadAsset {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return simpleblog.UploadAsset{TempPath: path, OriginalName: name}
}

func TestNewStorageGateway(t *testing.T) {
	t.Run("local store is required", func(t *testing.T) {
		gw, err := simpleblog.NewStorageGateway(memorystorage.New(), nil)
		assert.Error(t, err)
		assert.Nil(t, gw)
	})

	t.Run("remote is optional", func(t *testing.T) {
		gw, err := simpleblog.NewStorageGateway(nil, memorystorage.New())
		assert.NoError(t, err)
		assert.NotNil(t, gw)
	})
}

func TestGatewayUploadRemote(t *testing.T) {
	remote := memorystorage.New()
	gw, err := simpleblog.NewStorageGateway(remote, memorystorage.New())
	require.NoError(t, err)

	data := "image bytes"
	asset := stageTemp(t, "photo.png", data)

	result, err := gw.Upload(context.Background(), asset)
	require.NoError(t, err)

	sum := sha256.Sum256([]byte(data))
	wantID := hex.EncodeToString(sum[:])
	assert.Equal(t, simpleblog.StorageBackendRemote, result.Backend)
	assert.Equal(t, wantID, result.Identifier)
	assert.Equal(t, "remote://"+wantID, result.URI)

	// Object lands under its content hash.
	rc, err := remote.Download(context.Background(), wantID)
	require.NoError(t, err)
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, string(stored))

	// Staged file is gone after a successful upload.
	_, err = os.Stat(asset.TempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestGatewayContentAddressing(t *testing.T) {
	gw, err := simpleblog.NewStorageGateway(memorystorage.New(), memorystorage.New())
	require.NoError(t, err)

	first, err := gw.Upload(context.Background(), stageTemp(t, "a.png", "same bytes"))
	require.NoError(t, err)
	second, err := gw.Upload(context.Background(), stageTemp(t, "b.png", "same bytes"))
	require.NoError(t, err)

	// Identical payloads share one remote identifier regardless of name.
	assert.Equal(t, first.Identifier, second.Identifier)
	assert.Equal(t, first.URI, second.URI)
}

func TestGatewayFallbackToLocal(t *testing.T) {
	local := memorystorage.New()
	gw, err := simpleblog.NewStorageGateway(failStore{}, local)
	require.NoError(t, err)

	asset := stageTemp(t, "photo.jpeg", "payload")

	result, err := gw.Upload(context.Background(), asset)
	require.NoError(t, err)

	assert.Equal(t, simpleblog.StorageBackendLocal, result.Backend)
	assert.Contains(t, result.URI, simpleblog.LocalURIPrefix+"/")
	assert.Contains(t, result.URI, ".jpeg")

	// The local key is a fresh identifier, not a content hash.
	sum := sha256.Sum256([]byte("payload"))
	assert.NotEqual(t, hex.EncodeToString(sum[:]), result.Identifier)

	// Staged file is released on the fallback path too.
	_, err = os.Stat(asset.TempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestGatewayLocalFallbackNotContentAddressed(t *testing.T) {
	gw, err := simpleblog.NewStorageGateway(failStore{}, memorystorage.New())
	require.NoError(t, err)

	first, err := gw.Upload(context.Background(), stageTemp(t, "a.png", "same bytes"))
	require.NoError(t, err)
	second, err := gw.Upload(context.Background(), stageTemp(t, "b.png", "same bytes"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Identifier, second.Identifier)
}

func TestGatewayBothTiersFail(t *testing.T) {
	gw, err := simpleblog.NewStorageGateway(failStore{}, failStore{})
	require.NoError(t, err)

	asset := stageTemp(t, "photo.gif", "payload")

	result, err := gw.Upload(context.Background(), asset)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.ErrorIs(t, err, simpleblog.ErrStorageFailed)

	var storageErr *simpleblog.StorageError
	assert.ErrorAs(t, err, &storageErr)

	// Even a total failure releases the staged payload.
	_, err = os.Stat(asset.TempPath)
	assert.True(t, os.IsNotExist(err))
}

func TestGatewayLocalOnly(t *testing.T) {
	gw, err := simpleblog.NewStorageGateway(nil, memorystorage.New())
	require.NoError(t, err)

	result, err := gw.Upload(context.Background(), stageTemp(t, "pic.jpg", "data"))
	require.NoError(t, err)
	assert.Equal(t, simpleblog.StorageBackendLocal, result.Backend)
}
