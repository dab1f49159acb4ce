package simpleblog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// RemoteURIScheme is the URI scheme for assets stored on the remote
// content-addressed backend.
const RemoteURIScheme = "remote"

// LocalURIPrefix is the path prefix under which local-backend assets are
// served.
const LocalURIPrefix = "/uploads"

// StorageGateway uploads binary payloads to a remote content-addressed
// backend, falling back once to local storage when the remote tier fails.
// The two tiers are selected at construction time; there is no per-call
// backend probing and no retry beyond the single fallback hop.
type StorageGateway struct {
	remote BlobStore // nil when no remote backend is configured
	local  BlobStore
}

// NewStorageGateway creates a gateway over the given tiers. remote may be nil
// to run local-only; local is required.
func NewStorageGateway(remote, local BlobStore) (*StorageGateway, error) {
	if local == nil {
		return nil, errors.New("local blob store is required")
	}
	return &StorageGateway{remote: remote, local: local}, nil
}

// Upload stores the staged payload and returns where it landed. The staged
// temp file is released on every exit path, success or failure. When both
// tiers fail the returned error wraps ErrStorageFailed and the caller must
// not persist any record referencing the asset.
func (g *StorageGateway) Upload(ctx context.Context, asset UploadAsset) (*StorageResult, error) {
	defer func() {
		if err := os.Remove(asset.TempPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove staged payload", "path", asset.TempPath, "error", err)
		}
	}()

	if g.remote != nil {
		result, err := g.uploadRemote(ctx, asset)
		if err == nil {
			return result, nil
		}
		slog.Warn("remote upload failed, falling back to local storage",
			"name", asset.OriginalName, "error", err)
	}

	return g.uploadLocal(ctx, asset)
}

// uploadRemote keys the object by the payload's SHA-256, so identical bytes
// land on the same identifier (true content addressing).
func (g *StorageGateway) uploadRemote(ctx context.Context, asset UploadAsset) (*StorageResult, error) {
	file, err := os.Open(asset.TempPath)
	if err != nil {
		return nil, &StorageError{Backend: string(StorageBackendRemote), Op: "upload", Err: err}
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return nil, &StorageError{Backend: string(StorageBackendRemote), Op: "upload", Err: err}
	}
	hash := hex.EncodeToString(hasher.Sum(nil))

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, &StorageError{Backend: string(StorageBackendRemote), Key: hash, Op: "upload", Err: err}
	}
	if err := g.remote.Upload(ctx, hash, file); err != nil {
		return nil, &StorageError{Backend: string(StorageBackendRemote), Key: hash, Op: "upload", Err: err}
	}

	return &StorageResult{
		Identifier: hash,
		URI:        fmt.Sprintf("%s://%s", RemoteURIScheme, hash),
		Backend:    StorageBackendRemote,
	}, nil
}

// uploadLocal generates a fresh identifier per upload, not a content-derived
// one: identical bytes stored twice through the fallback path get distinct
// identifiers.
func (g *StorageGateway) uploadLocal(ctx context.Context, asset UploadAsset) (*StorageResult, error) {
	id := uuid.New().String()
	key := id + filepath.Ext(asset.OriginalName)

	file, err := os.Open(asset.TempPath)
	if err != nil {
		return nil, &StorageError{
			Backend: string(StorageBackendLocal),
			Key:     key,
			Op:      "upload",
			Err:     fmt.Errorf("%w: %v", ErrStorageFailed, err),
		}
	}
	defer file.Close()

	if err := g.local.Upload(ctx, key, file); err != nil {
		return nil, &StorageError{
			Backend: string(StorageBackendLocal),
			Key:     key,
			Op:      "upload",
			Err:     fmt.Errorf("%w: %v", ErrStorageFailed, err),
		}
	}

	return &StorageResult{
		Identifier: id,
		URI:        LocalURIPrefix + "/" + key,
		Backend:    StorageBackendLocal,
	}, nil
}
