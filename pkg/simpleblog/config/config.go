package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/memory"
	repopg "github.com/tendant/simple-blog/pkg/simpleblog/repo/postgres"
	fsstorage "github.com/tendant/simple-blog/pkg/simpleblog/storage/fs"
	s3storage "github.com/tendant/simple-blog/pkg/simpleblog/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of
// library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		DatabaseType: "memory",
		UploadDir:    "./data/uploads",
		TempDir:      "./data/tmp",
	}
}

// ServerConfig represents server configuration for the simple-blog service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseURL  string
	DatabaseType string // "memory", "postgres"

	// Storage configuration. UploadDir is the local storage tier, served
	// under /uploads. TempDir stages inbound multipart payloads.
	UploadDir string
	TempDir   string

	// RemoteStorage enables the remote content-addressed tier. The decision
	// is made here, once, at startup; nil means the gateway runs local-only.
	RemoteStorage *RemoteStorageConfig
}

// RemoteStorageConfig represents configuration for the remote
// content-addressed backend (S3-compatible).
type RemoteStorageConfig struct {
	Region                 string
	Bucket                 string
	AccessKeyID            string
	SecretAccessKey        string
	Endpoint               string
	UsePathStyle           bool
	CreateBucketIfNotExist bool
}

// WithPort sets the HTTP listen port.
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port != "" {
			c.Port = port
		}
		return nil
	}
}

// WithEnvironment sets the runtime environment name.
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env != "" {
			c.Environment = env
		}
		return nil
	}
}

// WithDatabase configures the repository from a connection string. An empty
// value or "memory" selects the in-memory repository; a postgres:// or
// postgresql:// URL selects Postgres.
func WithDatabase(databaseURL string) Option {
	return func(c *ServerConfig) error {
		if databaseURL == "" || databaseURL == "memory" {
			c.DatabaseType = "memory"
			c.DatabaseURL = ""
			return nil
		}
		if hasPrefix(databaseURL, "postgres://") || hasPrefix(databaseURL, "postgresql://") {
			c.DatabaseType = "postgres"
			c.DatabaseURL = databaseURL
			return nil
		}
		return fmt.Errorf("unsupported database URL format: %s (use 'memory' or 'postgresql://...')", databaseURL)
	}
}

// WithStorageDirs sets the local upload directory and the temp staging
// directory.
func WithStorageDirs(uploadDir, tempDir string) Option {
	return func(c *ServerConfig) error {
		if uploadDir != "" {
			c.UploadDir = uploadDir
		}
		if tempDir != "" {
			c.TempDir = tempDir
		}
		return nil
	}
}

// WithRemoteStorage enables the remote storage tier. Bucket and both
// credential values are required together: a partially configured remote tier
// is a configuration error, not a silent local-only fallback.
func WithRemoteStorage(remote RemoteStorageConfig) Option {
	return func(c *ServerConfig) error {
		if remote.Bucket == "" {
			return errors.New("remote storage bucket is required")
		}
		if remote.AccessKeyID == "" || remote.SecretAccessKey == "" {
			return errors.New("remote storage credentials are required")
		}
		c.RemoteStorage = &remote
		return nil
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.DatabaseType != "memory" && c.DatabaseType != "postgres" {
		return errors.New("database_type must be 'memory' or 'postgres'")
	}

	if c.DatabaseType == "postgres" && c.DatabaseURL == "" {
		return errors.New("database_url is required when using postgres")
	}

	if c.UploadDir == "" {
		return errors.New("upload directory is required")
	}
	if c.TempDir == "" {
		return errors.New("temp directory is required")
	}

	return nil
}

// BuildStorageGateway creates the two-tier storage gateway from the
// configuration: the local filesystem tier always, the remote tier only when
// configured.
func (c *ServerConfig) BuildStorageGateway() (*simpleblog.StorageGateway, error) {
	local, err := fsstorage.New(fsstorage.Config{BaseDir: c.UploadDir})
	if err != nil {
		return nil, fmt.Errorf("failed to build local storage backend: %w", err)
	}

	var remote simpleblog.BlobStore
	if c.RemoteStorage != nil {
		remote, err = s3storage.New(s3storage.Config{
			Region:                 c.RemoteStorage.Region,
			Bucket:                 c.RemoteStorage.Bucket,
			AccessKeyID:            c.RemoteStorage.AccessKeyID,
			SecretAccessKey:        c.RemoteStorage.SecretAccessKey,
			Endpoint:               c.RemoteStorage.Endpoint,
			UsePathStyle:           c.RemoteStorage.UsePathStyle,
			CreateBucketIfNotExist: c.RemoteStorage.CreateBucketIfNotExist,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build remote storage backend: %w", err)
		}
	}

	return simpleblog.NewStorageGateway(remote, local)
}

// BuildService creates a Service instance from the server configuration,
// using the supplied storage gateway.
func (c *ServerConfig) BuildService(gateway *simpleblog.StorageGateway) (simpleblog.Service, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	return simpleblog.New(
		simpleblog.WithRepository(repo),
		simpleblog.WithStorageGateway(gateway),
	)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (simpleblog.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		if c.DatabaseURL == "" {
			return nil, errors.New("database_url is required for postgres")
		}
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
