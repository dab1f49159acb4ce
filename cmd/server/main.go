package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/api"
	"github.com/tendant/simple-blog/pkg/simpleblog/config"
)

type envConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"`

	// "memory" or a postgresql:// URL.
	DatabaseURL string `env:"DATABASE_URL" env-default:"memory"`

	UploadDir string `env:"UPLOAD_DIR" env-default:"./data/uploads"`
	TempDir   string `env:"TEMP_DIR" env-default:"./data/tmp"`

	// Remote storage tier. A non-empty bucket enables it.
	S3Bucket                 string `env:"S3_BUCKET" env-default:""`
	S3Region                 string `env:"S3_REGION" env-default:"us-east-1"`
	S3AccessKeyID            string `env:"S3_ACCESS_KEY_ID" env-default:""`
	S3SecretAccessKey        string `env:"S3_SECRET_ACCESS_KEY" env-default:""`
	S3Endpoint               string `env:"S3_ENDPOINT" env-default:""`
	S3UsePathStyle           bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3CreateBucketIfNotExist bool   `env:"S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`
}

func main() {
	_ = godotenv.Load()

	var env envConfig
	if err := cleanenv.ReadEnv(&env); err != nil {
		slog.Error("Failed to read configuration", "err", err)
		os.Exit(1)
	}

	opts := []config.Option{
		config.WithPort(env.Port),
		config.WithEnvironment(env.Environment),
		config.WithDatabase(env.DatabaseURL),
		config.WithStorageDirs(env.UploadDir, env.TempDir),
	}
	if env.S3Bucket != "" {
		opts = append(opts, config.WithRemoteStorage(config.RemoteStorageConfig{
			Region:                 env.S3Region,
			Bucket:                 env.S3Bucket,
			AccessKeyID:            env.S3AccessKeyID,
			SecretAccessKey:        env.S3SecretAccessKey,
			Endpoint:               env.S3Endpoint,
			UsePathStyle:           env.S3UsePathStyle,
			CreateBucketIfNotExist: env.S3CreateBucketIfNotExist,
		}))
	}

	cfg, err := config.Load(opts...)
	if err != nil {
		slog.Error("Failed to load server configuration", "err", err)
		os.Exit(1)
	}

	if cfg.DatabaseType == "postgres" {
		if err := config.PingPostgres(cfg.DatabaseURL); err != nil {
			slog.Error("Failed to connect to database", "err", err)
			os.Exit(1)
		}
	}

	gateway, err := cfg.BuildStorageGateway()
	if err != nil {
		slog.Error("Failed to build storage gateway", "err", err)
		os.Exit(1)
	}

	svc, err := cfg.BuildService(gateway)
	if err != nil {
		slog.Error("Failed to build service", "err", err)
		os.Exit(1)
	}

	stager, err := api.NewStager(cfg.TempDir)
	if err != nil {
		slog.Error("Failed to create upload stager", "err", err)
		os.Exit(1)
	}

	pages, err := api.NewPageRenderer()
	if err != nil {
		slog.Error("Failed to create page renderer", "err", err)
		os.Exit(1)
	}

	router := routes(cfg, svc, gateway, stager, pages)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		slog.Info("Simple Blog Server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"remote_storage", cfg.RemoteStorage != nil)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "err", err)
		os.Exit(1)
	}

	slog.Info("Server exiting")
}

func routes(cfg *config.ServerConfig, svc simpleblog.Service, gateway *simpleblog.StorageGateway, stager *api.Stager, pages *api.PageRenderer) http.Handler {
	logger := httplog.NewLogger("simple-blog", httplog.Options{
		LogLevel: slog.LevelInfo,
		Concise:  true,
	})
	slog.SetDefault(logger.Logger)

	r := chi.NewRouter()

	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS for development
	if cfg.Environment == "development" {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

				if r.Method == "OPTIONS" {
					w.WriteHeader(http.StatusOK)
					return
				}

				next.ServeHTTP(w, r)
			})
		})
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	blogHandler := api.NewBlogHandler(svc, stager)
	publicHandler := api.NewPublicHandler(svc, pages)
	uploadHandler := api.NewUploadHandler(gateway, stager)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/blog", blogHandler.Routes())
		r.Mount("/public", publicHandler.Routes())
		r.Mount("/upload", uploadHandler.Routes())
	})

	// Server-rendered article pages
	r.Get("/blog/{blogID}", publicHandler.ArticlePage)

	// Locally stored uploads
	fileServer := http.FileServer(http.Dir(cfg.UploadDir))
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", fileServer))

	return r
}
