package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-blog/pkg/simpleblog"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simpleblog.Repository using PostgreSQL.
//
// Schema:
//
//	CREATE TABLE blog (
//	    id           UUID PRIMARY KEY,
//	    title        TEXT NOT NULL,
//	    sub_title    TEXT NOT NULL DEFAULT '',
//	    content      JSONB NOT NULL DEFAULT '[]',
//	    cover_image  TEXT,
//	    tags         TEXT[] NOT NULL DEFAULT '{}',
//	    status       TEXT NOT NULL,
//	    published_at TIMESTAMPTZ,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//	CREATE INDEX blog_status_created_at_idx ON blog (status, created_at DESC);
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) simpleblog.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) simpleblog.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("blog already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return simpleblog.ErrBlogNotFound
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (r *Repository) CreateBlog(ctx context.Context, blog *simpleblog.Blog) error {
	content, err := json.Marshal(blog.Content)
	if err != nil {
		return fmt.Errorf("failed to encode content blocks: %w", err)
	}

	query := `
		INSERT INTO blog (
			id, title, sub_title, content, cover_image, tags, status, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		blog.ID, blog.Title, blog.SubTitle, content, blog.CoverImage,
		blog.Tags, blog.Status, blog.PublishedAt).
		Scan(&blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create blog", err)
	}

	return nil
}

func (r *Repository) GetBlog(ctx context.Context, id uuid.UUID) (*simpleblog.Blog, error) {
	query := `
		SELECT id, title, sub_title, content, cover_image, tags, status,
		       published_at, created_at, updated_at
		FROM blog WHERE id = $1`

	blog, err := scanBlog(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simpleblog.ErrBlogNotFound
		}
		return nil, r.handlePostgresError("get blog", err)
	}

	return blog, nil
}

func (r *Repository) UpdateBlog(ctx context.Context, blog *simpleblog.Blog) error {
	content, err := json.Marshal(blog.Content)
	if err != nil {
		return fmt.Errorf("failed to encode content blocks: %w", err)
	}

	query := `
		UPDATE blog SET
			title = $2, sub_title = $3, content = $4, cover_image = $5,
			tags = $6, status = $7, published_at = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err = r.db.QueryRow(ctx, query,
		blog.ID, blog.Title, blog.SubTitle, content, blog.CoverImage,
		blog.Tags, blog.Status, blog.PublishedAt).
		Scan(&blog.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return simpleblog.ErrBlogNotFound
		}
		return r.handlePostgresError("update blog", err)
	}

	return nil
}

func (r *Repository) UpdateBlogFields(ctx context.Context, id uuid.UUID, fields simpleblog.BlogFields) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.Title != nil {
		appendSet("title", *fields.Title)
	}
	if fields.SubTitle != nil {
		appendSet("sub_title", *fields.SubTitle)
	}
	if fields.Content != nil {
		content, err := json.Marshal(*fields.Content)
		if err != nil {
			return fmt.Errorf("failed to encode content blocks: %w", err)
		}
		appendSet("content", content)
	}
	if fields.CoverImage != nil {
		appendSet("cover_image", *fields.CoverImage)
	}
	if fields.Tags != nil {
		appendSet("tags", *fields.Tags)
	}

	query := fmt.Sprintf("UPDATE blog SET %s WHERE id = $1", strings.Join(sets, ", "))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return r.handlePostgresError("update blog fields", err)
	}
	if tag.RowsAffected() == 0 {
		return simpleblog.ErrBlogNotFound
	}

	return nil
}

func (r *Repository) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM blog WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete blog", err)
	}
	if tag.RowsAffected() == 0 {
		return simpleblog.ErrBlogNotFound
	}

	return nil
}

func (r *Repository) ListBlogs(ctx context.Context, filter simpleblog.ListBlogsFilter) ([]*simpleblog.Blog, error) {
	query := `
		SELECT id, title, sub_title, content, cover_image, tags, status,
		       published_at, created_at, updated_at
		FROM blog`

	var args []interface{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += " WHERE status = $1"
	}

	switch filter.SortBy {
	case simpleblog.SortByPublishedAtDesc:
		query += " ORDER BY published_at DESC NULLS LAST"
	default:
		query += " ORDER BY created_at DESC"
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list blogs", err)
	}
	defer rows.Close()

	var blogs []*simpleblog.Blog
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, r.handlePostgresError("list blogs", err)
		}
		blogs = append(blogs, blog)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list blogs", err)
	}

	return blogs, nil
}

func scanBlog(row pgx.Row) (*simpleblog.Blog, error) {
	var blog simpleblog.Blog
	var content []byte

	err := row.Scan(
		&blog.ID, &blog.Title, &blog.SubTitle, &content, &blog.CoverImage,
		&blog.Tags, &blog.Status, &blog.PublishedAt, &blog.CreatedAt, &blog.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(content, &blog.Content); err != nil {
		return nil, fmt.Errorf("failed to decode content blocks: %w", err)
	}

	return &blog, nil
}
