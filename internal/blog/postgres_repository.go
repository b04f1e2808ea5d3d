package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new blog record.
func (r *PostgresRepository) Create(ctx context.Context, b *Blog) error {
	query := `
		INSERT INTO blogs (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, b.Title, b.Content, b.AuthorID).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting blog: %w", err)
	}

	return nil
}

// GetByID retrieves a single blog by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Blog, error) {
	query := `
		SELECT id, title, content, author_id, created_at, updated_at
		FROM blogs
		WHERE id = $1`

	var b Blog
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.Title, &b.Content, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogNotFound
		}
		return nil, fmt.Errorf("querying blog: %w", err)
	}

	return &b, nil
}

// GetAuthorID resolves only the owning user id of a blog.
func (r *PostgresRepository) GetAuthorID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var authorID uuid.UUID
	err := r.pool.QueryRow(ctx, "SELECT author_id FROM blogs WHERE id = $1", id).Scan(&authorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrBlogNotFound
		}
		return uuid.Nil, fmt.Errorf("querying blog author: %w", err)
	}

	return authorID, nil
}

// Update replaces title and content of a blog.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, title, content string) (*Blog, error) {
	query := `
		UPDATE blogs
		SET title = $2, content = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING id, title, content, author_id, created_at, updated_at`

	var b Blog
	err := r.pool.QueryRow(ctx, query, id, title, content).Scan(
		&b.ID, &b.Title, &b.Content, &b.AuthorID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBlogNotFound
		}
		return nil, fmt.Errorf("updating blog: %w", err)
	}

	return &b, nil
}

// Delete removes a blog record.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, "DELETE FROM blogs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("deleting blog: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrBlogNotFound
	}

	return nil
}
