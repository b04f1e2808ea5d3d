package blog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrBlogNotFound is returned when a blog record is not found.
var ErrBlogNotFound = errors.New("blog not found")

// OwnerLookup resolves the owning user of a blog. The ownership guard depends
// on this narrow interface rather than the full repository.
type OwnerLookup interface {
	GetAuthorID(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// Repository provides operations on the blogs table.
type Repository interface {
	OwnerLookup
	Create(ctx context.Context, b *Blog) error
	GetByID(ctx context.Context, id uuid.UUID) (*Blog, error)
	Update(ctx context.Context, id uuid.UUID, title, content string) (*Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
