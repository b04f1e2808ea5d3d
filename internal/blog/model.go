package blog

import (
	"time"

	"github.com/google/uuid"
)

// Blog represents a row in the blogs table.
type Blog struct {
	ID        uuid.UUID
	Title     string
	Content   string
	AuthorID  uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
