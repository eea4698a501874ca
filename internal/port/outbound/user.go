package outbound

import (
	"context"

	"github.com/storefront/server/internal/model"
)

// SortOrder defines the ordering of list lookups.
type SortOrder string

const (
	SortNewestFirst SortOrder = "created_at_desc"
	SortOldestFirst SortOrder = "created_at_asc"
)

// ListOptions controls list-with-filter lookups.
type ListOptions struct {
	Limit          int
	Order          SortOrder
	IncludeDeleted bool
}

// UserDatabasePort defines user persistence operations.
type UserDatabasePort interface {
	// FindByID finds a user by ID. When fields is non-empty only those
	// columns are loaded.
	FindByID(ctx context.Context, id string, fields ...string) (*model.User, error)

	// FindByEmail lists users with the given email.
	FindByEmail(ctx context.Context, email string, opts ListOptions) ([]*model.User, error)

	// UpdateMetadata replaces the metadata column of a user.
	UpdateMetadata(ctx context.Context, id string, metadata model.Metadata) error
}
