package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
	"gorm.io/gorm"
)

// userAdapter implements outbound.UserDatabasePort.
type userAdapter struct {
	db *gorm.DB
}

// NewUserAdapter creates a new user database adapter.
func NewUserAdapter(db *gorm.DB) outbound.UserDatabasePort {
	return &userAdapter{db: db}
}

func (a *userAdapter) FindByID(ctx context.Context, id string, fields ...string) (*model.User, error) {
	var u model.User
	query := a.db.WithContext(ctx)
	if len(fields) > 0 {
		query = query.Select(fields)
	}
	err := query.
		Where("id = ? AND deleted_at IS NULL", id).
		First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, role.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (a *userAdapter) FindByEmail(ctx context.Context, email string, opts outbound.ListOptions) ([]*model.User, error) {
	var users []*model.User
	query := listQuery(a.db.WithContext(ctx).Model(&model.User{}), opts).
		Where("LOWER(email) = LOWER(?)", email)
	if err := query.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (a *userAdapter) UpdateMetadata(ctx context.Context, id string, metadata model.Metadata) error {
	if metadata == nil {
		metadata = model.Metadata{}
	}
	result := a.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Select("metadata", "updated_at").
		Updates(&model.User{Metadata: metadata, UpdatedAt: time.Now()})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return role.ErrUserNotFound
	}
	return nil
}

// listQuery applies the shared list options.
func listQuery(query *gorm.DB, opts outbound.ListOptions) *gorm.DB {
	if !opts.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	switch opts.Order {
	case outbound.SortNewestFirst:
		query = query.Order("created_at DESC")
	case outbound.SortOldestFirst:
		query = query.Order("created_at ASC")
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	return query
}

// Compile-time check
var _ outbound.UserDatabasePort = (*userAdapter)(nil)
