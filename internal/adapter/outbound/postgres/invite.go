package postgres

import (
	"context"
	"errors"

	"github.com/storefront/server/internal/domain/role"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
	"gorm.io/gorm"
)

// inviteAdapter implements outbound.InviteDatabasePort.
type inviteAdapter struct {
	db *gorm.DB
}

// NewInviteAdapter creates a new invite database adapter.
func NewInviteAdapter(db *gorm.DB) outbound.InviteDatabasePort {
	return &inviteAdapter{db: db}
}

func (a *inviteAdapter) FindByID(ctx context.Context, id string, includeDeleted bool) (*model.Invite, error) {
	var inv model.Invite
	query := a.db.WithContext(ctx).Where("id = ?", id)
	if !includeDeleted {
		query = query.Where("deleted_at IS NULL")
	}
	if err := query.First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, role.ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (a *inviteAdapter) FindByEmail(ctx context.Context, email string, opts outbound.ListOptions) ([]*model.Invite, error) {
	var invites []*model.Invite
	query := listQuery(a.db.WithContext(ctx).Model(&model.Invite{}), opts).
		Where("LOWER(email) = LOWER(?)", email)
	if err := query.Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// Compile-time check
var _ outbound.InviteDatabasePort = (*inviteAdapter)(nil)
