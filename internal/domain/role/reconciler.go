package role

import (
	"context"
	"errors"
	"fmt"

	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
	"go.uber.org/zap"
)

// Outcome is the terminal state of one reconciliation.
type Outcome string

const (
	OutcomeWritten     Outcome = "written"
	OutcomeNoTarget    Outcome = "no_target"
	OutcomeWriteFailed Outcome = "write_failed"
)

// Reconciliation describes what one Reconcile call derived and did.
type Reconciliation struct {
	InviteID    string         `json:"invite_id,omitempty"`
	InviteFound bool           `json:"invite_found"`
	Role        Role           `json:"role"`
	RoleSource  string         `json:"role_source"`
	UserID      string         `json:"user_id,omitempty"`
	Metadata    model.Metadata `json:"metadata,omitempty"`
	Outcome     Outcome        `json:"outcome"`
}

// InviteReconciler defines the invite acceptance service interface.
type InviteReconciler interface {
	// Reconcile stamps the role of the accepted invite onto the user it
	// produced. Lookup misses and read failures are absorbed; only the
	// final metadata write can fail, wrapped in ErrMetadataWrite. A write
	// rejected because the user no longer exists is a miss, not a failure.
	Reconcile(ctx context.Context, ev *AcceptanceEvent) (*Reconciliation, error)
}

// reconciler implements InviteReconciler.
type reconciler struct {
	invites outbound.InviteDatabasePort
	users   outbound.UserDatabasePort
	logger  *zap.Logger
}

// NewReconciler creates a new invite reconciler. Either port may be nil; a
// nil user store leaves every acceptance without a target.
func NewReconciler(invites outbound.InviteDatabasePort, users outbound.UserDatabasePort, logger *zap.Logger) InviteReconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reconciler{
		invites: invites,
		users:   users,
		logger:  logger,
	}
}

func (r *reconciler) Reconcile(ctx context.Context, ev *AcceptanceEvent) (*Reconciliation, error) {
	if ev == nil {
		ev = &AcceptanceEvent{}
	}
	r.logger.Debug("reconciling invite acceptance", zap.Any("event", ev))

	inv := r.locateInvite(ctx, ev)
	role, roleSource := StampedRole(ev, inv)

	rec := &Reconciliation{
		InviteFound: inv != nil,
		Role:        role,
		RoleSource:  roleSource,
	}
	if inv != nil {
		rec.InviteID = inv.ID
	}

	userID := r.locateUser(ctx, ev, inv)
	if userID == "" || r.users == nil {
		rec.Outcome = OutcomeNoTarget
		r.logger.Info("invite acceptance has no target user",
			zap.String("invite_id", rec.InviteID),
			zap.String("role", role.String()),
		)
		return rec, nil
	}
	rec.UserID = userID

	var inviteMD model.Metadata
	if inv != nil {
		inviteMD = inv.Metadata
	}
	merged := Merge(r.currentMetadata(ctx, userID), inviteMD, Stamp(role))
	rec.Metadata = merged

	if err := r.users.UpdateMetadata(ctx, userID, merged); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			rec.Outcome = OutcomeNoTarget
			rec.Metadata = nil
			r.logger.Info("invite acceptance target user no longer exists",
				zap.String("invite_id", rec.InviteID),
				zap.String("user_id", userID),
			)
			return rec, nil
		}
		rec.Outcome = OutcomeWriteFailed
		r.logger.Error("failed to write reconciled metadata",
			zap.String("user_id", userID),
			zap.String("role", role.String()),
			zap.Error(err),
		)
		return rec, fmt.Errorf("%w: user %s: %w", ErrMetadataWrite, userID, err)
	}

	rec.Outcome = OutcomeWritten
	r.logger.Info("invite role reconciled",
		zap.String("invite_id", rec.InviteID),
		zap.String("role", role.String()),
		zap.String("role_source", roleSource),
		zap.String("user_id", userID),
	)
	return rec, nil
}

// StampedRole computes the role an acceptance should stamp. An explicit
// blog_editor in the event's own metadata wins over the invite record.
func StampedRole(ev *AcceptanceEvent, inv *model.Invite) (Role, string) {
	if ev != nil {
		if from, ok := explicitBlogEditor(ev); ok {
			return RoleBlogEditor, "event." + from
		}
	}
	if inv == nil {
		return FromMetadata(nil), "default"
	}
	return FromMetadata(inv.Metadata), "invite_record"
}

// locateInvite finds the invite by id first, then by email. A nil result
// means neither path produced a record.
func (r *reconciler) locateInvite(ctx context.Context, ev *AcceptanceEvent) *model.Invite {
	if r.invites == nil {
		return nil
	}

	if id, from := firstNonEmpty(ev, inviteIDCandidates); id != "" {
		found := r.inviteByID(ctx, id)
		if found.Found() {
			return found.Value
		}
		r.logger.Debug("invite lookup by id missed",
			zap.String("invite_id", id),
			zap.String("field", from),
			zap.Stringer("status", found.Status),
			zap.Error(found.Err),
		)
	}

	if email, from := firstNonEmpty(ev, inviteEmailCandidates); email != "" {
		found := r.inviteByEmail(ctx, email)
		if found.Found() {
			return found.Value
		}
		r.logger.Debug("invite lookup by email missed",
			zap.String("field", from),
			zap.Stringer("status", found.Status),
			zap.Error(found.Err),
		)
	}
	return nil
}

func (r *reconciler) inviteByID(ctx context.Context, id string) Lookup[*model.Invite] {
	inv, err := r.invites.FindByID(ctx, id, true)
	return classify(inv, inv != nil, err, ErrInviteNotFound)
}

func (r *reconciler) inviteByEmail(ctx context.Context, email string) Lookup[*model.Invite] {
	list, err := r.invites.FindByEmail(ctx, email, outbound.ListOptions{
		Limit:          1,
		Order:          outbound.SortNewestFirst,
		IncludeDeleted: true,
	})
	var first *model.Invite
	if len(list) > 0 {
		first = list[0]
	}
	return classify(first, first != nil, err, ErrInviteNotFound)
}

// locateUser returns the target user id, or "" when none can be derived.
func (r *reconciler) locateUser(ctx context.Context, ev *AcceptanceEvent, inv *model.Invite) string {
	if id, _ := firstNonEmpty(ev, userIDCandidates); id != "" {
		return id
	}

	email, from := firstNonEmpty(emailSource{event: ev, invite: inv}, userEmailCandidates)
	if email == "" || r.users == nil {
		return ""
	}

	list, err := r.users.FindByEmail(ctx, email, outbound.ListOptions{Limit: 1})
	var first *model.User
	if len(list) > 0 {
		first = list[0]
	}
	found := classify(first, first != nil && first.ID != "", err, ErrUserNotFound)
	if !found.Found() {
		r.logger.Debug("user lookup by email missed",
			zap.String("field", from),
			zap.Stringer("status", found.Status),
			zap.Error(found.Err),
		)
		return ""
	}
	return found.Value.ID
}

// currentMetadata reads the user's metadata; any failure yields an empty base.
func (r *reconciler) currentMetadata(ctx context.Context, userID string) model.Metadata {
	u, err := r.users.FindByID(ctx, userID, "id", "metadata")
	found := classify(u, u != nil, err, ErrUserNotFound)
	if !found.Found() {
		r.logger.Debug("current user metadata unavailable",
			zap.String("user_id", userID),
			zap.Stringer("status", found.Status),
			zap.Error(found.Err),
		)
		return nil
	}
	return found.Value.Metadata
}
