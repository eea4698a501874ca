package role

import (
	"context"

	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
	"go.uber.org/zap"
)

// Source names the signal that decided a resolution.
type Source string

const (
	SourceActorQuery    Source = "actor_query"
	SourceActorRecord   Source = "actor_record"
	SourceSessionClaims Source = "session_claims"
	SourceDefault       Source = "default"
)

// Resolution is a resolved role plus where it came from.
type Resolution struct {
	Role    Role   `json:"role"`
	Source  Source `json:"source"`
	ActorID string `json:"actor_id,omitempty"`
}

// RoleResolver defines the role lookup service interface.
type RoleResolver interface {
	// Resolve returns the role of an actor. It never fails; with no signal
	// at all the actor is an admin.
	Resolve(ctx context.Context, actorID string, claims SessionClaims) Role

	// ResolveDetailed is Resolve plus the deciding source.
	ResolveDetailed(ctx context.Context, actorID string, claims SessionClaims) Resolution
}

// resolver implements RoleResolver.
type resolver struct {
	actors outbound.ActorQueryPort
	users  outbound.UserDatabasePort
	logger *zap.Logger
}

// NewResolver creates a new role resolver. Either port may be nil, in which
// case its read path is treated as failed.
func NewResolver(actors outbound.ActorQueryPort, users outbound.UserDatabasePort, logger *zap.Logger) RoleResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &resolver{
		actors: actors,
		users:  users,
		logger: logger,
	}
}

func (r *resolver) Resolve(ctx context.Context, actorID string, claims SessionClaims) Role {
	return r.ResolveDetailed(ctx, actorID, claims).Role
}

func (r *resolver) ResolveDetailed(ctx context.Context, actorID string, claims SessionClaims) Resolution {
	res := Resolution{ActorID: actorID}

	if actorID != "" {
		if md, src, ok := r.actorMetadata(ctx, actorID); ok {
			res.Role, res.Source = FromMetadata(md), src
			return res
		}
	}

	if md, from, ok := firstClaim(claims, sessionClaimCandidates); ok {
		r.logger.Debug("role taken from session claims", zap.String("location", from))
		res.Role, res.Source = FromMetadata(md), SourceSessionClaims
		return res
	}

	res.Role, res.Source = RoleAdmin, SourceDefault
	return res
}

// actorMetadata walks the preferred then the secondary read path and returns
// the first metadata obtained.
func (r *resolver) actorMetadata(ctx context.Context, actorID string) (model.Metadata, Source, bool) {
	preferred := r.queryActor(ctx, actorID)
	if preferred.Found() {
		return preferred.Value, SourceActorQuery, true
	}
	r.logger.Debug("actor query path missed",
		zap.String("actor_id", actorID),
		zap.Stringer("status", preferred.Status),
		zap.Error(preferred.Err),
	)

	secondary := r.readActorRecord(ctx, actorID)
	if secondary.Found() {
		return secondary.Value, SourceActorRecord, true
	}
	r.logger.Debug("actor record path missed",
		zap.String("actor_id", actorID),
		zap.Stringer("status", secondary.Status),
		zap.Error(secondary.Err),
	)
	return nil, "", false
}

func (r *resolver) queryActor(ctx context.Context, actorID string) Lookup[model.Metadata] {
	if r.actors == nil {
		return Lookup[model.Metadata]{Status: LookupFailed}
	}
	md, err := r.actors.ActorMetadata(ctx, actorID)
	return classify(md, err == nil, err, ErrActorNotFound)
}

func (r *resolver) readActorRecord(ctx context.Context, actorID string) Lookup[model.Metadata] {
	if r.users == nil {
		return Lookup[model.Metadata]{Status: LookupFailed}
	}
	u, err := r.users.FindByID(ctx, actorID, "id", "metadata")
	if err != nil || u == nil {
		return classify[model.Metadata](nil, false, err, ErrUserNotFound)
	}
	return classify(u.Metadata, true, nil, ErrUserNotFound)
}
