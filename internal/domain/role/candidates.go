package role

import (
	"strings"

	"github.com/storefront/server/internal/model"
)

// extractor pulls one optional string out of a source. The name is the
// field path it reads and shows up in logs.
type extractor[S any] struct {
	name string
	get  func(S) string
}

// firstNonEmpty evaluates extractors in order and returns the first
// non-blank value together with the name of the extractor that produced it.
func firstNonEmpty[S any](src S, list []extractor[S]) (value, from string) {
	for _, ex := range list {
		if v := strings.TrimSpace(ex.get(src)); v != "" {
			return v, ex.name
		}
	}
	return "", ""
}

// metadataSource pulls one optional metadata mapping out of a source.
type metadataSource[S any] struct {
	name string
	get  func(S) model.Metadata
}

// emailSource is what the target user's email may be derived from.
type emailSource struct {
	event  *AcceptanceEvent
	invite *model.Invite
}

var inviteIDCandidates = []extractor[*AcceptanceEvent]{
	{name: "invite_id", get: func(e *AcceptanceEvent) string { return e.InviteID.String() }},
	{name: "id", get: func(e *AcceptanceEvent) string { return e.ID.String() }},
	{name: "invite.id", get: func(e *AcceptanceEvent) string { return e.NestedInvite().ID.String() }},
}

var inviteEmailCandidates = []extractor[*AcceptanceEvent]{
	{name: "email", get: func(e *AcceptanceEvent) string { return e.Email.String() }},
	{name: "invite.email", get: func(e *AcceptanceEvent) string { return e.NestedInvite().Email.String() }},
}

var userIDCandidates = []extractor[*AcceptanceEvent]{
	{name: "user_id", get: func(e *AcceptanceEvent) string { return e.UserID.String() }},
	{name: "user.id", get: func(e *AcceptanceEvent) string { return e.NestedUser().ID.String() }},
}

var userEmailCandidates = []extractor[emailSource]{
	{name: "email", get: func(s emailSource) string { return s.event.Email.String() }},
	{name: "invite.email", get: func(s emailSource) string { return s.event.NestedInvite().Email.String() }},
	{name: "invite_record.email", get: func(s emailSource) string {
		if s.invite == nil {
			return ""
		}
		return s.invite.Email
	}},
	{name: "user.email", get: func(s emailSource) string { return s.event.NestedUser().Email.String() }},
}

// eventRoleCandidates are the event's own metadata locations that may carry
// an explicit role instruction.
var eventRoleCandidates = []metadataSource[*AcceptanceEvent]{
	{name: "metadata", get: func(e *AcceptanceEvent) model.Metadata { return model.Metadata(e.Metadata) }},
	{name: "invite.metadata", get: func(e *AcceptanceEvent) model.Metadata { return model.Metadata(e.NestedInvite().Metadata) }},
}

// sessionClaimCandidates are checked in order; the first one carrying the
// role key decides.
var sessionClaimCandidates = []metadataSource[SessionClaims]{
	{name: "app_metadata", get: func(c SessionClaims) model.Metadata { return c.AppMetadata }},
	{name: "user_metadata", get: func(c SessionClaims) model.Metadata { return c.UserMetadata }},
}

// firstClaim returns the first location holding a non-nil role claim.
func firstClaim[S any](src S, list []metadataSource[S]) (md model.Metadata, from string, ok bool) {
	for _, c := range list {
		if m := c.get(src); m.Has(MetadataKey) {
			return m, c.name, true
		}
	}
	return nil, "", false
}

// explicitBlogEditor reports which event location, if any, names
// blog_editor directly.
func explicitBlogEditor(ev *AcceptanceEvent) (from string, ok bool) {
	for _, c := range eventRoleCandidates {
		if CarriesBlogEditor(c.get(ev)) {
			return c.name, true
		}
	}
	return "", false
}
