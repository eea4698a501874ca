// Package memory provides in-process implementations of the outbound
// store ports. It backs tests and the "memory" database driver.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

// Store holds users, invites and auth identities behind one lock.
// Records are copied on the way in and out.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*model.User
	invites    map[string]*model.Invite
	identities map[string]string // auth identity id -> user id
	writes     int
	now        func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]*model.User),
		invites:    make(map[string]*model.Invite),
		identities: make(map[string]string),
		now:        time.Now,
	}
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyUser(u)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.users[c.ID] = c
}

// PutInvite inserts or replaces an invite.
func (s *Store) PutInvite(inv *model.Invite) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyInvite(inv)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	s.invites[c.ID] = c
}

// SoftDeleteInvite marks an invite deleted, the way acceptance does.
func (s *Store) SoftDeleteInvite(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invites[id]
	if !ok {
		return false
	}
	now := s.now()
	inv.Accepted = true
	inv.DeletedAt = &now
	return true
}

// LinkIdentity maps an auth identity id onto a user id.
func (s *Store) LinkIdentity(identityID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[identityID] = userID
}

// User returns a copy of a user regardless of deletion, for inspection.
func (s *Store) User(id string) (*model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, false
	}
	return copyUser(u), true
}

// MetadataWrites returns how many metadata updates have been applied.
func (s *Store) MetadataWrites() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func copyUser(u *model.User) *model.User {
	c := *u
	if u.Metadata != nil {
		c.Metadata = u.Metadata.Clone()
	}
	if u.DeletedAt != nil {
		t := *u.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

func copyInvite(inv *model.Invite) *model.Invite {
	c := *inv
	if inv.Metadata != nil {
		c.Metadata = inv.Metadata.Clone()
	}
	if inv.DeletedAt != nil {
		t := *inv.DeletedAt
		c.DeletedAt = &t
	}
	return &c
}

// sortByCreated orders records by creation time, ties broken by id.
func sortByCreated[T any](items []T, order outbound.SortOrder, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			if order == outbound.SortNewestFirst {
				return ci.After(cj)
			}
			return ci.Before(cj)
		}
		return id(items[i]) < id(items[j])
	})
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
