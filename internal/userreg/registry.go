// Package userreg is the authoritative in-memory identity store: nickname to
// user id, with unique-nickname and rename semantics.
package userreg

import (
	"strings"
	"sync"

	"github.com/splkm97/lobbyserver/internal/conn"
	"github.com/splkm97/lobbyserver/internal/rpc"
	"github.com/splkm97/lobbyserver/internal/store"
)

// User is a snapshot of one registry entry.
type User struct {
	ID       int64
	Nickname string
}

// Registry maps nickname <-> id under a single RWMutex. An optional backing
// UserStore shadows every mutation but is never consulted for reads; the
// in-memory maps are always the source of truth.
type Registry struct {
	mu      sync.RWMutex
	byName  map[string]int64
	byID    map[int64]string
	nextID  int64
	backing store.UserStore
}

// New constructs an empty registry. backing may be nil.
func New(backing store.UserStore) *Registry {
	return &Registry{
		byName:  make(map[string]int64),
		byID:    make(map[int64]string),
		backing: backing,
	}
}

// SetName claims or renames the nickname bound to c.
func (r *Registry) SetName(c *conn.State, nickname string) (User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return User{}, rpc.ErrInvalidUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id, _, hasUser := c.User()
	if hasUser {
		if existingName, ok := r.byID[id]; ok && existingName == nickname {
			return User{ID: id, Nickname: nickname}, nil
		}
		if owner, taken := r.byName[nickname]; taken && owner != id {
			return User{}, rpc.ErrUserExists
		}
		if oldName, ok := r.byID[id]; ok {
			delete(r.byName, oldName)
		}
		r.byID[id] = nickname
		r.byName[nickname] = id
		c.RenameUser(nickname)
		r.persist(id, nickname)
		return User{ID: id, Nickname: nickname}, nil
	}

	if _, taken := r.byName[nickname]; taken {
		return User{}, rpc.ErrUserExists
	}

	r.nextID++
	id = r.nextID
	r.byID[id] = nickname
	r.byName[nickname] = id
	c.BindUser(id, nickname)
	r.persist(id, nickname)
	return User{ID: id, Nickname: nickname}, nil
}

// Remove deletes a user entirely, freeing its nickname. Used on disconnect.
func (r *Registry) Remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name, ok := r.byID[id]; ok {
		delete(r.byName, name)
		delete(r.byID, id)
	}
	if r.backing != nil {
		_ = r.backing.Delete(id)
	}
}

// Lookup returns the nickname for id, if present.
func (r *Registry) Lookup(id int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byID[id]
	return name, ok
}

func (r *Registry) persist(id int64, nickname string) {
	if r.backing == nil {
		return
	}
	_ = r.backing.Save(id, nickname)
}
