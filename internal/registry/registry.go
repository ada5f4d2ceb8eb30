package registry

import "sync"

// Registry answers privilege checks for moderation commands.
//
// Administrators come from configuration and never change at runtime.
// Moderators are promoted and demoted while the process lives and are
// deliberately not persisted: a restart starts with an empty set.
type Registry struct {
	admins map[int64]struct{}

	mutex      sync.RWMutex
	moderators map[int64]struct{}
}

func New(adminIDs []int64) *Registry {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Registry{
		admins:     admins,
		moderators: map[int64]struct{}{},
	}
}

func (r *Registry) IsAdmin(userID int64) bool {
	_, ok := r.admins[userID]
	return ok
}

// IsPrivileged reports whether the user is a configured administrator or
// a promoted moderator.
func (r *Registry) IsPrivileged(userID int64) bool {
	if r.IsAdmin(userID) {
		return true
	}
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	_, ok := r.moderators[userID]
	return ok
}

func (r *Registry) Promote(userID int64) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.moderators[userID] = struct{}{}
}

// Demote removes the user from the moderator set and reports whether the
// user was a moderator, so the caller can reply "not a moderator" instead
// of a confirmation.
func (r *Registry) Demote(userID int64) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	_, ok := r.moderators[userID]
	delete(r.moderators, userID)
	return ok
}

func (r *Registry) Moderators() []int64 {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	ids := make([]int64, 0, len(r.moderators))
	for id := range r.moderators {
		ids = append(ids, id)
	}
	return ids
}
