package services

import (
	"sync"
	"time"

	"onboarding-tracker-api/models"
	"onboarding-tracker-api/utils"

	"gorm.io/gorm"
)

// Actor is the identity an operation runs on behalf of. It is threaded
// explicitly through every service call; nothing reads an ambient
// current-user global.
type Actor struct {
	ID   int
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

var (
	roleCacheMu sync.RWMutex
	roleCache   = make(map[int]roleCacheEntry)
	roleTTL     = 5 * time.Minute
)

type roleCacheEntry struct {
	role      string
	fetchedAt time.Time
}

// LookupRole reads an actor's role straight from the profiles table.
//
// This is the privileged, policy-bypassing path: it must never route
// through the generic ownership checks below, otherwise "is this actor
// an admin" would re-enter the very policy it is part of evaluating.
func LookupRole(db *gorm.DB, actorID int) (string, error) {
	roleCacheMu.RLock()
	cached, ok := roleCache[actorID]
	roleCacheMu.RUnlock()

	if ok && time.Since(cached.fetchedAt) < roleTTL {
		return cached.role, nil
	}

	var role string
	err := db.Model(&models.Profile{}).
		Select("role").
		Where("profile_id = ? AND delete_at IS NULL", actorID).
		Scan(&role).Error
	if err != nil {
		return "", err
	}
	if role == "" {
		return "", &utils.NotFoundError{Resource: "profile"}
	}

	roleCacheMu.Lock()
	roleCache[actorID] = roleCacheEntry{role: role, fetchedAt: time.Now()}
	roleCacheMu.Unlock()

	return role, nil
}

// InvalidateRole drops one actor from the role cache. Called after an
// admin changes a profile's role.
func InvalidateRole(actorID int) {
	roleCacheMu.Lock()
	delete(roleCache, actorID)
	roleCacheMu.Unlock()
}

// ClearRoleCache empties the role cache.
func ClearRoleCache() {
	roleCacheMu.Lock()
	roleCache = make(map[int]roleCacheEntry)
	roleCacheMu.Unlock()
}

// ResolveActor builds an Actor from a bare profile id via the
// privileged role lookup. Used on delegated service-to-service calls
// where no authenticated request context exists.
func ResolveActor(db *gorm.DB, actorID int) (Actor, error) {
	role, err := LookupRole(db, actorID)
	if err != nil {
		return Actor{}, err
	}
	return Actor{ID: actorID, Role: role}, nil
}

// IsAdmin resolves whether the actor holds the admin role, falling back
// to the privileged lookup when the role is not already attached.
func IsAdmin(db *gorm.DB, actor Actor) (bool, error) {
	if actor.Role != "" {
		return actor.Role == models.RoleAdmin, nil
	}
	role, err := LookupRole(db, actor.ID)
	if err != nil {
		return false, err
	}
	return role == models.RoleAdmin, nil
}

// CanRead reports whether the actor may read a resource owned by
// resourceOwnerID: owners and admins only.
func CanRead(actor Actor, resourceOwnerID int) bool {
	return actor.ID == resourceOwnerID || actor.IsAdmin()
}

// CanWriteApplication enforces the ownership and status rules for
// mutating an application's candidate-editable fields. Admin actors may
// write post-submission fields regardless of ownership; owners may
// write only while the application is still editable.
func CanWriteApplication(actor Actor, app *models.Application) error {
	if actor.IsAdmin() {
		return nil
	}
	if actor.ID != app.OwnerID {
		return &utils.AuthorizationError{Message: "not the application owner"}
	}
	if !app.IsEditable() {
		return &utils.AuthorizationError{Message: "application can no longer be modified by its owner"}
	}
	return nil
}
