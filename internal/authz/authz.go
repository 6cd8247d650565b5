// Package authz is the single authorization gate for catalog mutations.
// Every command handler resolves an Actor and asks Authorize before
// touching the store, instead of scattering ownership checks per command.
package authz

import (
	"errors"

	"github.com/meanun/linkshelf/internal/store"
	"gorm.io/gorm"
)

// ErrPermissionDenied is returned when an actor lacks rights for an action.
var ErrPermissionDenied = errors.New("authz: permission denied")

// Role classifies a user for authorization purposes.
type Role int

const (
	// RoleNone is a regular user with browse-only access.
	RoleNone Role = iota
	// RoleAdded is a runtime-added admin scoped to self-created records.
	RoleAdded
	// RoleMain is a configuration-provisioned admin with full access.
	RoleMain
)

// Action is an operation an actor wants to perform.
type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionDelete
	ActionManageAdmins
)

// Actor is a resolved user identity with its role.
type Actor struct {
	UserID int64
	Role   Role
}

// Record is the ownership view of a title or episode.
type Record struct {
	CreatedBy int64
}

// MainAdminChecker reports whether a user id is a configured main admin.
type MainAdminChecker interface {
	IsMainAdmin(id int64) bool
}

// Resolve builds an Actor for userID: main admins come from configuration,
// added admins from the store, everyone else is a regular user.
func Resolve(db *gorm.DB, cfg MainAdminChecker, userID int64) (Actor, error) {
	if cfg.IsMainAdmin(userID) {
		return Actor{UserID: userID, Role: RoleMain}, nil
	}
	added, err := store.IsAddedAdmin(db, userID)
	if err != nil {
		return Actor{}, err
	}
	if added {
		return Actor{UserID: userID, Role: RoleAdded}, nil
	}
	return Actor{UserID: userID, Role: RoleNone}, nil
}

// Authorize decides whether actor may perform action on target. A nil
// target is used for actions that are not record-scoped (create, manage).
//
// Rules:
//   - Read of catalog data is always allowed; browsing is not an admin action.
//   - Create is allowed for any admin; ownership is stamped by the caller.
//   - Update/Delete require main role, or added role owning the target.
//   - ManageAdmins requires main role.
func Authorize(actor Actor, action Action, target *Record) error {
	switch action {
	case ActionRead:
		return nil
	case ActionCreate:
		if actor.Role == RoleMain || actor.Role == RoleAdded {
			return nil
		}
		return ErrPermissionDenied
	case ActionUpdate, ActionDelete:
		if actor.Role == RoleMain {
			return nil
		}
		if actor.Role == RoleAdded && target != nil && target.CreatedBy == actor.UserID {
			return nil
		}
		return ErrPermissionDenied
	case ActionManageAdmins:
		if actor.Role == RoleMain {
			return nil
		}
		return ErrPermissionDenied
	default:
		return ErrPermissionDenied
	}
}

// IsAdmin reports whether the actor has any admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleMain || a.Role == RoleAdded
}
