// Package store implements the persistent catalog: titles, episodes,
// runtime admins, and the audit/usage trails. All functions operate on a
// caller-supplied *gorm.DB so tests can run against in-memory SQLite.
package store

import "errors"

var (
	// ErrTitleExists is returned when creating a title whose name is taken.
	ErrTitleExists = errors.New("store: title already exists")
	// ErrTitleNotFound is returned when a title id or name resolves to nothing.
	ErrTitleNotFound = errors.New("store: title not found")
	// ErrEpisodeNotFound is returned when an episode id resolves to nothing.
	ErrEpisodeNotFound = errors.New("store: episode not found")
	// ErrAdminExists is returned when adding an admin who is already added.
	ErrAdminExists = errors.New("store: admin already exists")
	// ErrAdminNotFound is returned when removing an unknown admin.
	ErrAdminNotFound = errors.New("store: admin not found")
)
