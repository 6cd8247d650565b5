// Package session tracks per-admin input flows. Each admin has at most
// one session; while a flow is active the admin's plain text messages
// feed that flow instead of being ignored.
package session

import (
	"errors"
	"sync"
	"time"
)

// ErrSessionBusy is returned when a flow is started while another flow
// is already active for the same admin. The active flow is untouched.
var ErrSessionBusy = errors.New("session: another input flow is active, finish or /cancel it first")

// ErrNoSession is returned by operations that require an active flow
// when the admin is idle.
var ErrNoSession = errors.New("session: no active input flow")

// Mode identifies which input an admin's next message is treated as.
type Mode int

const (
	Idle Mode = iota
	AwaitingTitleName
	AwaitingEpisodeName
	AwaitingEpisodeLink
	AwaitingEpisodeBulk
	AwaitingTitleRename
	AwaitingEpisodeRename
	AwaitingEpisodeRelink
)

// String returns a short mode name for logging.
func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case AwaitingTitleName:
		return "awaiting_title_name"
	case AwaitingEpisodeName:
		return "awaiting_episode_name"
	case AwaitingEpisodeLink:
		return "awaiting_episode_link"
	case AwaitingEpisodeBulk:
		return "awaiting_episode_bulk"
	case AwaitingTitleRename:
		return "awaiting_title_rename"
	case AwaitingEpisodeRename:
		return "awaiting_episode_rename"
	case AwaitingEpisodeRelink:
		return "awaiting_episode_relink"
	}
	return "unknown"
}

// State is a snapshot of one admin's active flow.
type State struct {
	Mode        Mode
	TitleID     uint
	EpisodeID   uint
	PendingName string
	Buffer      []string
	startedAt   time.Time
	touchedAt   time.Time
}

// Manager holds the input sessions for all admins. One Manager per
// process; all methods are safe for concurrent use.
type Manager struct {
	timeout time.Duration // zero disables idle expiry

	mu       sync.Mutex
	sessions map[int64]*State
}

// NewManager creates a Manager. timeout > 0 expires sessions that have
// not seen input for that long; zero keeps sessions alive until the
// admin finishes or cancels.
func NewManager(timeout time.Duration) *Manager {
	return &Manager{
		timeout:  timeout,
		sessions: make(map[int64]*State),
	}
}

// start installs a fresh session for adminID, rejecting the request if
// a live one already exists. Callers hold no lock.
func (m *Manager) start(adminID int64, s *State) error {
	now := time.Now()
	s.startedAt = now
	s.touchedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.sessions[adminID]; ok && !m.expired(cur, now) {
		return ErrSessionBusy
	}
	m.sessions[adminID] = s
	return nil
}

// expired reports whether a session has idled past the timeout.
// Callers hold m.mu.
func (m *Manager) expired(s *State, now time.Time) bool {
	return m.timeout > 0 && now.Sub(s.touchedAt) > m.timeout
}

// live returns the admin's session if one is active, dropping it first
// if it has expired. Callers hold m.mu.
func (m *Manager) live(adminID int64) (*State, bool) {
	s, ok := m.sessions[adminID]
	if !ok {
		return nil, false
	}
	if m.expired(s, time.Now()) {
		delete(m.sessions, adminID)
		return nil, false
	}
	return s, true
}

// StartAddTitle begins the add-title flow: the next message is the new
// title's name.
func (m *Manager) StartAddTitle(adminID int64) error {
	return m.start(adminID, &State{Mode: AwaitingTitleName})
}

// StartAddEpisode begins the single-episode flow for a title: the next
// message is the episode name, the one after that its link.
func (m *Manager) StartAddEpisode(adminID int64, titleID uint) error {
	return m.start(adminID, &State{Mode: AwaitingEpisodeName, TitleID: titleID})
}

// StartBulkAdd begins the bulk-add flow for a title: every following
// message is buffered until /done or /cancel.
func (m *Manager) StartBulkAdd(adminID int64, titleID uint) error {
	return m.start(adminID, &State{Mode: AwaitingEpisodeBulk, TitleID: titleID})
}

// StartRenameTitle begins the rename flow: the next message is the
// title's new name.
func (m *Manager) StartRenameTitle(adminID int64, titleID uint) error {
	return m.start(adminID, &State{Mode: AwaitingTitleRename, TitleID: titleID})
}

// StartRenameEpisode begins the episode rename flow.
func (m *Manager) StartRenameEpisode(adminID int64, titleID, episodeID uint) error {
	return m.start(adminID, &State{Mode: AwaitingEpisodeRename, TitleID: titleID, EpisodeID: episodeID})
}

// StartRelinkEpisode begins the episode link replacement flow.
func (m *Manager) StartRelinkEpisode(adminID int64, titleID, episodeID uint) error {
	return m.start(adminID, &State{Mode: AwaitingEpisodeRelink, TitleID: titleID, EpisodeID: episodeID})
}

// Append buffers one bulk-add message block in arrival order.
func (m *Manager) Append(adminID int64, block string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(adminID)
	if !ok || s.Mode != AwaitingEpisodeBulk {
		return ErrNoSession
	}
	s.Buffer = append(s.Buffer, block)
	s.touchedAt = time.Now()
	return nil
}

// SetPendingName records the episode name in the single-episode flow
// and advances to the link step.
func (m *Manager) SetPendingName(adminID int64, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(adminID)
	if !ok || s.Mode != AwaitingEpisodeName {
		return ErrNoSession
	}
	s.PendingName = name
	s.Mode = AwaitingEpisodeLink
	s.touchedAt = time.Now()
	return nil
}

// Mode returns the admin's current mode, Idle when no flow is active.
func (m *Manager) Mode(adminID int64) Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(adminID)
	if !ok {
		return Idle
	}
	return s.Mode
}

// Get returns a copy of the admin's active session state.
func (m *Manager) Get(adminID int64) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(adminID)
	if !ok {
		return State{}, false
	}
	cp := *s
	cp.Buffer = append([]string(nil), s.Buffer...)
	return cp, true
}

// Cancel drops the admin's session unconditionally. It never touches
// the store and is safe to call while idle.
func (m *Manager) Cancel(adminID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, adminID)
}

// Finish removes the admin's session and returns its final state so the
// caller can commit it. Returns ErrNoSession when the admin is idle.
// The session is gone regardless of what the caller does next, so a
// failed commit never leaves the admin stuck mid-flow.
func (m *Manager) Finish(adminID int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.live(adminID)
	if !ok {
		return State{}, ErrNoSession
	}
	delete(m.sessions, adminID)
	cp := *s
	cp.Buffer = append([]string(nil), s.Buffer...)
	return cp, nil
}

// Active returns the number of live sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			continue
		}
		n++
	}
	return n
}
