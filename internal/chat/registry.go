package chat

import (
	"errors"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/omochice/tcptalk/pkg/protocol"
)

// ErrUsernameTaken is returned by Registry.Admit when a live session already
// uses the name under case-insensitive comparison.
var ErrUsernameTaken = errors.New("username is already taken")

// ErrDuplicateSession is returned by Registry.Admit when the session id is
// already registered.
var ErrDuplicateSession = errors.New("session already registered")

// Session is one admitted connection.
type Session struct {
	ID       string
	Username string
	Conn     Conn
}

// Registry holds every live session keyed by connection id.
// A single mutex guards all access, including whole broadcast passes.
type Registry struct {
	sessions map[string]*Session
	mu       sync.Mutex
	logger   *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Admit inserts s unless its id or its username is already present.
// The uniqueness check and the insert happen under one lock acquisition.
func (r *Registry) Admit(s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return ErrDuplicateSession
	}
	if r.takenLocked(s.Username) {
		return ErrUsernameTaken
	}
	r.sessions[s.ID] = s
	return nil
}

// Remove deletes the session with the given id and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Taken reports whether a live session uses username, ignoring case.
func (r *Registry) Taken(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.takenLocked(username)
}

// Len returns number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Usernames returns a sorted snapshot of live usernames.
func (r *Registry) Usernames() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.sessions))
	for _, s := range r.sessions {
		names = append(names, s.Username)
	}
	r.mu.Unlock()

	sort.Strings(names)
	return names
}

func (r *Registry) takenLocked(username string) bool {
	key := protocol.FoldName(username)
	for _, s := range r.sessions {
		if protocol.FoldName(s.Username) == key {
			return true
		}
	}
	return false
}
