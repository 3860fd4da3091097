// cinechat/sessions/store.go
package sessions

import (
	"cinechat/cinechat/utils/logging"
	"cinechat/cinechat/utils/types"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Remote is the write-through mirror behind the store. The store never
// depends on its outcome: failures are logged and local state stays
// authoritative.
type Remote interface {
	CreateSession(ctx context.Context, username string, session types.Session) error
	ReplaceSession(ctx context.Context, username string, session types.Session) error
	DeleteSession(ctx context.Context, username, id string) error
}

// Store is the authoritative in-memory session list for one identity.
// All mutation happens under one lock as whole-value replacement; no two
// updates interleave mid-computation.
type Store struct {
	mu       sync.Mutex
	username string
	remote   Remote
	sessions []types.Session
	activeID string
	onChange func()
	now      func() time.Time
}

func NewStore(username string, remote Remote) *Store {
	return &Store{
		username: username,
		remote:   remote,
		now:      time.Now,
	}
}

// SetOnChange installs a hook fired after every mutation, outside the
// lock. The view bridge uses it to push state-change notifications.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Store) mirrorReplace(session types.Session) {
	if s.remote == nil {
		return
	}
	if err := s.remote.ReplaceSession(context.Background(), s.username, session); err != nil {
		logging.ErrorLogger.Error("session mirror failed",
			zap.String("session_id", session.ID), zap.Error(err))
	}
}

// Load seeds the store from the remote list at login. An empty list gets
// an initial session created; otherwise the most recently active one
// becomes active.
func (s *Store) Load(sessions []types.Session) {
	s.mu.Lock()
	s.sessions = append([]types.Session{}, sessions...)
	s.activeID = ""
	if len(s.sessions) > 0 {
		s.activeID = sortedCopy(s.sessions)[0].ID
	}
	s.mu.Unlock()

	if len(sessions) == 0 {
		s.Create()
		return
	}
	s.notify()
}

// Create makes a fresh placeholder-titled session, prepends it, marks it
// active, and mirrors it remotely fire-and-forget.
func (s *Store) Create() types.Session {
	s.mu.Lock()
	now := s.now().UTC().Format(time.RFC3339)
	session := types.Session{
		ID:        uuid.New().String(),
		Title:     types.PlaceholderTitle,
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []types.Message{},
	}
	s.sessions = append([]types.Session{session}, s.sessions...)
	s.activeID = session.ID
	s.mu.Unlock()

	logging.AppLogger.Info("session created", zap.String("session_id", session.ID))
	s.notify()
	if s.remote != nil {
		if err := s.remote.CreateSession(context.Background(), s.username, session); err != nil {
			logging.ErrorLogger.Error("session create mirror failed",
				zap.String("session_id", session.ID), zap.Error(err))
		}
	}
	return session
}

// List returns the sessions sorted by most recent activity first. The
// order is recomputed on every call, never cached.
func (s *Store) List() []types.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedCopy(s.sessions)
}

func sortedCopy(sessions []types.Session) []types.Session {
	out := append([]types.Session{}, sessions...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastActivity().After(out[j].LastActivity())
	})
	return out
}

// Select marks a session active. Selecting an unknown id simply yields
// no active session in the view.
func (s *Store) Select(id string) {
	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()
	s.notify()
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns the active session, if it is still a member of the store.
func (s *Store) Active() (types.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(s.activeID)
}

func (s *Store) Get(id string) (types.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

func (s *Store) findLocked(id string) (types.Session, bool) {
	for _, session := range s.sessions {
		if session.ID == id {
			return session, true
		}
	}
	return types.Session{}, false
}

// UpdateMessages applies updater to a copy of the session's message list,
// bumps updatedAt, runs the one-time title derivation, and mirrors the
// whole snapshot remotely. Updating an unknown id is a logged no-op (a
// pipeline may resolve into a session deleted mid-flight).
func (s *Store) UpdateMessages(id string, updater func([]types.Message) []types.Message) bool {
	s.mu.Lock()
	idx := -1
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		logging.AppLogger.Info("message update for missing session", zap.String("session_id", id))
		return false
	}

	session := s.sessions[idx]
	session.Messages = updater(append([]types.Message{}, session.Messages...))
	if session.Messages == nil {
		session.Messages = []types.Message{}
	}
	session.UpdatedAt = s.now().UTC().Format(time.RFC3339)
	if title, ok := deriveTitle(session); ok {
		session.Title = title
	}
	s.sessions[idx] = session
	s.mu.Unlock()

	s.notify()
	s.mirrorReplace(session)
	return true
}

// SetMessages replaces the message list wholesale.
func (s *Store) SetMessages(id string, messages []types.Message) bool {
	return s.UpdateMessages(id, func([]types.Message) []types.Message {
		return messages
	})
}

// deriveTitle fires exactly once: when a session reaches precisely two
// messages while still holding the placeholder title. The title becomes
// the first user message, truncated to 30 characters plus an ellipsis.
func deriveTitle(session types.Session) (string, bool) {
	if len(session.Messages) != 2 || session.Title != types.PlaceholderTitle {
		return "", false
	}
	for _, m := range session.Messages {
		if m.Role == types.RoleUser && m.Text != "" {
			runes := []rune(m.Text)
			if len(runes) > 30 {
				return string(runes[:30]) + "...", true
			}
			return m.Text, true
		}
	}
	return "", false
}

// Delete removes the session locally and remotely. When the active
// session goes away, the most recently updated survivor takes over; with
// nothing left a fresh session is created, so the list never goes empty
// through deletion.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	kept := s.sessions[:0:0]
	found := false
	for _, session := range s.sessions {
		if session.ID == id {
			found = true
			continue
		}
		kept = append(kept, session)
	}
	if !found {
		s.mu.Unlock()
		return
	}
	s.sessions = kept
	wasActive := s.activeID == id
	var nextActive string
	if wasActive && len(kept) > 0 {
		nextActive = sortedCopy(kept)[0].ID
		s.activeID = nextActive
	}
	needsFresh := wasActive && len(kept) == 0
	s.mu.Unlock()

	logging.AppLogger.Info("session deleted", zap.String("session_id", id))
	s.notify()
	if s.remote != nil {
		if err := s.remote.DeleteSession(context.Background(), s.username, id); err != nil {
			logging.ErrorLogger.Error("session delete mirror failed",
				zap.String("session_id", id), zap.Error(err))
		}
	}
	if needsFresh {
		s.Create()
	}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
