package telegram

import (
	"sync"

	"github.com/Alejandro-houlu/Can-eat-not/internal/dialogue"
	"github.com/google/uuid"
)

// session pairs one chat with its isolated conversation state. The mutex
// serializes turns within the chat; distinct chats never share state.
type session struct {
	ID    string
	State *dialogue.State

	mu sync.Mutex
}

// SessionRegistry tracks live sessions per chat ID. Sessions exist only in
// memory; a restart starts every conversation over.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[int64]*session)}
}

// Get returns the session for a chat, creating a fresh one on first contact.
// The second return value reports whether the session already existed.
func (r *SessionRegistry) Get(chatID int64) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[chatID]; ok {
		return s, true
	}
	s := &session{
		ID:    uuid.NewString(),
		State: dialogue.NewState(),
	}
	r.sessions[chatID] = s
	return s, false
}

// Drop removes a chat's session so the next message starts over.
func (r *SessionRegistry) Drop(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, chatID)
}

// Len reports the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
