// Package session keeps bounded per-session conversation history. The
// retrieval core only ever reads it; writes happen once per completed
// user turn.
package session

import (
	"fmt"
	"sync"
)

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one prior message of a conversation.
type Turn struct {
	Role string
	Text string
}

// Manager holds in-memory histories, each truncated to the most recent
// N exchanges (2N turns).
type Manager struct {
	mu           sync.Mutex
	counter      int
	maxExchanges int
	sessions     map[string][]Turn
}

func NewManager(maxExchanges int) *Manager {
	if maxExchanges <= 0 {
		maxExchanges = 2
	}
	return &Manager{
		maxExchanges: maxExchanges,
		sessions:     make(map[string][]Turn),
	}
}

// Create allocates a new session id.
func (m *Manager) Create() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter++
	id := fmt.Sprintf("session_%d", m.counter)
	m.sessions[id] = nil
	return id
}

// AddExchange appends one user/assistant pair, dropping the oldest
// exchange once the bound is exceeded.
func (m *Manager) AddExchange(id, userText, assistantText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns := append(m.sessions[id],
		Turn{Role: RoleUser, Text: userText},
		Turn{Role: RoleAssistant, Text: assistantText})
	if max := m.maxExchanges * 2; len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	m.sessions[id] = turns
}

// History returns a copy of the session's turns, oldest first.
func (m *Manager) History(id string) []Turn {
	m.mu.Lock()
	defer m.mu.Unlock()
	turns := m.sessions[id]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Clear forgets a session's history.
func (m *Manager) Clear(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
