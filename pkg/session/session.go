// Package session keeps per-conversation exchange history in memory,
// bounded by a sliding window of recent turns.
package session

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// DefaultMaxTurns is how many exchanges a session retains by default.
const DefaultMaxTurns = 2

// Turn is one completed exchange: a user query and the generated answer.
type Turn struct {
	Query    string
	Response string
}

// Manager stores sessions for the process lifetime. All methods are safe
// for concurrent use; operations on distinct sessions do not contend
// beyond the map lock.
type Manager struct {
	maxTurns int

	mu       sync.RWMutex
	sessions map[string][]Turn
}

// NewManager builds a Manager retaining at most maxTurns exchanges per
// session. Non-positive maxTurns falls back to the default.
func NewManager(maxTurns int) *Manager {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Manager{
		maxTurns: maxTurns,
		sessions: make(map[string][]Turn),
	}
}

// Create registers a new empty session and returns its identifier.
func (m *Manager) Create() string {
	id := uuid.NewString()

	m.mu.Lock()
	m.sessions[id] = nil
	m.mu.Unlock()

	return id
}

// History renders a session's turns as alternating labeled lines. It
// returns "" for unknown or empty sessions.
func (m *Manager) History(id string) string {
	m.mu.RLock()
	turns := m.sessions[id]
	m.mu.RUnlock()

	if len(turns) == 0 {
		return ""
	}

	lines := make([]string, 0, len(turns)*2)
	for _, turn := range turns {
		lines = append(lines, fmt.Sprintf("User: %s", turn.Query))
		lines = append(lines, fmt.Sprintf("Assistant: %s", turn.Response))
	}
	return strings.Join(lines, "\n")
}

// AddExchange appends a completed turn, creating the session if needed,
// and drops the oldest turns beyond the retention window.
func (m *Manager) AddExchange(id, query, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	turns := append(m.sessions[id], Turn{Query: query, Response: response})
	if excess := len(turns) - m.maxTurns; excess > 0 {
		turns = turns[excess:]
	}
	m.sessions[id] = turns
}

// Count returns how many turns a session currently holds.
func (m *Manager) Count(id string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions[id])
}
