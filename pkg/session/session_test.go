package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateReturnsUniqueIDs(t *testing.T) {
	m := NewManager(2)

	first := m.Create()
	second := m.Create()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestHistoryUnknownSession(t *testing.T) {
	m := NewManager(2)
	assert.Empty(t, m.History("nope"))
}

func TestHistoryEmptySession(t *testing.T) {
	m := NewManager(2)
	id := m.Create()
	assert.Empty(t, m.History(id))
}

func TestHistoryRendersLabeledLines(t *testing.T) {
	m := NewManager(5)
	id := m.Create()

	m.AddExchange(id, "What is Python?", "Python is a language.")
	m.AddExchange(id, "Tell me more", "It is dynamically typed.")

	want := "User: What is Python?\n" +
		"Assistant: Python is a language.\n" +
		"User: Tell me more\n" +
		"Assistant: It is dynamically typed."
	assert.Equal(t, want, m.History(id))
}

func TestAddExchangeImplicitlyCreatesSession(t *testing.T) {
	m := NewManager(2)

	m.AddExchange("fresh-id", "hi", "hello")

	assert.Equal(t, "User: hi\nAssistant: hello", m.History("fresh-id"))
}

func TestRetentionDropsOldestFirst(t *testing.T) {
	m := NewManager(2)
	id := m.Create()

	for i := 1; i <= 4; i++ {
		m.AddExchange(id, fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}

	require.Equal(t, 2, m.Count(id))
	history := m.History(id)
	assert.NotContains(t, history, "q1")
	assert.NotContains(t, history, "q2")
	assert.Contains(t, history, "User: q3")
	assert.Contains(t, history, "User: q4")
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager(2)
	a := m.Create()
	b := m.Create()

	m.AddExchange(a, "question a", "answer a")

	assert.Contains(t, m.History(a), "question a")
	assert.Empty(t, m.History(b))
}
