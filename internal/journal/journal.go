// Package journal
package journal

import (
	"sync"
	"time"
)

// Event represents a journaled session event.
type Event struct {
	Time        time.Time
	Type        string // e.g., "signal", "trade", "switch", "state"
	Description string
	Data        map[string]any
}

// Journaler interface for journaling events.
type Journaler interface {
	LogEvent(event Event)
	Events(eventType string) []Event
}

// Memory is an append-only in-memory journal. Trade history does not
// outlive the session.
type Memory struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{events: make([]Event, 0, 1024)}
}

func (m *Memory) LogEvent(e Event) {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	m.mu.Lock()
	m.events = append(m.events, e)
	m.mu.Unlock()
}

// Events returns all events of the given type, in append order. An empty
// type matches everything.
func (m *Memory) Events(eventType string) []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Event, 0, len(m.events))
	for _, e := range m.events {
		if eventType == "" || e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
