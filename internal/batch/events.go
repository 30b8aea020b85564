package batch

import "sync"

// Event represents a session lifecycle event.
// Minimal and stable: name + session ID and optional fields via key/values.
type Event struct {
	Name    string
	Session string
	Fields  map[string]any
}

// Event names emitted by Adapter.Generate.
const (
	EventSessionStart  = "session_start"
	EventProcessExit   = "process_exit"
	EventSessionDone   = "session_done"
	EventSessionFailed = "session_failed"
)

// EventPublisher receives events from the adapter. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// MemoryPublisher stores events in-memory for tests.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher { return &MemoryPublisher{} }

func (p *MemoryPublisher) Publish(e Event) {
	p.mu.Lock()
	p.events = append(p.events, e)
	p.mu.Unlock()
}

func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
