// Package events fans session activity out to interested listeners.
package events

import (
	"sync"
	"time"
)

// Event types
const (
	SessionStarted = "sessionStarted"
	SessionLoaded  = "sessionLoaded"
	TaskStarted    = "taskStarted"
	TaskPhase      = "taskPhase"
	TaskCompleted  = "taskCompleted"
	TaskFailed     = "taskFailed"
	NewLog         = "newLog"
	FileSaved      = "fileSaved"
	FileRestored   = "fileRestored"
	FilesExported  = "filesExported"
)

// Task phases carried by TaskPhase events
const (
	PhaseIndexing   = "indexing"
	PhaseScoring    = "scoring"
	PhaseBuilding   = "building"
	PhaseGenerating = "generating"
)

// Event is one published notification
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// PhaseData is the payload of a TaskPhase event
type PhaseData struct {
	TaskID string `json:"taskId"`
	Phase  string `json:"phase"`
}

// Subscription receives events until it is unsubscribed or evicted
type Subscription struct {
	C  <-chan Event
	ch chan Event
	id uint64
}

// Bus delivers events to subscribers without ever blocking the publisher.
// A subscriber whose buffer is full is evicted and its channel closed.
type Bus struct {
	mu     sync.Mutex
	subs   map[uint64]*Subscription
	nextID uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{subs: make(map[uint64]*Subscription)}
}

// Subscribe registers a listener with the given buffer size
func (b *Bus) Subscribe(buffer int) *Subscription {
	if buffer < 1 {
		buffer = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	ch := make(chan Event, buffer)
	sub := &Subscription{C: ch, ch: ch, id: b.nextID}
	b.subs[sub.id] = sub
	return sub
}

// Unsubscribe removes sub and closes its channel. Safe to call twice.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.ch)
	}
}

// Publish stamps and delivers an event to every subscriber
func (b *Bus) Publish(eventType string, data any) {
	ev := Event{Type: eventType, Timestamp: time.Now(), Data: data}

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
			delete(b.subs, id)
			close(sub.ch)
		}
	}
}

// Len returns the number of live subscribers
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
