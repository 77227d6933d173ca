// Package broadcast fans KB-update events out to per-session subscribers.
// Delivery is best-effort: a failing or panicking subscriber is dropped and
// never fails the assertion path that triggered the event.
package broadcast

import (
	"sync"

	"github.com/automenta/mcr/internal/logging"
)

// Event is the payload emitted after a successful assertion.
type Event struct {
	SessionID         string   `json:"sessionId"`
	NewClauses        []string `json:"newClauses"`
	FullKnowledgeBase string   `json:"fullKnowledgeBase"`
}

// Subscriber receives events for sessions it subscribed to. A non-nil error
// marks the subscriber dead; it is unsubscribed from everything.
type Subscriber interface {
	Notify(event Event) error
}

// Func adapts a plain function to the Subscriber interface. Each call
// returns a distinct comparable handle, usable with Unsubscribe; func values
// themselves cannot key the subscriber set.
func Func(fn func(event Event) error) Subscriber {
	return &funcSubscriber{fn: fn}
}

type funcSubscriber struct {
	fn func(event Event) error
}

func (f *funcSubscriber) Notify(event Event) error { return f.fn(event) }

// Broadcaster maintains the sessionId -> subscriber-set map. Iteration for
// send works on a snapshot, so subscribe/unsubscribe during delivery is safe.
type Broadcaster struct {
	mu   sync.RWMutex
	subs map[string]map[Subscriber]struct{}
}

// New creates an empty broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[string]map[Subscriber]struct{})}
}

// Subscribe registers sub for the session's events.
func (b *Broadcaster) Subscribe(sessionID string, sub Subscriber) {
	if sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.subs[sessionID]
	if !ok {
		set = make(map[Subscriber]struct{})
		b.subs[sessionID] = set
	}
	set[sub] = struct{}{}
	logging.BroadcastDebug("Subscribed %p to session %s (%d total)", sub, sessionID, len(set))
}

// Unsubscribe removes sub from one session.
func (b *Broadcaster) Unsubscribe(sessionID string, sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(sessionID, sub)
}

// UnsubscribeAll removes sub from every session.
func (b *Broadcaster) UnsubscribeAll(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sessionID := range b.subs {
		b.removeLocked(sessionID, sub)
	}
}

func (b *Broadcaster) removeLocked(sessionID string, sub Subscriber) {
	set, ok := b.subs[sessionID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(b.subs, sessionID)
	}
}

// SubscriberCount reports how many subscribers a session has.
func (b *Broadcaster) SubscriberCount(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}

// Broadcast delivers the event to every subscriber of its session. Failed
// subscribers are dropped from all sessions. Never returns an error.
func (b *Broadcaster) Broadcast(event Event) {
	b.mu.RLock()
	set := b.subs[event.SessionID]
	snapshot := make([]Subscriber, 0, len(set))
	for sub := range set {
		snapshot = append(snapshot, sub)
	}
	b.mu.RUnlock()

	var dead []Subscriber
	for _, sub := range snapshot {
		if err := safeNotify(sub, event); err != nil {
			logging.Get(logging.CategoryBroadcast).Warn("Dropping dead subscriber for session %s: %v", event.SessionID, err)
			dead = append(dead, sub)
		}
	}
	for _, sub := range dead {
		b.UnsubscribeAll(sub)
	}
	logging.BroadcastDebug("Broadcast to session %s: %d subscribers, %d dropped",
		event.SessionID, len(snapshot), len(dead))
}

// safeNotify converts a subscriber panic into an error.
func safeNotify(sub Subscriber, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()
	return sub.Notify(event)
}

type panicError struct{ value interface{} }

func (p *panicError) Error() string { return "subscriber panicked" }
