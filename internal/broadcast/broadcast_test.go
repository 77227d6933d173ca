package broadcast

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestBroadcastDeliversToSessionSubscribers(t *testing.T) {
	b := New()
	subA := &recorder{}
	subB := &recorder{}
	other := &recorder{}

	b.Subscribe("s1", subA)
	b.Subscribe("s1", subB)
	b.Subscribe("s2", other)

	b.Broadcast(Event{SessionID: "s1", NewClauses: []string{"a(b)."}, FullKnowledgeBase: "a(b)."})

	assert.Equal(t, 1, subA.count())
	assert.Equal(t, 1, subB.count())
	assert.Equal(t, 0, other.count())
	require.Len(t, subA.events, 1)
	assert.Equal(t, []string{"a(b)."}, subA.events[0].NewClauses)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	sub := &recorder{}
	b.Subscribe("s1", sub)
	b.Unsubscribe("s1", sub)
	b.Broadcast(Event{SessionID: "s1"})
	assert.Equal(t, 0, sub.count())
}

func TestUnsubscribeAll(t *testing.T) {
	b := New()
	sub := &recorder{}
	b.Subscribe("s1", sub)
	b.Subscribe("s2", sub)
	b.UnsubscribeAll(sub)
	b.Broadcast(Event{SessionID: "s1"})
	b.Broadcast(Event{SessionID: "s2"})
	assert.Equal(t, 0, sub.count())
}

func TestFuncSubscribersAreDistinctHandles(t *testing.T) {
	b := New()
	var hits int
	fn := func(Event) error { hits++; return nil }

	first := Func(fn)
	second := Func(fn)
	b.Subscribe("s1", first)
	b.Subscribe("s1", second)
	require.Equal(t, 2, b.SubscriberCount("s1"))

	b.Unsubscribe("s1", first)
	assert.Equal(t, 1, b.SubscriberCount("s1"))

	b.Broadcast(Event{SessionID: "s1"})
	assert.Equal(t, 1, hits)
}

func TestFailingSubscriberIsDropped(t *testing.T) {
	b := New()
	healthy := &recorder{}
	dying := Func(func(Event) error { return errors.New("gone") })

	b.Subscribe("s1", healthy)
	b.Subscribe("s1", dying)
	require.Equal(t, 2, b.SubscriberCount("s1"))

	b.Broadcast(Event{SessionID: "s1"})
	assert.Equal(t, 1, b.SubscriberCount("s1"))
	assert.Equal(t, 1, healthy.count())
}

func TestPanickingSubscriberIsDroppedNotFatal(t *testing.T) {
	b := New()
	healthy := &recorder{}
	b.Subscribe("s1", Func(func(Event) error { panic("boom") }))
	b.Subscribe("s1", healthy)

	assert.NotPanics(t, func() { b.Broadcast(Event{SessionID: "s1"}) })
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 1, b.SubscriberCount("s1"))
}

func TestConcurrentSubscribeAndBroadcast(t *testing.T) {
	b := New()
	sub := &recorder{}
	b.Subscribe("s1", sub)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				b.Broadcast(Event{SessionID: "s1"})
			}
		}()
		go func() {
			defer wg.Done()
			extra := &recorder{}
			for j := 0; j < 50; j++ {
				b.Subscribe("s1", extra)
				b.Unsubscribe("s1", extra)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 8*50, sub.count())
}
