package state

import (
	"sync"

	"github.com/halcyon-audio/halcyon/metrics"
)

// subBufSize is the per-subscription buffer depth. A subscriber that falls
// more than subBufSize updates behind misses intermediate values and only
// sees later ones.
const subBufSize = 16

// Subscription is a live feed of one store's value changes. Updates arrive
// on C until Unsubscribe is called or the owning registry is destroyed,
// after which C is closed.
type Subscription struct {
	// C delivers each new value after it has been applied to the store.
	// For field-narrowed subscriptions it delivers the field value.
	C <-chan any

	ch   chan any
	b    *broadcaster
	once sync.Once
}

// Unsubscribe releases the subscription and closes C. Safe to call more
// than once and after the registry has been destroyed.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { s.b.remove(s) })
}

// broadcaster fans one store's value changes out to its subscriptions.
// Every store owns exactly one; the registry closes them all when it is
// destroyed so no subscription outlives the shared cancellation signal.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[*Subscription]string // subscription -> field key ("" = whole value)
	closed bool
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[*Subscription]string)}
}

// subscribe registers a new subscription, optionally narrowed to one field
// of a Keyed value. On a closed broadcaster the returned subscription is
// already terminated (C is closed).
func (b *broadcaster) subscribe(key string) *Subscription {
	ch := make(chan any, subBufSize)
	s := &Subscription{C: ch, ch: ch, b: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return s
	}
	b.subs[s] = key
	metrics.SubscriptionOpened()
	return s
}

func (b *broadcaster) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
		metrics.SubscriptionClosed()
	}
}

// publish delivers v to every subscription. Field-narrowed subscriptions
// receive the named field of a Keyed value and are skipped when the field
// is absent. A full subscriber buffer drops the update rather than block
// the event path.
func (b *broadcaster) publish(v any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for s, key := range b.subs {
		out := v
		if key != "" {
			kv, ok := v.(Keyed)
			if !ok {
				continue
			}
			fv, ok := kv.Field(key)
			if !ok {
				continue
			}
			out = fv
		}
		select {
		case s.ch <- out:
		default:
		}
	}
}

// close terminates every subscription. Further publishes are no-ops, so a
// value applied after teardown reaches no subscriber.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		close(s.ch)
		delete(b.subs, s)
		metrics.SubscriptionClosed()
	}
}
