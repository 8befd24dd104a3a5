package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Keyed is implemented by composite store values whose named sub-fields can
// be read and subscribed to individually.
type Keyed interface {
	// Field returns the value of the named sub-field, or false when no
	// such field exists.
	Field(key string) (any, bool)
}

// Store is the capability set every synchronized cache must implement. A
// store is created once during registry construction and lives until the
// registry is destroyed; its name is immutable and unique within one
// registry.
//
// Concrete stores implement the contract by embedding a Cache, which
// supplies everything except Refresh.
type Store interface {
	// Name returns the unique registry key.
	Name() string

	// Refresh pulls the authoritative value from the player daemon and
	// replaces the cached one.
	Refresh(ctx context.Context) error

	// Reset synchronously reverts to the store's default value. Never
	// touches the network.
	Reset()

	// Get returns the cached value, or, for a non-empty key, the named
	// sub-field of a Keyed value.
	Get(key string) (any, error)

	// Select returns a live subscription to value changes, optionally
	// narrowed to one sub-field.
	Select(key string) (*Subscription, error)

	// Set decodes a raw event payload and applies it. It is the event
	// router's mutation entry point; application code must not call it.
	Set(state json.RawMessage) error

	// closeSubs tears down the store's subscriptions. Called by the
	// registry during Destroy; supplied by the embedded Cache.
	closeSubs()
}

// Cache is the generic base a concrete store embeds. It owns the name, the
// default, the current value and the change fan-out; the embedding type
// adds Refresh.
type Cache[T any] struct {
	name string
	def  T

	mu    sync.RWMutex
	value T

	subs *broadcaster
}

// NewCache creates a cache initialized to its default value.
func NewCache[T any](name string, def T) *Cache[T] {
	return &Cache[T]{
		name:  name,
		def:   def,
		value: def,
		subs:  newBroadcaster(),
	}
}

// Name returns the store's registry key.
func (c *Cache[T]) Name() string { return c.name }

// Value returns the typed cached value.
func (c *Cache[T]) Value() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Default returns the value Reset reverts to.
func (c *Cache[T]) Default() T { return c.def }

// Put replaces the cached value and notifies subscribers. Concrete stores
// call it from Refresh with the freshly pulled value. Writes are
// last-write-wins: no ordering is enforced between a refresh result and a
// concurrently applied event payload.
func (c *Cache[T]) Put(v T) {
	c.mu.Lock()
	c.value = v
	c.mu.Unlock()
	c.subs.publish(v)
}

// Reset reverts to the default value.
func (c *Cache[T]) Reset() {
	c.Put(c.def)
}

// Set decodes raw into the value type and applies it.
func (c *Cache[T]) Set(raw json.RawMessage) error {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("state: %s: decode payload: %w", c.name, err)
	}
	c.Put(v)
	return nil
}

// Get returns the cached value, or the named sub-field when key is
// non-empty and the value type implements Keyed.
func (c *Cache[T]) Get(key string) (any, error) {
	v := c.Value()
	if key == "" {
		return v, nil
	}
	kv, ok := any(v).(Keyed)
	if !ok {
		return nil, fmt.Errorf("state: %s: value has no addressable fields", c.name)
	}
	fv, ok := kv.Field(key)
	if !ok {
		return nil, fmt.Errorf("state: %s: unknown field %q", c.name, key)
	}
	return fv, nil
}

// Select opens a subscription to future values, optionally narrowed to one
// sub-field of a Keyed value.
func (c *Cache[T]) Select(key string) (*Subscription, error) {
	if key != "" {
		if _, ok := any(c.def).(Keyed); !ok {
			return nil, fmt.Errorf("state: %s: value has no addressable fields", c.name)
		}
	}
	return c.subs.subscribe(key), nil
}

func (c *Cache[T]) closeSubs() {
	c.subs.close()
}
