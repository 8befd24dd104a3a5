package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/halcyon-audio/halcyon/metrics"
	"github.com/halcyon-audio/halcyon/transport"
)

// Factory builds one store against the daemon connection. The registry
// instantiates every factory exactly once during New.
type Factory func(c transport.Caller) Store

// Registry owns all stores, keyed by name, and routes the daemon's
// synchronization events to them. It is live as soon as New returns and
// stays so until Destroy.
type Registry struct {
	conn   transport.Conn
	stores map[string]Store // immutable after New
	order  []string         // registration order, drives bulk refresh

	// ctx is the shared cancellation signal: it terminates the event loop
	// and bounds router-triggered refreshes. Destroy fires it exactly once.
	ctx    context.Context
	cancel context.CancelFunc

	destroyed atomic.Bool
}

// New instantiates every factory, indexes the stores by name and starts
// routing the connection's event stream. Factory order is preserved and
// drives RefreshAll. Duplicate or empty store names are construction
// errors.
func New(ctx context.Context, conn transport.Conn, factories ...Factory) (*Registry, error) {
	rctx, cancel := context.WithCancel(ctx)
	r := &Registry{
		conn:   conn,
		stores: make(map[string]Store, len(factories)),
		ctx:    rctx,
		cancel: cancel,
	}

	for _, f := range factories {
		s := f(conn)
		name := s.Name()
		if name == "" {
			cancel()
			return nil, errors.New("state: store with empty name")
		}
		if _, dup := r.stores[name]; dup {
			cancel()
			return nil, fmt.Errorf("state: duplicate store name %q", name)
		}
		r.stores[name] = s
		r.order = append(r.order, name)
	}

	go r.route()

	slog.Debug("registry: active", "stores", len(r.order))
	return r, nil
}

// GetStore resolves an identifier to its store. Returns a *NotFoundError
// when nothing is registered under the resolved name.
func (r *Registry) GetStore(id Identifier) (Store, error) {
	s, ok := r.stores[id.storeName()]
	if !ok {
		return nil, &NotFoundError{Identifier: id.storeName()}
	}
	return s, nil
}

// Names returns all registered store names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// HasStore reports whether an identifier resolves to a registered store.
func (r *Registry) HasStore(id Identifier) bool {
	_, ok := r.stores[id.storeName()]
	return ok
}

// Get returns the identified store's cached value. Synchronous; never
// touches the network.
func (r *Registry) Get(id Identifier) (any, error) {
	s, err := r.GetStore(id)
	if err != nil {
		return nil, err
	}
	return s.Get("")
}

// GetField returns one named sub-field of the identified store's cached
// composite value.
func (r *Registry) GetField(id Identifier, key string) (any, error) {
	s, err := r.GetStore(id)
	if err != nil {
		return nil, err
	}
	return s.Get(key)
}

// Select opens a live subscription to the identified store's value changes.
// The subscription stays active until Unsubscribe or Destroy.
func (r *Registry) Select(id Identifier) (*Subscription, error) {
	return r.SelectField(id, "")
}

// SelectField opens a subscription narrowed to one sub-field of a composite
// value.
func (r *Registry) SelectField(id Identifier, key string) (*Subscription, error) {
	if r.destroyed.Load() {
		return nil, ErrDestroyed
	}
	s, err := r.GetStore(id)
	if err != nil {
		return nil, err
	}
	return s.Select(key)
}

// RefreshAll pulls every store's state from the daemon, strictly one store
// at a time in registration order so no two stores perform remote pulls in
// parallel. The first failure aborts the remaining sequence and propagates
// to the caller.
func (r *Registry) RefreshAll(ctx context.Context) error {
	if r.destroyed.Load() {
		return ErrDestroyed
	}
	for _, name := range r.order {
		if err := r.refreshStore(ctx, r.stores[name]); err != nil {
			return err
		}
	}
	return nil
}

// Refresh pulls one store's state from the daemon.
func (r *Registry) Refresh(ctx context.Context, id Identifier) error {
	if r.destroyed.Load() {
		return ErrDestroyed
	}
	s, err := r.GetStore(id)
	if err != nil {
		return err
	}
	return r.refreshStore(ctx, s)
}

func (r *Registry) refreshStore(ctx context.Context, s Store) error {
	metrics.RefreshStarted(s.Name())
	if err := s.Refresh(ctx); err != nil {
		metrics.RefreshFailed(s.Name())
		return err
	}
	return nil
}

// ResetAll synchronously reverts every store to its default value. Purely
// local; never fails.
func (r *Registry) ResetAll() {
	for _, name := range r.order {
		r.stores[name].Reset()
	}
}

// Value returns the identified store's cached value as T.
func Value[T any](r *Registry, id Identifier) (T, error) {
	var zero T
	v, err := r.Get(id)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("state: %s: value is %T, not %T", id.storeName(), v, zero)
	}
	return t, nil
}

// Destroy tears the registry down: every subscription is closed, every
// store reverts to its default and the shared cancellation signal fires,
// stopping the event loop. Idempotent — the second and later calls are
// no-ops. Afterwards Refresh, RefreshAll, Select and SelectField return
// ErrDestroyed; local reads keep working. A refresh already awaiting the
// daemon may still complete and overwrite a cached value, but reaches no
// subscriber.
func (r *Registry) Destroy() {
	if !r.destroyed.CompareAndSwap(false, true) {
		return
	}

	// Subscriptions close before the resets so the revert to defaults is
	// not observed as a final emission.
	for _, name := range r.order {
		r.stores[name].closeSubs()
	}
	for _, name := range r.order {
		r.stores[name].Reset()
	}
	r.cancel()

	slog.Debug("registry: destroyed", "stores", len(r.order))
}
