package state

import (
	"errors"
	"log/slog"

	"github.com/halcyon-audio/halcyon/metrics"
	"github.com/halcyon-audio/halcyon/transport"
)

// route consumes the connection's event stream until the shared
// cancellation signal fires or the stream closes. It is the only goroutine
// that dispatches events, so per-event handling stays ordered; the remote
// round trips it triggers run on their own goroutines to keep the stream
// live while a refresh is in flight.
func (r *Registry) route() {
	events := r.conn.Events()
	for {
		select {
		case <-r.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				slog.Debug("registry: event stream closed")
				return
			}
			r.dispatch(ev)
		}
	}
}

// dispatch routes one inbound event: connect fans out a full sequential
// refresh, state and reset payloads are applied directly to the named
// store, and an entity-changed notification forces a re-pull of the named
// store. Events naming an unregistered store are routine noise from the
// daemon and are dropped, not failed.
func (r *Registry) dispatch(ev transport.Event) {
	// An event racing against Destroy is dropped: nothing may mutate the
	// stores once teardown has begun.
	if r.destroyed.Load() {
		return
	}

	switch ev.Kind {
	case transport.KindConnect:
		metrics.EventRouted(string(ev.Kind))
		// Recover state after a (re)connect: anything missed while
		// disconnected would otherwise leave stores stale.
		go func() {
			if err := r.RefreshAll(r.ctx); err != nil && !errors.Is(err, ErrDestroyed) {
				slog.Warn("registry: refresh after connect failed", "err", err)
			}
		}()

	case transport.KindState, transport.KindReset:
		s, ok := r.stores[ev.Name]
		if !ok {
			r.drop(ev)
			return
		}
		metrics.EventRouted(string(ev.Kind))
		if err := s.Set(ev.State); err != nil {
			slog.Warn("registry: apply payload failed", "store", ev.Name, "err", err)
		}

	case transport.KindEntity:
		s, ok := r.stores[ev.Name]
		if !ok {
			r.drop(ev)
			return
		}
		metrics.EventRouted(string(ev.Kind))
		// The notification carries no value, so re-pull the authoritative
		// one rather than trust anything derived.
		go func() {
			if err := r.refreshStore(r.ctx, s); err != nil {
				slog.Warn("registry: refresh after entity change failed",
					"store", s.Name(), "err", err)
			}
		}()

	default:
		r.drop(ev)
	}
}

func (r *Registry) drop(ev transport.Event) {
	metrics.EventDropped(string(ev.Kind))
	slog.Debug("registry: dropped event", "kind", ev.Kind, "store", ev.Name)
}
