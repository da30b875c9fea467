// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"context"
	"sync"
)

// Router is the client-facing façade (§4.I, component I). Every method
// builds a [Request], submits it to the engine's inbox, and translates the
// reply back into the method's own return shape; it never touches engine
// state directly.
//
// A Router is safe for concurrent use by multiple goroutines. Dropping
// every Router handle does not cancel outstanding work — only closing the
// config stream, dropping the [UpdateSink], or calling [Router.Close] shuts
// the underlying engine down.
type Router struct {
	engine *Engine
}

// NewRouter starts a [Router] backed by a fixed, never-changing
// configuration.
func NewRouter(cfg *Config, logger SLogger) *Router {
	return &Router{engine: NewEngine(cfg, logger)}
}

// NewRouterFromStream starts a [Router] whose configuration tracks
// configSource. The router terminates once configSource closes.
func NewRouterFromStream(configSource <-chan *Config, logger SLogger) *Router {
	return &Router{engine: NewEngineFromStream(configSource, logger)}
}

// NewUpdatingRouter starts a [Router] seeded with cfg and returns an
// [UpdateSink] the caller uses to push later configs.
func NewUpdatingRouter(cfg *Config, logger SLogger) (*Router, *UpdateSink) {
	ch := make(chan *Config)
	engine := NewEngineFromStream(ch, logger)
	sink := &UpdateSink{ch: ch, done: engine.Done()}
	ch <- cfg
	return &Router{engine: engine}, sink
}

// Close ends the router's request inbox, which shuts the engine down at
// once; in-flight tasks are abandoned rather than drained, and every
// subscription stream closes.
func (r *Router) Close() {
	r.engine.Close()
}

// ResolveHost resolves name to an [IpList] (§6 `resolve_host`).
func (r *Router) ResolveHost(ctx context.Context, name Name) (IpList, error) {
	reply := make(chan hostReply, 1)
	if err := r.engine.Submit(resolveHostRequest{name: name, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Resolve resolves name to an [Address] (§6 `resolve`).
func (r *Router) Resolve(ctx context.Context, name Name) (Address, error) {
	reply := make(chan addrReply, 1)
	if err := r.engine.Submit(resolveRequest{name: name, reply: reply}); err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ResolveAuto parses a and resolves it to an [Address] (§6 `resolve_auto`).
// A literal address is returned without ever involving the engine.
func (r *Router) ResolveAuto(ctx context.Context, a AutoName, defaultPort uint16) (Address, error) {
	in, err := ParseAuto(a, defaultPort)
	if err != nil {
		return nil, err
	}
	if in.IsLiteralAddr() {
		return Address{in.Addr()}, nil
	}

	reply := make(chan addrReply, 1)
	if in.IsHostPort() {
		err = r.engine.Submit(resolveHostPortRequest{name: in.Host(), port: in.Port(), reply: reply})
	} else {
		err = r.engine.Submit(resolveRequest{name: in.Host(), reply: reply})
	}
	if err != nil {
		return nil, err
	}
	select {
	case res := <-reply:
		return res.value, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SubscribeHost subscribes to name's host resolution (§6 `subscribe_host`).
// The returned channel is infallible and latest-wins: every receive is the
// most recently observed [IpList], and stale intermediate values are
// silently dropped if the consumer can't keep up. It closes when the
// engine shuts down. Call the returned cancel function once done reading.
func (r *Router) SubscribeHost(name Name) (<-chan IpList, func()) {
	slot := NewSlot[IpList]()
	if err := r.engine.Submit(hostSubscribeRequest{name: name, slot: slot}); err != nil {
		return closedHostChan(), func() {}
	}
	return adaptHostSlot(r.engine, slot), slot.Cancel
}

// Subscribe subscribes to name's service resolution (§6 `subscribe`).
func (r *Router) Subscribe(name Name) (<-chan Address, func()) {
	slot := NewSlot[Address]()
	if err := r.engine.Submit(subscribeRequest{name: name, slot: slot}); err != nil {
		return closedAddrChan(), func() {}
	}
	return adaptAddrSlot(r.engine, slot), slot.Cancel
}

// SubscribeMany subscribes to a fixed set of names, resolving each through
// the name parser and emitting the coalesced union of their current
// addresses (§6 `subscribe_many`, §4.H).
func (r *Router) SubscribeMany(names []AutoName, defaultPort uint16) (<-chan Address, func()) {
	slot := NewSlot[Address]()
	task := newMultiSubTask(namesOnce(names), defaultPort, slot)
	if err := r.engine.Submit(taskRequest{run: func(e *Engine, cfg *Config) { task.bootstrap(e) }}); err != nil {
		return closedAddrChan(), func() {}
	}
	return adaptAddrSlot(r.engine, slot), slot.Cancel
}

// SubscribeStream is like [Router.SubscribeMany], but the name set itself
// may change over time: every value read from names replaces the set being
// watched (§6 `subscribe_stream`).
func (r *Router) SubscribeStream(names <-chan []AutoName, defaultPort uint16) (<-chan Address, func()) {
	slot := NewSlot[Address]()
	task := newMultiSubTask(names, defaultPort, slot)
	if err := r.engine.Submit(taskRequest{run: func(e *Engine, cfg *Config) { task.bootstrap(e) }}); err != nil {
		return closedAddrChan(), func() {}
	}
	return adaptAddrSlot(r.engine, slot), slot.Cancel
}

// UpdateSink is the write handle returned alongside a [Router] built with
// [NewUpdatingRouter]. Update pushes a new configuration; Close ends the
// config stream, which shuts the router down (§4.I `updating_config`).
type UpdateSink struct {
	ch     chan *Config
	done   <-chan struct{}
	mu     sync.Mutex
	closed bool
}

// Update installs cfg as the router's new configuration. It reports false
// once [UpdateSink.Close] has been called or the engine has shut down.
func (s *UpdateSink) Update(cfg *Config) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.ch <- cfg:
		return true
	case <-s.done:
		return false
	}
}

// Close ends the config stream, shutting the router down.
func (s *UpdateSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// adaptHostSlot bridges a latest-wins [Slot] to an ordinary Go channel that
// closes on engine shutdown, the shape every external stream method
// returns.
func adaptHostSlot(e *Engine, slot *Slot[IpList]) <-chan IpList {
	out := make(chan IpList, 1)
	go func() {
		defer close(out)
		for {
			select {
			case v := <-slot.Recv():
				select {
				case out <- v:
				case <-e.Done():
					return
				}
			case <-e.Done():
				return
			}
		}
	}()
	return out
}

func adaptAddrSlot(e *Engine, slot *Slot[Address]) <-chan Address {
	out := make(chan Address, 1)
	go func() {
		defer close(out)
		for {
			select {
			case v := <-slot.Recv():
				select {
				case out <- v:
				case <-e.Done():
					return
				}
			case <-e.Done():
				return
			}
		}
	}()
	return out
}

func closedHostChan() <-chan IpList {
	ch := make(chan IpList)
	close(ch)
	return ch
}

func closedAddrChan() <-chan Address {
	ch := make(chan Address)
	close(ch)
	return ch
}
