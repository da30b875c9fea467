// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import "context"

// HostEvent is one item from a host-subscription stream.
type HostEvent = StreamEvent[IpList]

// AddrEvent is one item from a service-subscription stream.
type AddrEvent = StreamEvent[Address]

// Resolver is the router's internal, uniform back-end capability.
//
// The four externally visible operations — resolve host, resolve service,
// subscribe to a host, subscribe to a service — are collapsed into this one
// interface (§4.E), eliminating per-capability branching at every call
// site: the engine and subscription tasks only ever call through Resolver.
//
// A subscribe method returns a receive-only channel of events and a cancel
// function; the caller must call cancel once it stops reading, so the
// back-end can release whatever resources (goroutines, timers, connections)
// it used to produce the stream.
type Resolver interface {
	ResolveHost(ctx context.Context, name Name) (IpList, error)
	Resolve(ctx context.Context, name Name) (Address, error)
	HostSubscribe(name Name) (<-chan HostEvent, func())
	Subscribe(name Name) (<-chan AddrEvent, func())
}

// NullResolver implements every [Resolver] operation as a deliberate
// no-op: one-shot queries fail immediately with [NameNotFoundError], and
// subscriptions return a stream that never produces a value, parking the
// caller's slot until a later config swap routes it elsewhere.
//
// It backs every capability a real back-end does not implement (see
// [NewWrapper]) and is also the config builder's implicit fallthrough.
type NullResolver struct{}

var _ Resolver = NullResolver{}

// ResolveHost implements [Resolver].
func (NullResolver) ResolveHost(ctx context.Context, name Name) (IpList, error) {
	return nil, &NameNotFoundError{Name: name.String()}
}

// Resolve implements [Resolver].
func (NullResolver) Resolve(ctx context.Context, name Name) (Address, error) {
	return nil, &NameNotFoundError{Name: name.String()}
}

// HostSubscribe implements [Resolver]. The returned channel never produces
// a value; the returned cancel function is a no-op.
func (NullResolver) HostSubscribe(name Name) (<-chan HostEvent, func()) {
	return make(chan HostEvent), func() {}
}

// Subscribe implements [Resolver]. The returned channel never produces a
// value; the returned cancel function is a no-op.
func (NullResolver) Subscribe(name Name) (<-chan AddrEvent, func()) {
	return make(chan AddrEvent), func() {}
}

// HostResolverBackend is the optional one-shot host-resolution capability a
// back-end may implement.
type HostResolverBackend interface {
	ResolveHost(ctx context.Context, name Name) (IpList, error)
}

// ResolverBackend is the optional one-shot service-resolution capability a
// back-end may implement.
type ResolverBackend interface {
	Resolve(ctx context.Context, name Name) (Address, error)
}

// HostSubscriberBackend is the optional host-subscription capability a
// back-end may implement.
type HostSubscriberBackend interface {
	HostSubscribe(name Name) (<-chan HostEvent, func())
}

// SubscriberBackend is the optional service-subscription capability a
// back-end may implement.
type SubscriberBackend interface {
	Subscribe(name Name) (<-chan AddrEvent, func())
}

// wrapper adapts a back-end that implements any subset of the four
// capability interfaces into a uniform [Resolver], falling back to
// [NullResolver] semantics per missing capability.
type wrapper struct {
	hostResolver   HostResolverBackend
	resolver       ResolverBackend
	hostSubscriber HostSubscriberBackend
	subscriber     SubscriberBackend
}

var _ Resolver = (*wrapper)(nil)

// NewWrapper adapts back into a [Resolver]. back may implement any subset
// of [HostResolverBackend], [ResolverBackend], [HostSubscriberBackend], and
// [SubscriberBackend]; operations it does not implement degrade to
// [NullResolver] semantics.
func NewWrapper(back any) Resolver {
	w := &wrapper{}
	if v, ok := back.(HostResolverBackend); ok {
		w.hostResolver = v
	}
	if v, ok := back.(ResolverBackend); ok {
		w.resolver = v
	}
	if v, ok := back.(HostSubscriberBackend); ok {
		w.hostSubscriber = v
	}
	if v, ok := back.(SubscriberBackend); ok {
		w.subscriber = v
	}
	return w
}

// ResolveHost implements [Resolver].
func (w *wrapper) ResolveHost(ctx context.Context, name Name) (IpList, error) {
	if w.hostResolver == nil {
		return nil, &NameNotFoundError{Name: name.String()}
	}
	return w.hostResolver.ResolveHost(ctx, name)
}

// Resolve implements [Resolver].
func (w *wrapper) Resolve(ctx context.Context, name Name) (Address, error) {
	if w.resolver == nil {
		return nil, &NameNotFoundError{Name: name.String()}
	}
	return w.resolver.Resolve(ctx, name)
}

// HostSubscribe implements [Resolver].
func (w *wrapper) HostSubscribe(name Name) (<-chan HostEvent, func()) {
	if w.hostSubscriber == nil {
		return NullResolver{}.HostSubscribe(name)
	}
	return w.hostSubscriber.HostSubscribe(name)
}

// Subscribe implements [Resolver].
func (w *wrapper) Subscribe(name Name) (<-chan AddrEvent, func()) {
	if w.subscriber == nil {
		return NullResolver{}.Subscribe(name)
	}
	return w.subscriber.Subscribe(name)
}
