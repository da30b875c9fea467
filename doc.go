// SPDX-License-Identifier: GPL-3.0-or-later

// Package nsrouter is a name-resolution router.
//
// It sits between an application and one or more name-resolution back-ends
// (DNS clients, service-discovery agents, in-memory tables, ...) and
// presents a uniform interface for resolving host names (to lists of IP
// addresses) and service names (to lists of host-port pairs), both as
// one-shot queries and as long-lived subscriptions that push updates when
// the underlying answer changes.
//
// # Core Abstraction
//
// A single cooperative [*Engine] owns the current [*Config] and the set of
// in-flight subscriptions. Clients never talk to the engine directly: a
// [*Router] submits [Request] values to the engine's inbox and hands back
// a slot-backed future or stream.
//
//	router := nsrouter.NewRouter(nsrouter.NewConfigBuilder().Done(), nil)
//	addrs, err := router.ResolveHost(ctx, nsrouter.MustName("localhost"))
//
// # Names From Configuration
//
// Use [Router.ResolveAuto] and [Router.SubscribeMany] for names that come
// from configuration files. In its simplest form it takes a plain string
// wrapped with [AutoNameAuto]:
//
//	router.ResolveAuto(ctx, nsrouter.AutoNameAuto("localhost:8080"), 80)
//	router.ResolveAuto(ctx, nsrouter.AutoNameAuto("_xmpp-server._tcp.example.org"), 80)
//
// See [AutoName] and [ParseAuto] for the full grammar.
//
// # Updating Configuration
//
// [NewUpdatingRouter] returns both a [*Router] and an [*UpdateSink]; pushing
// a new [*Config] into the sink re-routes every live subscription without
// any additional code on the consumer side.
//
// # Configuring The Router
//
//	cfg := nsrouter.NewConfigBuilder().
//		AddHost(nsrouter.MustName("localhost"), nsrouter.IpList{netip.MustParseAddr("127.0.0.1")}).
//		AddSuffix("consul", consulResolver).
//		SetFallthrough(stdResolver).
//		Done()
//
// # Observability
//
// All components log through [SLogger], compatible with [log/slog]. By
// default logging is disabled; set a [*slog.Logger] to enable it. Errors
// returned by an adapted back-end are classified via [ErrClassifier] for
// structured logging, but subscriptions never surface an error to the
// consumer — see "Subscription Errors" below.
//
// Use [NewSpanID] to tag each dispatched request with a UUIDv7 for log
// correlation across the engine and its subscription tasks.
//
// # Subscription Errors
//
// One-shot queries ([Router.ResolveHost], [Router.Resolve], ...) surface
// every error to the caller. Subscriptions ([Router.SubscribeHost],
// [Router.Subscribe], ...) are infallible from the consumer's point of
// view: a back-end error or stream end causes the underlying task to log
// and retry after [Config.RestartDelay]. A dead back-end looks like "no
// updates", never "error".
//
// # Design Boundaries
//
// This package does not implement DNS protocol parsing, zone data
// management, TTL-based caching, back-end retry/backoff policy, or
// load-balancing among resolved addresses. Those concerns belong to the
// back-ends it consumes, not to the router.
package nsrouter
