// SPDX-License-Identifier: GPL-3.0-or-later

// Package stdresolver is an illustrative back-end built on [*net.Resolver]
// (§6, "a back-end may implement any subset"). It is deliberately not a DNS
// protocol engine: it delegates every lookup to the standard library and
// adds only what [*net.Resolver] lacks natively — a subscribe capability —
// by polling on an interval, the same shape as the original's
// `ThreadedResolver::interval_subscriber`.
package stdresolver

import (
	"context"
	"net"
	"net/netip"
	"time"

	"github.com/bassosimone/errclass"

	nsrouter "github.com/tailhook/ns-router"
)

const defaultInterval = 30 * time.Second

// Resolver adapts [*net.Resolver] into the router's back-end capability
// interfaces. All four capabilities (host resolve, service resolve, host
// subscribe, subscribe) are implemented, so [nsrouter.NewWrapper] never
// needs to degrade any of them to [nsrouter.NullResolver] semantics.
type Resolver struct {
	// Backend is the underlying resolver. Defaults to [net.DefaultResolver].
	Backend *net.Resolver

	// Interval is how often a subscription re-polls Backend. Defaults to
	// 30 seconds.
	Interval time.Duration

	// Logger is the [nsrouter.SLogger] to use for structured logging.
	Logger nsrouter.SLogger

	// ErrClassifier classifies lookup failures for structured logging.
	// Unlike [nsrouter.DefaultErrClassifier], this back-end wires up a real
	// classifier by default, since it has real network errors to classify.
	ErrClassifier nsrouter.ErrClassifier
}

var (
	_ nsrouter.HostResolverBackend   = (*Resolver)(nil)
	_ nsrouter.ResolverBackend       = (*Resolver)(nil)
	_ nsrouter.HostSubscriberBackend = (*Resolver)(nil)
	_ nsrouter.SubscriberBackend     = (*Resolver)(nil)
)

// New returns a [*Resolver] wrapping [net.DefaultResolver], polling every
// interval (or defaultInterval, if interval is zero or negative).
func New(interval time.Duration, logger nsrouter.SLogger) *Resolver {
	if logger == nil {
		logger = nsrouter.DefaultSLogger()
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Resolver{
		Backend:       net.DefaultResolver,
		Interval:      interval,
		Logger:        logger,
		ErrClassifier: nsrouter.ErrClassifierFunc(errclass.New),
	}
}

// ResolveHost implements [nsrouter.HostResolverBackend].
func (r *Resolver) ResolveHost(ctx context.Context, name nsrouter.Name) (nsrouter.IpList, error) {
	spanID := nsrouter.NewSpanID()
	t0 := time.Now()
	r.logResolveHostStart(spanID, name, t0)
	addrs, err := r.Backend.LookupNetIP(ctx, "ip", name.String())
	r.logResolveHostDone(spanID, name, t0, addrs, err)
	if err != nil {
		return nil, r.classify(name, err)
	}
	return nsrouter.IpList(addrs), nil
}

// Resolve implements [nsrouter.ResolverBackend] via an SRV lookup: name is
// passed to [*net.Resolver.LookupSRV] with an empty service and proto, so
// it is interpreted literally as the full query name — the same
// `_service._proto.host` convention [nsrouter.AutoNameAuto] recognizes.
func (r *Resolver) Resolve(ctx context.Context, name nsrouter.Name) (nsrouter.Address, error) {
	spanID := nsrouter.NewSpanID()
	t0 := time.Now()
	r.logResolveStart(spanID, name, t0)
	_, records, err := r.Backend.LookupSRV(ctx, "", "", name.String())
	if err != nil {
		r.logResolveDone(spanID, name, t0, nil, err)
		return nil, r.classify(name, err)
	}
	var out nsrouter.Address
	for _, rec := range records {
		addrs, aerr := r.Backend.LookupNetIP(ctx, "ip", rec.Target)
		if aerr != nil {
			r.Logger.Warn("stdresolver: SRV target lookup failed",
				"spanID", spanID, "name", name.String(), "target", rec.Target, "error", aerr)
			continue
		}
		for _, ip := range addrs {
			out = append(out, netip.AddrPortFrom(ip, rec.Port))
		}
	}
	r.logResolveDone(spanID, name, t0, out, nil)
	return out, nil
}

// HostSubscribe implements [nsrouter.HostSubscriberBackend] by polling
// [Resolver.ResolveHost] on [Resolver.Interval].
func (r *Resolver) HostSubscribe(name nsrouter.Name) (<-chan nsrouter.HostEvent, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan nsrouter.HostEvent)
	go r.pollHost(ctx, name, out)
	return out, cancel
}

func (r *Resolver) pollHost(ctx context.Context, name nsrouter.Name, out chan<- nsrouter.HostEvent) {
	defer close(out)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		value, err := r.ResolveHost(ctx, name)
		select {
		case out <- nsrouter.HostEvent{Value: value, Err: err}:
		case <-ctx.Done():
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Subscribe implements [nsrouter.SubscriberBackend] by polling
// [Resolver.Resolve] on [Resolver.Interval].
func (r *Resolver) Subscribe(name nsrouter.Name) (<-chan nsrouter.AddrEvent, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan nsrouter.AddrEvent)
	go r.pollAddr(ctx, name, out)
	return out, cancel
}

func (r *Resolver) pollAddr(ctx context.Context, name nsrouter.Name, out chan<- nsrouter.AddrEvent) {
	defer close(out)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		value, err := r.Resolve(ctx, name)
		select {
		case out <- nsrouter.AddrEvent{Value: value, Err: err}:
		case <-ctx.Done():
			return
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (r *Resolver) classify(name nsrouter.Name, err error) error {
	var dnsErr *net.DNSError
	if e, ok := err.(*net.DNSError); ok {
		dnsErr = e
	}
	if dnsErr != nil && dnsErr.IsNotFound {
		return &nsrouter.NameNotFoundError{Name: name.String()}
	}
	return &nsrouter.TemporaryError{Name: name.String(), Msg: r.ErrClassifier.Classify(err)}
}

func (r *Resolver) logResolveHostStart(spanID string, name nsrouter.Name, t0 time.Time) {
	r.Logger.Debug("resolveHostStart", "spanID", spanID, "name", name.String(), "t0", t0)
}

func (r *Resolver) logResolveHostDone(spanID string, name nsrouter.Name, t0 time.Time, addrs []netip.Addr, err error) {
	r.Logger.Info("resolveHostDone",
		"spanID", spanID,
		"name", name.String(),
		"addrs", addrs,
		"err", err,
		"errClass", r.ErrClassifier.Classify(err),
		"t0", t0,
		"t", time.Now(),
	)
}

func (r *Resolver) logResolveStart(spanID string, name nsrouter.Name, t0 time.Time) {
	r.Logger.Debug("resolveStart", "spanID", spanID, "name", name.String(), "t0", t0)
}

func (r *Resolver) logResolveDone(spanID string, name nsrouter.Name, t0 time.Time, addr nsrouter.Address, err error) {
	r.Logger.Info("resolveDone",
		"spanID", spanID,
		"name", name.String(),
		"addr", addr,
		"err", err,
		"errClass", r.ErrClassifier.Classify(err),
		"t0", t0,
		"t", time.Now(),
	)
}
