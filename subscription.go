// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

// This file implements the single-name subscription task (§4.G, component
// G): one goroutine per outstanding [Router.SubscribeHost]/[Router.Subscribe]
// call, driving one back-end stream into one consumer [Slot].
//
// Every goroutine here runs until it has something to report back to the
// engine — Done (the consumer went away), Restart (the config generation
// changed), or DelayRestart (the back-end stream ended or errored) — then
// exits. [Continuation.restart] picks the task back up on the engine
// goroutine, which may re-spawn an equivalent goroutine or replace it with
// one bound to a different back-end.

// -- host subscriptions -------------------------------------------------

func (e *Engine) spawnHostSubscription(backend Resolver, name Name, slot *Slot[IpList]) {
	stream, cancel := backend.HostSubscribe(name)
	fuse := NewFuse(stream)
	go runHostSubscriptionTask(e, backend, name, slot, fuse, cancel)
}

func runHostSubscriptionTask(e *Engine, backend Resolver, name Name, slot *Slot[IpList], fuse *Fuse[HostEvent], cancel func()) {
	gen := e.notifier.C()
	for {
		select {
		case <-e.Done():
			cancel()
			return

		case <-slot.Done():
			cancel()
			e.results <- taskOutcome{kind: outcomeDone}
			return

		case <-gen:
			e.results <- taskOutcome{kind: outcomeRestart, cont: &hostSubscriptionContinuation{
				name: name, backend: backend, slot: slot, fuse: fuse, cancel: cancel,
			}}
			return

		case ev, ok := <-fuse.Chan():
			fuse.Mark(ev, ok)
			switch {
			case !ok:
				e.logger.Warn("host subscription stream ended", "name", name.String())
			case ev.Err != nil:
				e.logger.Warn("host subscription stream error", "name", name.String(), "error", ev.Err)
			default:
				if slot.Swap(ev.Value) {
					continue
				}
				cancel()
				e.results <- taskOutcome{kind: outcomeDone}
				return
			}
			e.results <- taskOutcome{kind: outcomeDelayRestart, cont: &hostSubscriptionContinuation{
				name: name, backend: backend, slot: slot, fuse: fuse, cancel: cancel,
			}}
			return
		}
	}
}

// hostSubscriptionContinuation implements the §4.G `restart(engine, cfg)`
// logic for a task watching host name n served by backend with stream
// fuse.
type hostSubscriptionContinuation struct {
	name    Name
	backend Resolver
	slot    *Slot[IpList]
	fuse    *Fuse[HostEvent]
	cancel  func()
}

func (c *hostSubscriptionContinuation) restart(e *Engine, cfg *Config) {
	if value, ok := cfg.Hosts[c.name]; ok {
		c.cancel()
		if !c.slot.Swap(value) {
			e.results <- taskOutcome{kind: outcomeDone}
			return
		}
		go runHostNoOpSubscriptionTask(e, c.name, c.slot)
		return
	}
	next := getSuffix(cfg, c.name.String())
	if next != c.backend || c.fuse.IsDone() {
		c.cancel()
		e.spawnHostSubscription(next, c.name, c.slot)
		return
	}
	go runHostSubscriptionTask(e, c.backend, c.name, c.slot, c.fuse, c.cancel)
}

// runHostNoOpSubscriptionTask implements the no-op subscription task
// (§4.G): it holds only (name, slot); it never produces a value on its
// own, and its restart re-enters the engine's host-subscribe path exactly
// as if the consumer had just called it, so a config that later removes
// the static override transparently wires the slot to a live back-end.
func runHostNoOpSubscriptionTask(e *Engine, name Name, slot *Slot[IpList]) {
	gen := e.notifier.C()
	select {
	case <-e.Done():
	case <-slot.Done():
		e.results <- taskOutcome{kind: outcomeDone}
	case <-gen:
		e.results <- taskOutcome{kind: outcomeRestart, cont: &hostNoOpContinuation{name: name, slot: slot}}
	}
}

type hostNoOpContinuation struct {
	name Name
	slot *Slot[IpList]
}

func (c *hostNoOpContinuation) restart(e *Engine, cfg *Config) {
	e.handleHostSubscribe(cfg, c.name, c.slot)
}

// -- service subscriptions ------------------------------------------------

func (e *Engine) spawnAddrSubscription(backend Resolver, name Name, slot *Slot[Address]) {
	stream, cancel := backend.Subscribe(name)
	fuse := NewFuse(stream)
	go runAddrSubscriptionTask(e, backend, name, slot, fuse, cancel)
}

func runAddrSubscriptionTask(e *Engine, backend Resolver, name Name, slot *Slot[Address], fuse *Fuse[AddrEvent], cancel func()) {
	gen := e.notifier.C()
	for {
		select {
		case <-e.Done():
			cancel()
			return

		case <-slot.Done():
			cancel()
			e.results <- taskOutcome{kind: outcomeDone}
			return

		case <-gen:
			e.results <- taskOutcome{kind: outcomeRestart, cont: &addrSubscriptionContinuation{
				name: name, backend: backend, slot: slot, fuse: fuse, cancel: cancel,
			}}
			return

		case ev, ok := <-fuse.Chan():
			fuse.Mark(ev, ok)
			switch {
			case !ok:
				e.logger.Warn("service subscription stream ended", "name", name.String())
			case ev.Err != nil:
				e.logger.Warn("service subscription stream error", "name", name.String(), "error", ev.Err)
			default:
				if slot.Swap(ev.Value) {
					continue
				}
				cancel()
				e.results <- taskOutcome{kind: outcomeDone}
				return
			}
			e.results <- taskOutcome{kind: outcomeDelayRestart, cont: &addrSubscriptionContinuation{
				name: name, backend: backend, slot: slot, fuse: fuse, cancel: cancel,
			}}
			return
		}
	}
}

type addrSubscriptionContinuation struct {
	name    Name
	backend Resolver
	slot    *Slot[Address]
	fuse    *Fuse[AddrEvent]
	cancel  func()
}

func (c *addrSubscriptionContinuation) restart(e *Engine, cfg *Config) {
	if value, ok := cfg.Services[c.name]; ok {
		c.cancel()
		if !c.slot.Swap(value) {
			e.results <- taskOutcome{kind: outcomeDone}
			return
		}
		go runAddrNoOpSubscriptionTask(e, c.name, c.slot)
		return
	}
	next := getSuffix(cfg, c.name.String())
	if next != c.backend || c.fuse.IsDone() {
		c.cancel()
		e.spawnAddrSubscription(next, c.name, c.slot)
		return
	}
	go runAddrSubscriptionTask(e, c.backend, c.name, c.slot, c.fuse, c.cancel)
}

func runAddrNoOpSubscriptionTask(e *Engine, name Name, slot *Slot[Address]) {
	gen := e.notifier.C()
	select {
	case <-e.Done():
	case <-slot.Done():
		e.results <- taskOutcome{kind: outcomeDone}
	case <-gen:
		e.results <- taskOutcome{kind: outcomeRestart, cont: &addrNoOpContinuation{name: name, slot: slot}}
	}
}

type addrNoOpContinuation struct {
	name Name
	slot *Slot[Address]
}

func (c *addrNoOpContinuation) restart(e *Engine, cfg *Config) {
	e.handleSubscribe(cfg, c.name, c.slot)
}
