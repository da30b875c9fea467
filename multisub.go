// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import "time"

// This file implements the multi-name subscription task (§4.H, component
// H): it consumes a changing set of names and drives one consumer [Slot] of
// [Address], unioning every entry's current value and honoring the
// convergence delay so a burst of new names doesn't emit partial results.
//
// Each live entry reuses the single-name subscription machinery from
// subscription.go wholesale — a Host entry is, underneath, an ordinary
// host subscription writing into its own private [Slot]; multiSubTask only
// adds the aggregation and convergence-gating layer on top. Per-entry
// updates are fanned into one channel by small forwarder goroutines rather
// than polled, since Go has no `reflect.Select`-free way to wait on a
// dynamic set of channels.

type multiSubEntryKind uint8

const (
	multiSubEntryStaticHost multiSubEntryKind = iota
	multiSubEntryStaticAddr
	multiSubEntryLiteral
	multiSubEntryHost
	multiSubEntryAddr
)

type multiSubEntry struct {
	kind multiSubEntryKind

	hostList IpList
	port     uint16
	addr     Address

	slotHost *Slot[IpList]
	lastHost *IpList

	slotAddr *Slot[Address]
	lastAddr *Address
}

// isComplete reports whether a value has been observed at least once.
func (s *multiSubEntry) isComplete() bool {
	switch s.kind {
	case multiSubEntryStaticHost, multiSubEntryStaticAddr, multiSubEntryLiteral:
		return true
	case multiSubEntryHost:
		return s.lastHost != nil
	case multiSubEntryAddr:
		return s.lastAddr != nil
	default:
		return false
	}
}

// addr projects the entry's current value, if any, into an [Address].
func (s *multiSubEntry) addr() (Address, bool) {
	switch s.kind {
	case multiSubEntryStaticHost:
		return s.hostList.WithPort(s.port), true
	case multiSubEntryStaticAddr, multiSubEntryLiteral:
		return s.addr, true
	case multiSubEntryHost:
		if s.lastHost != nil {
			return s.lastHost.WithPort(s.port), true
		}
		return nil, false
	case multiSubEntryAddr:
		if s.lastAddr != nil {
			return *s.lastAddr, true
		}
		return nil, false
	default:
		return nil, false
	}
}

func (s *multiSubEntry) cancel() {
	switch s.kind {
	case multiSubEntryHost:
		s.slotHost.Cancel()
	case multiSubEntryAddr:
		s.slotAddr.Cancel()
	}
}

type multiSubUpdate struct {
	key       InternalName
	isHost    bool
	hostValue IpList
	addrValue Address
}

// multiSubTask is the Continuation driving one [Router.SubscribeMany] or
// [Router.SubscribeStream] call.
type multiSubTask struct {
	input       <-chan []AutoName
	defaultPort uint16

	current []InternalName
	items   map[InternalName]*multiSubEntry
	timer   *time.Timer

	updatesIn chan multiSubUpdate
	done      chan struct{}
	outSlot   *Slot[Address]
}

var _ Continuation = (*multiSubTask)(nil)

func newMultiSubTask(input <-chan []AutoName, defaultPort uint16, outSlot *Slot[Address]) *multiSubTask {
	return &multiSubTask{
		input:       input,
		defaultPort: defaultPort,
		items:       make(map[InternalName]*multiSubEntry),
		updatesIn:   make(chan multiSubUpdate),
		done:        make(chan struct{}),
		outSlot:     outSlot,
	}
}

// namesOnce returns a channel that delivers names exactly once and is
// never closed afterwards, for [Router.SubscribeMany]'s fixed name list.
func namesOnce(names []AutoName) <-chan []AutoName {
	ch := make(chan []AutoName, 1)
	ch <- names
	return ch
}

// bootstrap starts the task: the taskRequest continuation submitted by the
// router façade calls this directly on the engine goroutine, so it must
// never block — it only starts the background goroutine that awaits the
// first name list.
func (t *multiSubTask) bootstrap(e *Engine) {
	e.active++
	go t.run(e)
}

func (t *multiSubTask) sendCurrent() bool {
	parts := make([]Address, 0, len(t.items))
	for _, item := range t.items {
		if a, ok := item.addr(); ok {
			parts = append(parts, a)
		}
	}
	return t.outSlot.Swap(UnionAddresses(parts...))
}

func (t *multiSubTask) allComplete() bool {
	for _, item := range t.items {
		if !item.isComplete() {
			return false
		}
	}
	return true
}

func (t *multiSubTask) teardown() {
	close(t.done)
	for _, item := range t.items {
		item.cancel()
	}
}

// restart implements [Continuation]: it is called on the engine goroutine
// after the name list changes, reclassifying every entry against cfg
// (§4.H "restart").
func (t *multiSubTask) restart(e *Engine, cfg *Config) {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}

	old := t.items
	t.items = make(map[InternalName]*multiSubEntry, len(t.current))
	for _, key := range t.current {
		if prev, ok := old[key]; ok &&
			(prev.kind == multiSubEntryHost || prev.kind == multiSubEntryAddr) {
			// Live entry: its slot is still valid, no need to reclassify.
			t.items[key] = prev
			delete(old, key)
			continue
		}
		t.classify(e, cfg, key)
		delete(old, key)
	}
	// Whatever remains in old is no longer in the current set: drop it,
	// canceling its underlying subscription if it has one.
	for _, item := range old {
		item.cancel()
	}

	allComplete := t.allComplete()
	if len(t.current) == 0 || allComplete || cfg.ConvergenceDelay <= 0 {
		if !t.sendCurrent() {
			t.teardown()
			e.results <- taskOutcome{kind: outcomeDone}
			return
		}
	} else {
		t.timer = time.NewTimer(cfg.ConvergenceDelay)
	}
	go t.run(e)
}

func (t *multiSubTask) classify(e *Engine, cfg *Config, key InternalName) {
	switch {
	case key.IsLiteralAddr():
		t.items[key] = &multiSubEntry{kind: multiSubEntryLiteral, addr: Address{key.Addr()}}

	case key.IsHostPort():
		host, port := key.Host(), key.Port()
		if value, ok := cfg.Hosts[host]; ok {
			t.items[key] = &multiSubEntry{kind: multiSubEntryStaticHost, hostList: value, port: port}
			return
		}
		backend := getSuffix(cfg, host.String())
		slot := NewSlot[IpList]()
		e.active++
		e.spawnHostSubscription(backend, host, slot)
		t.items[key] = &multiSubEntry{kind: multiSubEntryHost, slotHost: slot, port: port}
		go forwardHostSlot(slot, key, t.updatesIn, t.done)

	case key.IsService():
		service := key.Host()
		if value, ok := cfg.Services[service]; ok {
			t.items[key] = &multiSubEntry{kind: multiSubEntryStaticAddr, addr: value}
			return
		}
		backend := getSuffix(cfg, service.String())
		slot := NewSlot[Address]()
		e.active++
		e.spawnAddrSubscription(backend, service, slot)
		t.items[key] = &multiSubEntry{kind: multiSubEntryAddr, slotAddr: slot}
		go forwardAddrSlot(slot, key, t.updatesIn, t.done)
	}
}

// run is the task's ongoing poll loop (§4.H "poll"): it watches for
// consumer cancellation, a name-list change (which hands control back to
// the engine via restart), the convergence timer, and per-entry updates.
func (t *multiSubTask) run(e *Engine) {
	updated := false
	for {
		var timerC <-chan time.Time
		if t.timer != nil {
			timerC = t.timer.C
		}

		select {
		case <-e.Done():
			t.teardown()
			return

		case <-t.outSlot.Done():
			t.teardown()
			e.results <- taskOutcome{kind: outcomeDone}
			return

		case list, ok := <-t.input:
			if !ok {
				t.teardown()
				e.results <- taskOutcome{kind: outcomeDone}
				return
			}
			parsed, err := parseAutoNames(list, t.defaultPort)
			if err != nil {
				e.logger.Warn("multi-name subscription: rejected name list", "error", err)
				continue
			}
			// t.current is nil until the first list arrives, so a first
			// list that is empty still triggers a restart and an emission.
			if t.current != nil && internalNamesEqual(t.current, parsed) {
				continue
			}
			t.current = parsed
			e.results <- taskOutcome{kind: outcomeRestart, cont: t}
			return

		case <-timerC:
			t.timer = nil
			updated = true

		case upd := <-t.updatesIn:
			entry, ok := t.items[upd.key]
			if !ok {
				continue // stale: entry was replaced by a later restart
			}
			if upd.isHost {
				if entry.lastHost == nil || !entry.lastHost.Equal(upd.hostValue) {
					v := upd.hostValue
					entry.lastHost = &v
					updated = true
				}
			} else {
				if entry.lastAddr == nil || !entry.lastAddr.Equal(upd.addrValue) {
					v := upd.addrValue
					entry.lastAddr = &v
					updated = true
				}
			}
		}

		if updated {
			if t.timer != nil && t.allComplete() {
				t.timer.Stop()
				t.timer = nil
			}
			if t.timer == nil {
				if !t.sendCurrent() {
					t.teardown()
					e.results <- taskOutcome{kind: outcomeDone}
					return
				}
			}
			updated = false
		}
	}
}

func forwardHostSlot(slot *Slot[IpList], key InternalName, out chan<- multiSubUpdate, done <-chan struct{}) {
	for {
		select {
		case v := <-slot.Recv():
			select {
			case out <- multiSubUpdate{key: key, isHost: true, hostValue: v}:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}

func forwardAddrSlot(slot *Slot[Address], key InternalName, out chan<- multiSubUpdate, done <-chan struct{}) {
	for {
		select {
		case v := <-slot.Recv():
			select {
			case out <- multiSubUpdate{key: key, isHost: false, addrValue: v}:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}

func parseAutoNames(names []AutoName, defaultPort uint16) ([]InternalName, error) {
	out := make([]InternalName, 0, len(names))
	for _, n := range names {
		in, err := ParseAuto(n, defaultPort)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func internalNamesEqual(a, b []InternalName) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
