// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import "sync"

// notifier is a one-shot-per-generation broadcast: every subscription task
// holds the channel returned by the generation it was created or restarted
// under, and observes it close exactly once, when that generation's config
// is superseded (§9 "Configuration swap with live tasks"). [notifier.fire]
// then allocates a fresh channel for the next generation.
//
// This is deliberately not a [sync.Cond] or a fan-out of per-subscriber
// channels: closing a single channel wakes every current waiter at once,
// which is exactly the "signal to all subscribers" semantics the dispatch
// engine needs, without tracking who is currently subscribed.
type notifier struct {
	mu sync.Mutex
	ch chan struct{}
}

func newNotifier() *notifier {
	return &notifier{ch: make(chan struct{})}
}

// C returns the current generation's channel. It closes exactly once, the
// next time [notifier.fire] runs.
func (n *notifier) C() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.ch
}

// fire closes the current generation's channel and starts a new one. Only
// the engine goroutine calls this, immediately after installing a new
// config.
func (n *notifier) fire() {
	n.mu.Lock()
	old := n.ch
	n.ch = make(chan struct{})
	n.mu.Unlock()
	close(old)
}
