// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

// StreamEvent is one item produced by a back-end subscription stream: a new
// value, or an error that ends the stream.
type StreamEvent[T any] struct {
	Value T
	Err   error
}

// Fuse wraps an upstream channel so that, once it has yielded an end (a
// close) or any error, it latches into a terminal "done" state and
// thereafter behaves as if the channel were permanently empty.
//
// Go has no "return End forever" stream primitive the way a poll-based
// future does, but it has an equally idiomatic substitute: a nil channel
// blocks forever and is silently skipped by a select statement. [Fuse.Chan]
// exploits exactly that — once done, it returns nil, which disables its
// case in the caller's select without any extra bookkeeping.
type Fuse[T any] struct {
	upstream <-chan StreamEvent[T]
	done     bool
}

// NewFuse wraps upstream in a [Fuse].
func NewFuse[T any](upstream <-chan StreamEvent[T]) *Fuse[T] {
	return &Fuse[T]{upstream: upstream}
}

// IsDone reports whether the underlying stream has ended or errored. Once
// true, it stays true forever.
func (f *Fuse[T]) IsDone() bool {
	return f.done
}

// Chan returns the channel to read from in a select statement. Once fused,
// it returns nil, permanently disabling the corresponding select case.
func (f *Fuse[T]) Chan() <-chan StreamEvent[T] {
	if f.done {
		return nil
	}
	return f.upstream
}

// Mark must be called with the result of reading from [Fuse.Chan] (the
// event and the channel's ok value) so the adapter can latch once the
// stream ends (ok is false) or the event itself carries an error.
func (f *Fuse[T]) Mark(ev StreamEvent[T], ok bool) {
	if !ok || ev.Err != nil {
		f.done = true
	}
}
