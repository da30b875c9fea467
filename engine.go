// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"context"
	"sync"
	"time"
)

// Continuation is a piece of work that, once yielded back to the engine as
// a [taskOutcome], runs under the engine goroutine's exclusive ownership of
// the current [*Config] and may re-enter the engine's subscribe path
// (§4.F/§4.G "restart").
//
// Subscription tasks are the only producers of Continuation values; one-shot
// queries never restart.
type Continuation interface {
	restart(e *Engine, cfg *Config)
}

type taskOutcomeKind uint8

const (
	outcomeDone taskOutcomeKind = iota
	outcomeRestart
	outcomeDelayRestart
)

// taskOutcome is what a task goroutine reports back to the engine: the Go
// analogue of the original's `FutureResult` (minus `Stop`/`UpdateConfig`,
// which in this implementation are observed directly on the config-source
// channel rather than synthesized as task results).
type taskOutcome struct {
	kind taskOutcomeKind
	cont Continuation
}

// Engine is the single cooperative dispatch task (§4.F, component F).
//
// It exclusively owns the current [*Config] and the set of in-flight
// subscription tasks; nothing outside the engine goroutine ever reads or
// writes that state, so no locks are taken on the hot path. Callers never
// touch an Engine directly — they go through a [*Router], which submits
// [Request] values to [Engine.Submit].
type Engine struct {
	logger   SLogger
	requests *unboundedQueue[Request]
	results  chan taskOutcome
	notifier *notifier
	shutdown chan struct{}

	mu     sync.Mutex
	closed bool

	// active is the in-flight task count (subscriptions plus pending
	// one-shot dispatches). It is only ever touched by the run goroutine,
	// so it needs no synchronization of its own.
	active int
}

// newEngine wires the plumbing shared by [NewEngine] and
// [NewEngineFromStream].
func newEngine(logger SLogger) *Engine {
	if logger == nil {
		logger = DefaultSLogger()
	}
	return &Engine{
		logger:   logger,
		requests: newUnboundedQueue[Request](),
		results:  make(chan taskOutcome),
		notifier: newNotifier(),
		shutdown: make(chan struct{}),
	}
}

// Done returns a channel that closes once the engine goroutine has
// returned, for any reason — config stream ended, or request inbox ended
// (whether or not tasks are still in flight). Subscription tasks and the router façade's
// stream adapters select on it to stop waiting on an engine that will
// never send them anything again.
func (e *Engine) Done() <-chan struct{} {
	return e.shutdown
}

// NewEngine starts an [*Engine] with a fixed, never-changing configuration.
func NewEngine(cfg *Config, logger SLogger) *Engine {
	e := newEngine(logger)
	go e.run(cfg, nil)
	return e
}

// NewEngineFromStream starts an [*Engine] that installs whatever configs
// configSource produces, starting with the first one. Requests are queued
// but not processed until the first config arrives (§4.F step 1). The
// engine terminates when configSource closes.
func NewEngineFromStream(configSource <-chan *Config, logger SLogger) *Engine {
	e := newEngine(logger)
	go e.run(nil, configSource)
	return e
}

// Submit enqueues req for dispatch. It reports [TemporaryError] if the
// engine has already shut down.
func (e *Engine) Submit(req Request) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errResolverDown()
	}
	e.requests.Send(req)
	return nil
}

// Close ends the request inbox, which immediately shuts the engine down
// (§5 "only closing the config stream, dropping the UpdateSink, or ending
// the request inbox shuts down the engine"): any subscription tasks still
// in flight are abandoned, not drained.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	e.requests.Close()
}

func (e *Engine) run(initial *Config, configSource <-chan *Config) {
	defer close(e.shutdown)
	cfg := initial
	if cfg == nil {
		var ok bool
		cfg, ok = e.awaitFirstConfig(configSource)
		if !ok {
			return
		}
	}
	e.logger.Info("engine: config installed")

	// Ending the request inbox or the config stream shuts the engine down
	// unconditionally, abandoning any still-active subscription tasks
	// rather than waiting for them to drain (§5 "Cancellation"): those
	// tasks observe it via [Engine.Done] the next time they wake.
	for {
		select {
		case req, ok := <-e.requests.Out():
			if !ok {
				e.logger.Info("engine: request inbox ended, shutting down")
				return
			}
			e.dispatch(cfg, req)

		case c, ok := <-configSource:
			if !ok {
				e.logger.Info("engine: config stream ended, shutting down")
				return
			}
			cfg = c
			e.notifier.fire()
			e.logger.Info("engine: config updated")

		case outcome := <-e.results:
			e.handleOutcome(cfg, outcome)
		}
	}
}

// awaitFirstConfig implements §4.F step 1: before any config exists, only
// task results (which, this early, can only be Done — nothing spawns a
// task before a config has been installed) and the config source are
// observed.
func (e *Engine) awaitFirstConfig(configSource <-chan *Config) (*Config, bool) {
	for {
		select {
		case cfg, ok := <-configSource:
			if !ok {
				return nil, false
			}
			e.notifier.fire()
			return cfg, true
		case outcome := <-e.results:
			if outcome.kind == outcomeDone {
				e.active--
			}
		}
	}
}

func (e *Engine) handleOutcome(cfg *Config, outcome taskOutcome) {
	switch outcome.kind {
	case outcomeDone:
		e.active--
	case outcomeRestart:
		outcome.cont.restart(e, cfg)
	case outcomeDelayRestart:
		cont := outcome.cont
		delay := cfg.RestartDelay
		go func() {
			time.Sleep(delay)
			e.results <- taskOutcome{kind: outcomeRestart, cont: cont}
		}()
	}
}

func (e *Engine) dispatch(cfg *Config, req Request) {
	switch r := req.(type) {
	case resolveHostRequest:
		e.handleResolveHost(cfg, r.name, r.reply)
	case resolveHostPortRequest:
		e.handleResolveHostPort(cfg, r.name, r.port, r.reply)
	case resolveRequest:
		e.handleResolve(cfg, r.name, r.reply)
	case hostSubscribeRequest:
		e.handleHostSubscribe(cfg, r.name, r.slot)
	case subscribeRequest:
		e.handleSubscribe(cfg, r.name, r.slot)
	case taskRequest:
		r.run(e, cfg)
	}
}

func (e *Engine) handleResolveHost(cfg *Config, name Name, reply chan<- hostReply) {
	if value, ok := cfg.Hosts[name]; ok {
		reply <- hostReply{value: value}
		return
	}
	backend := getSuffix(cfg, name.String())
	e.active++
	go func() {
		value, err := backend.ResolveHost(context.Background(), name)
		reply <- hostReply{value: value, err: err}
		e.results <- taskOutcome{kind: outcomeDone}
	}()
}

func (e *Engine) handleResolveHostPort(cfg *Config, name Name, port uint16, reply chan<- addrReply) {
	if value, ok := cfg.Hosts[name]; ok {
		reply <- addrReply{value: value.WithPort(port)}
		return
	}
	backend := getSuffix(cfg, name.String())
	e.active++
	go func() {
		value, err := backend.ResolveHost(context.Background(), name)
		if err != nil {
			reply <- addrReply{err: err}
		} else {
			reply <- addrReply{value: value.WithPort(port)}
		}
		e.results <- taskOutcome{kind: outcomeDone}
	}()
}

func (e *Engine) handleResolve(cfg *Config, name Name, reply chan<- addrReply) {
	if value, ok := cfg.Services[name]; ok {
		reply <- addrReply{value: value}
		return
	}
	backend := getSuffix(cfg, name.String())
	e.active++
	go func() {
		value, err := backend.Resolve(context.Background(), name)
		reply <- addrReply{value: value, err: err}
		e.results <- taskOutcome{kind: outcomeDone}
	}()
}

func (e *Engine) handleHostSubscribe(cfg *Config, name Name, slot *Slot[IpList]) {
	if value, ok := cfg.Hosts[name]; ok {
		if !slot.Swap(value) {
			return
		}
		e.active++
		go runHostNoOpSubscriptionTask(e, name, slot)
		return
	}
	backend := getSuffix(cfg, name.String())
	e.active++
	e.spawnHostSubscription(backend, name, slot)
}

func (e *Engine) handleSubscribe(cfg *Config, name Name, slot *Slot[Address]) {
	if value, ok := cfg.Services[name]; ok {
		if !slot.Swap(value) {
			return
		}
		e.active++
		go runAddrNoOpSubscriptionTask(e, name, slot)
		return
	}
	backend := getSuffix(cfg, name.String())
	e.active++
	e.spawnAddrSubscription(backend, name, slot)
}
