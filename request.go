// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

// Request is the unit of work submitted to the engine's inbox (§3): a
// closed set of variants, built by the router façade and matched on by the
// engine's dispatch loop. It is a sealed interface — every implementation
// lives in this file — so the engine's type switch is exhaustive.
type Request interface {
	isRequest()
}

type hostReply struct {
	value IpList
	err   error
}

type addrReply struct {
	value Address
	err   error
}

type resolveHostRequest struct {
	name  Name
	reply chan<- hostReply
}

func (resolveHostRequest) isRequest() {}

type resolveHostPortRequest struct {
	name  Name
	port  uint16
	reply chan<- addrReply
}

func (resolveHostPortRequest) isRequest() {}

type resolveRequest struct {
	name  Name
	reply chan<- addrReply
}

func (resolveRequest) isRequest() {}

type hostSubscribeRequest struct {
	name Name
	slot *Slot[IpList]
}

func (hostSubscribeRequest) isRequest() {}

type subscribeRequest struct {
	name Name
	slot *Slot[Address]
}

func (subscribeRequest) isRequest() {}

// taskRequest carries a continuation to be invoked with (engine, cfg) once
// dequeued (§3 "Task(continuation)"). [Router.SubscribeMany] and
// [Router.SubscribeStream] use it to inject the multi-name subscriber.
type taskRequest struct {
	run func(e *Engine, cfg *Config)
}

func (taskRequest) isRequest() {}
