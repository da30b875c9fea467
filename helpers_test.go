// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"context"
	"log/slog"

	"github.com/bassosimone/slogstub"
)

// newCapturingLogger returns a logger that captures all log records into the
// returned slice. The caller can inspect the slice after exercising the code
// under test to verify which events were emitted.
func newCapturingLogger() (*slog.Logger, *[]slog.Record) {
	var records []slog.Record
	handler := &slogstub.FuncHandler{
		EnabledFunc: func(ctx context.Context, level slog.Level) bool {
			return true
		},
		HandleFunc: func(ctx context.Context, record slog.Record) error {
			records = append(records, record)
			return nil
		},
	}
	return slog.New(handler), &records
}

// stubBackend is a minimal [Resolver] used across tests: it serves a fixed
// host answer and a fixed service answer, and its subscribe channels are
// driven directly by the test via the returned send-side channels.
type stubBackend struct {
	hostValue IpList
	hostErr   error
	addrValue Address
	addrErr   error

	// hang, if non-nil, makes ResolveHost/Resolve block until it is closed
	// instead of returning immediately — for exercising caller-side timeout
	// and cancellation paths.
	hang chan struct{}

	hostStream chan HostEvent
	addrStream chan AddrEvent
	canceled   bool
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		hostStream: make(chan HostEvent, 4),
		addrStream: make(chan AddrEvent, 4),
	}
}

func (s *stubBackend) ResolveHost(ctx context.Context, name Name) (IpList, error) {
	if s.hang != nil {
		<-s.hang
	}
	return s.hostValue, s.hostErr
}

func (s *stubBackend) Resolve(ctx context.Context, name Name) (Address, error) {
	return s.addrValue, s.addrErr
}

func (s *stubBackend) HostSubscribe(name Name) (<-chan HostEvent, func()) {
	return s.hostStream, func() { s.canceled = true }
}

func (s *stubBackend) Subscribe(name Name) (<-chan AddrEvent, func()) {
	return s.addrStream, func() { s.canceled = true }
}

var (
	_ HostResolverBackend   = (*stubBackend)(nil)
	_ ResolverBackend       = (*stubBackend)(nil)
	_ HostSubscriberBackend = (*stubBackend)(nil)
	_ SubscriberBackend     = (*stubBackend)(nil)
)
