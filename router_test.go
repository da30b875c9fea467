// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterResolveHost(t *testing.T) {
	name := MustName("localhost")
	cfg := NewConfigBuilder().
		AddHost(name, IpList{netip.MustParseAddr("127.0.0.1")}).
		Done()
	r := NewRouter(cfg, nil)
	defer r.Close()

	got, err := r.ResolveHost(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, IpList{netip.MustParseAddr("127.0.0.1")}, got)
}

func TestRouterResolveAutoHostPort(t *testing.T) {
	name := MustName("localhost")
	cfg := NewConfigBuilder().
		AddHost(name, IpList{netip.MustParseAddr("127.0.0.1")}).
		Done()
	r := NewRouter(cfg, nil)
	defer r.Close()

	got, err := r.ResolveAuto(context.Background(), AutoNameAuto("localhost:8080"), 1234)
	require.NoError(t, err)
	assert.Equal(t, Address{netip.MustParseAddrPort("127.0.0.1:8080")}, got)
}

func TestRouterResolveAutoRejectsInvalidName(t *testing.T) {
	r := NewRouter(NewConfigBuilder().Done(), nil)
	defer r.Close()

	_, err := r.ResolveAuto(context.Background(), AutoNameAuto("_my._svc.localhost:8080"), 1234)
	var invalid *InvalidNameError
	require.ErrorAs(t, err, &invalid)
}

func TestRouterResolveHostContextCancellation(t *testing.T) {
	back := newStubBackend()
	back.hang = make(chan struct{}) // never closed: ResolveHost never returns
	cfg := NewConfigBuilder().AddSuffix("example.org", NewWrapper(back)).Done()
	r := NewRouter(cfg, nil)
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.ResolveHost(ctx, MustName("www.example.org"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUpdatingRouterSwapsConfig(t *testing.T) {
	name := MustName("localhost")
	initial := NewConfigBuilder().
		AddHost(name, IpList{netip.MustParseAddr("127.0.0.1")}).
		Done()
	r, sink := NewUpdatingRouter(initial, nil)
	defer r.Close()

	got, err := r.ResolveHost(context.Background(), name)
	require.NoError(t, err)
	assert.Equal(t, IpList{netip.MustParseAddr("127.0.0.1")}, got)

	updated := NewConfigBuilder().
		AddHost(name, IpList{netip.MustParseAddr("192.0.2.1")}).
		Done()
	require.True(t, sink.Update(updated))

	require.Eventually(t, func() bool {
		got, err := r.ResolveHost(context.Background(), name)
		return err == nil && got.Equal(IpList{netip.MustParseAddr("192.0.2.1")})
	}, testTimeout, 10*time.Millisecond)
}

func TestUpdatingRouterCloseShutsDownRouter(t *testing.T) {
	r, sink := NewUpdatingRouter(NewConfigBuilder().Done(), nil)
	defer r.Close()
	sink.Close()

	assert.False(t, sink.Update(NewConfigBuilder().Done()))
}

func TestRouterSubscribeHostEndsOnClose(t *testing.T) {
	name := MustName("localhost")
	cfg := NewConfigBuilder().
		AddHost(name, IpList{netip.MustParseAddr("127.0.0.1")}).
		Done()
	r := NewRouter(cfg, nil)

	stream, cancel := r.SubscribeHost(name)
	defer cancel()

	select {
	case <-stream:
	case <-time.After(testTimeout):
		t.Fatal("timed out waiting for initial static value")
	}

	r.Close()

	select {
	case _, ok := <-stream:
		assert.False(t, ok)
	case <-time.After(testTimeout):
		t.Fatal("stream never closed after router shut down")
	}
}
