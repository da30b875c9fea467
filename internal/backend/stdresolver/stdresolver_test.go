// SPDX-License-Identifier: GPL-3.0-or-later

package stdresolver

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/bassosimone/errclass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	nsrouter "github.com/tailhook/ns-router"
)

func newTestResolver(interval time.Duration) *Resolver {
	return &Resolver{
		Backend:       net.DefaultResolver,
		Interval:      interval,
		Logger:        nsrouter.DefaultSLogger(),
		ErrClassifier: nsrouter.ErrClassifierFunc(errclass.New),
	}
}

// failingResolver dials nothing: every lookup attempt fails at the
// transport level, without ever touching the network.
func failingResolver() *net.Resolver {
	return &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			return nil, errors.New("dial refused")
		},
	}
}

func TestClassifyMapsNotFoundDNSError(t *testing.T) {
	r := newTestResolver(0)
	err := r.classify(nsrouter.MustName("www.example.org"), &net.DNSError{
		Err:        "no such host",
		Name:       "www.example.org",
		IsNotFound: true,
	})
	var notFound *nsrouter.NameNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "www.example.org", notFound.Name)
}

func TestClassifyMapsOtherDNSErrorToTemporary(t *testing.T) {
	r := newTestResolver(0)
	err := r.classify(nsrouter.MustName("www.example.org"), &net.DNSError{
		Err:       "i/o timeout",
		Name:      "www.example.org",
		IsTimeout: true,
	})
	var temp *nsrouter.TemporaryError
	require.ErrorAs(t, err, &temp)
	assert.Equal(t, "www.example.org", temp.Name)
	assert.NotEmpty(t, temp.Msg)
}

func TestClassifyMapsNonDNSErrorToTemporary(t *testing.T) {
	r := newTestResolver(0)
	err := r.classify(nsrouter.MustName("www.example.org"), errors.New("boom"))
	var temp *nsrouter.TemporaryError
	require.ErrorAs(t, err, &temp)
	assert.Equal(t, "www.example.org", temp.Name)
}

func TestResolveHostReturnsTemporaryErrorOnTransportFailure(t *testing.T) {
	r := newTestResolver(0)
	r.Backend = failingResolver()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := r.ResolveHost(ctx, nsrouter.MustName("www.example.org"))
	require.Error(t, err)
	var temp *nsrouter.TemporaryError
	assert.ErrorAs(t, err, &temp)
}

func TestResolveReturnsTemporaryErrorOnTransportFailure(t *testing.T) {
	r := newTestResolver(0)
	r.Backend = failingResolver()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := r.Resolve(ctx, nsrouter.MustName("_http._tcp.example.org"))
	require.Error(t, err)
	var temp *nsrouter.TemporaryError
	assert.ErrorAs(t, err, &temp)
}

func TestHostSubscribeClosesStreamOnCancel(t *testing.T) {
	r := newTestResolver(5 * time.Millisecond)
	r.Backend = failingResolver()

	stream, cancel := r.HostSubscribe(nsrouter.MustName("www.example.org"))

	select {
	case ev := <-stream:
		require.Error(t, ev.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first poll event")
	}

	cancel()

	select {
	case _, ok := <-stream:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream never closed after cancel")
	}
}

func TestSubscribeClosesStreamOnCancel(t *testing.T) {
	r := newTestResolver(5 * time.Millisecond)
	r.Backend = failingResolver()

	stream, cancel := r.Subscribe(nsrouter.MustName("_http._tcp.example.org"))

	select {
	case ev := <-stream:
		require.Error(t, ev.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first poll event")
	}

	cancel()

	select {
	case _, ok := <-stream:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("stream never closed after cancel")
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	r := New(0, nil)
	assert.Equal(t, defaultInterval, r.Interval)
	assert.NotNil(t, r.Backend)
	assert.NotNil(t, r.Logger)
	assert.NotNil(t, r.ErrClassifier)
}
