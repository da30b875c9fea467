// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalNameHostPortAccessors(t *testing.T) {
	host := MustName("example.org")
	n := newInternalHostPort(host, 443)

	assert.True(t, n.IsHostPort())
	assert.False(t, n.IsService())
	assert.False(t, n.IsLiteralAddr())
	assert.Equal(t, host, n.Host())
	assert.Equal(t, uint16(443), n.Port())
}

func TestInternalNameServiceAccessors(t *testing.T) {
	svc := MustName("_http._tcp.example.org")
	n := newInternalService(svc)

	assert.True(t, n.IsService())
	assert.Equal(t, svc, n.Host())
	assert.Equal(t, uint16(0), n.Port())
}

func TestInternalNameAddrAccessors(t *testing.T) {
	sa := netip.MustParseAddrPort("127.0.0.1:80")
	n := newInternalAddr(sa)

	assert.True(t, n.IsLiteralAddr())
	assert.Equal(t, sa, n.Addr())
}

func TestInternalNameAddrPanicsOnHost(t *testing.T) {
	n := newInternalHostPort(MustName("example.org"), 80)
	assert.Panics(t, func() { n.Addr() })
}

func TestInternalNameHostPanicsOnAddr(t *testing.T) {
	n := newInternalAddr(netip.MustParseAddrPort("127.0.0.1:80"))
	assert.Panics(t, func() { n.Host() })
}

func TestInternalNameIsComparable(t *testing.T) {
	a := newInternalHostPort(MustName("example.org"), 80)
	b := newInternalHostPort(MustName("example.org"), 80)
	c := newInternalHostPort(MustName("example.org"), 81)

	m := map[InternalName]bool{a: true}
	assert.True(t, m[b])
	assert.False(t, m[c])
}
