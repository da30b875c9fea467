// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAutoIPLiteral(t *testing.T) {
	n, err := ParseAuto(AutoNameAuto("127.0.0.1"), 1234)
	require.NoError(t, err)
	require.True(t, n.IsLiteralAddr())
	assert.Equal(t, netip.MustParseAddrPort("127.0.0.1:1234"), n.Addr())
}

func TestParseAutoBracketedIPv6WithPort(t *testing.T) {
	n, err := ParseAuto(AutoNameAuto("[2001:db8::2:1]:8123"), 1234)
	require.NoError(t, err)
	require.True(t, n.IsLiteralAddr())
	assert.Equal(t, netip.MustParseAddrPort("[2001:db8::2:1]:8123"), n.Addr())
}

func TestParseAutoServicePrefix(t *testing.T) {
	n, err := ParseAuto(AutoNameAuto("_http._tcp.example.org"), 1234)
	require.NoError(t, err)
	assert.True(t, n.IsService())
	assert.Equal(t, "_http._tcp.example.org", n.Host().String())
}

func TestParseAutoHostWithPort(t *testing.T) {
	n, err := ParseAuto(AutoNameAuto("localhost:8080"), 1234)
	require.NoError(t, err)
	require.True(t, n.IsHostPort())
	assert.Equal(t, "localhost", n.Host().String())
	assert.Equal(t, uint16(8080), n.Port())
}

func TestParseAutoBareHostUsesDefaultPort(t *testing.T) {
	n, err := ParseAuto(AutoNameAuto("example.org"), 1234)
	require.NoError(t, err)
	require.True(t, n.IsHostPort())
	assert.Equal(t, uint16(1234), n.Port())
}

func TestParseAutoServiceWithExplicitPortIsRejected(t *testing.T) {
	_, err := ParseAuto(AutoNameAuto("_my._svc.localhost:8080"), 1234)
	require.Error(t, err)
	var invalid *InvalidNameError
	require.ErrorAs(t, err, &invalid)
}

func TestParseAutoRejectsBadPort(t *testing.T) {
	_, err := ParseAuto(AutoNameAuto("localhost:notaport"), 1234)
	require.Error(t, err)
}

func TestAutoNameHostPortForcesPort(t *testing.T) {
	n, err := ParseAuto(AutoNameHostPort("example.org", 9090), 1234)
	require.NoError(t, err)
	assert.Equal(t, uint16(9090), n.Port())
}

func TestAutoNameHostDefaultPortUsesGivenDefault(t *testing.T) {
	n, err := ParseAuto(AutoNameHostDefaultPort("example.org"), 53)
	require.NoError(t, err)
	assert.Equal(t, uint16(53), n.Port())
}

func TestAutoNameServiceForcesServiceInterpretation(t *testing.T) {
	n, err := ParseAuto(AutoNameService("plain.example.org"), 1234)
	require.NoError(t, err)
	assert.True(t, n.IsService())
}

func TestAutoNameIPLiteral(t *testing.T) {
	ip := netip.MustParseAddr("10.0.0.1")
	n, err := ParseAuto(AutoNameIP(ip), 53)
	require.NoError(t, err)
	assert.Equal(t, netip.AddrPortFrom(ip, 53), n.Addr())
}

func TestAutoNameSocketAddrLiteral(t *testing.T) {
	sa := netip.MustParseAddrPort("10.0.0.1:53")
	n, err := ParseAuto(AutoNameSocketAddr(sa), 1234)
	require.NoError(t, err)
	assert.Equal(t, sa, n.Addr())
}
