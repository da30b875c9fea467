// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"net/netip"
	"strconv"
	"strings"
)

type autoNameKind uint8

const (
	autoNameKindAuto autoNameKind = iota
	autoNameKindHostPort
	autoNameKindHostDefaultPort
	autoNameKindService
	autoNameKindIP
	autoNameKindSocketAddr
)

// AutoName is the parser's input: a name read from configuration, tagged
// with how it should be interpreted.
//
// [AutoNameAuto] covers the common case of a bare string read from a
// configuration file or flag; the other constructors let a caller force a
// specific interpretation — for example, a YAML loader that recognizes a
// `!Srv` tag can build an [AutoNameService] directly instead of relying on
// the `_service._proto.host` string convention that [AutoNameAuto] expects.
type AutoName struct {
	kind autoNameKind
	str  string
	port uint16
	ip   netip.Addr
	sa   netip.AddrPort
}

// AutoNameAuto auto-determines how to treat s. See [ParseAuto] for the
// exact grammar.
func AutoNameAuto(s string) AutoName {
	return AutoName{kind: autoNameKindAuto, str: s}
}

// AutoNameHostPort resolves host and attaches the given port, without
// going through the Auto grammar.
func AutoNameHostPort(host string, port uint16) AutoName {
	return AutoName{kind: autoNameKindHostPort, str: host, port: port}
}

// AutoNameHostDefaultPort resolves host and attaches whatever default port
// is passed to [ParseAuto].
func AutoNameHostDefaultPort(host string) AutoName {
	return AutoName{kind: autoNameKindHostDefaultPort, str: host}
}

// AutoNameService forces SRV-style resolution of name, bypassing the
// `_service._proto` prefix convention [ParseAuto] otherwise requires.
func AutoNameService(name string) AutoName {
	return AutoName{kind: autoNameKindService, str: name}
}

// AutoNameIP uses ip directly as a literal host address.
func AutoNameIP(ip netip.Addr) AutoName {
	return AutoName{kind: autoNameKindIP, ip: ip}
}

// AutoNameSocketAddr uses sa directly as a literal service address.
func AutoNameSocketAddr(sa netip.AddrPort) AutoName {
	return AutoName{kind: autoNameKindSocketAddr, sa: sa}
}

// ParseAuto converts an [AutoName] into an [InternalName], given the port
// to use when none is specified.
//
// For [AutoNameAuto], the grammar (bit-exact, external surface) is:
//
//   - an IP literal (`127.0.0.1`, `2001:db8::2:1`) → a literal address using
//     defaultPort;
//   - a bracketed IPv6 literal with an explicit port (`[2001:db8::2:1]:8123`)
//     or a `host:port` pair → a literal address or host+port query;
//   - a string beginning with `_` → a service (SRV-style) query;
//   - otherwise, a bare host → a host+port query using defaultPort.
//
// Combining a service prefix with an explicit port (e.g. `_my._svc.x:80`) is
// rejected: the leading `_` routes the whole string through [Name]
// validation, and a Name may not contain a colon.
func ParseAuto(a AutoName, defaultPort uint16) (InternalName, error) {
	switch a.kind {
	case autoNameKindAuto:
		return parseAutoString(a.str, defaultPort)
	case autoNameKindHostPort:
		name, err := ParseName(a.str)
		if err != nil {
			return InternalName{}, err
		}
		return newInternalHostPort(name, a.port), nil
	case autoNameKindHostDefaultPort:
		name, err := ParseName(a.str)
		if err != nil {
			return InternalName{}, err
		}
		return newInternalHostPort(name, defaultPort), nil
	case autoNameKindService:
		name, err := ParseName(a.str)
		if err != nil {
			return InternalName{}, err
		}
		return newInternalService(name), nil
	case autoNameKindIP:
		return newInternalAddr(netip.AddrPortFrom(a.ip, defaultPort)), nil
	case autoNameKindSocketAddr:
		return newInternalAddr(a.sa), nil
	default:
		panic("nsrouter: unknown AutoName kind")
	}
}

func parseAutoString(s string, defaultPort uint16) (InternalName, error) {
	if ip, err := netip.ParseAddr(s); err == nil {
		return newInternalAddr(netip.AddrPortFrom(ip, defaultPort)), nil
	}
	if sa, err := netip.ParseAddrPort(s); err == nil {
		return newInternalAddr(sa), nil
	}
	if strings.HasPrefix(s, "_") {
		name, err := ParseName(s)
		if err != nil {
			return InternalName{}, err
		}
		return newInternalService(name), nil
	}
	if idx := strings.IndexByte(s, ':'); idx >= 0 {
		port, err := strconv.ParseUint(s[idx+1:], 10, 16)
		if err != nil {
			return InternalName{}, &InvalidNameError{Raw: s, Reason: "bad port number"}
		}
		name, err := ParseName(s[:idx])
		if err != nil {
			return InternalName{}, err
		}
		return newInternalHostPort(name, uint16(port)), nil
	}
	name, err := ParseName(s)
	if err != nil {
		return InternalName{}, err
	}
	return newInternalHostPort(name, defaultPort), nil
}
