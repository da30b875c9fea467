// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import "net/netip"

type internalNameKind uint8

const (
	internalNameKindHostPort internalNameKind = iota
	internalNameKindService
	internalNameKindAddr
)

// InternalName is the parser's output: an unambiguous description of what
// to resolve, free of the syntactic guesswork in [AutoName].
//
// InternalName is comparable (it holds only comparable fields), so it can
// be used directly as a map key — exactly what the multi-name subscriber
// (§4.H) needs to key its per-entry state.
type InternalName struct {
	kind internalNameKind
	host Name
	port uint16
	addr netip.AddrPort
}

func newInternalHostPort(host Name, port uint16) InternalName {
	return InternalName{kind: internalNameKindHostPort, host: host, port: port}
}

func newInternalService(service Name) InternalName {
	return InternalName{kind: internalNameKindService, host: service}
}

func newInternalAddr(addr netip.AddrPort) InternalName {
	return InternalName{kind: internalNameKindAddr, addr: addr}
}

// IsHostPort reports whether n is a host+port query.
func (n InternalName) IsHostPort() bool { return n.kind == internalNameKindHostPort }

// IsService reports whether n is a service (SRV-style) query.
func (n InternalName) IsService() bool { return n.kind == internalNameKindService }

// IsLiteralAddr reports whether n is a literal socket address.
func (n InternalName) IsLiteralAddr() bool { return n.kind == internalNameKindAddr }

// Host returns the host or service [Name]. It panics if n is a literal
// address; callers should check [InternalName.IsLiteralAddr] first.
func (n InternalName) Host() Name {
	if n.kind == internalNameKindAddr {
		panic("nsrouter: InternalName.Host called on a literal address")
	}
	return n.host
}

// Port returns the requested port for a host+port query. It is zero for
// service queries and literal addresses.
func (n InternalName) Port() uint16 { return n.port }

// Addr returns the literal socket address. It panics if n is not a literal
// address.
func (n InternalName) Addr() netip.AddrPort {
	if n.kind != internalNameKindAddr {
		panic("nsrouter: InternalName.Addr called on a non-literal name")
	}
	return n.addr
}

// String renders a human-readable form, for logging.
func (n InternalName) String() string {
	switch n.kind {
	case internalNameKindHostPort:
		return n.host.String()
	case internalNameKindService:
		return n.host.String()
	default:
		return n.addr.String()
	}
}
