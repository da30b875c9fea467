// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import "net/netip"

// IpList is an ordered list of IP addresses, as returned by a host
// resolution.
type IpList []netip.Addr

// WithPort lifts an IpList to an [Address] by pairing each address with the
// given port.
func (l IpList) WithPort(port uint16) Address {
	out := make(Address, 0, len(l))
	for _, ip := range l {
		out = out.insert(netip.AddrPortFrom(ip, port))
	}
	return out
}

// Equal reports whether l and other contain the same addresses in the same
// order. Host resolutions preserve back-end order, unlike [Address].
func (l IpList) Equal(other IpList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Address is a set of host-port endpoints.
//
// Semantically it is an unordered set — equality and [Address.Union] treat
// it as such — but it carries a stable first-seen insertion order for
// diagnostic purposes (logging, test output).
type Address []netip.AddrPort

// insert appends ep unless it is already present, preserving first-seen
// order.
func (a Address) insert(ep netip.AddrPort) Address {
	for _, existing := range a {
		if existing == ep {
			return a
		}
	}
	return append(a, ep)
}

// Equal reports whether a and other contain the same set of endpoints,
// irrespective of order.
func (a Address) Equal(other Address) bool {
	if len(a) != len(other) {
		return false
	}
	seen := make(map[netip.AddrPort]struct{}, len(a))
	for _, ep := range a {
		seen[ep] = struct{}{}
	}
	for _, ep := range other {
		if _, ok := seen[ep]; !ok {
			return false
		}
	}
	return true
}

// UnionAddresses returns the union of every given Address, preserving the
// first-seen order across parts in the order they are given.
//
// This backs the multi-name subscriber's coalesced emission (§4.H): every
// entry's projected Address is unioned into one set delivered to the
// consumer slot.
func UnionAddresses(parts ...Address) Address {
	var out Address
	seen := make(map[netip.AddrPort]struct{})
	for _, part := range parts {
		for _, ep := range part {
			if _, ok := seen[ep]; !ok {
				seen[ep] = struct{}{}
				out = append(out, ep)
			}
		}
	}
	return out
}
