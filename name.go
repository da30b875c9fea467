// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import (
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// Name is a validated domain-style identifier.
//
// A Name is immutable and cheaply copyable (it is a thin wrapper around a
// string). Construct one with [ParseName] or [MustName]; the zero value is
// not a valid Name.
type Name struct {
	value string
}

// String returns the name's textual form.
func (n Name) String() string {
	return n.value
}

// IsZero reports whether n is the zero value.
func (n Name) IsZero() bool {
	return n.value == ""
}

// ParseName validates and normalizes raw as a [Name].
//
// Non-ASCII labels are punycode-normalized via [golang.org/x/net/idna], so
// that a back-end consuming the resulting [Name] sees the same label shape
// a DNS client would put on the wire. ASCII input is left untouched:
// [idna.Lookup] enforces STD3 ASCII rules, which reject the leading
// underscore that the SRV-style service grammar requires (e.g.
// "_http._tcp.example.org"), so running it over input that is already
// ASCII would make that grammar unparseable. Only letters, digits, '-',
// '_' and '.' are accepted; label and overall length limits are checked by
// [github.com/miekg/dns]'s domain-name grammar rather than re-implemented by
// hand. This package never parses or builds DNS wire messages.
func ParseName(raw string) (Name, error) {
	if raw == "" {
		return Name{}, &InvalidNameError{Raw: raw, Reason: "bad name"}
	}
	ascii := raw
	if !isASCII(raw) {
		var err error
		ascii, err = idna.Lookup.ToASCII(raw)
		if err != nil {
			return Name{}, &InvalidNameError{Raw: raw, Reason: "bad name"}
		}
	}
	for i := 0; i < len(ascii); i++ {
		c := ascii[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '-' || c == '_' || c == '.') {
			return Name{}, &InvalidNameError{Raw: raw, Reason: "bad name"}
		}
	}
	if _, ok := dns.IsDomainName(ascii); !ok {
		return Name{}, &InvalidNameError{Raw: raw, Reason: "bad name"}
	}
	return Name{value: strings.TrimSuffix(ascii, ".")}, nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// MustName is like [ParseName] but panics on failure.
//
// Use it for names known at compile time (e.g. in tests or static
// configuration literals), never for names derived from user input.
func MustName(raw string) Name {
	name, err := ParseName(raw)
	if err != nil {
		panic(err)
	}
	return name
}

// labelSuffixes returns, in longest-to-shortest order excluding the name
// itself, every suffix of name at a DNS label boundary. It is the basis for
// [getSuffix]'s longest-match routing and is grounded on
// [dns.SplitDomainName] rather than naive byte scanning.
func labelSuffixes(name string) []string {
	labels := dns.SplitDomainName(name)
	if len(labels) <= 1 {
		return nil
	}
	suffixes := make([]string, 0, len(labels)-1)
	for i := 1; i < len(labels); i++ {
		suffixes = append(suffixes, strings.Join(labels[i:], "."))
	}
	return suffixes
}
