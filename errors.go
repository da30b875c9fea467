// SPDX-License-Identifier: GPL-3.0-or-later

package nsrouter

import "fmt"

// NameNotFoundError indicates that no back-end matched a name and no static
// override exists for it either.
type NameNotFoundError struct {
	Name string
}

var _ error = (*NameNotFoundError)(nil)

// Error implements [error].
func (e *NameNotFoundError) Error() string {
	return fmt.Sprintf("nsrouter: name not found: %s", e.Name)
}

// TemporaryError indicates a back-end transport failure, or that the router
// itself has shut down ("resolver is down").
type TemporaryError struct {
	Name string
	Msg  string
}

var _ error = (*TemporaryError)(nil)

// Error implements [error].
func (e *TemporaryError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("nsrouter: temporary error: %s", e.Msg)
	}
	return fmt.Sprintf("nsrouter: temporary error resolving %s: %s", e.Name, e.Msg)
}

// Temporary reports whether the error is transient. It satisfies the
// conventional (unexported) `interface { Temporary() bool }` implemented by
// a number of standard-library network errors.
func (e *TemporaryError) Temporary() bool { return true }

// InvalidNameError indicates that the name parser rejected a raw string.
type InvalidNameError struct {
	Raw    string
	Reason string
}

var _ error = (*InvalidNameError)(nil)

// Error implements [error].
func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("nsrouter: invalid name %q: %s", e.Raw, e.Reason)
}

// errResolverDown is returned locally by the router façade, without ever
// reaching the engine, when the request inbox has already been closed.
func errResolverDown() error {
	return &TemporaryError{Msg: "Resolver is down"}
}
