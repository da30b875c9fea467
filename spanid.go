package nsrouter

import (
	"github.com/bassosimone/runtimex"
	"github.com/google/uuid"
)

// NewSpanID returns a UUIDv7 representing a span.
//
// A span is a sequence of operations that can fail in a single, specific
// way. For example, resolving one name through a back-end, or driving one
// subscription from a back-end stream into a consumer slot.
//
// We recommend attaching a span ID to the per-request logger (via
// [log/slog.Logger.With]) so that every log line emitted while dispatching
// a single [Request] can be correlated.
//
// The span terminology is borrowed from OTel.
//
// This function panics if the system random number generator fails, which
// should only happen under extraordinary circumstances.
func NewSpanID() string {
	return runtimex.PanicOnError1(uuid.NewV7()).String()
}
