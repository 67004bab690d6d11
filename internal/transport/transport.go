/*
Package transport publishes per-tick pipeline state to external UI
consumers. The core never depends on a consumer being connected; a nil
or saturated transport silently drops snapshots.
*/
package transport

// Transport is a generic sink for tick snapshots and events.
// Implementations must be thread-safe and must never block the caller.
type Transport interface {
	Send(data any) error
	Close() error
}

// Nop is a Transport that discards everything. Used when publishing is
// disabled and as a test double.
type Nop struct{}

func (Nop) Send(any) error { return nil }
func (Nop) Close() error   { return nil }
