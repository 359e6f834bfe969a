/*
Package snapshot publishes versions of an authenticated map to concurrent
readers.

A Feed owns a merkle.Map. Writers call Put and Delete, which are serialized
by the feed; every committed change produces a new Version with a
monotonically increasing sequence number. Readers obtain the latest version
with Current, a single atomic load, and may keep and iterate it for as long
as they like. Interested parties subscribe to a stream of change events.

# BSD License

Copyright (c) Norbert Pillmayer <norbert@pillmayer.com>

Please refer to the License file for details.
*/
package snapshot

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to the global core-tracer.
func tracer() tracing.Trace {
	return gtrace.CoreTracer
}
