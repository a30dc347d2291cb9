package bridge

import (
	"log/slog"

	"github.com/duplex-state/duplex-go/pkg/loop"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

// Options configures a bridge. The zero value is a working default:
// direct mutation enabled, a private loop, default slog, no trace.
type Options struct {
	// DisableDirectMutation drops every bridge-to-source write (top
	// level and nested alike) with a diagnostic instead of applying it.
	// The dropped write still returns success to the caller. Direct
	// mutation is enabled by default.
	DisableDirectMutation bool

	// Loop is the task queue nested-mutation flushes are deferred to.
	// Bridges sharing a cooperative model should share a Loop. Nil
	// creates a private one.
	Loop *loop.Loop

	// Log receives diagnostics. Nil uses slog.Default().
	Log *slog.Logger

	// Trace receives sync events. Nil disables tracing.
	Trace trace.Logger
}

// withDefaults fills unset fields.
func (o Options) withDefaults() Options {
	if o.Loop == nil {
		o.Loop = loop.New()
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Trace == nil {
		o.Trace = trace.NoopLogger{}
	}
	return o
}
