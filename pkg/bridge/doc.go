// Package bridge synchronizes an object from one reactive system with a
// live counterpart in another, in both directions, without the caller
// managing subscriptions.
//
// # Building a bridge
//
// New classifies the source object's members, seeds one backing cell per
// member, installs category-specific accessors on the returned Object,
// and wires observation so out-of-band source changes land in the
// backing cells. The caller then reads and writes the Object; writes
// round-trip to the source, reads serve from the backing cells, and
// derived members recompute reactively.
//
//	obj, err := bridge.New(sys, src, bridge.Options{})
//	if err != nil { ... }
//	defer obj.Dispose()
//
//	obj.Set("count", 5)
//	doubled := obj.Get("doubled")
//
// # Echo suppression
//
// Each direction of propagation is guarded per member name: while the
// bridge is pushing a member to the source, the change notification the
// source fires for that same write is recognized as an echo and
// skipped, and vice versa. Without the guards every write would bounce
// between the two systems indefinitely.
//
// # Nested mutation
//
// Reading a container-valued data slot returns a proxy.Node. In-place
// mutations through the node update the backing value immediately but
// reach the source only at the next Loop checkpoint, coalesced into a
// single replacement. Multi-step slice operations therefore complete
// before the source observes anything, which keeps the source from
// echoing a half-rewritten slice back into the mutation in progress.
//
// # Failure behavior
//
// Background synchronization never surfaces errors to the caller; it
// degrades to diagnostics. The only calls that fail are construction
// with a nil source and assignment to a read-only derived member.
package bridge
