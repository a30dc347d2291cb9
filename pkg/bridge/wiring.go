package bridge

import (
	"errors"
	"time"

	"github.com/duplex-state/duplex-go/pkg/classify"
	"github.com/duplex-state/duplex-go/pkg/deepeq"
	"github.com/duplex-state/duplex-go/pkg/reactive"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

// wire attaches all observation: direct-change subscriptions and deep
// subscriptions per data slot, and a reactive computation per derived
// member. Every subscription lands in the disposal list torn down by
// Dispose.
func (o *Object) wire(c classify.Classification) {
	for _, name := range c.DataSlots {
		sub, err := o.sys.SubscribeDirect(o.src, name, o.directHandler(name))
		if err != nil {
			o.observationFailure("direct subscription failed", name, err)
		} else {
			o.disposers = append(o.disposers, sub)
		}
		o.resubscribeDeep(name, false)
	}

	derived := make([]string, 0, len(c.ReadOnlyDerived)+len(c.WritableDerived))
	derived = append(derived, c.ReadOnlyDerived...)
	derived = append(derived, c.WritableDerived...)
	for _, name := range derived {
		name := name
		sub, err := o.sys.RunComputation(
			func() (any, error) { return o.src.Get(name) },
			o.derivedHandler(name),
		)
		if err != nil {
			o.observationFailure("derived computation failed", name, err)
		} else {
			o.disposers = append(o.disposers, sub)
		}
	}
}

// directHandler reacts to wholesale reassignment of a data slot on the
// source side. Echoes of the bridge's own writes are skipped, but the
// deep subscription still has to move: the source now holds a new
// value, and observation attached to the old one would go stale.
func (o *Object) directHandler(name string) func(any) {
	return func(newValue any) {
		if o.disposed {
			return
		}
		if o.guarded(o.pushingToSource, name) {
			o.trace(trace.Event{
				Timestamp: time.Now(),
				BridgeID:  o.id,
				Direction: trace.DirToBridge,
				Category:  trace.CatEchoSuppressed,
				Member:    name,
			})
			o.resubscribeDeep(name, true)
			return
		}

		o.withGuard(o.pushingToBridge, name, func() {
			snap := o.sys.ReadUntracked(newValue)
			s := o.slots[name]
			if !deepeq.Equal(snap, s.cell.Get()) {
				s.cell.Set(snap)
				o.trace(trace.Event{
					Timestamp: time.Now(),
					BridgeID:  o.id,
					Direction: trace.DirToBridge,
					Category:  trace.CatSlotWrite,
					Member:    name,
					Value:     snap,
				})
			}
		})
		o.resubscribeDeep(name, true)
	}
}

// deepHandler reacts to in-place mutation of a data slot's value on the
// source side.
func (o *Object) deepHandler(name string) func() {
	return func() {
		if o.disposed {
			return
		}
		if o.guarded(o.pushingToSource, name) {
			o.trace(trace.Event{
				Timestamp: time.Now(),
				BridgeID:  o.id,
				Direction: trace.DirToBridge,
				Category:  trace.CatEchoSuppressed,
				Member:    name,
			})
			return
		}

		o.withGuard(o.pushingToBridge, name, func() {
			raw, err := o.src.Get(name)
			if err != nil {
				o.warn("reading mutated slot failed", name, err)
				return
			}
			snap := o.sys.ReadUntracked(raw)
			s := o.slots[name]
			if !deepeq.Equal(snap, s.cell.Get()) {
				s.cell.Set(snap)
				o.trace(trace.Event{
					Timestamp: time.Now(),
					BridgeID:  o.id,
					Direction: trace.DirToBridge,
					Category:  trace.CatSlotWrite,
					Member:    name,
					Value:     snap,
				})
			}
		})
	}
}

// derivedHandler lands each recomputed derived value in its backing
// cell, equality-gated. Failed re-evaluations arrive as nil and degrade
// the member rather than surfacing an error.
func (o *Object) derivedHandler(name string) func(any) {
	return func(v any) {
		if o.disposed {
			return
		}
		snap := o.sys.ReadUntracked(v)
		s := o.slots[name]
		if !deepeq.Equal(snap, s.cell.Get()) {
			s.cell.Set(snap)
			o.trace(trace.Event{
				Timestamp: time.Now(),
				BridgeID:  o.id,
				Direction: trace.DirToBridge,
				Category:  trace.CatDerivedUpdate,
				Member:    name,
				Value:     snap,
			})
		}
	}
}

// resubscribeDeep points the deep subscription for a slot at the value
// the source currently holds, disposing whatever it pointed at before.
// Skipping this after a wholesale reassignment would leave mutations of
// the new value undetected, so it runs on every direct change, echoes
// included.
func (o *Object) resubscribeDeep(name string, replacing bool) {
	if old := o.deepSubs[name]; old != nil {
		reactive.DisposeQuietly(old)
		delete(o.deepSubs, name)
	}

	raw, err := o.src.Get(name)
	if err != nil {
		o.warn("reading slot for deep observation failed", name, err)
		return
	}
	if !reactive.IsContainer(raw) {
		return
	}

	sub, err := o.sys.SubscribeDeep(raw, o.deepHandler(name))
	if err != nil {
		o.observationFailure("deep subscription failed", name, err)
		return
	}
	o.deepSubs[name] = sub

	if replacing {
		o.trace(trace.Event{
			Timestamp: time.Now(),
			BridgeID:  o.id,
			Direction: trace.DirToBridge,
			Category:  trace.CatResubscribe,
			Member:    name,
		})
	}
}

// observationFailure handles a collaborator error during wiring:
// not-observable answers are expected for some member shapes and stay
// silent; anything else surfaces as a diagnostic.
func (o *Object) observationFailure(msg, name string, err error) {
	if errors.Is(err, reactive.ErrNotObservable) {
		return
	}
	o.warn(msg, name, err)
}
