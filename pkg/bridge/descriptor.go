package bridge

import (
	"errors"
	"fmt"
	"time"

	"github.com/duplex-state/duplex-go/pkg/deepeq"
	"github.com/duplex-state/duplex-go/pkg/proxy"
	"github.com/duplex-state/duplex-go/pkg/reactive"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

// dataSlotProperty builds the accessor pair for a bidirectionally
// synced data slot.
func (o *Object) dataSlotProperty(s *slot) *property {
	name := s.name
	return &property{
		get: func() any {
			v := s.cell.Get()
			if reactive.IsContainer(v) {
				return proxy.Root(s)
			}
			return v
		},
		set: func(v any) error {
			// A write arriving while this member is being pushed from
			// the source is the echo of that very update re-entering
			// through the setter; the backing cell is already current.
			if o.guarded(o.pushingToBridge, name) {
				return nil
			}
			if o.opts.DisableDirectMutation {
				o.log.Warn("direct mutation disabled, dropping write", "member", name)
				return nil
			}

			clone := reactive.Clone(v)
			if !deepeq.Equal(clone, s.cell.Get()) {
				s.cell.Set(clone)
				o.trace(trace.Event{
					Timestamp: time.Now(),
					BridgeID:  o.id,
					Direction: trace.DirToSource,
					Category:  trace.CatSlotWrite,
					Member:    name,
					Value:     clone,
				})
			}

			o.withGuard(o.pushingToSource, name, func() {
				cur, err := o.src.Get(name)
				if err == nil && deepeq.Equal(o.sys.ReadUntracked(cur), clone) {
					return
				}
				// The source gets its own copy. Were the cell and the
				// source to share one container, later nested mutations
				// would reach the source before the next checkpoint.
				if err := o.src.Set(name, reactive.Clone(clone)); err != nil {
					o.warn("write to source failed", name, err)
				}
			})
			return nil
		},
	}
}

// readOnlyDerivedProperty builds the accessor pair for a derived member
// without a write path. Assignment always fails.
func (o *Object) readOnlyDerivedProperty(s *slot) *property {
	name := s.name
	return &property{
		get: func() any { return s.cell.Get() },
		set: func(any) error {
			return fmt.Errorf("%w: %q", ErrAssignComputed, name)
		},
	}
}

// writableDerivedProperty builds the accessor pair for a derived member
// with a declared write path. Writability is confirmed lazily: the first
// write that the source rejects outright moves the member into the
// read-only cache, and further writes fail without touching the source.
func (o *Object) writableDerivedProperty(s *slot) *property {
	name := s.name
	return &property{
		get: func() any { return s.cell.Get() },
		set: func(v any) error {
			if _, readOnly := o.readOnlyDetected[name]; readOnly {
				return fmt.Errorf("%w: %q", ErrAssignComputed, name)
			}
			if o.opts.DisableDirectMutation {
				o.log.Warn("direct mutation disabled, dropping write", "member", name)
				return nil
			}

			var setErr error
			o.withGuard(o.pushingToSource, name, func() {
				setErr = o.src.Set(name, v)
			})
			if setErr == nil {
				o.trace(trace.Event{
					Timestamp: time.Now(),
					BridgeID:  o.id,
					Direction: trace.DirToSource,
					Category:  trace.CatSlotWrite,
					Member:    name,
					Value:     v,
				})
				return nil
			}
			if errors.Is(setErr, reactive.ErrNotWritable) {
				o.readOnlyDetected[name] = struct{}{}
				return fmt.Errorf("%w: %q", ErrAssignComputed, name)
			}
			// Validation and other write-path failures are not the
			// caller's problem: the write is a no-op with a diagnostic.
			o.warn("derived member rejected write", name, setErr)
			return nil
		},
	}
}

// triggerProperty builds the accessor pair for a write-only trigger.
// Reads return the last written value, not a computed one.
func (o *Object) triggerProperty(s *slot) *property {
	name := s.name
	return &property{
		get: func() any { return s.cell.Get() },
		set: func(v any) error {
			if o.guarded(o.pushingToBridge, name) {
				return nil
			}
			if o.opts.DisableDirectMutation {
				o.log.Warn("direct mutation disabled, dropping write", "member", name)
				return nil
			}

			s.cell.Set(v)
			o.trace(trace.Event{
				Timestamp: time.Now(),
				BridgeID:  o.id,
				Direction: trace.DirToSource,
				Category:  trace.CatTriggerFire,
				Member:    name,
				Value:     v,
			})

			o.withGuard(o.pushingToSource, name, func() {
				if err := o.src.Set(name, v); err != nil {
					o.warn("trigger write failed", name, err)
				}
			})
			return nil
		},
	}
}

// callableProperty builds the accessor for a callable member. The
// function is bound to the source object once, at install time.
func (o *Object) callableProperty(name string) *property {
	bound, ok := o.src.Bind(name)
	if !ok {
		o.warn("binding callable failed", name, ErrNotCallable)
	}
	return &property{
		get: func() any { return bound },
		set: func(any) error {
			o.log.Warn("cannot assign to method", "member", name)
			return nil
		},
	}
}
