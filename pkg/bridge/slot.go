package bridge

import (
	"log/slog"
	"time"

	"github.com/duplex-state/duplex-go/pkg/reactive"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

// slot is the backing cell for one classified member, plus the pending
// flush state for nested mutations of its value. It is the proxy
// binding for container-valued data slots.
type slot struct {
	obj  *Object
	name string
	cell *reactive.Cell

	// flushPending coalesces nested writes: the first write schedules a
	// flush, further same-checkpoint writes only mutate the working value.
	flushPending bool
}

func newSlot(obj *Object, name string, initial any) *slot {
	return &slot{obj: obj, name: name, cell: reactive.NewCell(initial)}
}

// Name returns the member name.
func (s *slot) Name() string { return s.name }

// Current returns the slot's working value.
func (s *slot) Current() any { return s.cell.Get() }

// Replace swaps the working value without propagating to the source.
func (s *slot) Replace(v any) { s.cell.Set(v) }

// MutationAllowed reports whether bridge-to-source writes are enabled.
func (s *slot) MutationAllowed() bool { return !s.obj.opts.DisableDirectMutation }

// Log returns the diagnostics logger.
func (s *slot) Log() *slog.Logger { return s.obj.log }

// ScheduleFlush defers propagation of the slot to the next checkpoint.
func (s *slot) ScheduleFlush() {
	if s.flushPending {
		return
	}
	s.flushPending = true
	s.obj.opts.Loop.Schedule(s.flush)
}

// flush pushes the slot's accumulated value to the source as one
// replacement. The value is cloned first so both systems observe a
// fresh identity and detect the change; the push is echo-guarded so the
// source's own change notification is not folded back in. The source
// gets its own copy: sharing one container between the cell and the
// source would let later nested mutations reach the source before the
// next checkpoint.
func (s *slot) flush() {
	s.flushPending = false
	if s.obj.disposed {
		return
	}

	clone := reactive.Clone(s.cell.Get())
	s.cell.Set(clone)

	s.obj.trace(trace.Event{
		Timestamp: time.Now(),
		BridgeID:  s.obj.id,
		Direction: trace.DirToSource,
		Category:  trace.CatFlush,
		Member:    s.name,
		Value:     clone,
	})

	s.obj.withGuard(s.obj.pushingToSource, s.name, func() {
		if err := s.obj.src.Set(s.name, reactive.Clone(clone)); err != nil {
			s.obj.warn("flush to source failed", s.name, err)
		}
	})
}
