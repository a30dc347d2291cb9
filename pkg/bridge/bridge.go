package bridge

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/duplex-state/duplex-go/pkg/classify"
	"github.com/duplex-state/duplex-go/pkg/reactive"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

// property is the accessor pair installed for one member.
type property struct {
	get func() any
	set func(v any) error
}

// Object is the bridging object: the live counterpart of one source
// object. Members are accessed by name through Get, Set, and Call.
// Objects belong to the same single goroutine as their source system.
type Object struct {
	sys  reactive.System
	src  reactive.Object
	opts Options
	log  *slog.Logger
	id   string

	kinds map[string]MemberKind
	props map[string]*property
	slots map[string]*slot

	// Echo guards: member names currently being pushed in each
	// direction. A name's presence suppresses the opposite-direction
	// handler for the duration of that one write.
	pushingToSource map[string]struct{}
	pushingToBridge map[string]struct{}

	// readOnlyDetected caches writable-derived names whose write path
	// rejected a write outright. Once here, writes fail fast.
	readOnlyDetected map[string]struct{}

	// deepSubs holds the active deep subscription per data-slot name,
	// replaced whenever the slot's value is wholesale reassigned.
	deepSubs map[string]reactive.Disposer

	disposers []reactive.Disposer
	disposed  bool
}

// New builds a bridge over src. It classifies the source's members,
// seeds a backing cell per member, installs the category accessors, and
// wires observation. The returned Object is live immediately; call
// Dispose when the bridge is no longer needed.
func New(sys reactive.System, src reactive.Object, opts Options) (*Object, error) {
	if sys == nil || src == nil {
		return nil, ErrNilSource
	}
	opts = opts.withDefaults()

	o := &Object{
		sys:              sys,
		src:              src,
		opts:             opts,
		log:              opts.Log,
		id:               uuid.New().String(),
		kinds:            make(map[string]MemberKind),
		props:            make(map[string]*property),
		slots:            make(map[string]*slot),
		pushingToSource:  make(map[string]struct{}),
		pushingToBridge:  make(map[string]struct{}),
		readOnlyDetected: make(map[string]struct{}),
		deepSubs:         make(map[string]reactive.Disposer),
	}

	c := classify.Classifier{Log: o.log}.Classify(sys, src)

	for _, name := range c.DataSlots {
		o.kinds[name] = KindDataSlot
		s := newSlot(o, name, o.seedValue(name))
		o.slots[name] = s
		o.props[name] = o.dataSlotProperty(s)
	}
	for _, name := range c.ReadOnlyDerived {
		o.kinds[name] = KindReadOnlyDerived
		s := newSlot(o, name, o.seedDerived(name))
		o.slots[name] = s
		o.props[name] = o.readOnlyDerivedProperty(s)
	}
	for _, name := range c.WritableDerived {
		o.kinds[name] = KindWritableDerived
		s := newSlot(o, name, o.seedDerived(name))
		o.slots[name] = s
		o.props[name] = o.writableDerivedProperty(s)
	}
	for _, name := range c.WriteOnlyTriggers {
		o.kinds[name] = KindWriteOnlyTrigger
		s := newSlot(o, name, nil)
		o.slots[name] = s
		o.props[name] = o.triggerProperty(s)
	}
	for _, name := range c.Callables {
		o.kinds[name] = KindCallable
		o.props[name] = o.callableProperty(name)
	}

	o.wire(c)
	return o, nil
}

// seedValue reads the initial value of a data slot as a plain snapshot.
func (o *Object) seedValue(name string) any {
	raw, err := o.src.Get(name)
	if err != nil {
		o.warn("seeding data slot failed", name, err)
		return nil
	}
	return o.sys.ReadUntracked(raw)
}

// seedDerived reads the initial value of a derived member. A failed
// evaluation (dereferencing not-yet-initialized state, say) seeds nil;
// the reactive computation corrects it once the dependency exists.
func (o *Object) seedDerived(name string) any {
	raw, err := o.src.Get(name)
	if err != nil {
		return nil
	}
	return o.sys.ReadUntracked(raw)
}

// ID returns the bridge instance ID.
func (o *Object) ID() string { return o.id }

// Names returns all classified member names.
func (o *Object) Names() []string {
	out := make([]string, 0, len(o.props))
	for _, name := range o.src.MemberNames() {
		if _, ok := o.props[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// Kind returns the category a member was classified into.
func (o *Object) Kind(name string) (MemberKind, bool) {
	k, ok := o.kinds[name]
	return k, ok
}

// Get reads a member. Container-valued data slots come back as a
// *proxy.Node so nested mutations are intercepted; everything else is
// the backing value itself. Unknown names read as nil.
func (o *Object) Get(name string) any {
	p, ok := o.props[name]
	if !ok {
		return nil
	}
	return p.get()
}

// Value reads a member's raw backing value without proxy wrapping.
func (o *Object) Value(name string) any {
	s, ok := o.slots[name]
	if !ok {
		return nil
	}
	return s.cell.Get()
}

// Snapshot returns a plain deep copy of a member's backing value, safe
// to hold across later mutations.
func (o *Object) Snapshot(name string) any {
	return reactive.Clone(o.Value(name))
}

// Set writes a member. Assigning a read-only derived member fails with
// ErrAssignComputed; all other failure modes degrade to diagnostics and
// return nil, matching the bridge's non-throwing write contract.
func (o *Object) Set(name string, v any) error {
	p, ok := o.props[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMember, name)
	}
	return p.set(v)
}

// Call invokes a callable member.
func (o *Object) Call(name string, args ...any) (any, error) {
	if o.disposed {
		return nil, ErrDisposed
	}
	k, ok := o.kinds[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMember, name)
	}
	if k != KindCallable {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotCallable, name, k)
	}
	fn, _ := o.props[name].get().(func(args ...any) (any, error))
	if fn == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotCallable, name)
	}
	return fn(args...)
}

// Subscribe registers fn against changes of a member's backing cell.
// This is the output-side observation hook: it fires for source-driven
// updates and bridge-driven writes alike.
func (o *Object) Subscribe(name string, fn func(any)) (reactive.Disposer, error) {
	s, ok := o.slots[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMember, name)
	}
	return s.cell.Subscribe(fn), nil
}

// Dispose tears down every observation subscription. The accessors keep
// working against the backing cells, but nothing synchronizes anymore.
// Dispose is idempotent.
func (o *Object) Dispose() {
	if o.disposed {
		return
	}
	o.disposed = true

	for _, d := range o.disposers {
		reactive.DisposeQuietly(d)
	}
	o.disposers = nil
	for name, d := range o.deepSubs {
		reactive.DisposeQuietly(d)
		delete(o.deepSubs, name)
	}

	o.trace(trace.Event{
		Timestamp: time.Now(),
		BridgeID:  o.id,
		Category:  trace.CatTeardown,
	})
}

// withGuard runs fn with name marked in the guard set, so the
// opposite-direction handler recognizes the resulting notification as
// an echo of this write.
func (o *Object) withGuard(guard map[string]struct{}, name string, fn func()) {
	guard[name] = struct{}{}
	defer delete(guard, name)
	fn()
}

func (o *Object) guarded(guard map[string]struct{}, name string) bool {
	_, ok := guard[name]
	return ok
}

// warn emits a diagnostic for a background failure. Background
// synchronization never surfaces errors to the caller.
func (o *Object) warn(msg, name string, err error) {
	o.log.Warn(msg, "member", name, "error", err)
	o.trace(trace.Event{
		Timestamp: time.Now(),
		BridgeID:  o.id,
		Category:  trace.CatWarning,
		Member:    name,
		Detail:    fmt.Sprintf("%s: %v", msg, err),
	})
}

func (o *Object) trace(ev trace.Event) {
	o.opts.Trace.Log(ev)
}
