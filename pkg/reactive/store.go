package reactive

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrWriteOnly is returned when reading a member that only has a write path.
var ErrWriteOnly = errors.New("member is write-only")

// memberKind classifies a store member.
type memberKind uint8

const (
	kindData memberKind = iota
	kindComputed
	kindWritableComputed
	kindSetter
	kindAction
)

// Store is the reference origin system: an observable object container
// with dependency tracking. Not safe for concurrent use; a Store and its
// objects belong to one goroutine.
type Store struct {
	objects  []*StoreObject
	tracking []*computation
	nextSub  int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// member is a single named member of a StoreObject.
type member struct {
	kind   memberKind
	value  any
	get    func() any
	set    func(v any) error
	action func(args ...any) (any, error)

	// Direct subscribers, notified on wholesale reassignment.
	subs map[int]func(any)

	// Deep subscribers bound to the member's current value. Reassigning
	// the member orphans them: real reactive systems attach deep
	// observation to the value, not the slot, so observers must
	// resubscribe after a reassignment to keep seeing mutations.
	deepSubs map[int]func()

	// Computations that read this member while tracking.
	watchers map[*computation]struct{}
}

// StoreObject is an observable object: named members defined one at a
// time, then read, written, and observed through the Store's System
// implementation.
type StoreObject struct {
	store   *Store
	names   []string
	members map[string]*member
}

// NewObject creates an empty object in the store.
func (s *Store) NewObject() *StoreObject {
	o := &StoreObject{
		store:   s,
		members: make(map[string]*member),
	}
	s.objects = append(s.objects, o)
	return o
}

func (o *StoreObject) define(name string, m *member) {
	if _, exists := o.members[name]; !exists {
		o.names = append(o.names, name)
	}
	m.subs = make(map[int]func(any))
	m.deepSubs = make(map[int]func())
	m.watchers = make(map[*computation]struct{})
	o.members[name] = m
}

// DefineData adds a plain observable member with an initial value.
func (o *StoreObject) DefineData(name string, initial any) *StoreObject {
	o.define(name, &member{kind: kindData, value: initial})
	return o
}

// DefineComputed adds a read-only derived member. The getter runs on
// every read; reads of data members inside it are tracked as
// dependencies of the enclosing computation, if any.
func (o *StoreObject) DefineComputed(name string, get func() any) *StoreObject {
	o.define(name, &member{kind: kindComputed, get: get})
	return o
}

// DefineWritableComputed adds a derived member with a write path. A nil
// set declares the write path without providing one; writes then fail
// with ErrNotWritable, which is how a lazily-discovered read-only
// member looks to observers.
func (o *StoreObject) DefineWritableComputed(name string, get func() any, set func(v any) error) *StoreObject {
	o.define(name, &member{kind: kindWritableComputed, get: get, set: set})
	return o
}

// DefineSetter adds a write-only member: writes invoke set, reads fail.
func (o *StoreObject) DefineSetter(name string, set func(v any) error) *StoreObject {
	o.define(name, &member{kind: kindSetter, set: set})
	return o
}

// DefineAction adds a callable member.
func (o *StoreObject) DefineAction(name string, fn func(args ...any) (any, error)) *StoreObject {
	o.define(name, &member{kind: kindAction, action: fn})
	return o
}

// MemberNames returns all member names in definition order.
func (o *StoreObject) MemberNames() []string {
	out := make([]string, len(o.names))
	copy(out, o.names)
	return out
}

// Descriptor returns the access shape of the named member.
func (o *StoreObject) Descriptor(name string) (Descriptor, bool) {
	m, ok := o.members[name]
	if !ok {
		return Descriptor{}, false
	}
	switch m.kind {
	case kindData:
		return Descriptor{HasGetter: true, HasSetter: true}, true
	case kindComputed:
		return Descriptor{HasGetter: true}, true
	case kindWritableComputed:
		return Descriptor{HasGetter: true, HasSetter: true}, true
	case kindSetter:
		return Descriptor{HasSetter: true}, true
	case kindAction:
		return Descriptor{HasGetter: true, IsFunc: true}, true
	}
	return Descriptor{}, false
}

// Get reads the named member. Derived members are evaluated; a panic in
// the getter (a nil dereference on not-yet-initialized state, say) is
// converted to an error instead of unwinding into the caller.
func (o *StoreObject) Get(name string) (any, error) {
	m, ok := o.members[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchMember, name)
	}
	switch m.kind {
	case kindData:
		o.store.recordRead(m)
		return m.value, nil
	case kindComputed, kindWritableComputed:
		return o.evaluate(name, m)
	case kindSetter:
		return nil, fmt.Errorf("%w: %q", ErrWriteOnly, name)
	case kindAction:
		fn, _ := o.Bind(name)
		return fn, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSuchMember, name)
}

func (o *StoreObject) evaluate(name string, m *member) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("evaluating %q: %v", name, r)
		}
	}()
	return m.get(), nil
}

// Set writes the named member. Reassigning a data member notifies direct
// subscribers, re-runs dependent computations, and orphans any deep
// subscriptions bound to the previous value.
func (o *StoreObject) Set(name string, v any) error {
	m, ok := o.members[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoSuchMember, name)
	}
	switch m.kind {
	case kindData:
		m.value = v
		m.deepSubs = make(map[int]func())
		o.notify(m, v)
		return nil
	case kindComputed:
		return fmt.Errorf("%w: %q is computed", ErrNotWritable, name)
	case kindWritableComputed:
		if m.set == nil {
			return fmt.Errorf("%w: %q has no write path", ErrNotWritable, name)
		}
		return m.set(v)
	case kindSetter:
		return m.set(v)
	case kindAction:
		return fmt.Errorf("%w: %q is an action", ErrNotWritable, name)
	}
	return fmt.Errorf("%w: %q", ErrNoSuchMember, name)
}

// Mutate runs fn against the current value of a data member to mutate it
// in place, then fires the member's deep subscribers and re-runs
// dependent computations. fn returns the value to keep, which allows
// mutations that change a slice's identity (append, splice). Direct
// subscribers do not fire: the member was not reassigned.
func (o *StoreObject) Mutate(name string, fn func(v any) any) error {
	m, ok := o.members[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoSuchMember, name)
	}
	if m.kind != kindData {
		return fmt.Errorf("%w: %q is not a data member", ErrNotWritable, name)
	}
	m.value = fn(m.value)
	for _, sub := range snapshotFuncs(m.deepSubs) {
		sub()
	}
	o.rerunWatchers(m)
	return nil
}

// Value reads the named member, returning nil when the read fails.
// Convenient inside computed getters, where a missing dependency should
// read as nothing rather than abort the evaluation.
func (o *StoreObject) Value(name string) any {
	v, err := o.Get(name)
	if err != nil {
		return nil
	}
	return v
}

// Bind returns the named action bound to this object.
func (o *StoreObject) Bind(name string) (func(args ...any) (any, error), bool) {
	m, ok := o.members[name]
	if !ok || m.kind != kindAction {
		return nil, false
	}
	action := m.action
	return func(args ...any) (any, error) {
		return action(args...)
	}, true
}

func (o *StoreObject) notify(m *member, v any) {
	for _, sub := range snapshotSubs(m.subs) {
		sub(v)
	}
	o.rerunWatchers(m)
}

func (o *StoreObject) rerunWatchers(m *member) {
	watchers := make([]*computation, 0, len(m.watchers))
	for c := range m.watchers {
		watchers = append(watchers, c)
	}
	for _, c := range watchers {
		c.rerun()
	}
}

// snapshotSubs copies subscriber callbacks so notification survives
// subscribers that unsubscribe (or resubscribe) while being notified.
func snapshotSubs(subs map[int]func(any)) []func(any) {
	out := make([]func(any), 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}
	return out
}

func snapshotFuncs(subs map[int]func()) []func() {
	out := make([]func(), 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}
	return out
}

// recordRead registers the member as a dependency of the computation
// currently being tracked, if any.
func (s *Store) recordRead(m *member) {
	if len(s.tracking) == 0 {
		return
	}
	c := s.tracking[len(s.tracking)-1]
	c.deps[m] = struct{}{}
	m.watchers[c] = struct{}{}
}

// IsDerivedMember reports whether the named member is computed.
func (s *Store) IsDerivedMember(obj Object, name string) (bool, error) {
	m, err := s.lookup(obj, name)
	if err != nil {
		return false, err
	}
	return m.kind == kindComputed || m.kind == kindWritableComputed, nil
}

// IsMutableMember reports whether the named member is a plain observable.
func (s *Store) IsMutableMember(obj Object, name string) (bool, error) {
	m, err := s.lookup(obj, name)
	if err != nil {
		return false, err
	}
	return m.kind == kindData, nil
}

func (s *Store) lookup(obj Object, name string) (*member, error) {
	o, ok := obj.(*StoreObject)
	if !ok {
		return nil, fmt.Errorf("%w: object is not from this store", ErrNotObservable)
	}
	m, exists := o.members[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchMember, name)
	}
	return m, nil
}

// ReadUntracked returns a plain deep copy of v, detached from tracking.
func (s *Store) ReadUntracked(v any) any {
	return Clone(v)
}

// SubscribeDirect registers fn against reassignments of the named member.
func (s *Store) SubscribeDirect(obj Object, name string, fn func(any)) (Disposer, error) {
	m, err := s.lookup(obj, name)
	if err != nil {
		return nil, err
	}
	if m.kind != kindData {
		return nil, fmt.Errorf("%w: %q is not a data member", ErrNotObservable, name)
	}
	id := s.nextSub
	s.nextSub++
	m.subs[id] = fn
	subs := m.subs
	return DisposerFunc(func() { delete(subs, id) }), nil
}

// SubscribeDeep registers fn against in-place mutations of v. The value
// must be a container currently held by a data member; the subscription
// is bound to that value and stops firing if the member is reassigned.
func (s *Store) SubscribeDeep(v any, fn func()) (Disposer, error) {
	if !IsContainer(v) {
		return nil, fmt.Errorf("%w: not a container value", ErrNotObservable)
	}
	m := s.findHolder(v)
	if m == nil {
		return nil, fmt.Errorf("%w: value is not held by any observable member", ErrNotObservable)
	}
	id := s.nextSub
	s.nextSub++
	m.deepSubs[id] = fn
	subs := m.deepSubs
	return DisposerFunc(func() { delete(subs, id) }), nil
}

// findHolder locates the data member whose current value is identical to v.
func (s *Store) findHolder(v any) *member {
	target := containerPointer(v)
	for _, o := range s.objects {
		for _, m := range o.members {
			if m.kind != kindData || !IsContainer(m.value) {
				continue
			}
			if containerPointer(m.value) == target && sameLen(m.value, v) {
				return m
			}
		}
	}
	return nil
}

func containerPointer(v any) uintptr {
	return reflect.ValueOf(v).Pointer()
}

func sameLen(a, b any) bool {
	sa, oka := a.([]any)
	sb, okb := b.([]any)
	if oka != okb {
		return false
	}
	if !oka {
		return true // maps: pointer identity is enough
	}
	return len(sa) == len(sb)
}

// computation re-runs compute whenever a tracked dependency changes.
type computation struct {
	store    *Store
	compute  func() (any, error)
	onChange func(any)
	deps     map[*member]struct{}
	disposed bool
	running  bool
}

// RunComputation runs compute once to record dependencies, then re-runs
// it on every dependency change, passing each new result to onChange.
// The initial run does not call onChange. A failed re-evaluation reports
// nil rather than an error.
func (s *Store) RunComputation(compute func() (any, error), onChange func(any)) (Disposer, error) {
	c := &computation{
		store:    s,
		compute:  compute,
		onChange: onChange,
		deps:     make(map[*member]struct{}),
	}
	c.run()
	return DisposerFunc(c.dispose), nil
}

// run executes compute with tracking enabled, refreshing the dependency set.
func (c *computation) run() (any, error) {
	for m := range c.deps {
		delete(m.watchers, c)
	}
	c.deps = make(map[*member]struct{})

	c.store.tracking = append(c.store.tracking, c)
	defer func() {
		c.store.tracking = c.store.tracking[:len(c.store.tracking)-1]
	}()
	return c.compute()
}

func (c *computation) rerun() {
	if c.disposed || c.running {
		return
	}
	c.running = true
	v, err := c.run()
	c.running = false
	if err != nil {
		v = nil
	}
	c.onChange(v)
}

func (c *computation) dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	for m := range c.deps {
		delete(m.watchers, c)
	}
	c.deps = nil
}
