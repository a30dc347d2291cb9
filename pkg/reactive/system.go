package reactive

import "errors"

// Collaborator errors. The bridge classifies collaborator failures with
// errors.Is against these sentinels; adapters for other reactive layers
// should wrap their own error values accordingly.
var (
	// ErrNotObservable marks a value or member the origin system cannot
	// observe. The bridge ignores this class of error silently.
	ErrNotObservable = errors.New("value is not observable")

	// ErrNotWritable marks a derived member whose write path rejects
	// writes outright. The bridge caches this verdict and refuses
	// further writes to the member without retrying.
	ErrNotWritable = errors.New("member is not writable")

	// ErrNoSuchMember is returned for member names an object does not have.
	ErrNoSuchMember = errors.New("no such member")
)

// Descriptor describes the access shape of a member, independent of the
// origin system's own classification. It is the fallback the classifier
// uses when system introspection fails.
type Descriptor struct {
	// HasGetter indicates the member has a read path.
	HasGetter bool

	// HasSetter indicates the member has a declared write path. Declared
	// does not mean functional: actual writability is only known after a
	// write attempt.
	HasSetter bool

	// IsFunc indicates the member's value is a callable.
	IsFunc bool
}

// Object is the member surface of a single source object.
type Object interface {
	// MemberNames returns all member names in definition order.
	MemberNames() []string

	// Descriptor returns the access shape of the named member.
	Descriptor(name string) (Descriptor, bool)

	// Get reads the named member. Reading a derived member evaluates it,
	// which may fail (for example when it dereferences state that is not
	// initialized yet).
	Get(name string) (any, error)

	// Set writes the named member. A rejected derived write returns an
	// error wrapping ErrNotWritable; other failures (validation and the
	// like) return their own errors.
	Set(name string, v any) error

	// Bind returns the named callable bound to this object's identity,
	// or false if the member is not callable.
	Bind(name string) (func(args ...any) (any, error), bool)
}

// System is the observation contract the bridge expects from the origin
// reactive system.
type System interface {
	// IsDerivedMember reports whether the named member is computed from
	// other members. It may fail when evaluating the member is required
	// to answer and that evaluation fails.
	IsDerivedMember(obj Object, name string) (bool, error)

	// IsMutableMember reports whether the named member is a plain
	// observable value.
	IsMutableMember(obj Object, name string) (bool, error)

	// ReadUntracked returns a plain snapshot of v, detached from the
	// system's dependency tracking and safe to hold across mutations.
	ReadUntracked(v any) any

	// SubscribeDirect calls fn with the new value whenever the named
	// member is reassigned. Returns ErrNotObservable-class errors for
	// members that cannot be observed.
	SubscribeDirect(obj Object, name string, fn func(any)) (Disposer, error)

	// SubscribeDeep calls fn whenever the contents of v are mutated in
	// place. Returns ErrNotObservable-class errors for values that
	// cannot be observed (non-container values in particular).
	SubscribeDeep(v any, fn func()) (Disposer, error)

	// RunComputation runs compute once to record its dependencies, then
	// re-runs it whenever any dependency changes, passing each new
	// result to onChange. A failed re-evaluation reports nil. The
	// initial run does not invoke onChange.
	RunComputation(compute func() (any, error), onChange func(any)) (Disposer, error)
}
