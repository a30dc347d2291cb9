package bridge

// MemberKind is the category a member was classified into. It is fixed
// at construction time; the only later transition is a writable derived
// member being confirmed read-only on its first rejected write, which
// does not change its kind.
type MemberKind uint8

const (
	// KindDataSlot is a bidirectionally synced mutable value.
	KindDataSlot MemberKind = iota

	// KindReadOnlyDerived is a computed member without a write path.
	KindReadOnlyDerived

	// KindWritableDerived is a computed member with a declared write path.
	KindWritableDerived

	// KindWriteOnlyTrigger accepts writes that side-effect the source;
	// reads return the last written value.
	KindWriteOnlyTrigger

	// KindCallable is a function bound once to the source object.
	KindCallable
)

// String returns the kind name.
func (k MemberKind) String() string {
	switch k {
	case KindDataSlot:
		return "data"
	case KindReadOnlyDerived:
		return "computed"
	case KindWritableDerived:
		return "computed+setter"
	case KindWriteOnlyTrigger:
		return "trigger"
	case KindCallable:
		return "action"
	default:
		return "unknown"
	}
}
