// Package classify partitions the members of a source object into the
// five categories the bridge binds differently: plain data slots,
// read-only derived members, writable derived members, write-only
// triggers, and callables.
//
// Classification is pure inspection. It never invokes a setter, so a
// source object with side-effecting write paths can be classified
// without anything happening to it.
package classify

import (
	"errors"
	"log/slog"

	"github.com/duplex-state/duplex-go/pkg/reactive"
)

// Classification is the result of classifying a source object. Every
// candidate member name appears in exactly one list. Names starting
// with an underscore are not candidates.
type Classification struct {
	DataSlots         []string
	ReadOnlyDerived   []string
	WritableDerived   []string
	WriteOnlyTriggers []string
	Callables         []string
}

// Names returns all classified names in a single list.
func (c Classification) Names() []string {
	out := make([]string, 0,
		len(c.DataSlots)+len(c.ReadOnlyDerived)+len(c.WritableDerived)+
			len(c.WriteOnlyTriggers)+len(c.Callables))
	out = append(out, c.DataSlots...)
	out = append(out, c.ReadOnlyDerived...)
	out = append(out, c.WritableDerived...)
	out = append(out, c.WriteOnlyTriggers...)
	out = append(out, c.Callables...)
	return out
}

// Classifier inspects source objects. The zero value classifies with
// diagnostics discarded.
type Classifier struct {
	// Log receives diagnostics for unexpected introspection failures.
	Log *slog.Logger
}

// Classify partitions the members of obj using sys for introspection,
// with descriptor inspection as the fallback when sys cannot answer.
func Classify(sys reactive.System, obj reactive.Object) Classification {
	return Classifier{}.Classify(sys, obj)
}

// Classify partitions the members of obj.
func (cl Classifier) Classify(sys reactive.System, obj reactive.Object) Classification {
	var result Classification

	for _, name := range obj.MemberNames() {
		if len(name) == 0 || name[0] == '_' {
			continue
		}
		desc, ok := obj.Descriptor(name)
		if !ok {
			continue
		}

		if desc.IsFunc {
			result.Callables = append(result.Callables, name)
			continue
		}

		mutable, err := sys.IsMutableMember(obj, name)
		if err != nil {
			cl.diagnose("mutable-member introspection failed", name, err)
			mutable = false
		}

		derived, err := sys.IsDerivedMember(obj, name)
		if err != nil {
			cl.diagnose("derived-member introspection failed", name, err)
			// Fallback: a getter on a member the system does not report
			// as mutable is read somehow, so treat it as derived.
			derived = desc.HasGetter && !mutable
		}

		switch {
		case derived && desc.HasGetter && desc.HasSetter:
			result.WritableDerived = append(result.WritableDerived, name)
		case derived:
			result.ReadOnlyDerived = append(result.ReadOnlyDerived, name)
		case mutable:
			result.DataSlots = append(result.DataSlots, name)
		case desc.HasSetter && !desc.HasGetter:
			result.WriteOnlyTriggers = append(result.WriteOnlyTriggers, name)
		}
	}

	return result
}

// diagnose logs unexpected introspection failures. Not-observable and
// missing-member answers are expected for some member shapes and stay
// silent.
func (cl Classifier) diagnose(msg, name string, err error) {
	if errors.Is(err, reactive.ErrNotObservable) || errors.Is(err, reactive.ErrNoSuchMember) {
		return
	}
	if cl.Log == nil {
		return
	}
	cl.Log.Warn(msg, "member", name, "error", err)
}
