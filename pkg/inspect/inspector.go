// Package inspect provides introspection and display formatting for a
// live bridge: which members it classified, into which category, and
// what their backing values currently are.
package inspect

import (
	"errors"

	"github.com/duplex-state/duplex-go/pkg/bridge"
)

// Inspector errors.
var (
	ErrMemberNotFound = errors.New("member not found")
)

// Inspector provides inspection capabilities for a bridged object.
type Inspector struct {
	obj *bridge.Object
}

// NewInspector creates a new Inspector for the given bridged object.
func NewInspector(obj *bridge.Object) *Inspector {
	return &Inspector{obj: obj}
}

// Object returns the underlying bridged object.
func (i *Inspector) Object() *bridge.Object {
	return i.obj
}

// ObjectTree represents the complete bridge structure for display.
type ObjectTree struct {
	BridgeID string
	Members  []MemberInfo
}

// MemberInfo represents member information for display.
type MemberInfo struct {
	Name     string
	Kind     bridge.MemberKind
	Value    any
	Writable bool
}

// InspectObject returns a complete tree of the bridged members.
func (i *Inspector) InspectObject() *ObjectTree {
	tree := &ObjectTree{BridgeID: i.obj.ID()}
	for _, name := range i.obj.Names() {
		info, err := i.InspectMember(name)
		if err != nil {
			continue
		}
		tree.Members = append(tree.Members, *info)
	}
	return tree
}

// InspectMember returns information about a specific member.
func (i *Inspector) InspectMember(name string) (*MemberInfo, error) {
	kind, ok := i.obj.Kind(name)
	if !ok {
		return nil, ErrMemberNotFound
	}

	info := &MemberInfo{
		Name:     name,
		Kind:     kind,
		Writable: isWritable(kind),
	}
	if kind != bridge.KindCallable {
		info.Value = i.obj.Snapshot(name)
	}
	return info, nil
}

// isWritable reports whether the category accepts writes at all. A
// writable derived member may still turn out read-only on first write.
func isWritable(kind bridge.MemberKind) bool {
	switch kind {
	case bridge.KindDataSlot, bridge.KindWritableDerived, bridge.KindWriteOnlyTrigger:
		return true
	default:
		return false
	}
}
