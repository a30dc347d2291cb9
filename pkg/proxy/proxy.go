// Package proxy intercepts mutations of nested values reachable from a
// bridged data slot.
//
// A Node addresses one nested container by its path from the slot root.
// Reads of nested containers return child Nodes (wrapping is recursive
// and lazy); reads of leaves return the value itself. Writes mutate the
// slot's working structure in place immediately, then schedule a single
// deferred flush so the origin system sees one coherent replacement. A
// multi-step slice operation like Shift reindexes several elements, and
// propagating any intermediate state would let the origin echo a
// half-rewritten slice back into the structure being mutated.
package proxy

import (
	"log/slog"
)

// Binding is the slot-side surface a Node mutates through. The bridge
// implements one Binding per data slot.
type Binding interface {
	// Name returns the top-level member name, for diagnostics.
	Name() string

	// Current returns the slot's working value.
	Current() any

	// Replace swaps the slot's working value. Only needed when a
	// mutation changes the identity of the root container itself.
	Replace(v any)

	// MutationAllowed reports whether writes through the bridge are
	// enabled. When false, writes are dropped with a diagnostic.
	MutationAllowed() bool

	// ScheduleFlush arranges for the slot to be propagated to the
	// origin system at the next checkpoint. Multiple calls before the
	// flush runs coalesce.
	ScheduleFlush()

	// Log returns the diagnostics logger, never nil.
	Log() *slog.Logger
}

// step is one segment of a path from the slot root.
type step struct {
	key     string
	index   int
	isIndex bool
}

// Node addresses a nested container within a bridged slot.
type Node struct {
	binding Binding
	path    []step
}

// Root returns the Node addressing the slot's own value.
func Root(b Binding) *Node {
	return &Node{binding: b}
}

// child extends the path by one step.
func (n *Node) child(s step) *Node {
	path := make([]step, len(n.path), len(n.path)+1)
	copy(path, n.path)
	return &Node{binding: n.binding, path: append(path, s)}
}

// resolve walks the working value down this node's path.
func (n *Node) resolve() (any, bool) {
	v := n.binding.Current()
	for _, s := range n.path {
		if s.isIndex {
			sl, ok := v.([]any)
			if !ok || s.index < 0 || s.index >= len(sl) {
				return nil, false
			}
			v = sl[s.index]
			continue
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok = m[s.key]
		if !ok {
			return nil, false
		}
	}
	return v, true
}

// wrap returns a child Node for containers and the raw value otherwise.
// Values with immutable identity (time.Time, compiled regexps, typed
// maps and slices the bridge treats as opaque) come back unwrapped;
// mutating those through the bridge is unsupported.
func (n *Node) wrap(v any, s step) any {
	switch v.(type) {
	case map[string]any, []any:
		return n.child(s)
	default:
		return v
	}
}

// Value returns the raw value this node addresses, nil if the path no
// longer resolves.
func (n *Node) Value() any {
	v, _ := n.resolve()
	return v
}

// Get reads a field of a map node. Container fields are returned as
// child Nodes.
func (n *Node) Get(key string) any {
	v, ok := n.resolve()
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	child, ok := m[key]
	if !ok {
		return nil
	}
	return n.wrap(child, step{key: key})
}

// Index reads an element of a slice node. Container elements are
// returned as child Nodes.
func (n *Node) Index(i int) any {
	v, ok := n.resolve()
	if !ok {
		return nil
	}
	sl, ok := v.([]any)
	if !ok || i < 0 || i >= len(sl) {
		return nil
	}
	return n.wrap(sl[i], step{index: i, isIndex: true})
}

// Len returns the element count of a slice node or the key count of a
// map node, 0 otherwise.
func (n *Node) Len() int {
	v, ok := n.resolve()
	if !ok {
		return 0
	}
	switch c := v.(type) {
	case []any:
		return len(c)
	case map[string]any:
		return len(c)
	default:
		return 0
	}
}

// rejected reports and handles the mutation-disabled case. The write is
// dropped from the slot's perspective but the call itself still
// succeeds, matching the bridge's non-throwing write contract.
func (n *Node) rejected(op string) bool {
	if n.binding.MutationAllowed() {
		return false
	}
	n.binding.Log().Warn("direct mutation disabled, dropping nested write",
		"member", n.binding.Name(), "op", op)
	return true
}

// Set writes a field of a map node and schedules a flush.
func (n *Node) Set(key string, value any) {
	if n.rejected("set") {
		return
	}
	v, ok := n.resolve()
	if !ok {
		n.binding.Log().Warn("nested path no longer resolves, dropping write",
			"member", n.binding.Name(), "key", key)
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		n.binding.Log().Warn("nested write target is not a map",
			"member", n.binding.Name(), "key", key)
		return
	}
	m[key] = value
	n.binding.ScheduleFlush()
}

// Delete removes a field of a map node and schedules a flush.
func (n *Node) Delete(key string) {
	if n.rejected("delete") {
		return
	}
	v, ok := n.resolve()
	if !ok {
		return
	}
	m, ok := v.(map[string]any)
	if !ok {
		return
	}
	delete(m, key)
	n.binding.ScheduleFlush()
}

// SetIndex writes an element of a slice node and schedules a flush.
func (n *Node) SetIndex(i int, value any) {
	if n.rejected("setIndex") {
		return
	}
	v, ok := n.resolve()
	if !ok {
		return
	}
	sl, ok := v.([]any)
	if !ok || i < 0 || i >= len(sl) {
		n.binding.Log().Warn("nested index write out of range",
			"member", n.binding.Name(), "index", i)
		return
	}
	sl[i] = value
	n.binding.ScheduleFlush()
}

// Push appends values to a slice node.
func (n *Node) Push(values ...any) {
	n.spliceInternal("push", n.sliceLen(), 0, values)
}

// Pop removes and returns the last element of a slice node.
func (n *Node) Pop() any {
	removed := n.spliceInternal("pop", n.sliceLen()-1, 1, nil)
	if len(removed) == 0 {
		return nil
	}
	return removed[0]
}

// Shift removes and returns the first element of a slice node.
func (n *Node) Shift() any {
	removed := n.spliceInternal("shift", 0, 1, nil)
	if len(removed) == 0 {
		return nil
	}
	return removed[0]
}

// Unshift prepends values to a slice node.
func (n *Node) Unshift(values ...any) {
	n.spliceInternal("unshift", 0, 0, values)
}

// Splice removes deleteCount elements at start, inserts items in their
// place, and returns the removed elements.
func (n *Node) Splice(start, deleteCount int, items ...any) []any {
	return n.spliceInternal("splice", start, deleteCount, items)
}

func (n *Node) sliceLen() int {
	v, ok := n.resolve()
	if !ok {
		return 0
	}
	if sl, ok := v.([]any); ok {
		return len(sl)
	}
	return 0
}

// spliceInternal is the single in-place rewrite all slice mutators
// reduce to. The rewritten slice replaces the old one in its parent
// container (or at the slot root) and one flush is scheduled.
func (n *Node) spliceInternal(op string, start, deleteCount int, items []any) []any {
	if n.rejected(op) {
		return nil
	}
	v, ok := n.resolve()
	if !ok {
		return nil
	}
	sl, ok := v.([]any)
	if !ok {
		n.binding.Log().Warn("slice mutation target is not a slice",
			"member", n.binding.Name(), "op", op)
		return nil
	}

	if start < 0 {
		start = 0
	}
	if start > len(sl) {
		start = len(sl)
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > len(sl) {
		deleteCount = len(sl) - start
	}

	removed := make([]any, deleteCount)
	copy(removed, sl[start:start+deleteCount])

	next := make([]any, 0, len(sl)-deleteCount+len(items))
	next = append(next, sl[:start]...)
	next = append(next, items...)
	next = append(next, sl[start+deleteCount:]...)

	n.storeResolved(next)
	n.binding.ScheduleFlush()
	return removed
}

// storeResolved writes v back at this node's position: into the parent
// container when the node is nested, or as the new slot root otherwise.
func (n *Node) storeResolved(v any) {
	if len(n.path) == 0 {
		n.binding.Replace(v)
		return
	}
	parent := &Node{binding: n.binding, path: n.path[:len(n.path)-1]}
	pv, ok := parent.resolve()
	if !ok {
		return
	}
	last := n.path[len(n.path)-1]
	if last.isIndex {
		if sl, ok := pv.([]any); ok && last.index >= 0 && last.index < len(sl) {
			sl[last.index] = v
		}
		return
	}
	if m, ok := pv.(map[string]any); ok {
		m[last.key] = v
	}
}
