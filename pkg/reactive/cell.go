package reactive

// Cell is a mutable reactive cell: the backing-slot primitive on the
// output side of the bridge. Set notifies every subscriber with the new
// value; subscribers decide for themselves whether the value actually
// changed (the bridge gates on structural equality before calling Set).
type Cell struct {
	value  any
	nextID int
	subs   map[int]func(any)
}

// NewCell creates a cell holding the initial value.
func NewCell(initial any) *Cell {
	return &Cell{value: initial}
}

// Get returns the current value.
func (c *Cell) Get() any {
	return c.value
}

// Set replaces the value and notifies subscribers.
func (c *Cell) Set(v any) {
	c.value = v
	for _, fn := range c.subs {
		fn(v)
	}
}

// Subscribe registers fn to be called on every Set. The returned
// disposer removes the subscription.
func (c *Cell) Subscribe(fn func(any)) Disposer {
	if c.subs == nil {
		c.subs = make(map[int]func(any))
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return DisposerFunc(func() { delete(c.subs, id) })
}
