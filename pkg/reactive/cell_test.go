package reactive

import "testing"

func TestCellGetSet(t *testing.T) {
	c := NewCell(1)
	if c.Get() != 1 {
		t.Errorf("Get() = %v, want 1", c.Get())
	}
	c.Set("x")
	if c.Get() != "x" {
		t.Errorf("Get() = %v, want x", c.Get())
	}
}

func TestCellSubscribe(t *testing.T) {
	c := NewCell(0)
	var seen []any
	d := c.Subscribe(func(v any) { seen = append(seen, v) })

	c.Set(1)
	c.Set(2)
	d.Dispose()
	c.Set(3)

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("seen = %v, want [1 2]", seen)
	}
}

func TestCellMultipleSubscribers(t *testing.T) {
	c := NewCell(0)
	count := 0
	c.Subscribe(func(any) { count++ })
	c.Subscribe(func(any) { count++ })

	c.Set(1)
	if count != 2 {
		t.Errorf("notification count = %d, want 2", count)
	}
}

func TestDisposeQuietly(t *testing.T) {
	DisposeQuietly(nil)

	called := false
	DisposeQuietly(DisposerFunc(func() { called = true }))
	if !called {
		t.Error("DisposeQuietly did not call Dispose")
	}

	// A panicking disposer must not unwind into the caller.
	DisposeQuietly(DisposerFunc(func() { panic("boom") }))
}
