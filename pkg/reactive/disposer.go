package reactive

// Disposer releases a subscription or computation.
type Disposer interface {
	Dispose()
}

// DisposerFunc adapts a function to the Disposer interface.
type DisposerFunc func()

// Dispose calls the function.
func (f DisposerFunc) Dispose() { f() }

// DisposeQuietly disposes d, swallowing a nil disposer and any panic
// raised during disposal. Teardown must never fail partway through.
func DisposeQuietly(d Disposer) {
	if d == nil {
		return
	}
	defer func() { _ = recover() }()
	d.Dispose()
}
