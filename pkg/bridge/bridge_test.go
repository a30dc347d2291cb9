package bridge

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duplex-state/duplex-go/pkg/loop"
	"github.com/duplex-state/duplex-go/pkg/proxy"
	"github.com/duplex-state/duplex-go/pkg/reactive"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

// fixture bundles a store-backed source object with a bridge over it.
type fixture struct {
	store  *reactive.Store
	src    *reactive.StoreObject
	obj    *Object
	loop   *loop.Loop
	events *recordingTrace

	triggered []any
}

// recordingTrace captures sync events for assertions.
type recordingTrace struct {
	events []trace.Event
}

func (r *recordingTrace) Log(ev trace.Event) {
	r.events = append(r.events, ev)
}

func (r *recordingTrace) categories() []trace.Category {
	out := make([]trace.Category, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Category)
	}
	return out
}

func (r *recordingTrace) count(cat trace.Category) int {
	n := 0
	for _, ev := range r.events {
		if ev.Category == cat {
			n++
		}
	}
	return n
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()

	f := &fixture{
		store:  reactive.NewStore(),
		loop:   loop.New(),
		events: &recordingTrace{},
	}

	src := f.store.NewObject().
		DefineData("count", 1).
		DefineData("items", []any{"a", "b"}).
		DefineData("profile", map[string]any{"name": "init"})
	src.DefineComputed("doubled", func() any {
		n, _ := src.Value("count").(int)
		return n * 2
	})
	src.DefineWritableComputed("total",
		func() any {
			n, _ := src.Value("count").(int)
			return n + 100
		},
		func(v any) error {
			n, ok := v.(int)
			if !ok {
				return fmt.Errorf("total must be an int, got %T", v)
			}
			return src.Set("count", n-100)
		},
	)
	src.DefineSetter("flash", func(v any) error {
		f.triggered = append(f.triggered, v)
		return nil
	})
	src.DefineAction("describe", func(args ...any) (any, error) {
		return fmt.Sprintf("count=%v", src.Value("count")), nil
	})
	f.src = src

	opts.Loop = f.loop
	opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	opts.Trace = f.events

	obj, err := New(f.store, src, opts)
	require.NoError(t, err)
	t.Cleanup(obj.Dispose)
	f.obj = obj
	return f
}

func TestNewValidatesInputs(t *testing.T) {
	store := reactive.NewStore()
	src := store.NewObject().DefineData("x", 1)

	_, err := New(nil, src, Options{})
	assert.ErrorIs(t, err, ErrNilSource)

	_, err = New(store, nil, Options{})
	assert.ErrorIs(t, err, ErrNilSource)
}

func TestClassificationAndKinds(t *testing.T) {
	f := newFixture(t, Options{})

	want := map[string]MemberKind{
		"count":    KindDataSlot,
		"items":    KindDataSlot,
		"profile":  KindDataSlot,
		"doubled":  KindReadOnlyDerived,
		"total":    KindWritableDerived,
		"flash":    KindWriteOnlyTrigger,
		"describe": KindCallable,
	}
	assert.Len(t, f.obj.Names(), len(want))
	for name, kind := range want {
		got, ok := f.obj.Kind(name)
		require.True(t, ok, name)
		assert.Equal(t, kind, got, name)
	}

	_, ok := f.obj.Kind("missing")
	assert.False(t, ok)
	assert.NotEmpty(t, f.obj.ID())
}

func TestDataSlotRoundTrip(t *testing.T) {
	f := newFixture(t, Options{})

	// Bridge to source.
	require.NoError(t, f.obj.Set("count", 7))
	assert.Equal(t, 7, f.src.Value("count"))
	assert.Equal(t, 7, f.obj.Get("count"))

	// Source to bridge.
	require.NoError(t, f.src.Set("count", 9))
	assert.Equal(t, 9, f.obj.Get("count"))
}

func TestDataSlotWriteIsIdempotent(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.obj.Set("count", 5))

	var notifications int
	_, err := f.obj.Subscribe("count", func(any) { notifications++ })
	require.NoError(t, err)

	// Writing the value already held changes nothing on either side.
	require.NoError(t, f.obj.Set("count", 5))
	assert.Zero(t, notifications)
	assert.Equal(t, 5, f.src.Value("count"))
}

func TestDataSlotWriteClonesValue(t *testing.T) {
	f := newFixture(t, Options{})

	written := map[string]any{"name": "alice"}
	require.NoError(t, f.obj.Set("profile", written))

	// The caller's map must not alias either side of the bridge.
	written["name"] = "mutated"
	assert.Equal(t, "alice", f.src.Value("profile").(map[string]any)["name"])
	assert.Equal(t, "alice", f.obj.Value("profile").(map[string]any)["name"])
}

func TestContainerSlotReadsAsProxyNode(t *testing.T) {
	f := newFixture(t, Options{})

	node, ok := f.obj.Get("items").(*proxy.Node)
	require.True(t, ok, "container slot should read as *proxy.Node, got %T", f.obj.Get("items"))
	assert.Equal(t, 2, node.Len())
	assert.Equal(t, "a", node.Index(0))

	// Scalar slots read as themselves.
	_, isNode := f.obj.Get("count").(*proxy.Node)
	assert.False(t, isNode)
}

func TestNestedMutationBatchedUntilDrain(t *testing.T) {
	f := newFixture(t, Options{})
	node := f.obj.Get("items").(*proxy.Node)

	first := node.Shift()
	assert.Equal(t, "a", first)
	node.Push("c")

	// Before the checkpoint the source still holds the original slice.
	assert.Equal(t, []any{"a", "b"}, f.src.Value("items"))

	f.loop.Drain()
	assert.Equal(t, []any{"b", "c"}, f.src.Value("items"))
	assert.Equal(t, []any{"b", "c"}, f.obj.Value("items"))

	// Two nested writes coalesce into a single flush.
	assert.Equal(t, 1, f.events.count(trace.CatFlush))
}

func TestNestedMutationAfterTopLevelWriteStaysBatched(t *testing.T) {
	f := newFixture(t, Options{})

	// A top-level write must not leave the source sharing a container
	// with the backing cell, or the next nested mutation would reach
	// the source immediately instead of at the checkpoint.
	require.NoError(t, f.obj.Set("items", []any{"x", "y"}))

	node := f.obj.Get("items").(*proxy.Node)
	node.SetIndex(0, "changed")
	assert.Equal(t, []any{"x", "y"}, f.src.Value("items"))

	f.loop.Drain()
	assert.Equal(t, []any{"changed", "y"}, f.src.Value("items"))
}

func TestNestedSpliceAndUnshift(t *testing.T) {
	f := newFixture(t, Options{})
	node := f.obj.Get("items").(*proxy.Node)

	node.Unshift("z")
	removed := node.Splice(1, 1, "x", "y")
	assert.Equal(t, []any{"a"}, removed)

	f.loop.Drain()
	assert.Equal(t, []any{"z", "x", "y", "b"}, f.src.Value("items"))
}

func TestNestedMapMutation(t *testing.T) {
	f := newFixture(t, Options{})
	node := f.obj.Get("profile").(*proxy.Node)

	node.Set("name", "alice")
	node.Set("age", 30)
	assert.Equal(t, "init", f.src.Value("profile").(map[string]any)["name"])

	f.loop.Drain()
	got := f.src.Value("profile").(map[string]any)
	assert.Equal(t, "alice", got["name"])
	assert.Equal(t, 30, got["age"])
}

func TestFlushDoesNotEchoBack(t *testing.T) {
	f := newFixture(t, Options{})
	node := f.obj.Get("items").(*proxy.Node)

	node.Push("c")
	f.loop.Drain()

	// The source's reassignment notification is recognized as the echo
	// of the flush and suppressed.
	assert.GreaterOrEqual(t, f.events.count(trace.CatEchoSuppressed), 1)
	assert.Equal(t, []any{"a", "b", "c"}, f.obj.Value("items"))
}

func TestSourceMutationReachesBridge(t *testing.T) {
	f := newFixture(t, Options{})

	require.NoError(t, f.src.Mutate("items", func(v any) any {
		return append(v.([]any), "c")
	}))
	assert.Equal(t, []any{"a", "b", "c"}, f.obj.Value("items"))
}

func TestResubscriptionAfterSourceReassignment(t *testing.T) {
	f := newFixture(t, Options{})

	// Wholesale reassignment on the source side replaces the observed
	// value; deep observation must follow it.
	require.NoError(t, f.src.Set("items", []any{"x"}))
	assert.Equal(t, []any{"x"}, f.obj.Value("items"))

	require.NoError(t, f.src.Mutate("items", func(v any) any {
		return append(v.([]any), "y")
	}))
	assert.Equal(t, []any{"x", "y"}, f.obj.Value("items"))
}

func TestResubscriptionAfterBridgeFlush(t *testing.T) {
	f := newFixture(t, Options{})

	// A flush replaces the source's slice identity. Mutations of the
	// replacement must still reach the bridge.
	f.obj.Get("items").(*proxy.Node).Push("c")
	f.loop.Drain()

	require.NoError(t, f.src.Mutate("items", func(v any) any {
		return append(v.([]any), "d")
	}))
	assert.Equal(t, []any{"a", "b", "c", "d"}, f.obj.Value("items"))
}

func TestSourceMutationAfterFlushNotifiesSubscribers(t *testing.T) {
	f := newFixture(t, Options{})

	f.obj.Get("items").(*proxy.Node).Push("c")
	f.loop.Drain()

	var notifications int
	_, err := f.obj.Subscribe("items", func(any) { notifications++ })
	require.NoError(t, err)

	// If the flush left the source holding the cell's own slice, the
	// equality gate would compare the mutated value against itself and
	// swallow this change.
	require.NoError(t, f.src.Mutate("items", func(v any) any {
		return append(v.([]any), "d")
	}))
	assert.Equal(t, 1, notifications)
	assert.Equal(t, []any{"a", "b", "c", "d"}, f.obj.Value("items"))
}

func TestSnapshotIsDetached(t *testing.T) {
	f := newFixture(t, Options{})

	snap := f.obj.Snapshot("items").([]any)
	f.obj.Get("items").(*proxy.Node).Push("c")
	f.loop.Drain()

	assert.Equal(t, []any{"a", "b"}, snap)
}

func TestDisableDirectMutation(t *testing.T) {
	f := newFixture(t, Options{DisableDirectMutation: true})

	// Top-level writes are dropped but still succeed.
	require.NoError(t, f.obj.Set("count", 99))
	assert.Equal(t, 1, f.src.Value("count"))
	assert.Equal(t, 1, f.obj.Get("count"))

	// Nested writes are dropped too.
	f.obj.Get("items").(*proxy.Node).Push("c")
	f.loop.Drain()
	assert.Equal(t, []any{"a", "b"}, f.src.Value("items"))

	// Source-to-bridge flow is unaffected.
	require.NoError(t, f.src.Set("count", 3))
	assert.Equal(t, 3, f.obj.Get("count"))
}

func TestDisableDirectMutationCoversWritableDerived(t *testing.T) {
	f := newFixture(t, Options{DisableDirectMutation: true})

	// Writable-derived writes are gated like every other write path.
	require.NoError(t, f.obj.Set("total", 150))
	assert.Equal(t, 1, f.src.Value("count"))
	assert.Equal(t, 101, f.obj.Get("total"))
}

func TestReadOnlyDerived(t *testing.T) {
	f := newFixture(t, Options{})

	assert.Equal(t, 2, f.obj.Get("doubled"))

	err := f.obj.Set("doubled", 10)
	assert.ErrorIs(t, err, ErrAssignComputed)

	// Dependency change recomputes through to the bridge.
	require.NoError(t, f.obj.Set("count", 4))
	assert.Equal(t, 8, f.obj.Get("doubled"))
}

func TestWritableDerivedWritesThrough(t *testing.T) {
	f := newFixture(t, Options{})

	require.NoError(t, f.obj.Set("total", 105))
	assert.Equal(t, 5, f.src.Value("count"))
	assert.Equal(t, 105, f.obj.Get("total"))

	// The dependent data slot also updated on the bridge side.
	assert.Equal(t, 5, f.obj.Get("count"))
}

func TestWritableDerivedValidationFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, Options{})

	// The write path rejects the value; the caller sees success and the
	// member keeps its computed value.
	require.NoError(t, f.obj.Set("total", "not an int"))
	assert.Equal(t, 101, f.obj.Get("total"))
	assert.Equal(t, 1, f.events.count(trace.CatWarning))
}

func TestLazyReadOnlyDetection(t *testing.T) {
	f := &fixture{
		store:  reactive.NewStore(),
		loop:   loop.New(),
		events: &recordingTrace{},
	}

	writes := 0
	src := f.store.NewObject().DefineData("count", 1)
	src.DefineWritableComputed("sealed",
		func() any { return src.Value("count") },
		func(any) error {
			writes++
			return fmt.Errorf("%w: sealed", reactive.ErrNotWritable)
		},
	)

	obj, err := New(f.store, src, Options{
		Loop:  f.loop,
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Trace: f.events,
	})
	require.NoError(t, err)
	defer obj.Dispose()

	// The first write reaches the source and discovers the rejection.
	assert.ErrorIs(t, obj.Set("sealed", 5), ErrAssignComputed)
	assert.Equal(t, 1, writes)

	// Subsequent writes fail fast without touching the source.
	assert.ErrorIs(t, obj.Set("sealed", 6), ErrAssignComputed)
	assert.Equal(t, 1, writes)
}

func TestTrigger(t *testing.T) {
	f := newFixture(t, Options{})

	require.NoError(t, f.obj.Set("flash", "go"))
	assert.Equal(t, []any{"go"}, f.triggered)

	// Reads return the last written value, not a source-side one.
	assert.Equal(t, "go", f.obj.Get("flash"))
	assert.Equal(t, 1, f.events.count(trace.CatTriggerFire))
}

func TestTriggerFailureIsSwallowed(t *testing.T) {
	store := reactive.NewStore()
	src := store.NewObject().DefineSetter("boom", func(any) error {
		return errors.New("setter exploded")
	})

	events := &recordingTrace{}
	obj, err := New(store, src, Options{
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Trace: events,
	})
	require.NoError(t, err)
	defer obj.Dispose()

	require.NoError(t, obj.Set("boom", 1))
	assert.Equal(t, 1, events.count(trace.CatWarning))
}

func TestCallable(t *testing.T) {
	f := newFixture(t, Options{})

	v, err := f.obj.Call("describe")
	require.NoError(t, err)
	assert.Equal(t, "count=1", v)

	// Assignment to a method is a warned no-op.
	require.NoError(t, f.obj.Set("describe", 42))
	_, err = f.obj.Call("describe")
	assert.NoError(t, err)
}

func TestCallRejectsNonCallables(t *testing.T) {
	f := newFixture(t, Options{})

	_, err := f.obj.Call("count")
	assert.ErrorIs(t, err, ErrNotCallable)

	_, err = f.obj.Call("missing")
	assert.ErrorIs(t, err, ErrUnknownMember)
}

func TestUnknownMember(t *testing.T) {
	f := newFixture(t, Options{})

	assert.Nil(t, f.obj.Get("missing"))
	assert.ErrorIs(t, f.obj.Set("missing", 1), ErrUnknownMember)
	_, err := f.obj.Subscribe("missing", func(any) {})
	assert.ErrorIs(t, err, ErrUnknownMember)
}

func TestUnderscoreMembersExcluded(t *testing.T) {
	store := reactive.NewStore()
	src := store.NewObject().
		DefineData("visible", 1).
		DefineData("_hidden", 2)

	obj, err := New(store, src, Options{Log: slog.New(slog.NewTextHandler(io.Discard, nil))})
	require.NoError(t, err)
	defer obj.Dispose()

	assert.Equal(t, []string{"visible"}, obj.Names())
	assert.Nil(t, obj.Get("_hidden"))
}

func TestSubscribeSeesBothDirections(t *testing.T) {
	f := newFixture(t, Options{})

	var seen []any
	_, err := f.obj.Subscribe("count", func(v any) { seen = append(seen, v) })
	require.NoError(t, err)

	require.NoError(t, f.obj.Set("count", 2))
	require.NoError(t, f.src.Set("count", 3))
	assert.Equal(t, []any{2, 3}, seen)
}

func TestDispose(t *testing.T) {
	f := newFixture(t, Options{})
	f.obj.Dispose()
	f.obj.Dispose() // idempotent

	// Source changes no longer propagate.
	require.NoError(t, f.src.Set("count", 42))
	assert.Equal(t, 1, f.obj.Get("count"))

	_, err := f.obj.Call("describe")
	assert.ErrorIs(t, err, ErrDisposed)

	assert.GreaterOrEqual(t, f.events.count(trace.CatTeardown), 1)
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t, Options{})

	var doubledSeen []any
	_, err := f.obj.Subscribe("doubled", func(v any) { doubledSeen = append(doubledSeen, v) })
	require.NoError(t, err)

	// One bridge write ripples through the source's derived member and
	// back into the bridge.
	require.NoError(t, f.obj.Set("count", 10))
	assert.Equal(t, 20, f.obj.Get("doubled"))
	assert.Equal(t, 110, f.obj.Get("total"))
	assert.Equal(t, []any{20}, doubledSeen)
}

func TestMemberKindString(t *testing.T) {
	cases := []struct {
		kind MemberKind
		want string
	}{
		{KindDataSlot, "data"},
		{KindReadOnlyDerived, "computed"},
		{KindWritableDerived, "computed+setter"},
		{KindWriteOnlyTrigger, "trigger"},
		{KindCallable, "action"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.kind.String())
	}
}
