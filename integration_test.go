package duplex_test

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/duplex-state/duplex-go/pkg/bridge"
	"github.com/duplex-state/duplex-go/pkg/loop"
	"github.com/duplex-state/duplex-go/pkg/proxy"
	"github.com/duplex-state/duplex-go/pkg/reactive"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

// buildTaskSource assembles a small task-list source object with every
// member category represented.
func buildTaskSource(store *reactive.Store) *reactive.StoreObject {
	src := store.NewObject().
		DefineData("title", "inbox").
		DefineData("tasks", []any{
			map[string]any{"text": "first", "done": false},
		})
	src.DefineComputed("taskCount", func() any {
		tasks, _ := src.Value("tasks").([]any)
		return len(tasks)
	})
	src.DefineWritableComputed("upperTitle",
		func() any {
			s, _ := src.Value("title").(string)
			out := make([]byte, len(s))
			for i := 0; i < len(s); i++ {
				c := s[i]
				if c >= 'a' && c <= 'z' {
					c -= 'a' - 'A'
				}
				out[i] = c
			}
			return string(out)
		},
		func(v any) error {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("upperTitle must be a string")
			}
			out := make([]byte, len(s))
			for i := 0; i < len(s); i++ {
				c := s[i]
				if c >= 'A' && c <= 'Z' {
					c += 'a' - 'A'
				}
				out[i] = c
			}
			return src.Set("title", string(out))
		},
	)
	src.DefineSetter("notify", func(any) error { return nil })
	src.DefineAction("clear", func(...any) (any, error) {
		return nil, src.Set("tasks", []any{})
	})
	return src
}

// TestFullSyncCycle drives one value through every layer: a nested
// mutation through the proxy, the batched flush through the loop, the
// source's recomputation, and the traced propagation back into the
// bridge.
func TestFullSyncCycle(t *testing.T) {
	store := reactive.NewStore()
	src := buildTaskSource(store)
	l := loop.New()

	tracePath := filepath.Join(t.TempDir(), "cycle.dtrace")
	tracer, err := trace.NewFileLogger(tracePath)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	obj, err := bridge.New(store, src, bridge.Options{
		Loop:  l,
		Log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Trace: tracer,
	})
	if err != nil {
		t.Fatalf("bridge.New: %v", err)
	}
	defer obj.Dispose()

	var counts []any
	if _, err := obj.Subscribe("taskCount", func(v any) { counts = append(counts, v) }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	// Nested mutation through the proxy, batched until the checkpoint.
	node, ok := obj.Get("tasks").(*proxy.Node)
	if !ok {
		t.Fatalf("Get(tasks) = %T, want *proxy.Node", obj.Get("tasks"))
	}
	node.Push(map[string]any{"text": "second", "done": false})
	node.Index(0).(*proxy.Node).Set("done", true)

	if got := obj.Get("taskCount"); got != 1 {
		t.Fatalf("taskCount before drain = %v, want 1", got)
	}

	l.Drain()

	// The source saw one coherent replacement and recomputed.
	srcTasks := src.Value("tasks").([]any)
	if len(srcTasks) != 2 {
		t.Fatalf("source tasks = %v", srcTasks)
	}
	if srcTasks[0].(map[string]any)["done"] != true {
		t.Error("nested field write did not reach the source")
	}
	if got := obj.Get("taskCount"); got != 2 {
		t.Errorf("taskCount after drain = %v, want 2", got)
	}
	if len(counts) != 1 || counts[0] != 2 {
		t.Errorf("taskCount notifications = %v, want [2]", counts)
	}

	// Writable derived member writes through to its dependency.
	if err := obj.Set("upperTitle", "URGENT"); err != nil {
		t.Fatalf("Set(upperTitle): %v", err)
	}
	if got := src.Value("title"); got != "urgent" {
		t.Errorf("source title = %v, want urgent", got)
	}
	if got := obj.Get("upperTitle"); got != "URGENT" {
		t.Errorf("bridge upperTitle = %v, want URGENT", got)
	}

	// A callable clears the list; the reassignment reaches the bridge.
	if _, err := obj.Call("clear"); err != nil {
		t.Fatalf("Call(clear): %v", err)
	}
	if got := obj.Get("taskCount"); got != 0 {
		t.Errorf("taskCount after clear = %v, want 0", got)
	}

	if err := tracer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	assertTraceContains(t, tracePath, trace.CatFlush, trace.CatDerivedUpdate, trace.CatEchoSuppressed)
}

// TestTwoBridgesOverOneSource checks that a write through one bridge
// reaches a second bridge over the same object without ping-ponging.
func TestTwoBridgesOverOneSource(t *testing.T) {
	store := reactive.NewStore()
	src := buildTaskSource(store)

	newBridge := func() *bridge.Object {
		obj, err := bridge.New(store, src, bridge.Options{
			Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		if err != nil {
			t.Fatalf("bridge.New: %v", err)
		}
		t.Cleanup(obj.Dispose)
		return obj
	}

	a := newBridge()
	b := newBridge()

	var bSaw []any
	if _, err := b.Subscribe("title", func(v any) { bSaw = append(bSaw, v) }); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := a.Set("title", "shared"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := b.Get("title"); got != "shared" {
		t.Errorf("second bridge title = %v, want shared", got)
	}
	if len(bSaw) != 1 {
		t.Errorf("second bridge saw %d notifications, want 1", len(bSaw))
	}
}

func assertTraceContains(t *testing.T, path string, cats ...trace.Category) {
	t.Helper()
	seen := make(map[trace.Category]bool)
	r, err := trace.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()
	for {
		ev, err := r.Next()
		if err != nil {
			break
		}
		seen[ev.Category] = true
	}
	for _, c := range cats {
		if !seen[c] {
			t.Errorf("trace file missing %s events", c)
		}
	}
}
