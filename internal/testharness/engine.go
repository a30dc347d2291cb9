package testharness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/duplex-state/duplex-go/pkg/bridge"
	"github.com/duplex-state/duplex-go/pkg/deepeq"
	"github.com/duplex-state/duplex-go/pkg/loop"
	"github.com/duplex-state/duplex-go/pkg/proxy"
	"github.com/duplex-state/duplex-go/pkg/reactive"
)

// Result reports a scenario run. A scenario passes when Failures is empty.
type Result struct {
	ScenarioID string
	Failures   []string
}

// Passed reports whether every step succeeded.
func (r *Result) Passed() bool { return len(r.Failures) == 0 }

// engine executes one scenario against a fresh store and bridge.
type engine struct {
	sc     *Scenario
	store  *reactive.Store
	src    *reactive.StoreObject
	obj    *bridge.Object
	lp     *loop.Loop
	result *Result
}

// Run executes the scenario. A returned error means the scenario could
// not be set up at all; step-level mismatches land in Result.Failures.
func Run(sc *Scenario) (*Result, error) {
	e := &engine{
		sc:     sc,
		store:  reactive.NewStore(),
		lp:     loop.New(),
		result: &Result{ScenarioID: sc.ID},
	}

	if err := e.buildSource(); err != nil {
		return nil, err
	}

	obj, err := bridge.New(e.store, e.src, bridge.Options{
		DisableDirectMutation: sc.DisableDirectMutation,
		Loop:                  e.lp,
		Log:                   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		return nil, fmt.Errorf("building bridge for %s: %w", sc.ID, err)
	}
	e.obj = obj
	defer obj.Dispose()

	for i, step := range sc.Steps {
		e.runStep(i+1, step)
	}
	return e.result, nil
}

// buildSource materializes the scenario's source object in the store.
func (e *engine) buildSource() error {
	e.src = e.store.NewObject()

	names := make([]string, 0, len(e.sc.Source.Data))
	for name := range e.sc.Source.Data {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		e.src.DefineData(name, e.sc.Source.Data[name])
	}

	cnames := make([]string, 0, len(e.sc.Source.Computed))
	for name := range e.sc.Source.Computed {
		cnames = append(cnames, name)
	}
	sort.Strings(cnames)
	for _, name := range cnames {
		spec := e.sc.Source.Computed[name]
		get, err := e.computedGetter(spec)
		if err != nil {
			return fmt.Errorf("scenario %s, computed %q: %w", e.sc.ID, name, err)
		}
		if spec.Writable {
			target := spec.Of[0]
			e.src.DefineWritableComputed(name, get, func(v any) error {
				return e.src.Set(target, v)
			})
		} else {
			e.src.DefineComputed(name, get)
		}
	}

	for _, name := range e.sc.Source.Triggers {
		record := "_" + name
		e.src.DefineData(record, nil)
		e.src.DefineSetter(name, func(v any) error {
			return e.src.Set(record, v)
		})
	}
	return nil
}

// computedGetter builds the getter for one of the fixed computed forms.
func (e *engine) computedGetter(spec ComputedSpec) (func() any, error) {
	if len(spec.Of) == 0 {
		return nil, fmt.Errorf("computed needs operands")
	}
	of := spec.Of

	switch spec.Op {
	case "double":
		return func() any { return asFloat(e.src.Value(of[0])) * 2 }, nil
	case "sum":
		return func() any {
			total := 0.0
			for _, name := range of {
				total += asFloat(e.src.Value(name))
			}
			return total
		}, nil
	case "len":
		return func() any {
			sl, _ := e.src.Value(of[0]).([]any)
			return len(sl)
		}, nil
	case "concat":
		return func() any {
			var b strings.Builder
			for _, name := range of {
				fmt.Fprintf(&b, "%v", e.src.Value(name))
			}
			return b.String()
		}, nil
	default:
		return nil, fmt.Errorf("unknown computed op %q", spec.Op)
	}
}

func (e *engine) fail(stepNo int, format string, args ...any) {
	e.result.Failures = append(e.result.Failures,
		fmt.Sprintf("step %d: %s", stepNo, fmt.Sprintf(format, args...)))
}

func (e *engine) runStep(no int, step Step) {
	switch step.Action {
	case "set":
		if err := e.obj.Set(step.Member, step.Value); err != nil {
			e.fail(no, "set %q: %v", step.Member, err)
		}

	case "source-set":
		if err := e.src.Set(step.Member, step.Value); err != nil {
			e.fail(no, "source-set %q: %v", step.Member, err)
		}

	case "mutate":
		node, ok := e.obj.Get(step.Member).(*proxy.Node)
		if !ok {
			e.fail(no, "mutate %q: member is not a container", step.Member)
			return
		}
		if err := applyNodeOp(node, step.Op, step.Args); err != nil {
			e.fail(no, "mutate %q: %v", step.Member, err)
		}

	case "source-mutate":
		err := e.src.Mutate(step.Member, func(v any) any {
			return applyRawOp(v, step.Op, step.Args)
		})
		if err != nil {
			e.fail(no, "source-mutate %q: %v", step.Member, err)
		}

	case "drain":
		e.lp.Drain()

	case "expect":
		got := e.obj.Value(step.Member)
		if !deepeq.Equal(got, step.Value) {
			e.fail(no, "expect %q: got %v, want %v", step.Member, got, step.Value)
		}

	case "expect-source":
		got, err := e.src.Get(step.Member)
		if err != nil {
			e.fail(no, "expect-source %q: %v", step.Member, err)
			return
		}
		if !deepeq.Equal(got, step.Value) {
			e.fail(no, "expect-source %q: got %v, want %v", step.Member, got, step.Value)
		}

	case "expect-error":
		err := e.obj.Set(step.Member, step.Value)
		if err == nil {
			e.fail(no, "expect-error %q: write succeeded", step.Member)
			return
		}
		if step.Contains != "" && !strings.Contains(err.Error(), step.Contains) {
			e.fail(no, "expect-error %q: error %q does not contain %q",
				step.Member, err.Error(), step.Contains)
		}

	default:
		e.fail(no, "unknown action %q", step.Action)
	}
}

// applyNodeOp applies a nested mutation through the bridge's proxy.
func applyNodeOp(node *proxy.Node, op string, args []any) error {
	switch op {
	case "push":
		node.Push(args...)
	case "pop":
		node.Pop()
	case "shift":
		node.Shift()
	case "unshift":
		node.Unshift(args...)
	case "splice":
		if len(args) < 2 {
			return fmt.Errorf("splice needs start and deleteCount")
		}
		node.Splice(asInt(args[0]), asInt(args[1]), args[2:]...)
	case "set-index":
		if len(args) != 2 {
			return fmt.Errorf("set-index needs index and value")
		}
		node.SetIndex(asInt(args[0]), args[1])
	case "set-key":
		if len(args) != 2 {
			return fmt.Errorf("set-key needs key and value")
		}
		key, ok := args[0].(string)
		if !ok {
			return fmt.Errorf("set-key key must be a string")
		}
		node.Set(key, args[1])
	default:
		return fmt.Errorf("unknown mutation op %q", op)
	}
	return nil
}

// applyRawOp applies a mutation directly to a source-held value,
// simulating out-of-band source-side changes.
func applyRawOp(v any, op string, args []any) any {
	switch op {
	case "set-key":
		if m, ok := v.(map[string]any); ok && len(args) == 2 {
			if key, ok := args[0].(string); ok {
				m[key] = args[1]
			}
		}
		return v
	case "set-index":
		if sl, ok := v.([]any); ok && len(args) == 2 {
			if i := asInt(args[0]); i >= 0 && i < len(sl) {
				sl[i] = args[1]
			}
		}
		return v
	case "push":
		if sl, ok := v.([]any); ok {
			return append(sl, args...)
		}
		return v
	case "shift":
		if sl, ok := v.([]any); ok && len(sl) > 0 {
			return sl[1:]
		}
		return v
	default:
		return v
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	default:
		return 0
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
