// Command duplex-inspect is an interactive explorer for a bridged object.
//
// It builds a demo source object (a small task list with derived members
// and a trigger), bridges it, and opens a REPL for reading, writing, and
// mutating members through the bridge while the source reacts live.
//
// Usage:
//
//	duplex-inspect [flags]
//
// Flags:
//
//	-trace string      Write a CBOR trace of all sync events to this file
//	-log-level string  Log level: debug, info, warn, error (default "warn")
//	-lock              Disable direct mutation through the bridge
//
// Examples:
//
//	# Explore the demo object
//	duplex-inspect
//
//	# Record a trace for later analysis with duplex-trace
//	duplex-inspect -trace session.dtrace
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/duplex-state/duplex-go/cmd/duplex-inspect/interactive"
	"github.com/duplex-state/duplex-go/pkg/bridge"
	"github.com/duplex-state/duplex-go/pkg/loop"
	"github.com/duplex-state/duplex-go/pkg/reactive"
	"github.com/duplex-state/duplex-go/pkg/trace"
)

var (
	tracePath string
	logLevel  string
	lock      bool
)

func init() {
	flag.StringVar(&tracePath, "trace", "", "Write a CBOR trace of all sync events to this file")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flag.BoolVar(&lock, "lock", false, "Disable direct mutation through the bridge")
}

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLevel(logLevel),
	}))

	var tracer trace.Logger = trace.NoopLogger{}
	if tracePath != "" {
		fl, err := trace.NewFileLogger(tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to open trace file: %v\n", err)
			os.Exit(1)
		}
		defer fl.Close()
		tracer = fl
	}

	l := loop.New()
	store, src := buildDemoSource()

	obj, err := bridge.New(store, src, bridge.Options{
		DisableDirectMutation: lock,
		Loop:                  l,
		Log:                   logger,
		Trace:                 tracer,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to build bridge: %v\n", err)
		os.Exit(1)
	}
	defer obj.Dispose()

	session, err := interactive.New(obj, l)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Bridge %s over demo task list (%d members)\n", obj.ID(), len(obj.Names()))
	session.Run()
}

// buildDemoSource assembles the demo object: a task list with a counter,
// derived members over both, and a notification trigger.
func buildDemoSource() (*reactive.Store, *reactive.StoreObject) {
	store := reactive.NewStore()

	src := store.NewObject().
		DefineData("title", "demo tasks").
		DefineData("count", 0).
		DefineData("tasks", []any{
			map[string]any{"text": "read the help", "done": false},
		})
	src.DefineComputed("taskCount", func() any {
		tasks, _ := src.Value("tasks").([]any)
		return len(tasks)
	})
	src.DefineComputed("openTasks", func() any {
		tasks, _ := src.Value("tasks").([]any)
		open := 0
		for _, t := range tasks {
			if m, ok := t.(map[string]any); ok && m["done"] != true {
				open++
			}
		}
		return open
	})
	src.DefineWritableComputed("doubled",
		func() any {
			n, _ := src.Value("count").(int)
			return n * 2
		},
		func(v any) error {
			n, ok := v.(int)
			if !ok {
				return fmt.Errorf("doubled must be an int, got %T", v)
			}
			return src.Set("count", n/2)
		},
	)
	src.DefineSetter("notify", func(v any) error {
		fmt.Printf("[source] notify: %v\n", v)
		return nil
	})
	src.DefineAction("addTask", func(args ...any) (any, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("addTask requires a task text")
		}
		text := fmt.Sprintf("%v", args[0])
		err := src.Mutate("tasks", func(v any) any {
			tasks, _ := v.([]any)
			return append(tasks, map[string]any{"text": text, "done": false})
		})
		return text, err
	})

	return store, src
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
