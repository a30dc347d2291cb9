// Package interactive provides the interactive command-line interface
// for exploring a live bridge.
package interactive

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/duplex-state/duplex-go/pkg/bridge"
	"github.com/duplex-state/duplex-go/pkg/inspect"
	"github.com/duplex-state/duplex-go/pkg/loop"
	"github.com/duplex-state/duplex-go/pkg/proxy"
)

// Session handles interactive mode for duplex-inspect.
type Session struct {
	obj       *bridge.Object
	loop      *loop.Loop
	inspector *inspect.Inspector
	formatter *inspect.Formatter
	rl        *readline.Instance
	watches   map[string]struct{}
}

// New creates a new interactive session over a bridged object.
func New(obj *bridge.Object, l *loop.Loop) (*Session, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "duplex> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Session{
		obj:       obj,
		loop:      l,
		inspector: inspect.NewInspector(obj),
		formatter: inspect.NewFormatter(),
		rl:        rl,
		watches:   make(map[string]struct{}),
	}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (s *Session) Stdout() io.Writer {
	return s.rl.Stdout()
}

// Run starts the interactive command loop.
func (s *Session) Run() {
	defer s.rl.Close()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()

		case "inspect", "i":
			s.cmdInspect(args)

		case "read", "r":
			s.cmdRead(args)

		case "write", "w":
			s.cmdWrite(args)

		case "push":
			s.cmdPush(args)

		case "pop":
			s.cmdPop(args)

		case "shift":
			s.cmdShift(args)

		case "call", "c":
			s.cmdCall(args)

		case "watch":
			s.cmdWatch(args)

		case "drain", "d":
			s.cmdDrain()

		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Duplex Bridge Commands:
  Inspection:
    inspect [member]    - Show the bridge structure (or one member)
    read <member>       - Read a member value
    watch <member>      - Print every change of a member

  Mutation:
    write <member> <val>       - Assign a member
    push <member> <val>        - Append to a slice-valued member
    pop <member>               - Remove the last element
    shift <member>             - Remove the first element
    drain                      - Run the pending-flush checkpoint

  Invocation:
    call <member> [args...]    - Invoke a callable member

  General:
    help                - Show this help
    quit                - Exit

  Values are parsed as int, float, or bool when possible, string otherwise.
  Nested writes stay local until 'drain' runs the checkpoint.`)
}

func (s *Session) cmdInspect(args []string) {
	if len(args) == 0 {
		tree := s.inspector.InspectObject()
		fmt.Fprint(s.rl.Stdout(), s.formatter.FormatTree(tree))
		return
	}

	info, err := s.inspector.InspectMember(args[0])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), s.formatter.FormatMember(*info))
}

func (s *Session) cmdRead(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: read <member>")
		return
	}
	name := args[0]
	if _, ok := s.obj.Kind(name); !ok {
		fmt.Fprintf(s.rl.Stdout(), "Unknown member: %s\n", name)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %s\n", name, s.formatter.FormatValue(s.obj.Snapshot(name)))
}

func (s *Session) cmdWrite(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: write <member> <value>")
		return
	}
	name := args[0]
	value := parseValue(strings.Join(args[1:], " "))

	if err := s.obj.Set(name, value); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %s\n", name, s.formatter.FormatValue(s.obj.Snapshot(name)))
}

func (s *Session) sliceNode(name string) *proxy.Node {
	node, ok := s.obj.Get(name).(*proxy.Node)
	if !ok {
		fmt.Fprintf(s.rl.Stdout(), "%s is not a container member\n", name)
		return nil
	}
	return node
}

func (s *Session) cmdPush(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: push <member> <value>")
		return
	}
	node := s.sliceNode(args[0])
	if node == nil {
		return
	}
	node.Push(parseValue(strings.Join(args[1:], " ")))
	fmt.Fprintf(s.rl.Stdout(), "%s (pending) = %s\n", args[0], s.formatter.FormatValue(s.obj.Snapshot(args[0])))
}

func (s *Session) cmdPop(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: pop <member>")
		return
	}
	node := s.sliceNode(args[0])
	if node == nil {
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "popped %s\n", s.formatter.FormatValue(node.Pop()))
}

func (s *Session) cmdShift(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: shift <member>")
		return
	}
	node := s.sliceNode(args[0])
	if node == nil {
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "shifted %s\n", s.formatter.FormatValue(node.Shift()))
}

func (s *Session) cmdCall(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: call <member> [args...]")
		return
	}
	callArgs := make([]any, 0, len(args)-1)
	for _, a := range args[1:] {
		callArgs = append(callArgs, parseValue(a))
	}

	result, err := s.obj.Call(args[0], callArgs...)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "=> %s\n", s.formatter.FormatValue(result))
}

func (s *Session) cmdWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: watch <member>")
		return
	}
	name := args[0]
	if _, watching := s.watches[name]; watching {
		fmt.Fprintf(s.rl.Stdout(), "already watching %s\n", name)
		return
	}

	_, err := s.obj.Subscribe(name, func(v any) {
		fmt.Fprintf(s.rl.Stdout(), "[watch] %s = %s\n", name, s.formatter.FormatValue(v))
	})
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	s.watches[name] = struct{}{}
	fmt.Fprintf(s.rl.Stdout(), "watching %s\n", name)
}

func (s *Session) cmdDrain() {
	n := s.loop.Len()
	s.loop.Drain()
	fmt.Fprintf(s.rl.Stdout(), "drained %d pending tasks\n", n)
}

// parseValue interprets a command argument as int, float, or bool when
// possible, string otherwise.
func parseValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
