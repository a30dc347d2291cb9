// Package commands implements the duplex-trace CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/duplex-state/duplex-go/pkg/trace"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Direction *trace.Direction
	Category  *trace.Category
	Member    string
}

// RunView reads the trace file and writes matching events to w in a
// human-readable format.
func RunView(path string, filter ViewFilter, w io.Writer) error {
	reader, err := trace.NewFilteredReader(path, trace.Filter{
		Direction: filter.Direction,
		Category:  filter.Category,
		Member:    filter.Member,
	})
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
	return nil
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event trace.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [bridge:%s] %-9s %s", ts, shortenBridgeID(event.BridgeID),
		event.Direction, event.Category)
	if event.Member != "" {
		fmt.Fprintf(w, " %s", event.Member)
	}
	fmt.Fprintln(w)

	if event.Value != nil {
		fmt.Fprintf(w, "  Value: %v\n", event.Value)
	}
	if event.Detail != "" {
		fmt.Fprintf(w, "  Detail: %s\n", event.Detail)
	}
	fmt.Fprintln(w)
}

// shortenBridgeID returns the first 8 characters of the bridge ID.
func shortenBridgeID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseDirectionFlag parses a direction flag value.
func ParseDirectionFlag(s string) (trace.Direction, error) {
	switch strings.ToLower(s) {
	case "to-source":
		return trace.DirToSource, nil
	case "to-bridge":
		return trace.DirToBridge, nil
	case "none":
		return trace.DirNone, nil
	default:
		return 0, fmt.Errorf("unknown direction: %s (supported: to-source, to-bridge, none)", s)
	}
}

// ParseCategoryFlag parses a category flag value.
func ParseCategoryFlag(s string) (trace.Category, error) {
	switch strings.ToLower(s) {
	case "slot-write":
		return trace.CatSlotWrite, nil
	case "derived-update":
		return trace.CatDerivedUpdate, nil
	case "trigger-fire":
		return trace.CatTriggerFire, nil
	case "flush":
		return trace.CatFlush, nil
	case "echo-suppressed":
		return trace.CatEchoSuppressed, nil
	case "resubscribe":
		return trace.CatResubscribe, nil
	case "warning":
		return trace.CatWarning, nil
	case "teardown":
		return trace.CatTeardown, nil
	default:
		return 0, fmt.Errorf("unknown category: %s", s)
	}
}
