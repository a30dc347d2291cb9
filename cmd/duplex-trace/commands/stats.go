package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/duplex-state/duplex-go/pkg/trace"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[trace.Category]int
	EventsByDirection map[trace.Direction]int
	EventsByMember    map[string]int
	Bridges           map[string]int
	Warnings          int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := trace.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[trace.Category]int),
		EventsByDirection: make(map[trace.Direction]int),
		EventsByMember:    make(map[string]int),
		Bridges:           make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++
		if event.Member != "" {
			stats.EventsByMember[event.Member]++
		}
		stats.Bridges[event.BridgeID]++
		if event.Category == trace.CatWarning {
			stats.Warnings++
		}

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintf(w, "Total events: %d\n", stats.TotalEvents)
	if stats.TotalEvents == 0 {
		return
	}

	fmt.Fprintf(w, "Time range:   %s to %s (%s)\n",
		stats.TimeRange.Start.UTC().Format(time.RFC3339),
		stats.TimeRange.End.UTC().Format(time.RFC3339),
		stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
	fmt.Fprintf(w, "Bridges:      %d\n", len(stats.Bridges))
	fmt.Fprintf(w, "Warnings:     %d\n", stats.Warnings)

	fmt.Fprintln(w, "\nBy category:")
	for cat := trace.CatSlotWrite; cat <= trace.CatTeardown; cat++ {
		if n := stats.EventsByCategory[cat]; n > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", cat, n)
		}
	}

	fmt.Fprintln(w, "\nBy direction:")
	for _, dir := range []trace.Direction{trace.DirToSource, trace.DirToBridge, trace.DirNone} {
		if n := stats.EventsByDirection[dir]; n > 0 {
			fmt.Fprintf(w, "  %-16s %d\n", dir, n)
		}
	}

	if len(stats.EventsByMember) > 0 {
		members := make([]string, 0, len(stats.EventsByMember))
		for m := range stats.EventsByMember {
			members = append(members, m)
		}
		sort.Strings(members)

		fmt.Fprintln(w, "\nBy member:")
		for _, m := range members {
			fmt.Fprintf(w, "  %-16s %d\n", m, stats.EventsByMember[m])
		}
	}
}
