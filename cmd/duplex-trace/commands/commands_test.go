package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/duplex-state/duplex-go/pkg/trace"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func writeTraceFile(t *testing.T, events []trace.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dtrace")
	l, err := trace.NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, ev := range events {
		l.Log(ev)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func sampleEvents() []trace.Event {
	base := time.Date(2026, 8, 30, 10, 15, 32, 123456000, time.UTC)
	return []trace.Event{
		{
			Timestamp: base,
			BridgeID:  "abc12345-6789-0123-4567-890abcdef012",
			Direction: trace.DirToSource,
			Category:  trace.CatSlotWrite,
			Member:    "count",
			Value:     "7",
		},
		{
			Timestamp: base.Add(time.Second),
			BridgeID:  "abc12345-6789-0123-4567-890abcdef012",
			Direction: trace.DirToBridge,
			Category:  trace.CatDerivedUpdate,
			Member:    "doubled",
			Value:     "14",
		},
		{
			Timestamp: base.Add(2 * time.Second),
			BridgeID:  "ffff0000-1111-2222-3333-444455556666",
			Direction: trace.DirNone,
			Category:  trace.CatWarning,
			Member:    "total",
			Detail:    "derived member rejected write",
		},
	}
}

func TestFormatEvent(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[0])
	output := buf.String()

	if !strings.Contains(output, "2026-08-30T10:15:32.123456Z") {
		t.Errorf("expected timestamp, got: %s", output)
	}
	if !strings.Contains(output, "[bridge:abc12345]") {
		t.Errorf("expected shortened bridge ID, got: %s", output)
	}
	if !strings.Contains(output, "TO_SOURCE") {
		t.Errorf("expected direction, got: %s", output)
	}
	if !strings.Contains(output, "SLOT_WRITE") {
		t.Errorf("expected category, got: %s", output)
	}
	if !strings.Contains(output, "Value: 7") {
		t.Errorf("expected value line, got: %s", output)
	}
}

func TestFormatEventDetail(t *testing.T) {
	var buf bytes.Buffer
	formatEvent(&buf, sampleEvents()[2])
	if !strings.Contains(buf.String(), "Detail: derived member rejected write") {
		t.Errorf("expected detail line, got: %s", buf.String())
	}
}

func TestRunView(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{}, &buf); err != nil {
		t.Fatalf("RunView: %v", err)
	}
	for _, want := range []string{"count", "doubled", "total"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunViewFiltered(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())

	dir := trace.DirToBridge
	var buf bytes.Buffer
	if err := RunView(path, ViewFilter{Direction: &dir}, &buf); err != nil {
		t.Fatalf("RunView: %v", err)
	}
	if strings.Contains(buf.String(), "count") {
		t.Errorf("to-source event leaked through filter: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "doubled") {
		t.Errorf("to-bridge event missing: %s", buf.String())
	}
}

func TestRunExportJSONL(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 3 {
		t.Fatalf("exported %d lines, want 3", len(lines))
	}

	var first jsonEvent
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if first.Category != "SLOT_WRITE" || first.Member != "count" {
		t.Errorf("first line = %+v", first)
	}
}

func TestRunExportCSV(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", out); err != nil {
		t.Fatalf("RunExport: %v", err)
	}

	data := readFile(t, out)
	lines := strings.Split(strings.TrimSpace(data), "\n")
	if len(lines) != 4 {
		t.Fatalf("exported %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "timestamp,bridge_id") {
		t.Errorf("bad header: %s", lines[0])
	}
}

func TestRunExportUnknownFormat(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())
	if err := RunExport(path, "xml", ""); err == nil {
		t.Error("RunExport accepted unknown format")
	}
}

func TestRunFilter(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.dtrace")

	err := RunFilter(path, FilterOptions{
		Output:   out,
		BridgeID: "ffff0000-1111-2222-3333-444455556666",
	})
	if err != nil {
		t.Fatalf("RunFilter: %v", err)
	}

	r, err := trace.NewReader(out)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Close()

	ev, err := r.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if ev.Category != trace.CatWarning {
		t.Errorf("filtered event category = %v, want WARNING", ev.Category)
	}
}

func TestRunFilterInvalidTime(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())
	err := RunFilter(path, FilterOptions{Output: "x", TimeStart: "yesterday"})
	if err == nil {
		t.Error("RunFilter accepted invalid time")
	}
}

func TestRunStats(t *testing.T) {
	path := writeTraceFile(t, sampleEvents())

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total events: 3",
		"Bridges:      2",
		"Warnings:     1",
		"SLOT_WRITE",
		"DERIVED_UPDATE",
		"doubled",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("stats output missing %q:\n%s", want, output)
		}
	}
}

func TestParseDirectionFlag(t *testing.T) {
	if d, err := ParseDirectionFlag("to-source"); err != nil || d != trace.DirToSource {
		t.Errorf("ParseDirectionFlag(to-source) = %v, %v", d, err)
	}
	if d, err := ParseDirectionFlag("TO-BRIDGE"); err != nil || d != trace.DirToBridge {
		t.Errorf("ParseDirectionFlag(TO-BRIDGE) = %v, %v", d, err)
	}
	if _, err := ParseDirectionFlag("sideways"); err == nil {
		t.Error("ParseDirectionFlag accepted sideways")
	}
}

func TestParseCategoryFlag(t *testing.T) {
	cases := map[string]trace.Category{
		"slot-write":      trace.CatSlotWrite,
		"derived-update":  trace.CatDerivedUpdate,
		"trigger-fire":    trace.CatTriggerFire,
		"flush":           trace.CatFlush,
		"echo-suppressed": trace.CatEchoSuppressed,
		"resubscribe":     trace.CatResubscribe,
		"warning":         trace.CatWarning,
		"teardown":        trace.CatTeardown,
	}
	for in, want := range cases {
		got, err := ParseCategoryFlag(in)
		if err != nil || got != want {
			t.Errorf("ParseCategoryFlag(%s) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCategoryFlag("mystery"); err == nil {
		t.Error("ParseCategoryFlag accepted mystery")
	}
}
