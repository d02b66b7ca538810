package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestNoOpCollector(t *testing.T) {
	// NoOp collector should do nothing and have zero overhead
	collector := noOpCollector{}

	timer := collector.Start("Parse")
	timer.End()

	child := timer.Child("Lex")
	child.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	// Should produce no output
	if buf.Len() != 0 {
		t.Errorf("NoOp collector should produce no output, got: %s", buf.String())
	}
}

func TestFromContextReturnsNoOpWhenMissing(t *testing.T) {
	ctx := context.Background()
	collector := FromContext(ctx)

	// Should return NoOp collector, not nil
	if collector == nil {
		t.Fatal("FromContext should never return nil")
	}

	// Should be a NoOp collector
	if _, ok := collector.(noOpCollector); !ok {
		t.Errorf("FromContext should return noOpCollector when none present, got: %T", collector)
	}
}

func TestWithCollector(t *testing.T) {
	ctx := context.Background()
	collector := NewTimingCollector()

	ctx = WithCollector(ctx, collector)

	retrieved := FromContext(ctx)
	// Compare as Collector interface
	retrievedTiming, ok := retrieved.(*TimingCollector)
	if !ok || retrievedTiming != collector {
		t.Error("FromContext should return the same collector that was added")
	}
}

func TestTimingCollectorBasic(t *testing.T) {
	collector := NewTimingCollector()

	timer := collector.Start("Parse")
	time.Sleep(10 * time.Millisecond)
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	output := buf.String()

	// Should contain the phase name
	if !strings.Contains(output, "Parse") {
		t.Errorf("Output should contain phase name, got: %s", output)
	}

	// Should contain duration
	if !strings.Contains(output, "ms") {
		t.Errorf("Output should contain duration, got: %s", output)
	}
}

func TestTimingCollectorHierarchical(t *testing.T) {
	collector := NewTimingCollector()

	// Root span for the whole parse
	root := collector.Start("Parse")
	time.Sleep(5 * time.Millisecond)

	// Lexing sub-span
	lex := root.Child("Lex")
	time.Sleep(5 * time.Millisecond)
	lex.End()

	// Decoding sub-span
	decode := root.Child("Decode")
	time.Sleep(5 * time.Millisecond)
	decode.End()

	root.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	output := buf.String()

	// Should contain all span names
	if !strings.Contains(output, "Parse") {
		t.Errorf("Output should contain 'Parse', got: %s", output)
	}
	if !strings.Contains(output, "Lex") {
		t.Errorf("Output should contain 'Lex', got: %s", output)
	}
	if !strings.Contains(output, "Decode") {
		t.Errorf("Output should contain 'Decode', got: %s", output)
	}

	// Should have tree structure (contains tree characters)
	if !strings.Contains(output, "├─") && !strings.Contains(output, "└─") {
		t.Errorf("Output should contain tree structure, got: %s", output)
	}
}

func TestTimingCollectorDeepNesting(t *testing.T) {
	collector := NewTimingCollector()

	// Parse -> Decode -> DateTime: three levels of nesting. Parse and
	// Decode are spans the parser opens; DateTime is a test-only leaf.
	parse := collector.Start("Parse")
	decode := parse.Child("Decode")
	datetime := decode.Child("DateTime")
	time.Sleep(5 * time.Millisecond)
	datetime.End()
	decode.End()
	parse.End()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	output := buf.String()

	if !strings.Contains(output, "Parse") || !strings.Contains(output, "Decode") || !strings.Contains(output, "DateTime") {
		t.Errorf("Output should contain all spans, got: %s", output)
	}

	// Count indentation levels (each level adds 3 chars: "│  " or "   ")
	lines := strings.Split(output, "\n")
	foundLeaf := false
	for _, line := range lines {
		if strings.Contains(line, "DateTime") {
			foundLeaf = true
			// The leaf span should be indented (has prefix before "└─" or "├─")
			if !strings.Contains(line, "   ") && !strings.Contains(line, "│  ") {
				t.Errorf("DateTime span should be indented, got: %s", line)
			}
		}
	}
	if !foundLeaf {
		t.Error("Should find DateTime span in output")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{1 * time.Millisecond, "1ms"},
		{10 * time.Millisecond, "10ms"},
		{100 * time.Millisecond, "100ms"},
		{999 * time.Millisecond, "999ms"},
		{1 * time.Second, "1.00s"},
		{1500 * time.Millisecond, "1.50s"},
		{2 * time.Second, "2.00s"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.duration, false)
		if got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.duration, got, tt.want)
		}
	}
}

func TestTimingCollectorEmptyReport(t *testing.T) {
	collector := NewTimingCollector()

	var buf bytes.Buffer
	collector.Report(&buf, nil)

	// Should produce no output when no timers have been started
	if buf.Len() != 0 {
		t.Errorf("Empty collector should produce no output, got: %s", buf.String())
	}
}
