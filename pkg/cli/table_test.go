package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestCapWidths_NoConstraint(t *testing.T) {
	widths := []int{5, 20, 10}
	headers := []string{"ROLE", "IDENTITY", "CHANNEL"}
	// 5+20+10 + 2*2 = 39 fits in 80 columns
	got := capWidths(widths, headers, 80, 0)
	if !reflect.DeepEqual(got, widths) {
		t.Errorf("expected no change: got %v, want %v", got, widths)
	}
}

func TestCapWidths_ReducesWidest(t *testing.T) {
	// 5 + 60 + 10 + 2*2 = 79, one over 78
	widths := []int{5, 60, 10}
	headers := []string{"KEY", "MESSAGE", "STATUS"}
	got := capWidths(widths, headers, 78, 0)

	total := 2 * (len(got) - 1)
	for _, w := range got {
		total += w
	}
	if total > 78 {
		t.Errorf("total %d still exceeds 78; widths=%v", total, got)
	}
	if got[0] != widths[0] || got[2] != widths[2] {
		t.Errorf("only the widest column should shrink: %v", got)
	}
	if widths[1] != 60 {
		t.Error("capWidths modified its input")
	}
}

func TestCapWidths_RespectsHeaderMinimum(t *testing.T) {
	widths := []int{4, 60}
	headers := []string{"KEY", "A-VERY-LONG-HEADER-NAME"}
	got := capWidths(widths, headers, 30, 2)
	if got[1] < visualLen("A-VERY-LONG-HEADER-NAME") {
		t.Errorf("column 1 reduced below header minimum: got %d", got[1])
	}
}

func TestCapWidths_CannotReduceFurther(t *testing.T) {
	widths := []int{3, 8}
	headers := []string{"KEY", "IDENTITY"}
	got := capWidths(widths, headers, 5, 0)
	if !reflect.DeepEqual(got, widths) {
		t.Errorf("columns at header width should not shrink: got %v", got)
	}
}

func TestWrapCell(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  []string
	}{
		{"fits", "hello", 10, []string{"hello"}},
		{"exact fit", "hello", 5, []string{"hello"}},
		{"word wrap", "hello world foo", 11, []string{"hello world", "foo"}},
		{"hard break", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"exact boundary", "aa bb cc", 5, []string{"aa bb", "cc"}},
		{"empty", "", 10, []string{""}},
		{"zero width", "hello", 0, []string{"hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wrapCell(tt.in, tt.width); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("wrapCell(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapCell_LongMessage(t *testing.T) {
	got := wrapCell("VC01: NAC mismatch (expected 659)", 20)
	if len(got) < 2 {
		t.Fatalf("expected wrapping: got %v", got)
	}
	for _, line := range got {
		if visualLen(line) > 20 {
			t.Errorf("line %q exceeds width 20", line)
		}
	}
}

func TestWrapCell_ANSIPreservedWhenFits(t *testing.T) {
	colored := "\x1b[32mOK\x1b[0m"
	if got := wrapCell(colored, 10); !reflect.DeepEqual(got, []string{colored}) {
		t.Errorf("colored cell should be unchanged when it fits: got %q", got)
	}
}

func TestVisualLen(t *testing.T) {
	if n := visualLen("\x1b[31m✗\x1b[0m"); n != 1 {
		t.Errorf("visualLen of colored mark = %d, want 1", n)
	}
	if n := visualLen("851.0125"); n != 8 {
		t.Errorf("visualLen = %d, want 8", n)
	}
}

func TestTable_Flush(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("ROLE", "PEER", "CHANNEL").WithWriter(&buf)
	tbl.Row("Control Channel", "100000", "0-1")
	tbl.Row("Voice Channel 1", "100001", "0-2")
	tbl.Flush()

	want := strings.Join([]string{
		"ROLE             PEER    CHANNEL",
		"----             ----    -------",
		"Control Channel  100000  0-1",
		"Voice Channel 1  100001  0-2",
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestTable_EmptyPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	NewTable("A", "B").WithWriter(&buf).Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table printed %q", buf.String())
	}
}

func TestTable_PrefixAndWrap(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable("KEY", "MESSAGE").WithWriter(&buf).WithPrefix("  ").WithMaxWidth(20)
	tbl.Row("nac", "must be between 0 and 3967")
	tbl.Flush()

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected the message to wrap, got:\n%s", buf.String())
	}
	for _, line := range lines {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line %q missing prefix", line)
		}
		if visualLen(line) > 20 {
			t.Errorf("line %q exceeds 20 columns", line)
		}
	}
}
