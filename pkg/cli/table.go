package cli

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

const columnGap = 2

// Table buffers rows and prints them column-aligned on Flush. Columns are
// narrowed to fit the terminal and long cells wrap onto continuation lines.
// An empty table prints nothing.
type Table struct {
	out      io.Writer
	headers  []string
	rows     [][]string
	prefix   string
	maxWidth int
}

// NewTable creates a table with the given column headers writing to stdout.
func NewTable(headers ...string) *Table {
	return &Table{out: os.Stdout, headers: headers}
}

// WithWriter redirects output.
func (t *Table) WithWriter(w io.Writer) *Table {
	t.out = w
	return t
}

// WithPrefix sets a string prepended to each line (headers, divider, rows).
func (t *Table) WithPrefix(prefix string) *Table {
	t.prefix = prefix
	return t
}

// WithMaxWidth caps the line width. Zero uses the terminal width when stdout
// is a terminal and leaves lines uncapped otherwise.
func (t *Table) WithMaxWidth(n int) *Table {
	t.maxWidth = n
	return t
}

// Row adds a row. Missing trailing cells print empty.
func (t *Table) Row(values ...string) {
	t.rows = append(t.rows, values)
}

// Flush prints the headers, a dash divider and every buffered row.
func (t *Table) Flush() {
	if len(t.rows) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visualLen(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if n := visualLen(row[i]); n > widths[i] {
				widths[i] = n
			}
		}
	}
	if limit := t.lineLimit(); limit > 0 {
		widths = capWidths(widths, t.headers, limit, len(t.prefix))
	}

	dividers := make([]string, len(t.headers))
	for i, h := range t.headers {
		dividers[i] = strings.Repeat("-", visualLen(h))
	}
	t.printRow(t.headers, widths)
	t.printRow(dividers, widths)
	for _, row := range t.rows {
		t.printRow(row, widths)
	}
	t.rows = nil
}

func (t *Table) lineLimit() int {
	if t.maxWidth > 0 {
		return t.maxWidth
	}
	fd := int(os.Stdout.Fd())
	if t.out != os.Stdout || !term.IsTerminal(fd) {
		return 0
	}
	if w, _, err := term.GetSize(fd); err == nil {
		return w
	}
	return 0
}

func (t *Table) printRow(cells []string, widths []int) {
	wrapped := make([][]string, len(widths))
	height := 1
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		wrapped[i] = wrapCell(cell, widths[i])
		if len(wrapped[i]) > height {
			height = len(wrapped[i])
		}
	}

	for line := 0; line < height; line++ {
		var b strings.Builder
		b.WriteString(t.prefix)
		for i, w := range widths {
			part := ""
			if line < len(wrapped[i]) {
				part = wrapped[i][line]
			}
			b.WriteString(part)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", w-visualLen(part)+columnGap))
			}
		}
		fmt.Fprintln(t.out, strings.TrimRight(b.String(), " "))
	}
}

// capWidths narrows the widest columns until the line fits termWidth. No
// column goes below its header width, so the result may still overflow.
func capWidths(widths []int, headers []string, termWidth, prefix int) []int {
	out := make([]int, len(widths))
	copy(out, widths)

	total := prefix + columnGap*(len(out)-1)
	for _, w := range out {
		total += w
	}

	for total > termWidth {
		widest := -1
		for i, w := range out {
			if w <= visualLen(headers[i]) {
				continue
			}
			if widest < 0 || w > out[widest] {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		out[widest]--
		total--
	}
	return out
}

// wrapCell splits s into lines of at most width visible characters, breaking
// at spaces and hard-breaking words longer than width. A cell that fits is
// returned unchanged, escape codes included.
func wrapCell(s string, width int) []string {
	if width <= 0 || visualLen(s) <= width {
		return []string{s}
	}

	var lines []string
	var cur string
	for _, word := range strings.Fields(stripANSI(s)) {
		for utf8.RuneCountInString(word) > width {
			if cur != "" {
				lines = append(lines, cur)
				cur = ""
			}
			r := []rune(word)
			lines = append(lines, string(r[:width]))
			word = string(r[width:])
		}
		switch {
		case cur == "":
			cur = word
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= width:
			cur += " " + word
		default:
			lines = append(lines, cur)
			cur = word
		}
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiPattern.ReplaceAllString(s, "") }

// visualLen is the number of characters s occupies on screen.
func visualLen(s string) int { return utf8.RuneCountInString(stripANSI(s)) }
