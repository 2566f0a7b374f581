package iden

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/trunkgen/trunkgen/pkg/util"
)

// FileName is the conventional identity-plan file name inside a system directory.
const FileName = "iden_table.dat"

// minLineFields is the number of comma-separated values a data line must carry.
const minLineFields = 5

// maxLineLength bounds a data line; longer lines are skipped with a warning.
const maxLineLength = 4096

var fileHeader = []string{
	"#",
	"# Identity Table - Frequency Bandplan",
	"# Generated by DVMCfg",
	"#",
	"# ChId,Base Freq (Hz),Spacing (kHz),Input Offset (MHz),Bandwidth (kHz),",
	"#",
}

// Table is a channel-id keyed identity table (at most 16 entries).
type Table struct {
	entries map[int]Entry
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{entries: make(map[int]Entry)}
}

// Add inserts or replaces the entry at e.ChannelID.
func (t *Table) Add(e Entry) error {
	if err := ValidateChannelID(e.ChannelID); err != nil {
		return err
	}
	t.entries[e.ChannelID] = e
	return nil
}

// Get returns the entry at id.
func (t *Table) Get(id int) (Entry, bool) {
	e, ok := t.entries[id]
	return e, ok
}

// Has reports whether id is populated.
func (t *Table) Has(id int) bool {
	_, ok := t.entries[id]
	return ok
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// IDs returns the populated channel ids in ascending order.
func (t *Table) IDs() []int {
	ids := make([]int, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Entries returns the entries in ascending channel-id order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, id := range t.IDs() {
		out = append(out, t.entries[id])
	}
	return out
}

// FindForFrequency returns the first entry, in ascending channel-id order, that
// can address txHz.
func (t *Table) FindForFrequency(txHz int64) (Entry, bool) {
	for _, e := range t.Entries() {
		if _, err := e.ChannelNumber(txHz); err == nil {
			return e, true
		}
	}
	return Entry{}, false
}

// WriteTo writes the table in iden_table.dat form.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, line := range fileHeader {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	for _, e := range t.Entries() {
		buf.WriteString(e.Line())
		buf.WriteByte('\n')
	}
	return buf.WriteTo(w)
}

// Bytes returns the serialized table.
func (t *Table) Bytes() []byte {
	var buf bytes.Buffer
	t.WriteTo(&buf)
	return buf.Bytes()
}

// Save writes the table to path, renaming any existing file aside first.
func (t *Table) Save(path string) error {
	if err := util.WriteFileWithBackup(path, t.Bytes(), 0644); err != nil {
		return fmt.Errorf("saving identity table: %w", err)
	}
	util.WithField("file", path).Debugf("saved identity table with %d entries", t.Len())
	return nil
}

// LineWarning records a data line that was skipped while loading.
type LineWarning struct {
	Line int
	Text string
	Err  error
}

func (w LineWarning) String() string {
	return fmt.Sprintf("line %d: skipping invalid line %q: %v", w.Line, w.Text, w.Err)
}

// ReadTable parses an identity table. Malformed lines are skipped and reported
// as warnings; only a read failure is returned as an error.
func ReadTable(r io.Reader) (*Table, []LineWarning, error) {
	t := NewTable()
	var warnings []LineWarning

	br := bufio.NewReader(r)
	for lineNum := 1; ; lineNum++ {
		raw, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, warnings, fmt.Errorf("reading identity table: %w", err)
		}
		if tooLong {
			warnings = append(warnings, LineWarning{Line: lineNum, Text: raw + "...",
				Err: fmt.Errorf("%w: more than %d bytes", ErrLineTooLong, maxLineLength)})
			continue
		}

		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		entry, err := parseLine(line)
		if err == nil {
			err = t.Add(entry)
		}
		if err != nil {
			warnings = append(warnings, LineWarning{Line: lineNum, Text: line, Err: err})
		}
	}
	return t, warnings, nil
}

// readLine returns the next line without its terminator. A line longer than
// maxLineLength is consumed whole and reported as too long with a short head.
func readLine(br *bufio.Reader) (string, bool, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", false, err
		}
		if !tooLong {
			buf = append(buf, chunk...)
			if len(buf) > maxLineLength {
				tooLong = true
				buf = buf[:32]
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

// LoadTable reads the identity table at path, logging each skipped line.
func LoadTable(path string) (*Table, []LineWarning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening identity table: %w", err)
	}
	defer f.Close()

	t, warnings, err := ReadTable(f)
	for _, w := range warnings {
		util.WithField("file", path).Warn(w.String())
	}
	return t, warnings, err
}

func parseLine(line string) (Entry, error) {
	var fields []string
	for _, p := range strings.Split(line, ",") {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	if len(fields) < minLineFields {
		return Entry{}, fmt.Errorf("expected at least %d fields, got %d", minLineFields, len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return Entry{}, fmt.Errorf("channel id: %w", err)
	}
	base, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("base frequency: %w", err)
	}
	var floats [3]float64
	for i, name := range []string{"spacing", "input offset", "bandwidth"} {
		if floats[i], err = strconv.ParseFloat(fields[2+i], 64); err != nil {
			return Entry{}, fmt.Errorf("%s: %w", name, err)
		}
	}

	return Entry{
		ChannelID:      id,
		BaseFreqHz:     base,
		SpacingKHz:     floats[0],
		InputOffsetMHz: floats[1],
		BandwidthKHz:   floats[2],
	}, nil
}
