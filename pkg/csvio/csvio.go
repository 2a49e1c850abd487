// Package csvio reads and writes the pipeline's CSV files in a
// pandas-compatible dialect: comma-delimited UTF-8 with a header row,
// "\n" record terminators, no BOM, booleans spelled True/False and
// integral floats keeping a trailing ".0".
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Table is a CSV file loaded into memory with a header index.
type Table struct {
	Path    string
	Headers []string
	Rows    [][]string

	index map[string]int
}

// Load reads an entire CSV file. The first record is the header.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	t := &Table{Path: path, Headers: records[0], Rows: records[1:]}
	t.index = make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		t.index[h] = i
	}
	return t, nil
}

// Require fails when any of the named columns is absent, listing all of the
// missing ones at once.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if _, ok := t.index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing required columns: %s", t.Path, strings.Join(missing, ", "))
	}
	return nil
}

func (t *Table) Len() int { return len(t.Rows) }

// Value returns the raw cell at row i, column col. Unknown columns and short
// rows read as empty.
func (t *Table) Value(i int, col string) string {
	j, ok := t.index[col]
	if !ok || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

func (t *Table) Float(i int, col string) (float64, error) {
	s := t.Value(i, col)
	if s == "" {
		return 0, fmt.Errorf("%s row %d: %s is empty", t.Path, i+2, col)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s row %d: %s: %w", t.Path, i+2, col, err)
	}
	return f, nil
}

func (t *Table) Int(i int, col string) (int, error) {
	s := t.Value(i, col)
	if s == "" {
		return 0, fmt.Errorf("%s row %d: %s is empty", t.Path, i+2, col)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		// Integer columns round-trip through pandas as floats (e.g. "3.0").
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("%s row %d: %s: %w", t.Path, i+2, col, err)
		}
		return int(f), nil
	}
	return n, nil
}

func (t *Table) Bool(i int, col string) (bool, error) {
	switch t.Value(i, col) {
	case "True", "true":
		return true, nil
	case "False", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%s row %d: %s: not a boolean: %q", t.Path, i+2, col, t.Value(i, col))
	}
}

// Writer emits records with "\n" terminators and minimal quoting.
type Writer struct {
	f    *os.File
	path string
}

// Create opens path for writing, creating parent directories, and writes the
// header record.
func Create(path string, headers []string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &Writer{f: f, path: path}
	if err := w.Write(headers); err != nil {
		f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) Write(record []string) error {
	return writeRecord(w.f, record)
}

func (w *Writer) Close() error {
	return w.f.Close()
}

// WriteFile writes a complete CSV file in one call.
func WriteFile(path string, headers []string, rows [][]string) error {
	w, err := Create(path, headers)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func writeRecord(w io.Writer, rec []string) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		if strings.ContainsAny(field, ",\"\n\r") {
			if _, err := io.WriteString(w, `"`+strings.ReplaceAll(field, `"`, `""`)+`"`); err != nil {
				return err
			}
		} else {
			if _, err := io.WriteString(w, field); err != nil {
				return err
			}
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Bool formats a boolean the way pandas prints it.
func Bool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// Money formats a monetary amount with two fixed decimals.
func Money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Fixed formats v with n fixed decimals.
func Fixed(v float64, n int) string {
	return strconv.FormatFloat(v, 'f', n, 64)
}

// Float formats a float the way str(float) does in Python, keeping the
// trailing ".0" on integral values.
func Float(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		return s + ".0"
	}
	return s
}

// Int formats an integer.
func Int(n int) string {
	return strconv.Itoa(n)
}

// Round2 rounds to two decimals, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round rounds to n decimals.
func Round(v float64, n int) float64 {
	p := math.Pow(10, float64(n))
	return math.Round(v*p) / p
}
