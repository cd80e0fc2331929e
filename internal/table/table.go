package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Column is a named, ordered sequence of scalar values.
// Values are nil (missing), int64, float64, string, bool or time.Time.
type Column struct {
	Name   string
	Values []any
}

// Kind returns the type of the first non-missing value.
func (c *Column) Kind() Kind {
	for _, v := range c.Values {
		if v != nil {
			return KindOf(v)
		}
	}
	return KindNull
}

// Table is an in-memory columnar record set. Column order is significant.
type Table struct {
	Columns []*Column
}

// New returns an empty table with the given column names.
func New(names ...string) *Table {
	t := &Table{Columns: make([]*Column, 0, len(names))}
	for _, n := range names {
		t.Columns = append(t.Columns, &Column{Name: n})
	}
	return t
}

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// NumRows returns the number of rows (length of the first column).
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column looks up a column by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// ColumnFold looks up a column by case-insensitive name.
func (t *Table) ColumnFold(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// HasColumns reports whether every name is present (case-sensitive).
func (t *Table) HasColumns(names ...string) bool {
	for _, n := range names {
		if _, ok := t.Column(n); !ok {
			return false
		}
	}
	return true
}

// AddColumn appends a column. The values slice must match NumRows unless the table is empty.
func (t *Table) AddColumn(name string, values []any) error {
	if len(t.Columns) > 0 && len(values) != t.NumRows() {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.NumRows())
	}
	t.Columns = append(t.Columns, &Column{Name: name, Values: values})
	return nil
}

// AppendRow appends one value per column.
func (t *Table) AppendRow(vals ...any) error {
	if len(vals) != len(t.Columns) {
		return fmt.Errorf("row has %d values, table has %d columns", len(vals), len(t.Columns))
	}
	for i, c := range t.Columns {
		c.Values = append(c.Values, vals[i])
	}
	return nil
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []any {
	out := make([]any, len(t.Columns))
	for j, c := range t.Columns {
		if i < len(c.Values) {
			out[j] = c.Values[i]
		}
	}
	return out
}

// Head returns a copy holding at most the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		m := n
		if m > len(c.Values) {
			m = len(c.Values)
		}
		vals := make([]any, m)
		copy(vals, c.Values[:m])
		out.Columns[i] = &Column{Name: c.Name, Values: vals}
	}
	return out
}

// Clone returns a deep copy of the column structure. Scalars are immutable so
// they are shared.
func (t *Table) Clone() *Table {
	return t.Head(t.NumRows())
}

// WriteCSV serializes the table with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Names()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(t.Columns))
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.Columns {
			rec[j] = FormatValue(c.Values[i])
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV returns the comma-separated serialization of the table.
func (t *Table) CSV() string {
	var b strings.Builder
	_ = t.WriteCSV(&b)
	return b.String()
}

// Markdown renders a pipe table for console previews.
func (t *Table) Markdown() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("shape: (%d, %d)\n", t.NumRows(), t.NumCols()))
	if len(t.Columns) == 0 {
		return b.String()
	}
	b.WriteString("| ")
	b.WriteString(strings.Join(mapStrings(t.Names(), safeVal), " | "))
	b.WriteString(" |\n|")
	for range t.Columns {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for i := 0; i < t.NumRows(); i++ {
		b.WriteString("| ")
		for j, c := range t.Columns {
			if j > 0 {
				b.WriteString(" | ")
			}
			val := FormatCell(c.Values[i])
			if len(val) > 80 {
				val = val[:77] + "..."
			}
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
	return b.String()
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func mapStrings(in []string, f func(string) string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = f(s)
	}
	return out
}
