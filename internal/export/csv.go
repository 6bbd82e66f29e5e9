// Package export writes lead snapshots as CSV using configurable column sets.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"lead-insights/internal/leads"
)

// Column is one exported field and the header it is written under.
type Column struct {
	Key    leads.ColumnKey `yaml:"key" json:"key"`
	Header string          `yaml:"header,omitempty" json:"header,omitempty"`
}

// Columns is an ordered column set.
type Columns []Column

type columnFile struct {
	Columns Columns `yaml:"columns"`
}

// DefaultColumns returns every lead attribute in canonical order.
func DefaultColumns() Columns {
	all := leads.Columns()
	out := make(Columns, len(all))
	for i, c := range all {
		out[i] = Column{Key: c.Key, Header: c.Header}
	}
	return out
}

// ParseYAML reads a column set of the form `columns: [{key, header}]`.
// Keys are validated; missing headers fall back to the default header.
func ParseYAML(data []byte) (Columns, error) {
	var f columnFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse column config: %w", err)
	}
	if len(f.Columns) == 0 {
		return nil, fmt.Errorf("column config defines no columns")
	}
	return f.Columns.normalize()
}

// LoadFile reads a YAML column set from disk.
func LoadFile(path string) (Columns, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read column config: %w", err)
	}
	return ParseYAML(data)
}

// ParseList builds a column set from a comma separated key list such as "name,city".
// An empty list yields the default columns.
func ParseList(s string) (Columns, error) {
	var cols Columns
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		cols = append(cols, Column{Key: leads.ColumnKey(part)})
	}
	if len(cols) == 0 {
		return DefaultColumns(), nil
	}
	return cols.normalize()
}

func (cs Columns) normalize() (Columns, error) {
	out := make(Columns, len(cs))
	for i, c := range cs {
		key, err := leads.ParseColumnKey(string(c.Key))
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+1, err)
		}
		def, _ := leads.Lookup(key)
		header := strings.TrimSpace(c.Header)
		if header == "" {
			header = def.Header
		}
		out[i] = Column{Key: key, Header: header}
	}
	return out, nil
}

// Keys returns the column keys in order.
func (cs Columns) Keys() []leads.ColumnKey {
	out := make([]leads.ColumnKey, len(cs))
	for i, c := range cs {
		out[i] = c.Key
	}
	return out
}

// Move returns a copy with the column at index from moved to index to,
// shifting the columns in between.
func (cs Columns) Move(from, to int) (Columns, error) {
	if from < 0 || from >= len(cs) || to < 0 || to >= len(cs) {
		return nil, fmt.Errorf("move %d -> %d out of range for %d columns", from, to, len(cs))
	}
	out := make(Columns, 0, len(cs))
	moved := cs[from]
	for i, c := range cs {
		if i != from {
			out = append(out, c)
		}
	}
	out = append(out[:to], append(Columns{moved}, out[to:]...)...)
	return out, nil
}

// ApplyMoves applies "from:to" reorderings in order. from is a zero-based index or a
// column key present in the set, to is the zero-based target index.
func (cs Columns) ApplyMoves(specs ...string) (Columns, error) {
	out := cs
	for _, spec := range specs {
		from, to, ok := strings.Cut(strings.TrimSpace(spec), ":")
		if !ok {
			return nil, fmt.Errorf("invalid move %q (want from:to)", spec)
		}
		i, err := out.position(from)
		if err != nil {
			return nil, fmt.Errorf("invalid move %q: %w", spec, err)
		}
		j, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("invalid move %q: target must be an index", spec)
		}
		if out, err = out.Move(i, j); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// position resolves an index or a column key to its index in cs.
func (cs Columns) position(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if i, err := strconv.Atoi(ref); err == nil {
		return i, nil
	}
	key, err := leads.ParseColumnKey(ref)
	if err != nil {
		return 0, err
	}
	for i, c := range cs {
		if c.Key == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("column %q is not in the export set", key)
}

// WriteCSV writes a header row followed by one row per lead.
func WriteCSV(w io.Writer, ls []leads.Lead, cols Columns) error {
	if len(cols) == 0 {
		cols = DefaultColumns()
	}

	getters := make([]func(leads.Lead) string, len(cols))
	header := make([]string, len(cols))
	for i, c := range cols {
		get, err := leads.Accessor(c.Key)
		if err != nil {
			return err
		}
		getters[i] = get
		header[i] = c.Header
		if header[i] == "" {
			header[i] = string(c.Key)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	row := make([]string, len(cols))
	for _, l := range ls {
		for i, get := range getters {
			row[i] = get(l)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", l.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
