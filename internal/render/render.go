// Package render formats records for the terminal: aligned tables for
// people, indented JSON for scripts, and the mood calendar grid.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	xansi "github.com/charmbracelet/x/ansi"

	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// maxCellWidth bounds table cells; longer values are cut with an ellipsis.
const maxCellWidth = 32

// shortIDLen is how much of an ID the tables show.
const shortIDLen = 8

// Printer writes command output either as text or as JSON.
type Printer struct {
	w        io.Writer
	jsonMode bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, jsonMode bool) *Printer {
	return &Printer{w: w, jsonMode: jsonMode}
}

// JSONMode reports whether output is JSON.
func (p *Printer) JSONMode() bool {
	return p.jsonMode
}

// JSON writes v as indented JSON.
func (p *Printer) JSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(out))
	return err
}

// Messagef writes a line in text mode. In JSON mode it writes nothing.
func (p *Printer) Messagef(format string, args ...any) {
	if p.jsonMode {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Records writes a list of records of one collection.
func (p *Printer) Records(schema types.Schema, recs []types.Record) error {
	if p.jsonMode {
		if recs == nil {
			recs = []types.Record{}
		}
		return p.JSON(recs)
	}
	if len(recs) == 0 {
		fmt.Fprintf(p.w, "No %s found.\n", schema.Name)
		return nil
	}

	cols := columns(schema, "")
	tw := newTable(p.w)
	tw.header(cols)
	for _, r := range recs {
		tw.row(r, cols)
	}
	if err := tw.flush(); err != nil {
		return err
	}
	fmt.Fprintf(p.w, "Total: %d %s\n", len(recs), plural(schema, len(recs)))
	return nil
}

// starred records show their rating as stars in the detail view.
type starred interface {
	Stars() string
}

// Record writes one record, one field per line.
func (p *Printer) Record(schema types.Schema, rec types.Record) error {
	if p.jsonMode {
		return p.JSON(rec)
	}
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	for _, f := range schema.Fields {
		v, _ := rec.Field(f.Name)
		val := formatFull(v)
		if s, ok := rec.(starred); ok && f.Name == "rating" {
			val = s.Stars()
		}
		fmt.Fprintf(tw, "%s:\t%s\n", f.Name, val)
	}
	return tw.Flush()
}

type dayJSON struct {
	Day     types.Day      `json:"day"`
	Records []types.Record `json:"records"`
}

// Days writes records grouped by calendar day.
func (p *Printer) Days(schema types.Schema, groups []store.DayGroup[types.Record]) error {
	if p.jsonMode {
		out := make([]dayJSON, len(groups))
		for i, g := range groups {
			out[i] = dayJSON{Day: g.Day, Records: g.Records}
		}
		return p.JSON(out)
	}
	if len(groups) == 0 {
		fmt.Fprintf(p.w, "No %s found.\n", schema.Name)
		return nil
	}

	cols := columns(schema, schema.DayField)
	tw := newTable(p.w)
	for i, g := range groups {
		if i > 0 {
			tw.blank()
		}
		tw.line(fmt.Sprintf("%s (%d)", g.Day, len(g.Records)))
		for _, r := range g.Records {
			tw.row(r, cols)
		}
	}
	return tw.flush()
}

// Schemas writes the collection catalogue.
func (p *Printer) Schemas(schemas []types.Schema) error {
	if p.jsonMode {
		type fieldJSON struct {
			Name     string   `json:"name"`
			Kind     string   `json:"kind"`
			Required bool     `json:"required,omitempty"`
			Choices  []string `json:"choices,omitempty"`
		}
		type schemaJSON struct {
			Name     string      `json:"name"`
			Fields   []fieldJSON `json:"fields"`
			Toggles  []string    `json:"toggles"`
			SortKey  string      `json:"sort_key"`
			DayField string      `json:"day_field,omitempty"`
		}
		out := make([]schemaJSON, len(schemas))
		for i, s := range schemas {
			fields := make([]fieldJSON, len(s.Fields))
			for j, f := range s.Fields {
				fields[j] = fieldJSON{Name: f.Name, Kind: f.Kind.String(), Required: f.Required, Choices: f.Choices}
			}
			out[i] = schemaJSON{Name: s.Name, Fields: fields, Toggles: s.Toggles, SortKey: s.SortKey, DayField: s.DayField}
		}
		return p.JSON(out)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tFIELDS\tTOGGLES")
	for _, s := range schemas {
		names := make([]string, 0, len(s.Fields))
		for _, f := range s.Editable() {
			name := f.Name
			if f.Required {
				name += "*"
			}
			names = append(names, name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, strings.Join(names, ","), strings.Join(s.Toggles, ","))
	}
	return tw.Flush()
}

func plural(schema types.Schema, n int) string {
	if n == 1 {
		return schema.Singular
	}
	return schema.Name
}

// columns returns the fields a table shows: the editable ones minus skip.
func columns(schema types.Schema, skip string) []types.Field {
	var out []types.Field
	for _, f := range schema.Editable() {
		if f.Name != skip {
			out = append(out, f)
		}
	}
	return out
}

// table wraps a tabwriter and trims the padding it leaves at line ends.
type table struct {
	out io.Writer
	sb  strings.Builder
	tw  *tabwriter.Writer
}

func newTable(w io.Writer) *table {
	t := &table{out: w}
	t.tw = tabwriter.NewWriter(&t.sb, 0, 0, 2, ' ', 0)
	return t
}

func (t *table) header(cols []types.Field) {
	names := []string{"ID"}
	for _, c := range cols {
		names = append(names, strings.ToUpper(c.Name))
	}
	fmt.Fprintln(t.tw, strings.Join(names, "\t"))
}

func (t *table) row(r types.Record, cols []types.Field) {
	cells := []string{shortID(r.RecordID())}
	for _, c := range cols {
		v, _ := r.Field(c.Name)
		cells = append(cells, xansi.Truncate(formatCell(v), maxCellWidth, "…"))
	}
	fmt.Fprintln(t.tw, strings.Join(cells, "\t"))
}

// line writes a heading. It ends the current column block.
func (t *table) line(s string) {
	fmt.Fprintln(t.tw, s)
}

func (t *table) blank() {
	fmt.Fprintln(t.tw)
}

func (t *table) flush() error {
	if err := t.tw.Flush(); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(t.sb.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(t.out, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// formatCell renders a field value for a table cell. Line breaks collapse to
// spaces.
func formatCell(v any) string {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Local().Format(types.DayLayout)
	case string:
		return strings.Join(strings.Fields(x), " ")
	}
	return format(v)
}

// formatFull renders a field value without shortening it.
func formatFull(v any) string {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format(time.RFC3339)
	}
	return format(v)
}

func format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "yes"
		}
		return "no"
	case float64:
		return fmt.Sprintf("%.2f", x)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}
