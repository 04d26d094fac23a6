// Package form builds interactive record forms from a collection schema.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Answers holds the values a form edits, keyed by field name. Text answers
// are raw strings until Record parses them.
type Answers struct {
	schema  types.Schema
	initial types.Record
	text    map[string]*string
	flags   map[string]*bool
}

// NewAnswers prepares answers for schema, prefilled from initial when it is
// not nil.
func NewAnswers(schema types.Schema, initial types.Record) *Answers {
	a := &Answers{
		schema:  schema,
		initial: initial,
		text:    make(map[string]*string),
		flags:   make(map[string]*bool),
	}
	for _, f := range schema.Editable() {
		var v any
		if initial != nil {
			v, _ = initial.Field(f.Name)
		}
		if f.Kind == types.KindBool {
			b, _ := v.(bool)
			a.flags[f.Name] = &b
			continue
		}
		s := rawString(v)
		a.text[f.Name] = &s
	}
	return a
}

// values snapshots every answer as text.
func (a *Answers) values() map[string]string {
	out := make(map[string]string, len(a.text)+len(a.flags))
	for name, p := range a.text {
		out[name] = *p
	}
	for name, p := range a.flags {
		out[name] = strconv.FormatBool(*p)
	}
	return out
}

// Set replaces a text answer.
func (a *Answers) Set(name, raw string) {
	if p, ok := a.text[name]; ok {
		*p = raw
	}
}

// SetFlag replaces a boolean answer.
func (a *Answers) SetFlag(name string, v bool) {
	if p, ok := a.flags[name]; ok {
		*p = v
	}
}

// Record parses the answers into a new record. The ID and creation time of
// the initial record are kept. The record is normalized but not validated.
func (a *Answers) Record() (types.Record, error) {
	return a.record("", "")
}

// record builds the record with one text answer overridden, so a field
// validator can check the value being typed before it is stored.
func (a *Answers) record(override, raw string) (types.Record, error) {
	obj := make(map[string]any)
	for _, f := range a.schema.Editable() {
		if p, ok := a.flags[f.Name]; ok {
			obj[f.Name] = *p
			continue
		}
		s := *a.text[f.Name]
		if f.Name == override {
			s = raw
		}
		if strings.TrimSpace(s) == "" {
			continue
		}
		v, err := a.schema.ParseValue(f.Name, s)
		if err != nil {
			return nil, &types.ValidationError{Field: f.Name, Err: fmt.Errorf("not a valid %s", f.Kind)}
		}
		obj[f.Name] = v
	}

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("encode answers: %w", err)
	}
	rec := a.schema.New()
	if err := json.Unmarshal(data, rec); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	if a.initial != nil {
		rec.SetRecordID(a.initial.RecordID())
		rec.SetCreated(a.initial.Created())
	}
	if n, ok := rec.(types.Normalizer); ok {
		n.Normalize()
	}
	return rec, nil
}

// ValidateField checks raw as the value of the named field, in the context
// of the other answers. Only errors about this field are reported, so an
// empty field further down the form does not block the current one.
func (a *Answers) ValidateField(name, raw string) error {
	rec, err := a.record(name, raw)
	var ve *types.ValidationError
	if err != nil {
		if errors.As(err, &ve) && ve.Field == name {
			return ve.Err
		}
		if errors.As(err, &ve) {
			return nil
		}
		return err
	}
	if err := rec.Validate(); errors.As(err, &ve) && ve.Field == name {
		return ve.Err
	}
	return nil
}

// Form builds the huh form over the answers. Each field validates as the
// user leaves it.
func (a *Answers) Form() *huh.Form {
	var fields []huh.Field
	for _, f := range a.schema.Editable() {
		fields = append(fields, a.field(f))
	}
	return huh.NewForm(huh.NewGroup(fields...))
}

func (a *Answers) field(f types.Field) huh.Field {
	title := fieldTitle(f)
	validate := func(s string) error { return a.ValidateField(f.Name, s) }

	switch {
	case f.Kind == types.KindBool:
		return huh.NewConfirm().
			Title(title).
			Value(a.flags[f.Name])
	case len(f.Choices) > 0:
		opts := make([]huh.Option[string], 0, len(f.Choices)+1)
		if !f.Required {
			opts = append(opts, huh.NewOption("(none)", ""))
		}
		for _, c := range f.Choices {
			opts = append(opts, huh.NewOption(c, c))
		}
		return huh.NewSelect[string]().
			Title(title).
			Options(opts...).
			Value(a.text[f.Name]).
			Validate(validate)
	case f.Long:
		return huh.NewText().
			Title(title).
			Value(a.text[f.Name]).
			Validate(validate)
	}

	in := huh.NewInput().
		Title(title).
		Value(a.text[f.Name]).
		Validate(validate)
	switch f.Kind {
	case types.KindDay:
		desc := "YYYY-MM-DD, empty for no date"
		if f.Required {
			desc = "YYYY-MM-DD"
		}
		in = in.Placeholder(types.DayLayout).Description(desc)
	case types.KindInt, types.KindFloat:
		in = in.Placeholder("0")
	}
	return in
}

func fieldTitle(f types.Field) string {
	t := strings.ToUpper(f.Name[:1]) + strings.ReplaceAll(f.Name[1:], "_", " ")
	if f.Required {
		t += " *"
	}
	return t
}

// rawString turns a field value back into the text a user would type.
func rawString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		if x == 0 {
			return ""
		}
		return strconv.Itoa(x)
	case float64:
		if x == 0 {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case types.Day:
		return x.String()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// Options configures Run.
type Options struct {
	// Accessible runs the form as plain prompts instead of a full-screen UI.
	Accessible bool
	Input      io.Reader
	Output     io.Writer
	// OnInvalid is told why a submitted form was rejected before it is
	// shown again.
	OnInvalid func(error)
}

// Run shows the form until it yields a valid record or the user aborts
// (huh.ErrUserAborted). A rejected submit that changed no answers ends the
// loop with the validation error, so exhausted input cannot spin forever.
func Run(ctx context.Context, schema types.Schema, initial types.Record, opts Options) (types.Record, error) {
	a := NewAnswers(schema, initial)
	prev := a.values()
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := a.Form().WithAccessible(opts.Accessible)
		if opts.Input != nil {
			f = f.WithInput(opts.Input)
		}
		if opts.Output != nil {
			f = f.WithOutput(opts.Output)
		}
		if err := f.RunWithContext(ctx); err != nil {
			return nil, err
		}

		rec, err := a.Record()
		if err == nil {
			err = rec.Validate()
		}
		if err == nil {
			return rec, nil
		}
		cur := a.values()
		if maps.Equal(prev, cur) {
			return nil, err
		}
		prev = cur
		if opts.OnInvalid != nil {
			opts.OnInvalid(err)
		}
	}
}
