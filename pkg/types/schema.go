package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldKind is the value type a record field holds.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInt
	KindFloat
	KindBool
	KindDay
	KindTime
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDay:
		return "day"
	case KindTime:
		return "time"
	}
	return "unknown"
}

// Field describes one record field by its JSON name.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	// Choices restricts string fields to a fixed set. Empty means free text.
	Choices []string
	// Long marks free text that may span lines.
	Long bool
}

// Schema describes a collection: its name, its fields, and the defaults the
// list views use.
type Schema struct {
	Name     string
	Singular string
	Fields   []Field
	Toggles  []string
	SortKey  string
	DayField string
	New      func() Record
}

// Field returns the named field.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Editable returns the fields a user fills in, excluding id and created_at.
func (s Schema) Editable() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "id" || f.Name == "created_at" {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ParseValue converts a command-line string into the typed value of the
// named field. Returns ErrInvalidField for unknown fields and
// ErrInvalidFilter when the string does not parse as the field's kind.
func (s Schema) ParseValue(name, raw string) (any, error) {
	f, ok := s.Field(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", s.Name, name, ErrInvalidField)
	}
	v, err := f.Kind.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s.%s=%q: %w", s.Name, name, raw, ErrInvalidFilter)
	}
	return v, nil
}

// Parse converts raw into a value of kind k.
func (k FieldKind) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch k {
	case KindString:
		return raw, nil
	case KindInt:
		return strconv.Atoi(raw)
	case KindFloat:
		return strconv.ParseFloat(raw, 64)
	case KindBool:
		return strconv.ParseBool(raw)
	case KindDay:
		return ParseDay(raw)
	case KindTime:
		return time.Parse(time.RFC3339, raw)
	}
	return nil, ErrInvalidField
}

// Collection names.
const (
	MoviesCollection    = "movies"
	IdeasCollection     = "ideas"
	WishesCollection    = "wishes"
	MoodsCollection     = "moods"
	GroceriesCollection = "groceries"
)

// CollectionNames lists every collection in display order.
var CollectionNames = []string{
	MoviesCollection,
	IdeasCollection,
	WishesCollection,
	MoodsCollection,
	GroceriesCollection,
}

var metaFields = []Field{
	{Name: "id", Kind: KindString},
	{Name: "created_at", Kind: KindTime},
}

func withMeta(fields ...Field) []Field {
	return append(append([]Field{}, metaFields...), fields...)
}

var schemas = map[string]Schema{
	MoviesCollection:    MovieSchema,
	IdeasCollection:     IdeaSchema,
	WishesCollection:    WishSchema,
	MoodsCollection:     MoodSchema,
	GroceriesCollection: GrocerySchema,
}

// Lookup returns the schema for a collection name.
// Returns ErrTableNotFound if the name is not a known collection.
func Lookup(name string) (Schema, error) {
	s, ok := schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("%q: %w", name, ErrTableNotFound)
	}
	return s, nil
}
