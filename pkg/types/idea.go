package types

import "strings"

// Idea is an activity in a shared planner. Planned is optional and may lie
// in the future.
type Idea struct {
	Meta
	Title     string `json:"title"`
	Category  string `json:"category"`
	Planned   Day    `json:"planned"`
	Notes     string `json:"notes"`
	Completed bool   `json:"completed"`
}

// IdeaSchema describes the ideas collection.
var IdeaSchema = Schema{
	Name:     IdeasCollection,
	Singular: "idea",
	Fields: withMeta(
		Field{Name: "title", Kind: KindString, Required: true},
		Field{Name: "category", Kind: KindString},
		Field{Name: "planned", Kind: KindDay},
		Field{Name: "notes", Kind: KindString, Long: true},
		Field{Name: "completed", Kind: KindBool},
	),
	Toggles:  []string{"completed"},
	SortKey:  "created_at",
	DayField: "planned",
	New:      func() Record { return &Idea{} },
}

func (i *Idea) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return invalid("title", ErrEmptyField)
	}
	return nil
}

func (i *Idea) Field(name string) (any, bool) {
	switch name {
	case "title":
		return i.Title, true
	case "category":
		return i.Category, true
	case "planned":
		return i.Planned, true
	case "notes":
		return i.Notes, true
	case "completed":
		return i.Completed, true
	}
	return i.Meta.field(name)
}

func (i *Idea) Toggle(field string) error {
	if field != "completed" {
		return ErrNotToggleable
	}
	i.Completed = !i.Completed
	return nil
}
