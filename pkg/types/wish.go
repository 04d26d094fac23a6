package types

import "strings"

// Wish is an item on a purchase wishlist.
type Wish struct {
	Meta
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Link      string  `json:"link"`
	Notes     string  `json:"notes"`
	Priority  bool    `json:"priority"`
	Purchased bool    `json:"purchased"`
}

// WishSchema describes the wishes collection.
var WishSchema = Schema{
	Name:     WishesCollection,
	Singular: "wish",
	Fields: withMeta(
		Field{Name: "name", Kind: KindString, Required: true},
		Field{Name: "price", Kind: KindFloat},
		Field{Name: "link", Kind: KindString},
		Field{Name: "notes", Kind: KindString, Long: true},
		Field{Name: "priority", Kind: KindBool},
		Field{Name: "purchased", Kind: KindBool},
	),
	Toggles: []string{"priority", "purchased"},
	SortKey: "created_at",
	New:     func() Record { return &Wish{} },
}

func (w *Wish) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return invalid("name", ErrEmptyField)
	}
	if w.Price < 0 {
		return invalid("price", ErrOutOfRange)
	}
	return nil
}

func (w *Wish) Field(name string) (any, bool) {
	switch name {
	case "name":
		return w.Name, true
	case "price":
		return w.Price, true
	case "link":
		return w.Link, true
	case "notes":
		return w.Notes, true
	case "priority":
		return w.Priority, true
	case "purchased":
		return w.Purchased, true
	}
	return w.Meta.field(name)
}

func (w *Wish) Toggle(field string) error {
	switch field {
	case "priority":
		w.Priority = !w.Priority
	case "purchased":
		w.Purchased = !w.Purchased
	default:
		return ErrNotToggleable
	}
	return nil
}

// OutstandingTotal sums the price of wishes not yet purchased.
func OutstandingTotal(wishes []Wish) float64 {
	var total float64
	for _, w := range wishes {
		if !w.Purchased {
			total += w.Price
		}
	}
	return total
}
