package types

import "strings"

// Grocery is a product on the shopping list.
type Grocery struct {
	Meta
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
	Bought   bool   `json:"bought"`
}

// GrocerySchema describes the groceries collection.
var GrocerySchema = Schema{
	Name:     GroceriesCollection,
	Singular: "grocery",
	Fields: withMeta(
		Field{Name: "name", Kind: KindString, Required: true},
		Field{Name: "quantity", Kind: KindInt},
		Field{Name: "category", Kind: KindString},
		Field{Name: "bought", Kind: KindBool},
	),
	Toggles: []string{"bought"},
	SortKey: "category",
	New:     func() Record { return &Grocery{} },
}

// Normalize treats a missing quantity as one.
func (g *Grocery) Normalize() {
	if g.Quantity == 0 {
		g.Quantity = 1
	}
}

func (g *Grocery) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return invalid("name", ErrEmptyField)
	}
	if g.Quantity < 1 {
		return invalid("quantity", ErrOutOfRange)
	}
	return nil
}

func (g *Grocery) Field(name string) (any, bool) {
	switch name {
	case "name":
		return g.Name, true
	case "quantity":
		return g.Quantity, true
	case "category":
		return g.Category, true
	case "bought":
		return g.Bought, true
	}
	return g.Meta.field(name)
}

func (g *Grocery) Toggle(field string) error {
	if field != "bought" {
		return ErrNotToggleable
	}
	g.Bought = !g.Bought
	return nil
}
