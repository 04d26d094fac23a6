package types

import "strings"

// Movie rating bounds. Zero means unrated.
const (
	MinRating = 0
	MaxRating = 5
)

// Movie is a diary entry for a watched film.
type Movie struct {
	Meta
	Title    string `json:"title"`
	Watched  Day    `json:"watched"`
	Rating   int    `json:"rating"`
	Genre    string `json:"genre"`
	Review   string `json:"review"`
	Favorite bool   `json:"favorite"`
}

// MovieSchema describes the movies collection.
var MovieSchema = Schema{
	Name:     MoviesCollection,
	Singular: "movie",
	Fields: withMeta(
		Field{Name: "title", Kind: KindString, Required: true},
		Field{Name: "watched", Kind: KindDay, Required: true},
		Field{Name: "rating", Kind: KindInt},
		Field{Name: "genre", Kind: KindString},
		Field{Name: "review", Kind: KindString, Long: true},
		Field{Name: "favorite", Kind: KindBool},
	),
	Toggles:  []string{"favorite"},
	SortKey:  "watched",
	DayField: "watched",
	New:      func() Record { return &Movie{} },
}

// Validate requires a title and a watched date that is not in the future.
// Rating must be within MinRating..MaxRating.
func (m *Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return invalid("title", ErrEmptyField)
	}
	if m.Watched.IsZero() {
		return invalid("watched", ErrEmptyField)
	}
	if m.Watched.After(Today()) {
		return invalid("watched", ErrFutureDate)
	}
	if m.Rating < MinRating || m.Rating > MaxRating {
		return invalid("rating", ErrOutOfRange)
	}
	return nil
}

func (m *Movie) Field(name string) (any, bool) {
	switch name {
	case "title":
		return m.Title, true
	case "watched":
		return m.Watched, true
	case "rating":
		return m.Rating, true
	case "genre":
		return m.Genre, true
	case "review":
		return m.Review, true
	case "favorite":
		return m.Favorite, true
	}
	return m.Meta.field(name)
}

func (m *Movie) Toggle(field string) error {
	if field != "favorite" {
		return ErrNotToggleable
	}
	m.Favorite = !m.Favorite
	return nil
}

// Stars renders the rating as filled and empty stars.
func (m *Movie) Stars() string {
	r := min(max(m.Rating, MinRating), MaxRating)
	return strings.Repeat("★", r) + strings.Repeat("☆", MaxRating-r)
}
