package types

import (
	"regexp"
	"strings"
)

// Weather values a MoodDay may carry.
const (
	WeatherSunny  = "sunny"
	WeatherCloudy = "cloudy"
	WeatherRainy  = "rainy"
	WeatherStormy = "stormy"
	WeatherSnowy  = "snowy"
	WeatherWindy  = "windy"
	WeatherFoggy  = "foggy"
)

// WeatherKinds lists the allowed weather values in display order.
var WeatherKinds = []string{
	WeatherSunny, WeatherCloudy, WeatherRainy, WeatherStormy,
	WeatherSnowy, WeatherWindy, WeatherFoggy,
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// MoodDay is one colored cell of the weather-mood calendar. It belongs to
// its calendar day through Day alone.
type MoodDay struct {
	Meta
	Day     Day    `json:"day"`
	Color   string `json:"color"`
	Weather string `json:"weather"`
	Mood    string `json:"mood"`
	Note    string `json:"note"`
}

// MoodSchema describes the moods collection.
var MoodSchema = Schema{
	Name:     MoodsCollection,
	Singular: "mood",
	Fields: withMeta(
		Field{Name: "day", Kind: KindDay, Required: true},
		Field{Name: "color", Kind: KindString, Required: true},
		Field{Name: "weather", Kind: KindString, Choices: WeatherKinds},
		Field{Name: "mood", Kind: KindString},
		Field{Name: "note", Kind: KindString, Long: true},
	),
	SortKey:  "day",
	DayField: "day",
	New:      func() Record { return &MoodDay{} },
}

func (m *MoodDay) Validate() error {
	if m.Day.IsZero() {
		return invalid("day", ErrEmptyField)
	}
	if m.Day.After(Today()) {
		return invalid("day", ErrFutureDate)
	}
	if strings.TrimSpace(m.Color) == "" {
		return invalid("color", ErrEmptyField)
	}
	if !hexColor.MatchString(m.Color) {
		return invalid("color", ErrInvalidColor)
	}
	if m.Weather != "" && !contains(WeatherKinds, m.Weather) {
		return invalid("weather", ErrInvalidEnum)
	}
	return nil
}

func (m *MoodDay) Field(name string) (any, bool) {
	switch name {
	case "day":
		return m.Day, true
	case "color":
		return m.Color, true
	case "weather":
		return m.Weather, true
	case "mood":
		return m.Mood, true
	case "note":
		return m.Note, true
	}
	return m.Meta.field(name)
}

// Toggle always fails: mood entries carry no flags.
func (m *MoodDay) Toggle(string) error {
	return ErrNotToggleable
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
