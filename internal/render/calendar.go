package render

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// cellWidth is the width of one calendar cell, including padding.
const cellWidth = 4

var weekdays = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// NewRenderer returns a lipgloss renderer for w. NO_COLOR turns colors off;
// otherwise the terminal's profile is used.
func NewRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		r.SetColorProfile(termenv.Ascii)
	}
	return r
}

// Calendar renders one month as a Monday-first grid. Days present in colors
// get that color as their background; other days are plain. The month is
// taken from any day inside it.
func Calendar(r *lipgloss.Renderer, month types.Day, colors map[types.Day]string) string {
	first := types.NewDay(month.Year(), month.Month(), 1)
	last := first.AddDays(daysIn(first) - 1)

	title := r.NewStyle().
		Bold(true).
		Width(cellWidth * len(weekdays)).
		Align(lipgloss.Center).
		Render(fmt.Sprintf("%s %d", first.Month(), first.Year()))

	plain := r.NewStyle().Width(cellWidth).Align(lipgloss.Right).PaddingRight(1)
	header := plain.Faint(true)

	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	for _, wd := range weekdays {
		b.WriteString(header.Render(wd))
	}
	b.WriteByte('\n')

	// Monday is column 0.
	col := (int(first.Time().Weekday()) + 6) % 7
	b.WriteString(strings.Repeat(" ", col*cellWidth))
	for d := first; !d.After(last); d = d.AddDays(1) {
		style := plain
		if c, ok := colors[d]; ok {
			style = plain.
				Background(lipgloss.Color(c)).
				Foreground(lipgloss.Color(contrast(c)))
		}
		b.WriteString(style.Render(strconv.Itoa(d.Day())))
		col++
		if col == len(weekdays) && d != last {
			b.WriteByte('\n')
			col = 0
		}
	}
	return b.String()
}

// daysIn returns the number of days in the month of d.
func daysIn(d types.Day) int {
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// contrast picks black or white text for a #rrggbb background.
func contrast(hex string) string {
	if len(hex) != 7 {
		return "#ffffff"
	}
	rgb, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return "#ffffff"
	}
	red := float64(rgb >> 16 & 0xff)
	green := float64(rgb >> 8 & 0xff)
	blue := float64(rgb & 0xff)
	if 0.299*red+0.587*green+0.114*blue > 150 {
		return "#000000"
	}
	return "#ffffff"
}
