package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/render"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const monthLayout = "2006-01"

func newCalendarCmd(a *app) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show the mood calendar for a month",
		Long: `Calendar draws one month of the moods collection as a grid, each day
filled with the color recorded for it. The current month is the default.

Example:
  pantry calendar
  pantry calendar --month 2024-03`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			first := types.Today()
			if month != "" {
				t, err := time.Parse(monthLayout, month)
				if err != nil {
					return userError(fmt.Errorf("--month %q: want YYYY-MM: %w", month, types.ErrInvalidFilter))
				}
				first = types.DayOf(t)
			}
			first = types.NewDay(first.Year(), first.Month(), 1)
			last := types.NewDay(first.Year(), first.Month()+1, 0)

			return a.withCollection(types.MoodsCollection, func(_ types.Backend, c store.Collection) error {
				groups, err := c.Days(store.Query{From: first, To: last})
				if err != nil {
					return fail(err)
				}
				p := a.printer(cmd)
				if p.JSONMode() {
					return p.Days(c.Schema(), groups)
				}

				colors := make(map[types.Day]string, len(groups))
				for _, g := range groups {
					// The latest entry for a day wins.
					rec := g.Records[len(g.Records)-1]
					if v, ok := rec.Field("color"); ok {
						colors[g.Day], _ = v.(string)
					}
				}
				r := render.NewRenderer(cmd.OutOrStdout())
				fmt.Fprintln(cmd.OutOrStdout(), render.Calendar(r, first, colors))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show (YYYY-MM)")
	return cmd
}
