package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/render"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// queryFlags are the view options shared by list, days and watch.
type queryFlags struct {
	where []string
	sort  string
	desc  bool
	from  string
	to    string
	limit int
}

func (q *queryFlags) bind(cmd *cobra.Command, withSort bool) {
	f := cmd.Flags()
	f.StringArrayVar(&q.where, "where", nil, "equality filter field=value (repeatable)")
	f.StringVar(&q.from, "from", "", "first day to include (YYYY-MM-DD)")
	f.StringVar(&q.to, "to", "", "last day to include (YYYY-MM-DD)")
	if withSort {
		f.StringVar(&q.sort, "sort", "", "field to sort by (default: the collection's sort key)")
		f.BoolVar(&q.desc, "desc", false, "sort descending")
		f.IntVar(&q.limit, "limit", 0, "maximum number of results (0 = no limit)")
	}
}

// build turns the flags into a store.Query for schema.
func (q *queryFlags) build(schema types.Schema) (store.Query, error) {
	query := store.Query{
		Sort:  q.sort,
		Desc:  q.desc,
		Limit: q.limit,
	}
	if query.Sort == "" {
		query.Sort = schema.SortKey
	}
	if q.limit < 0 {
		return query, fmt.Errorf("--limit %d: %w", q.limit, types.ErrInvalidFilter)
	}

	if len(q.where) > 0 {
		query.Where = make(map[string]any, len(q.where))
		for _, w := range q.where {
			field, raw, ok := strings.Cut(w, "=")
			if !ok {
				return query, fmt.Errorf("--where %q: want field=value: %w", w, types.ErrInvalidFilter)
			}
			v, err := schema.ParseValue(strings.TrimSpace(field), raw)
			if err != nil {
				return query, err
			}
			query.Where[strings.TrimSpace(field)] = v
		}
	}

	var err error
	if query.From, err = types.ParseDay(q.from); err != nil {
		return query, fmt.Errorf("--from: %w: %v", types.ErrInvalidFilter, err)
	}
	if query.To, err = types.ParseDay(q.to); err != nil {
		return query, fmt.Errorf("--to: %w: %v", types.ErrInvalidFilter, err)
	}
	return query, nil
}

func newListCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "list <collection>",
		Short: "List records with filters and sorting",
		Long: `List prints the records of a collection. Filters combine: every --where
must match, and --from/--to keep records whose day lies in the range.

` + collectionsHelp + `

Example:
  pantry list groceries --where bought=false --sort category
  pantry list movies --where favorite=true --sort rating --desc --limit 5
  pantry list moods --from 2024-03-01 --to 2024-03-31`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				query, err := q.build(c.Schema())
				if err != nil {
					return fail(err)
				}
				return printList(a.printer(cmd), c, query)
			})
		},
	}
	q.bind(cmd, true)
	return cmd
}

// printList writes the query result and, for wishes, the amount still to
// spend.
func printList(p *render.Printer, c store.Collection, query store.Query) error {
	recs, err := c.List(query)
	if err != nil {
		return fail(err)
	}
	if err := p.Records(c.Schema(), recs); err != nil {
		return sysError(err)
	}
	if c.Schema().Name == types.WishesCollection && len(recs) > 0 {
		wishes := make([]types.Wish, 0, len(recs))
		for _, r := range recs {
			if w, ok := r.(*types.Wish); ok {
				wishes = append(wishes, *w)
			}
		}
		p.Messagef("Outstanding: %.2f", types.OutstandingTotal(wishes))
	}
	return nil
}

func newDaysCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "days <collection>",
		Short: "Group records by calendar day",
		Long: `Days groups records by the collection's day field, oldest day first.
Records without a day are left out. Works for movies (watched), ideas
(planned) and moods (day).`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(_ types.Backend, c store.Collection) error {
				query, err := q.build(c.Schema())
				if err != nil {
					return fail(err)
				}
				groups, err := c.Days(query)
				if err != nil {
					return fail(err)
				}
				return a.printer(cmd).Days(c.Schema(), groups)
			})
		},
	}
	q.bind(cmd, false)
	return cmd
}
