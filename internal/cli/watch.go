package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/logger"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func newWatchCmd(a *app) *cobra.Command {
	var q queryFlags
	cmd := &cobra.Command{
		Use:   "watch <collection>",
		Short: "Print the list again whenever the collection changes",
		Long: `Watch prints the list, then reloads and prints it after every change to
the collection file, including changes made by other pantry processes.
Stop with Ctrl-C. Requires the jsonl backend.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeCollection,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withCollection(args[0], func(b types.Backend, c store.Collection) error {
				w, ok := b.(types.Watcher)
				if !ok {
					return userError(fmt.Errorf("watch needs the %s backend, not %s: %w",
						types.BackendJSONL, a.backend, types.ErrNotSupported))
				}
				query, err := q.build(c.Schema())
				if err != nil {
					return fail(err)
				}

				p := a.printer(cmd)
				if err := printList(p, c, query); err != nil {
					return err
				}
				err = w.Watch(cmd.Context(), args[0], func() {
					if err := c.Load(); err != nil {
						logger.Warn("reload failed", "collection", args[0], "err", err)
						fmt.Fprintln(cmd.ErrOrStderr(), "reload:", err)
						return
					}
					p.Messagef("\n-- %s --", time.Now().Format(time.TimeOnly))
					if err := printList(p, c, query); err != nil {
						fmt.Fprintln(cmd.ErrOrStderr(), err)
					}
				})
				return fail(err)
			})
		},
	}
	q.bind(cmd, true)
	return cmd
}
