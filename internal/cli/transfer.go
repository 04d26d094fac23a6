package cli

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/transfer"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	var backend, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Copy every collection to another backend",
		Long: `Export copies all collections from the configured backend into another
one, replacing what the target holds for those collections.

Example:
  pantry export --to sqlite --to-dir ./backup`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.copy(cmd, types.Config{Backend: a.backend, DataDir: a.dataDir},
				types.Config{Backend: backend, DataDir: dir})
		},
	}
	cmd.Flags().StringVar(&backend, "to", "", "target backend: jsonl or sqlite")
	cmd.Flags().StringVar(&dir, "to-dir", "", "target data directory")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("to-dir")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var backend, dir string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace every collection with the contents of another backend",
		Long: `Import copies all collections from another backend into the configured
one, replacing the current contents.

Example:
  pantry import --from jsonl --from-dir ./old-data`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.copy(cmd, types.Config{Backend: backend, DataDir: dir},
				types.Config{Backend: a.backend, DataDir: a.dataDir})
		},
	}
	cmd.Flags().StringVar(&backend, "from", "", "source backend: jsonl or sqlite")
	cmd.Flags().StringVar(&dir, "from-dir", "", "source data directory")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("from-dir")
	return cmd
}

// copy moves every collection from the src storage to the dst storage.
func (a *app) copy(cmd *cobra.Command, src, dst types.Config) error {
	for _, c := range []*types.Config{&src, &dst} {
		abs, err := filepath.Abs(c.DataDir)
		if err != nil {
			return sysError(err)
		}
		c.DataDir = abs
	}
	if src == dst {
		return userError(fmt.Errorf("source and target are both %s in %s", src.Backend, src.DataDir))
	}

	from, err := pantry.Open(src)
	if err != nil {
		return fail(err)
	}
	defer from.Detach()
	to, err := pantry.Open(dst)
	if err != nil {
		return fail(err)
	}
	defer to.Detach()

	counts, err := transfer.Copy(from, to)
	if err != nil {
		return fail(err)
	}

	p := a.printer(cmd)
	if p.JSONMode() {
		return p.JSON(counts)
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLLECTION\tCOPIED\tSKIPPED")
	for _, c := range counts {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", c.Collection, c.Copied, c.Skipped)
	}
	if err := tw.Flush(); err != nil {
		return sysError(err)
	}
	p.Messagef("Copied %s (%s) to %s (%s)", src.DataDir, src.Backend, dst.DataDir, dst.Backend)
	return nil
}
