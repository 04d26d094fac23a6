package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

func newCollectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections with their fields",
		Long: `List every collection with its editable fields and toggles.
Required fields are marked with *.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemas := make([]types.Schema, 0, len(types.CollectionNames))
			for _, name := range types.CollectionNames {
				s, err := types.Lookup(name)
				if err != nil {
					return fail(err)
				}
				schemas = append(schemas, s)
			}
			return a.printer(cmd).Schemas(schemas)
		},
	}
}
