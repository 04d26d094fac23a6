package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize pantry storage",
		Long: `Create the configuration and data directories, write a default config.yaml,
and prepare the storage backend. Running init again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.openBackend()
			if err != nil {
				return err
			}
			if err := b.Detach(); err != nil {
				return sysError(fmt.Errorf("finalize storage: %w", err))
			}

			p := a.printer(cmd)
			if p.JSONMode() {
				return p.JSON(map[string]string{
					"config_dir": a.configDir,
					"data_dir":   a.dataDir,
					"backend":    a.backend,
				})
			}
			p.Messagef("Pantry initialized in %s (%s backend)", a.dataDir, a.backend)
			return nil
		},
	}
}
