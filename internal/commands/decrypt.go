package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config, env *logic.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] [paths...]",
		Aliases: []string{"dec"},
		Short:   "Decrypt files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.Decrypt = true

			return preRun(cfg)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if show(cfg, env) {
				return nil
			}

			return logic.Run(cmd.Context(), cfg, env)
		},
	}

	addFileFlags(cmd)

	return cmd
}
