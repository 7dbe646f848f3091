package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config, env *logic.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] [paths...]",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if show(cfg, env) {
				return nil
			}

			return logic.Run(cmd.Context(), cfg, env)
		},
	}

	addFileFlags(cmd)

	cmd.Flags().Bool("deterministic", false, "Use deterministic encryption mode, requires a key")

	return cmd
}
