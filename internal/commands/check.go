package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/logic"
)

// NewCheckCommand creates a new cobra command for the check subcommand.
func NewCheckCommand(cfg *config.Config, env *logic.Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "check [flags] [paths...]",
		Short:   "Validate that include/exclude patterns match files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg),
		RunE: func(_ *cobra.Command, _ []string) error {
			if show(cfg, env) {
				return nil
			}

			return logic.RunCheck(cfg, env)
		},
	}

	addFileFlags(cmd)

	return cmd
}
