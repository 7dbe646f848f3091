package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/logic"
)

// NewHashCommand creates a new cobra command for the hash subcommand.
func NewHashCommand(cfg *config.Config, env *logic.Env) *cobra.Command {
	return &cobra.Command{
		Use:     "hash [flags]",
		Short:   "Hash a password with Argon2id",
		Long:    "Print a PHC-formatted Argon2id hash of the password, suitable for storing.",
		Args:    cobra.NoArgs,
		PreRunE: credentialsPreRun(cfg),
		RunE: func(_ *cobra.Command, _ []string) error {
			if show(cfg, env) {
				return nil
			}

			return logic.RunHash(cfg, env)
		},
	}
}

// NewVerifyCommand creates a new cobra command for the verify subcommand.
func NewVerifyCommand(cfg *config.Config, env *logic.Env) *cobra.Command {
	return &cobra.Command{
		Use:     "verify [flags] hash",
		Short:   "Verify a password against an Argon2id hash",
		Long:    "Exit with status 0 if the password matches the PHC-formatted hash, and 1 otherwise.",
		Args:    cobra.ExactArgs(1),
		PreRunE: credentialsPreRun(cfg),
		RunE: func(_ *cobra.Command, args []string) error {
			if show(cfg, env) {
				return nil
			}

			return logic.RunVerify(cfg, env, args[0])
		},
	}
}

// NewGenerateCommand creates a new cobra command for the generate subcommand.
func NewGenerateCommand(env *logic.Env) *cobra.Command {
	return &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate a new encryption key",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.RunGenerate(env)
		},
	}
}
