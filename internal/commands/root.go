package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/kdf"
	"github.com/idelchi/pwcrypt/internal/logic"
)

// NewRootCommand creates the root command with common configuration.
// Flags and PWCRYPT_* environment variables are bound through the global viper
// instance, which is reset so every root command starts clean.
func NewRootCommand(cfg *config.Config, env *logic.Env, version string) *cobra.Command {
	viper.Reset()

	root := cobraext.NewDefaultRootCommand(version, func(_ *cobra.Command, _ []string) error {
		return bind(cfg, env)
	})

	root.Use = "pwcrypt [flags] command [flags]"
	root.Short = "Password-based file encryption utility"
	root.Long = `A file encryption utility deriving AES-256 keys from passwords with Argon2id.
Provides commands for encryption, decryption, password hashing and key generation.

Passwords are read from PWCRYPT_PASSWORD, --password-file, or an interactive prompt.
Every flag can also be set through PWCRYPT_<FLAG>, e.g. PWCRYPT_PARALLEL=4.`

	root.PersistentFlags().BoolP("show", "s", false, "Show the configuration and exit")
	root.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log diagnostics to stderr")

	root.PersistentFlags().String("password-file", "", "Read the password from the first line of this file")
	root.PersistentFlags().Uint32("kdf-time", kdf.DefaultTime, "Argon2id iterations")
	root.PersistentFlags().Uint32("kdf-memory", kdf.DefaultMemory, "Argon2id memory in KiB")
	root.PersistentFlags().Uint8("kdf-threads", kdf.DefaultThreads, "Argon2id parallelism")

	root.AddCommand(
		NewEncryptCommand(cfg, env),
		NewDecryptCommand(cfg, env),
		NewCheckCommand(cfg, env),
		NewHashCommand(cfg, env),
		NewVerifyCommand(cfg, env),
		NewGenerateCommand(env),
	)

	return root
}
