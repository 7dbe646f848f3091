package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/logging"
	"github.com/idelchi/pwcrypt/internal/logic"
)

// bind decodes the flags and PWCRYPT_* environment variables bound to viper into cfg
// and sets up the diagnostic logger. Flags take precedence over the environment.
func bind(cfg *config.Config, env *logic.Env) error {
	// The password has no flag; it is only read from PWCRYPT_PASSWORD.
	if err := viper.BindEnv("password"); err != nil {
		return fmt.Errorf("binding environment: %w", err)
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing configuration: %w", err)
	}

	env.Logger = logging.New(env.Stderr, cfg.Verbose)

	return nil
}

// preRun returns a PreRunE handler that resolves positional args into cfg.Files
// and validates the configuration.
func preRun(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		if len(args) == 0 {
			cfg.Files = []string{"."}
		} else {
			cfg.Files = args
		}

		return cfg.Validate()
	}
}

// credentialsPreRun validates the configuration of the password commands.
func credentialsPreRun(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		return cfg.ValidateCredentials()
	}
}

// show prints the configuration instead of running when --show is set.
func show(cfg *config.Config, env *logic.Env) bool {
	if !cfg.Show {
		return false
	}

	if err := cfg.Print(env.Stdout); err != nil {
		fmt.Fprintf(env.Stderr, "Error printing configuration: %v\n", err)
	}

	return true
}

// addFileFlags registers the flags shared by the commands operating on files.
func addFileFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	cmd.Flags().BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	cmd.Flags().Bool("dry", false, "Show what would be processed without processing")
	cmd.Flags().Bool("stats", false, "Print a summary when done")
	cmd.Flags().Bool("preserve-timestamps", false, "Copy the modification time of inputs to outputs")
	cmd.Flags().Duration("timeout", 0, "Stop starting new files after this long, 0 for no limit")

	cmd.Flags().StringP("key", "k", "", "Encryption key (32 bytes, hex-encoded) instead of a password")
	cmd.Flags().StringP("key-file", "f", "", "Path to the key file with the encryption key (32 bytes, hex-encoded)")

	cmd.Flags().StringSliceP("include", "i", nil, "Only process paths matching these find -path patterns")
	cmd.Flags().StringSliceP("exclude", "e", nil, "Skip paths matching these find -path patterns")
	cmd.Flags().String("include-from", "", "JSONC file with an array of include patterns")
	cmd.Flags().String("exclude-from", "", "JSONC file with an array of exclude patterns")

	cmd.Flags().String("encrypt-ext", ".enc", "Suffix to append to encrypted files")
	cmd.Flags().String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")
}
