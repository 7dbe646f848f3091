// Command pwcrypt encrypts files with keys derived from passwords.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/awnumar/memguard"

	"github.com/idelchi/pwcrypt/internal/commands"
	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/logic"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	// Wipe guarded memory on Ctrl-C.
	memguard.CatchInterrupt()

	cfg := &config.Config{}
	root := commands.NewRootCommand(cfg, logic.DefaultEnv(), version)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		memguard.SafeExit(1)
	}

	memguard.Purge()
}
