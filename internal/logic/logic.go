// Package logic implements the commands: sealing and opening files, checking
// patterns, and hashing and verifying passwords.
package logic

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/encryption"
	"github.com/idelchi/pwcrypt/internal/filter"
)

// stats are the totals printed with --stats.
type stats struct {
	scanned   int
	excluded  int
	processed int
	errored   int
	skipped   int
	totalSize int64
	duration  time.Duration
}

// Run seals or opens the configured files.
func Run(ctx context.Context, cfg *config.Config, env *Env) error {
	start := time.Now()

	scanned, err := resolveFiles(cfg, env)
	if err != nil {
		return fmt.Errorf("resolving files: %w", err)
	}

	excluded := scanned - len(cfg.Files)

	if cfg.Dry {
		dryRun(cfg, env, stats{scanned: scanned, excluded: excluded}, start)

		return nil
	}

	source, cleanup, err := keySource(cfg, env, !cfg.Decrypt)
	if err != nil {
		return err
	}
	defer cleanup()

	mode := encryption.ModeCBC
	if cfg.Deterministic {
		mode = encryption.ModeSIV
	}

	sealer, err := encryption.NewSealer(source, mode)
	if err != nil {
		return fmt.Errorf("creating sealer: %w", err)
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	log := env.log("processor")
	log.WithField("files", len(cfg.Files)).WithField("mode", mode).Debug("starting batch")

	proc := encryption.NewProcessor(cfg, sealer, log, encryption.WithOutput(env.Stdout, env.Stderr))

	summary, err := proc.ProcessFiles(ctx)

	if cfg.Stats {
		printStats(env.Stderr, stats{
			scanned:   scanned,
			excluded:  excluded,
			processed: summary.Processed,
			errored:   summary.Errored,
			skipped:   summary.Skipped,
			totalSize: summary.TotalSize,
			duration:  time.Since(start),
		})
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// resolveFiles expands positional args into files and applies include/exclude filtering.
// Decryption without includes only considers files carrying the encrypted suffix.
// Returns the total number of files scanned before filtering.
func resolveFiles(cfg *config.Config, env *Env) (int, error) {
	includes, excludes, err := loadPatterns(cfg)
	if err != nil {
		return 0, err
	}

	hasIncludes := len(cfg.Include) > 0 || cfg.IncludeFrom != ""

	if cfg.Decrypt && !hasIncludes {
		includes = append(includes, "*"+cfg.Suffixes.Encrypt)
		hasIncludes = true
	}

	flt, err := filter.New(includes, excludes, hasIncludes)
	if err != nil {
		return 0, err
	}

	files, scanned, err := filter.Resolve(cfg.Files, flt, env.log("filter"))
	if err != nil {
		return scanned, fmt.Errorf("filtering files: %w", err)
	}

	cfg.Files = files

	return scanned, nil
}

// loadPatterns merges CLI and file-based include/exclude patterns.
func loadPatterns(cfg *config.Config) (includes, excludes []string, err error) {
	includes = append(includes, cfg.Include...)
	excludes = append(excludes, cfg.Exclude...)

	if cfg.IncludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.IncludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading include patterns: %w", err)
		}

		includes = append(includes, patterns...)
	}

	if cfg.ExcludeFrom != "" {
		patterns, err := filter.LoadPatterns(cfg.ExcludeFrom)
		if err != nil {
			return nil, nil, fmt.Errorf("loading exclude patterns: %w", err)
		}

		excludes = append(excludes, patterns...)
	}

	return filter.Normalize(includes), filter.Normalize(excludes), nil
}

// dryRun previews what would be processed without reading any password.
func dryRun(cfg *config.Config, env *Env, s stats, start time.Time) {
	s.processed = len(cfg.Files)

	for _, file := range cfg.Files {
		if !cfg.Quiet {
			fmt.Fprintf(env.Stdout, "Would process %q -> %q\n", file, outputPath(file, cfg))
		}

		if cfg.Stats {
			if info, err := os.Stat(file); err == nil {
				s.totalSize += info.Size()
			}
		}
	}

	if cfg.Stats {
		s.duration = time.Since(start)
		printStats(env.Stderr, s)
	}
}

func outputPath(filename string, cfg *config.Config) string {
	ext := cfg.Suffixes.Encrypt

	if cfg.Decrypt {
		filename = strings.TrimSuffix(filename, cfg.Suffixes.Encrypt)
		ext = cfg.Suffixes.Decrypt
	}

	return filepath.Join(filepath.Dir(filename), filepath.Base(filename)+ext)
}

func printStats(w io.Writer, s stats) {
	fmt.Fprintf(w, "\nStats\n")
	fmt.Fprintf(w, "  Scanned:   %d\n", s.scanned)
	fmt.Fprintf(w, "  Excluded:  %d\n", s.excluded)
	fmt.Fprintf(w, "  Processed: %d\n", s.processed)
	fmt.Fprintf(w, "  Errors:    %d\n", s.errored)

	if s.skipped > 0 {
		fmt.Fprintf(w, "  Skipped:   %d\n", s.skipped)
	}

	//nolint:gosec // totalSize is always non-negative (sum of file sizes)
	fmt.Fprintf(w, "  Size:      %s\n", humanize.IBytes(uint64(max(0, s.totalSize))))
	fmt.Fprintf(w, "  Duration:  %s\n", s.duration.Round(time.Millisecond))
}
