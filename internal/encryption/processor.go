package encryption

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/fileutil"
)

// Processor seals or opens the files of a configuration concurrently.
type Processor struct {
	// cfg contains runtime configuration options
	cfg *config.Config

	// sealer performs the per-file envelope work
	sealer *Sealer

	// log receives per-file diagnostics
	log *logrus.Entry

	stdout io.Writer
	stderr io.Writer
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithOutput redirects the progress and error lines of the printer.
func WithOutput(stdout, stderr io.Writer) ProcessorOption {
	return func(p *Processor) {
		p.stdout = stdout
		p.stderr = stderr
	}
}

// NewProcessor creates a Processor for the files in cfg.
func NewProcessor(cfg *config.Config, sealer *Sealer, log *logrus.Entry, opts ...ProcessorOption) *Processor {
	processor := &Processor{
		cfg:    cfg,
		sealer: sealer,
		log:    log,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	for _, opt := range opts {
		opt(processor)
	}

	return processor
}

// ProcessFiles processes every configured file with at most cfg.Parallel in flight.
// A failing file does not stop the others. Once ctx is done, files that have not
// started yet are skipped; files already in progress are completed.
// The returned error is non-nil if any file failed or was skipped.
// A Processor may run several batches one after another.
//
//nolint:cyclop,gocognit
func (p *Processor) ProcessFiles(ctx context.Context) (Summary, error) {
	var summary Summary

	// results channels processing outcomes to the printer goroutine
	results := make(chan Result, len(p.cfg.Files))

	group := errgroup.Group{}
	group.SetLimit(max(1, p.cfg.Parallel))

	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range results {
			switch {
			case result.Skipped:
				summary.Skipped++

				fmt.Fprintf(p.stderr, "Skipped %q: %v\n", result.Input, result.Error)
			case result.Error != nil:
				summary.Errored++

				fmt.Fprintf(p.stderr, "Error processing %q: %v\n", result.Input, result.Error)
			default:
				summary.Processed++
				summary.TotalSize += result.OutputSize

				if !p.cfg.Quiet {
					fmt.Fprintf(p.stdout, "Processed %q -> %q\n", result.Input, result.Output)
				}

				if p.cfg.Delete {
					p.remove(result.Input)
				}
			}
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results <- Result{Input: file, Skipped: true, Error: err}

				return nil
			}

			start := time.Now()
			outPath := p.outputPath(file)

			size, err := p.processFile(file, outPath)

			entry := p.log.WithFields(logrus.Fields{
				"file":     file,
				"decrypt":  p.cfg.Decrypt,
				"duration": time.Since(start).Round(time.Microsecond),
			})

			if err != nil {
				entry.WithError(err).Debug("file failed")

				results <- Result{Input: file, Error: err}

				return nil
			}

			entry.WithField("output", outPath).Debug("file processed")

			results <- Result{Input: file, Output: outPath, OutputSize: size}

			return nil
		})
	}

	group.Wait() //nolint:errcheck,gosec // workers report through results

	close(results)

	<-done // Wait for printer to finish

	if failed := summary.Errored + summary.Skipped; failed > 0 {
		if err := ctx.Err(); err != nil && summary.Skipped > 0 {
			return summary, fmt.Errorf("%w: %d failed, %d skipped: %w", ErrBatch, summary.Errored, summary.Skipped, err)
		}

		return summary, fmt.Errorf("%w: %d of %d files failed", ErrBatch, failed, len(p.cfg.Files))
	}

	return summary, nil
}

// remove deletes a successfully processed input.
func (p *Processor) remove(path string) {
	if err := os.Remove(path); err != nil {
		fmt.Fprintf(p.stderr, "Error deleting %q: %v\n", path, err)

		return
	}

	if !p.cfg.Quiet {
		fmt.Fprintf(p.stdout, "Deleted %q\n", path)
	}
}

// processFile seals or opens a single file into a temporary file and renames it
// into place on success.
func (p *Processor) processFile(filename, outPath string) (size int64, err error) {
	if filepath.Clean(filename) == filepath.Clean(outPath) {
		return 0, fmt.Errorf("%w: output %q would overwrite the input", ErrProcessing, outPath)
	}

	out, err := fileutil.CreateAtomic(filename, outPath)
	if err != nil {
		return 0, fmt.Errorf("preparing atomic write: %w", err)
	}

	defer func() {
		if err != nil {
			out.Abort()
		}
	}()

	inFile, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return 0, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	writer := bufio.NewWriterSize(out.Writer(), defaultBufferSize)
	executable := out.Executable()

	if p.cfg.Decrypt {
		header, err := p.sealer.Open(inFile, writer)
		if err != nil {
			return 0, fmt.Errorf("decrypting file: %w", err)
		}

		executable = header.Executable
	} else if err := p.sealer.Seal(inFile, writer, executable); err != nil {
		return 0, fmt.Errorf("encrypting file: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return 0, fmt.Errorf("flushing output: %w", err)
	}

	if err := inFile.Close(); err != nil {
		return 0, fmt.Errorf("closing input file: %w", err)
	}

	size, err = out.Commit(executable, p.cfg.PreserveTimestamps)
	if err != nil {
		return 0, fmt.Errorf("finalizing output: %w", err)
	}

	return size, nil
}

// outputPath generates the output file path based on the input filename
// and the configured suffixes for encryption/decryption.
func (p *Processor) outputPath(filename string) string {
	ext := p.cfg.Suffixes.Encrypt

	if p.cfg.Decrypt {
		filename = strings.TrimSuffix(filename, p.cfg.Suffixes.Encrypt)
		ext = p.cfg.Suffixes.Decrypt
	}

	return filepath.Join(filepath.Dir(filename),
		filepath.Base(filename)+ext)
}
