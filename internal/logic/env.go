package logic

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/idelchi/pwcrypt/internal/logging"
)

var (
	// ErrNoPassword is returned when a password is needed but no source can provide one.
	ErrNoPassword = errors.New("no password available")
	// ErrPasswordMismatch is returned when the confirmation differs from the password.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrVerification is returned when a password does not match a stored hash.
	ErrVerification = errors.New("password does not match hash")
)

// Prompter asks the user for a secret and returns it without the trailing newline.
type Prompter func(prompt string) ([]byte, error)

// Env holds the streams, prompt and logger the commands run against.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	// Prompt is consulted when no other password source is configured. Nil disables prompting.
	Prompt Prompter
	Logger *logrus.Logger
}

// DefaultEnv returns an Env bound to the process streams and the controlling terminal.
func DefaultEnv() *Env {
	return &Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Prompt: TerminalPrompter(os.Stdin, os.Stderr),
		Logger: logging.New(os.Stderr, false),
	}
}

// log returns a component entry, falling back to a silent logger.
func (e *Env) log(component string) *logrus.Entry {
	if e.Logger == nil {
		return logging.Discard()
	}

	return logging.Component(e.Logger, component)
}

// TerminalPrompter reads secrets from in with echo disabled, writing prompts to out.
// It fails with ErrNoPassword when in is not a terminal.
func TerminalPrompter(in *os.File, out io.Writer) Prompter {
	return func(prompt string) ([]byte, error) {
		fd := int(in.Fd()) //nolint:gosec // file descriptors fit in int

		if !term.IsTerminal(fd) {
			return nil, fmt.Errorf("%w: stdin is not a terminal, use PWCRYPT_PASSWORD or --password-file", ErrNoPassword)
		}

		fmt.Fprint(out, prompt)

		password, err := term.ReadPassword(fd)

		fmt.Fprintln(out)

		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}

		return password, nil
	}
}
