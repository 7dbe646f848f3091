// Package config holds the runtime configuration shared by all commands.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/idelchi/pwcrypt/internal/kdf"
)

// ErrUsage is returned for flag combinations that cannot work together.
var ErrUsage = errors.New("invalid usage")

// Config is populated from flags and PWCRYPT_* environment variables.
type Config struct {
	// Show prints the configuration and exits.
	Show bool
	// Parallel is the number of files processed concurrently.
	Parallel int `validate:"gte=1"`
	// Quiet suppresses non-error output.
	Quiet bool
	// Verbose enables debug logging.
	Verbose bool
	// Delete removes the input file after successful processing.
	Delete bool
	// Dry lists what would be processed without processing it.
	Dry bool
	// Stats prints a summary at the end.
	Stats bool
	// PreserveTimestamps copies the modification time of inputs to outputs.
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`
	// Timeout bounds how long new files keep being started. Zero means no limit.
	Timeout time.Duration `validate:"gte=0"`

	Key      Key      `mapstructure:",squash"`
	Password Password `mapstructure:",squash"`
	KDF      KDF      `mapstructure:",squash"`
	Suffixes Suffixes `mapstructure:",squash"`

	Include     []string
	Exclude     []string
	IncludeFrom string `mapstructure:"include-from"`
	ExcludeFrom string `mapstructure:"exclude-from"`

	// Deterministic seals with AES-SIV instead of CBC-HMAC. Requires a raw key.
	Deterministic bool

	// Decrypt is set by the decrypt command.
	Decrypt bool `mapstructure:"-"`

	// Files are the positional arguments.
	Files []string `mapstructure:"-" validate:"min=1"`
}

// Key is a hex-encoded 32-byte key, given directly or through a file.
type Key struct {
	String string `label:"--key"      mapstructure:"key"      validate:"exclusive=File"`
	File   string `label:"--key-file" mapstructure:"key-file"`
}

// Set reports whether a key was configured.
func (k Key) Set() bool {
	return k.String != "" || k.File != ""
}

// Password is taken from the environment, a file, or an interactive prompt.
type Password struct {
	String string `label:"PWCRYPT_PASSWORD" mapstructure:"password"      validate:"exclusive=File" yaml:"-"`
	File   string `label:"--password-file"  mapstructure:"password-file"`
}

// Set reports whether a non-interactive password source was configured.
func (p Password) Set() bool {
	return p.String != "" || p.File != ""
}

// KDF holds the Argon2id cost used when sealing with a password.
type KDF struct {
	Time    uint32 `mapstructure:"kdf-time"    validate:"gte=1,lte=16"`
	Memory  uint32 `mapstructure:"kdf-memory"  validate:"gte=8,lte=1048576"`
	Threads uint8  `mapstructure:"kdf-threads" validate:"gte=1"`
}

// Params converts the configured cost into KDF parameters for 32-byte keys.
func (k KDF) Params() kdf.Params {
	params := kdf.DefaultParams()

	params.Time = k.Time
	params.Memory = k.Memory
	params.Threads = k.Threads

	return params
}

// Suffixes are appended to output file names.
type Suffixes struct {
	Encrypt string `mapstructure:"encrypt-ext" validate:"required"`
	Decrypt string `mapstructure:"decrypt-ext"`
}

// Validate checks struct tags and cross-field rules for the file commands.
func (c *Config) Validate() error {
	validate, err := newValidator()
	if err != nil {
		return err
	}

	if err := check(validate, c); err != nil {
		return err
	}

	if c.Key.Set() && c.Password.Set() {
		return fmt.Errorf("%w: a key and a password are mutually exclusive", ErrUsage)
	}

	if c.Deterministic && !c.Key.Set() {
		return fmt.Errorf("%w: deterministic mode requires --key or --key-file", ErrUsage)
	}

	if err := c.KDF.Params().Validate(); err != nil {
		return fmt.Errorf("validating kdf parameters: %w", err)
	}

	return nil
}

// ValidateCredentials checks only what hashing and verifying need: a password source
// and the Argon2id cost.
func (c *Config) ValidateCredentials() error {
	validate, err := newValidator()
	if err != nil {
		return err
	}

	for _, part := range []any{c.Password, c.KDF} {
		if err := check(validate, part); err != nil {
			return err
		}
	}

	if c.Key.Set() {
		return fmt.Errorf("%w: password hashes take a password, not a key", ErrUsage)
	}

	if err := c.KDF.Params().Validate(); err != nil {
		return fmt.Errorf("validating kdf parameters: %w", err)
	}

	return nil
}
