package logic

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/idelchi/gogen/pkg/key"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/encryption"
	"github.com/idelchi/pwcrypt/internal/kdf"
	"github.com/idelchi/pwcrypt/internal/secret"
)

// keySource builds the envelope key source: a raw key when one is configured,
// otherwise a password. The returned cleanup wipes the secret.
func keySource(cfg *config.Config, env *Env, confirm bool) (encryption.KeySource, func(), error) {
	if cfg.Key.Set() {
		raw, err := readKey(cfg.Key)
		if err != nil {
			return nil, func() {}, err
		}

		source, err := encryption.NewRawKeySource(raw)
		if err != nil {
			secret.Wipe(raw)

			return nil, func() {}, fmt.Errorf("reading key: %w", err)
		}

		return source, source.Wipe, nil
	}

	locked, err := lockedPassword(cfg.Password, env, confirm)
	if err != nil {
		return nil, func() {}, err
	}

	deriver, err := kdf.New(cfg.KDF.Params())
	if err != nil {
		locked.Destroy()

		return nil, func() {}, fmt.Errorf("configuring key derivation: %w", err)
	}

	source, err := encryption.NewPasswordSource(locked.Bytes(), deriver)
	if err != nil {
		locked.Destroy()

		return nil, func() {}, err
	}

	return source, locked.Destroy, nil
}

// readKey decodes the hex key given directly or through a file.
func readKey(k config.Key) ([]byte, error) {
	encoded := k.String

	if k.File != "" {
		data, err := os.ReadFile(k.File)
		if err != nil {
			return nil, fmt.Errorf("reading key file: %w", err)
		}

		encoded = string(data)
	}

	raw, err := key.FromHex(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("reading key: %w", err)
	}

	return raw, nil
}

// lockedPassword reads the password and moves it into guarded memory.
func lockedPassword(p config.Password, env *Env, confirm bool) (*secret.Locked, error) {
	password, err := readPassword(p, env, confirm)
	if err != nil {
		return nil, err
	}

	if len(password) == 0 {
		return nil, kdf.ErrEmptyPassword
	}

	return secret.NewLocked(password), nil
}

// readPassword takes the password from the environment, a file, or the prompt, in
// that order. Prompted passwords are asked twice when confirm is set.
func readPassword(p config.Password, env *Env, confirm bool) ([]byte, error) {
	switch {
	case p.String != "":
		return []byte(p.String), nil
	case p.File != "":
		data, err := os.ReadFile(p.File)
		if err != nil {
			return nil, fmt.Errorf("reading password file: %w", err)
		}

		trimmed := bytes.TrimRight(data, "\r\n")
		password := bytes.Clone(trimmed)

		secret.Wipe(data)

		return password, nil
	case env.Prompt == nil:
		return nil, ErrNoPassword
	}

	password, err := env.Prompt("Password: ")
	if err != nil {
		return nil, err
	}

	if !confirm {
		return password, nil
	}

	again, err := env.Prompt("Confirm password: ")
	if err != nil {
		secret.Wipe(password)

		return nil, err
	}
	defer secret.Wipe(again)

	if !bytes.Equal(password, again) {
		secret.Wipe(password)

		return nil, ErrPasswordMismatch
	}

	return password, nil
}
