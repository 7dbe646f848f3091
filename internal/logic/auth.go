package logic

import (
	"fmt"

	"github.com/idelchi/gogen/pkg/key"

	"github.com/idelchi/pwcrypt/internal/config"
	"github.com/idelchi/pwcrypt/internal/encryption"
	"github.com/idelchi/pwcrypt/internal/password"
	"github.com/idelchi/pwcrypt/internal/secret"
)

// RunHash prints an Argon2id hash of the password in PHC format.
func RunHash(cfg *config.Config, env *Env) error {
	locked, err := lockedPassword(cfg.Password, env, true)
	if err != nil {
		return err
	}
	defer locked.Destroy()

	hasher, err := password.NewHasher(cfg.KDF.Params())
	if err != nil {
		return fmt.Errorf("configuring hasher: %w", err)
	}

	encoded, err := hasher.Hash(locked.Bytes())
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	fmt.Fprintln(env.Stdout, encoded)

	return nil
}

// RunVerify checks the password against a stored hash. A mismatch is reported as
// ErrVerification. A valid hash with parameters weaker or stronger than the
// configured ones is flagged with a warning.
func RunVerify(cfg *config.Config, env *Env, encoded string) error {
	locked, err := lockedPassword(cfg.Password, env, false)
	if err != nil {
		return err
	}
	defer locked.Destroy()

	if !password.Verify(locked.Bytes(), encoded) {
		return ErrVerification
	}

	if !cfg.Quiet {
		fmt.Fprintln(env.Stdout, "OK")
	}

	hasher, err := password.NewHasher(cfg.KDF.Params())
	if err != nil {
		return fmt.Errorf("configuring hasher: %w", err)
	}

	if hasher.NeedsRehash(encoded) {
		env.log("verify").
			WithField("configured", cfg.KDF.Params().String()).
			Warn("hash parameters differ from the configured cost, consider rehashing")
	}

	return nil
}

// RunGenerate prints a random hex-encoded key for --key and --key-file.
func RunGenerate(env *Env) error {
	generated, err := key.New(encryption.KeySize)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}
	defer secret.Wipe(generated)

	fmt.Fprintln(env.Stdout, generated.AsHex())

	return nil
}
