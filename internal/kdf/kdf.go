package kdf

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"

	"github.com/idelchi/pwcrypt/internal/secret"
)

// Key is the output of a derivation together with the salt that produced it.
type Key struct {
	// Material is the derived key, Params.KeyLen bytes long.
	Material []byte
	// Salt is the random salt used for this derivation.
	Salt []byte
	// Params are the cost parameters used.
	Params Params
}

// Wipe zeroes the key material.
func (k *Key) Wipe() {
	if k == nil {
		return
	}

	secret.Wipe(k.Material)
}

// Option configures a Deriver.
type Option func(*Deriver)

// WithRand sets the source used for salts. Tests use it for reproducible output.
func WithRand(r io.Reader) Option {
	return func(d *Deriver) {
		if r != nil {
			d.rand = r
		}
	}
}

// Deriver derives keys from passwords. It holds no mutable state and is safe for
// concurrent use as long as the randomness source is.
type Deriver struct {
	params Params
	rand   io.Reader
}

// New returns a Deriver for the given parameters.
func New(params Params, opts ...Option) (*Deriver, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	deriver := &Deriver{
		params: params,
		rand:   rand.Reader,
	}

	for _, opt := range opts {
		opt(deriver)
	}

	return deriver, nil
}

// Params returns the parameters of the Deriver.
func (d *Deriver) Params() Params {
	return d.params
}

// Rand returns the randomness source of the Deriver.
func (d *Deriver) Rand() io.Reader {
	return d.rand
}

// Salt draws a fresh salt of the configured length.
func (d *Deriver) Salt() ([]byte, error) {
	salt := make([]byte, d.params.SaltLen)
	if _, err := io.ReadFull(d.rand, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	return salt, nil
}

// Derive generates a fresh salt and derives a key from password.
func (d *Deriver) Derive(password []byte) (*Key, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	salt, err := d.Salt()
	if err != nil {
		return nil, err
	}

	return d.DeriveWithSalt(password, salt)
}

// DeriveWithSalt derives a key from password and a previously generated salt.
func (d *Deriver) DeriveWithSalt(password, salt []byte) (*Key, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	if uint32(len(salt)) != d.params.SaltLen { //nolint:gosec // salt lengths are bounded by Validate
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrSaltLength, len(salt), d.params.SaltLen)
	}

	material, err := IDKey(password, salt, d.params)
	if err != nil {
		return nil, err
	}

	saltCopy := make([]byte, len(salt))
	copy(saltCopy, salt)

	return &Key{Material: material, Salt: saltCopy, Params: d.params}, nil
}

// IDKey runs Argon2id with the given parameters. Parameters are validated first,
// since the underlying implementation panics on some invalid combinations.
func IDKey(password, salt []byte, params Params) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return argon2.IDKey(password, salt, params.Time, params.Memory, params.Threads, params.KeyLen), nil
}

// Expand derives n bytes bound to label from a high-entropy secret with HKDF-SHA256.
func Expand(secretKey []byte, label string, n int) ([]byte, error) {
	if len(secretKey) == 0 {
		return nil, fmt.Errorf("%w: empty input key material", ErrDerivation)
	}

	out := make([]byte, n)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secretKey, nil, []byte(label)), out); err != nil {
		return nil, fmt.Errorf("%w: expanding %q: %w", ErrDerivation, label, err)
	}

	return out, nil
}
