package password

import (
	"crypto/subtle"
	"fmt"

	"github.com/idelchi/pwcrypt/internal/kdf"
	"github.com/idelchi/pwcrypt/internal/secret"
)

// Hasher produces and verifies PHC-encoded Argon2id password hashes.
type Hasher struct {
	deriver *kdf.Deriver
}

// NewHasher returns a Hasher producing hashes with params.
func NewHasher(params kdf.Params, opts ...kdf.Option) (*Hasher, error) {
	deriver, err := kdf.New(params, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating hasher: %w", err)
	}

	return &Hasher{deriver: deriver}, nil
}

// Hash returns a PHC string for password with a fresh random salt.
func (h *Hasher) Hash(password []byte) (string, error) {
	key, err := h.deriver.Derive(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	defer key.Wipe()

	encoded := &Encoded{Params: key.Params, Salt: key.Salt, Digest: key.Material}

	return encoded.String(), nil
}

// Verify reports whether password matches the stored hash. It returns false for
// hashes that cannot be parsed. The digest comparison is constant time.
func (h *Hasher) Verify(password []byte, stored string) bool {
	return Verify(password, stored)
}

// NeedsRehash reports whether stored was produced with parameters other than the
// Hasher's, or cannot be parsed at all.
func (h *Hasher) NeedsRehash(stored string) bool {
	parsed, err := Parse(stored)
	if err != nil {
		return true
	}

	want := h.deriver.Params()

	return parsed.Params.Time != want.Time ||
		parsed.Params.Memory != want.Memory ||
		parsed.Params.Threads != want.Threads ||
		parsed.Params.KeyLen != want.KeyLen ||
		parsed.Params.SaltLen != want.SaltLen
}

// Verify checks password against a stored PHC string using the parameters it carries.
func Verify(password []byte, stored string) bool {
	if len(password) == 0 {
		return false
	}

	parsed, err := Parse(stored)
	if err != nil {
		return false
	}

	computed, err := kdf.IDKey(password, parsed.Salt, parsed.Params)
	if err != nil {
		return false
	}
	defer secret.Wipe(computed)

	return subtle.ConstantTimeCompare(computed, parsed.Digest) == 1
}
