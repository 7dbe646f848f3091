package encryption

import (
	"fmt"

	"github.com/idelchi/pwcrypt/internal/kdf"
	"github.com/idelchi/pwcrypt/internal/secret"
)

// KeySource produces the master key of an envelope. The caller wipes the returned key.
type KeySource interface {
	// SealKey returns a master key for a new envelope and records in h how to recover it.
	SealKey(h *Header) ([]byte, error)
	// OpenKey recovers the master key of an existing envelope.
	OpenKey(h *Header) ([]byte, error)
}

// PasswordSource derives a master key per envelope from a password with Argon2id
// and a fresh salt.
type PasswordSource struct {
	password []byte
	deriver  *kdf.Deriver
}

// NewPasswordSource returns a PasswordSource. The password is referenced, not copied;
// the caller owns and eventually wipes it.
func NewPasswordSource(password []byte, deriver *kdf.Deriver) (*PasswordSource, error) {
	if len(password) == 0 {
		return nil, kdf.ErrEmptyPassword
	}

	if deriver.Params().KeyLen != KeySize {
		return nil, fmt.Errorf("%w: master key must be %d bytes", kdf.ErrDerivation, KeySize)
	}

	return &PasswordSource{password: password, deriver: deriver}, nil
}

// SealKey derives a key with a fresh salt.
func (p *PasswordSource) SealKey(h *Header) ([]byte, error) {
	key, err := p.deriver.Derive(p.password)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	h.KDF = KDFArgon2id
	h.Params = key.Params
	h.Salt = key.Salt

	return key.Material, nil
}

// OpenKey re-derives the key with the salt and parameters stored in h.
func (p *PasswordSource) OpenKey(h *Header) ([]byte, error) {
	if h.KDF != KDFArgon2id {
		return nil, fmt.Errorf("%w: envelope was sealed with a raw key, not a password", ErrKeySource)
	}

	key, err := kdf.IDKey(p.password, h.Salt, h.Params)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}

	return key, nil
}

// RawKeySource uses a caller-supplied 32-byte key as the master key.
type RawKeySource struct {
	key []byte
}

// NewRawKeySource returns a RawKeySource. The key is referenced, not copied.
func NewRawKeySource(key []byte) (*RawKeySource, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(key), KeySize)
	}

	return &RawKeySource{key: key}, nil
}

// SealKey returns a copy of the raw key.
func (r *RawKeySource) SealKey(h *Header) ([]byte, error) {
	h.KDF = KDFNone
	h.Params = kdf.Params{}
	h.Salt = nil

	return r.copyKey(), nil
}

// OpenKey returns a copy of the raw key.
func (r *RawKeySource) OpenKey(h *Header) ([]byte, error) {
	if h.KDF != KDFNone {
		return nil, fmt.Errorf("%w: envelope was sealed with a password, not a raw key", ErrKeySource)
	}

	return r.copyKey(), nil
}

func (r *RawKeySource) copyKey() []byte {
	key := make([]byte, len(r.key))
	copy(key, r.key)

	return key
}

// Wipe zeroes the raw key.
func (r *RawKeySource) Wipe() {
	secret.Wipe(r.key)
}
