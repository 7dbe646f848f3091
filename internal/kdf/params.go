package kdf

import (
	"fmt"
	"math"
)

// Version is the Argon2 version implemented by golang.org/x/crypto/argon2.
const Version = 0x13

const (
	// DefaultTime is the default number of passes over memory.
	DefaultTime = 2
	// DefaultMemory is the default memory cost in KiB.
	DefaultMemory = 19 * 1024
	// DefaultThreads is the default degree of parallelism.
	DefaultThreads = 1
	// DefaultKeyLen is the default output length, sized for AES-256.
	DefaultKeyLen = 32
	// DefaultSaltLen is the default salt length.
	DefaultSaltLen = 16
)

const (
	minKeyLen  = 4
	minSaltLen = 8
	maxSaltLen = math.MaxUint8
	// MaxMemory caps the memory cost accepted from hashes and envelope headers (1 GiB).
	MaxMemory = 1024 * 1024
	// MaxTime caps the number of passes accepted from hashes and envelope headers.
	MaxTime = 16
)

// Params are the Argon2id cost parameters.
type Params struct {
	// Time is the number of passes over memory.
	Time uint32
	// Memory is the memory cost in KiB.
	Memory uint32
	// Threads is the degree of parallelism.
	Threads uint8
	// KeyLen is the length of the derived key in bytes.
	KeyLen uint32
	// SaltLen is the length of generated salts in bytes.
	SaltLen uint32
}

// DefaultParams returns Argon2id v19 with m=19456, t=2, p=1 and a 32-byte output.
func DefaultParams() Params {
	return Params{
		Time:    DefaultTime,
		Memory:  DefaultMemory,
		Threads: DefaultThreads,
		KeyLen:  DefaultKeyLen,
		SaltLen: DefaultSaltLen,
	}
}

// Validate reports parameter combinations that argon2 would reject or panic on.
func (p Params) Validate() error {
	switch {
	case p.Time < 1:
		return fmt.Errorf("%w: time must be at least 1", ErrDerivation)
	case p.Time > MaxTime:
		return fmt.Errorf("%w: time must be at most %d", ErrDerivation, MaxTime)
	case p.Threads < 1:
		return fmt.Errorf("%w: threads must be at least 1", ErrDerivation)
	case p.Memory < 8*uint32(p.Threads):
		return fmt.Errorf("%w: memory must be at least %d KiB for %d threads", ErrDerivation, 8*uint32(p.Threads), p.Threads)
	case p.Memory > MaxMemory:
		return fmt.Errorf("%w: memory must be at most %d KiB", ErrDerivation, MaxMemory)
	case p.KeyLen < minKeyLen:
		return fmt.Errorf("%w: key length must be at least %d bytes", ErrDerivation, minKeyLen)
	case p.SaltLen < minSaltLen || p.SaltLen > maxSaltLen:
		return fmt.Errorf("%w: salt length must be between %d and %d bytes", ErrDerivation, minSaltLen, maxSaltLen)
	}

	return nil
}

// String renders the cost parameters the way they appear in encoded hashes.
func (p Params) String() string {
	return fmt.Sprintf("m=%d,t=%d,p=%d", p.Memory, p.Time, p.Threads)
}
