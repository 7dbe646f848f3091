package encryption

import (
	"errors"
	"fmt"
)

var (
	// ErrCipher is the parent of every error reported by the raw cipher.
	ErrCipher = errors.New("cipher error")
	// ErrInvalidKeyLength is returned when a key is not KeySize bytes.
	ErrInvalidKeyLength = fmt.Errorf("%w: invalid key length", ErrCipher)
	// ErrInvalidIVLength is returned when an IV is not IVSize bytes.
	ErrInvalidIVLength = fmt.Errorf("%w: invalid IV length", ErrCipher)
	// ErrInvalidPadding is returned when PKCS#7 padding is malformed.
	// It carries no detail about where validation failed.
	ErrInvalidPadding = fmt.Errorf("%w: decryption failed", ErrCipher)
	// ErrInvalidBlockSize is returned when ciphertext is empty or not aligned with the block size.
	ErrInvalidBlockSize = fmt.Errorf("%w: ciphertext is not a non-zero multiple of block size", ErrCipher)
	// ErrClosed is returned when writing to a closed cipher writer.
	ErrClosed = fmt.Errorf("%w: write to closed cipher writer", ErrCipher)

	// ErrProcessing indicates a malformed or unsupported envelope.
	ErrProcessing = errors.New("envelope processing error")
	// ErrAuthentication is returned when a sealed envelope fails authentication,
	// whether due to tampering, truncation, or a wrong password or key.
	ErrAuthentication = errors.New("authentication failed")
	// ErrKeySource is returned when the key source does not match the envelope.
	ErrKeySource = errors.New("key source mismatch")
	// ErrBatch is returned when at least one file of a batch failed or was skipped.
	ErrBatch = errors.New("batch incomplete")
)
