// Package kdf turns passwords into fixed-length key material with Argon2id.
//
// Every call to Derive draws a fresh salt from the configured randomness source.
// The salt is not secret and is meant to be stored next to whatever the key protects,
// so that DeriveWithSalt can reproduce the same key later.
//
// Subkeys for distinct purposes are separated with Expand, which runs HKDF-SHA256
// over the Argon2id output with a context label.
package kdf
