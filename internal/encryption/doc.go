// Package encryption implements AES-256-CBC with PKCS#7 padding over bounded buffers,
// and a sealed file envelope built on top of it.
//
// Encrypt, Decrypt and the writer/stream variants are the raw cipher: the caller
// supplies a 32-byte key and a 16-byte IV and gets unauthenticated CBC ciphertext.
// Seal and Open wrap the cipher in a self-describing envelope that stores the KDF
// salt and IV next to the ciphertext and authenticates everything with HMAC-SHA256
// (or uses AES-SIV in deterministic mode).
package encryption
