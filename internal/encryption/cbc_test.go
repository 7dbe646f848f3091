package encryption_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/idelchi/pwcrypt/internal/encryption"
)

const (
	vectorKey = "603deb1015ca71be2b73aef0857d77811f352c073b6108d72d9810a30914dff4"
	vectorIV  = "000102030405060708090a0b0c0d0e0f"
)

// Vector is a single AES-256-CBC known answer.
type Vector struct {
	Name       string `yaml:"name"`
	Key        string `yaml:"key"`
	IV         string `yaml:"iv"`
	Plaintext  string `yaml:"plaintext"`
	Ciphertext string `yaml:"ciphertext"`
}

// Patterned is a known answer for a long generated input.
type Patterned struct {
	Length int    `yaml:"length"`
	SHA256 string `yaml:"sha256"`
}

type vectors struct {
	Vectors   []Vector    `yaml:"vectors"`
	Patterned []Patterned `yaml:"patterned"`
}

func loadVectors(t *testing.T) vectors {
	t.Helper()

	data, err := os.ReadFile("testdata/cbc.yml")
	if err != nil {
		t.Fatalf("reading vectors: %v", err)
	}

	var v vectors
	if err := yaml.Unmarshal(data, &v); err != nil {
		t.Fatalf("parsing vectors: %v", err)
	}

	if len(v.Vectors) == 0 {
		t.Fatal("no vectors found")
	}

	return v
}

func unhex(t *testing.T, s string) []byte {
	t.Helper()

	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("decoding %q: %v", s, err)
	}

	return b
}

func pattern(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}

	return b
}

func TestKnownAnswers(t *testing.T) {
	t.Parallel()

	for _, v := range loadVectors(t).Vectors {
		t.Run(v.Name, func(t *testing.T) {
			t.Parallel()

			key, iv := unhex(t, v.Key), unhex(t, v.IV)
			plaintext, want := unhex(t, v.Plaintext), unhex(t, v.Ciphertext)

			got, err := encryption.Encrypt(plaintext, key, iv)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}

			if !bytes.Equal(got, want) {
				t.Fatalf("Encrypt = %x, want %x", got, want)
			}

			back, err := encryption.Decrypt(want, key, iv)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}

			if !bytes.Equal(back, plaintext) {
				t.Fatalf("Decrypt = %x, want %x", back, plaintext)
			}
		})
	}
}

func TestVectorsDecodeFullLength(t *testing.T) {
	t.Parallel()

	var zeroKey bool

	for _, v := range loadVectors(t).Vectors {
		key, iv := unhex(t, v.Key), unhex(t, v.IV)

		if len(key) != encryption.KeySize || len(iv) != encryption.IVSize {
			t.Fatalf("%s: key/iv lengths %d/%d", v.Name, len(key), len(iv))
		}

		if bytes.Equal(key, make([]byte, encryption.KeySize)) {
			zeroKey = true
		}
	}

	if !zeroKey {
		t.Fatal("all-zero key vector did not decode to 32 zero bytes")
	}
}

func TestPatternedKnownAnswers(t *testing.T) {
	t.Parallel()

	key, iv := unhex(t, vectorKey), unhex(t, vectorIV)

	for _, p := range loadVectors(t).Patterned {
		ciphertext, err := encryption.Encrypt(pattern(p.Length), key, iv)
		if err != nil {
			t.Fatalf("Encrypt(%d): %v", p.Length, err)
		}

		sum := sha256.Sum256(ciphertext)
		if got := hex.EncodeToString(sum[:]); got != p.SHA256 {
			t.Errorf("sha256(Encrypt(%d)) = %s, want %s", p.Length, got, p.SHA256)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	key, iv := unhex(t, vectorKey), unhex(t, vectorIV)

	for _, n := range []int{0, 1, 15, 16, 17, 4095, 4096, 4097, 32*1024 - 1, 32 * 1024, 32*1024 + 1, 200_001} {
		plaintext := pattern(n)

		ciphertext, err := encryption.Encrypt(plaintext, key, iv)
		if err != nil {
			t.Fatalf("Encrypt(%d): %v", n, err)
		}

		if len(ciphertext) != encryption.CiphertextLen(n) {
			t.Fatalf("len(Encrypt(%d)) = %d, want %d", n, len(ciphertext), encryption.CiphertextLen(n))
		}

		if padding := len(ciphertext) - n; padding < 1 || padding > encryption.BlockSize {
			t.Fatalf("padding for %d bytes = %d, want 1..16", n, padding)
		}

		again, err := encryption.Encrypt(plaintext, key, iv)
		if err != nil {
			t.Fatalf("Encrypt(%d) again: %v", n, err)
		}

		if !bytes.Equal(ciphertext, again) {
			t.Fatalf("Encrypt(%d) is not deterministic", n)
		}

		back, err := encryption.Decrypt(ciphertext, key, iv)
		if err != nil {
			t.Fatalf("Decrypt(%d): %v", n, err)
		}

		if !bytes.Equal(back, plaintext) {
			t.Fatalf("round trip of %d bytes differs", n)
		}
	}
}

// smallWrites feeds data to w in writes of the given size.
func smallWrites(t *testing.T, w io.WriteCloser, data []byte, size int) {
	t.Helper()

	for len(data) > 0 {
		n := min(size, len(data))

		if _, err := w.Write(data[:n]); err != nil {
			t.Fatalf("Write: %v", err)
		}

		data = data[n:]
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestWritersMatchSinglePass(t *testing.T) {
	t.Parallel()

	key, iv := unhex(t, vectorKey), unhex(t, vectorIV)
	plaintext := pattern(70_000)

	want, err := encryption.Encrypt(plaintext, key, iv)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	for _, size := range []int{1, 7, 16, 1000, 32 * 1024, 70_000} {
		var ciphertext bytes.Buffer

		enc, err := encryption.NewEncryptWriter(&ciphertext, key, iv)
		if err != nil {
			t.Fatalf("NewEncryptWriter: %v", err)
		}

		smallWrites(t, enc, plaintext, size)

		if !bytes.Equal(ciphertext.Bytes(), want) {
			t.Fatalf("chunked encryption with writes of %d differs from Encrypt", size)
		}

		var decrypted bytes.Buffer

		dec, err := encryption.NewDecryptWriter(&decrypted, key, iv)
		if err != nil {
			t.Fatalf("NewDecryptWriter: %v", err)
		}

		smallWrites(t, dec, want, size)

		if !bytes.Equal(decrypted.Bytes(), plaintext) {
			t.Fatalf("chunked decryption with writes of %d differs from plaintext", size)
		}
	}
}

func TestWriteAfterClose(t *testing.T) {
	t.Parallel()

	key, iv := unhex(t, vectorKey), unhex(t, vectorIV)

	enc, err := encryption.NewEncryptWriter(io.Discard, key, iv)
	if err != nil {
		t.Fatalf("NewEncryptWriter: %v", err)
	}

	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := enc.Write([]byte("late")); !errors.Is(err, encryption.ErrClosed) {
		t.Fatalf("Write after Close error = %v, want ErrClosed", err)
	}
}

func TestInvalidInputs(t *testing.T) {
	t.Parallel()

	key, iv := unhex(t, vectorKey), unhex(t, vectorIV)

	valid, err := encryption.Encrypt([]byte("attack at dawn"), key, iv)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	tests := []struct {
		name       string
		ciphertext []byte
		key        []byte
		iv         []byte
		want       error
	}{
		{name: "short key", ciphertext: valid, key: key[:16], iv: iv, want: encryption.ErrInvalidKeyLength},
		{name: "long key", ciphertext: valid, key: append(append([]byte{}, key...), 0), iv: iv, want: encryption.ErrInvalidKeyLength},
		{name: "short iv", ciphertext: valid, key: key, iv: iv[:8], want: encryption.ErrInvalidIVLength},
		{name: "empty ciphertext", ciphertext: nil, key: key, iv: iv, want: encryption.ErrInvalidBlockSize},
		{name: "unaligned ciphertext", ciphertext: valid[:15], key: key, iv: iv, want: encryption.ErrInvalidBlockSize},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := encryption.Decrypt(tc.ciphertext, tc.key, tc.iv)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Decrypt error = %v, want %v", err, tc.want)
			}

			if !errors.Is(err, encryption.ErrCipher) {
				t.Fatalf("Decrypt error = %v does not wrap ErrCipher", err)
			}

			if got != nil {
				t.Fatalf("Decrypt returned plaintext on error")
			}
		})
	}

	if _, err := encryption.Encrypt([]byte("x"), key[:31], iv); !errors.Is(err, encryption.ErrInvalidKeyLength) {
		t.Fatalf("Encrypt with short key error = %v", err)
	}

	if _, err := encryption.Encrypt([]byte("x"), key, nil); !errors.Is(err, encryption.ErrInvalidIVLength) {
		t.Fatalf("Encrypt without iv error = %v", err)
	}
}

func TestWrongKeyOrPaddingFailsGenerically(t *testing.T) {
	t.Parallel()

	key, iv := unhex(t, vectorKey), unhex(t, vectorIV)

	// A full block of plaintext is followed by a block of sixteen 0x10 padding bytes.
	ciphertext, err := encryption.Encrypt(bytes.Repeat([]byte{0x42}, 16), key, iv)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	// Flipping bits of the first ciphertext block flips the same bits of the padding block.
	tests := []struct {
		name  string
		index int
		mask  byte
	}{
		{name: "padding length too large", index: 15, mask: 0x01},
		{name: "padding length zero", index: 15, mask: 0x10},
		{name: "inner padding byte", index: 0, mask: 0x01},
	}

	for _, tc := range tests {
		tampered := bytes.Clone(ciphertext)
		tampered[tc.index] ^= tc.mask

		if _, err := encryption.Decrypt(tampered, key, iv); !errors.Is(err, encryption.ErrInvalidPadding) {
			t.Fatalf("%s: Decrypt error = %v, want ErrInvalidPadding", tc.name, err)
		}
	}

	wrong := bytes.Clone(key)
	wrong[0] ^= 0xff

	if plain, err := encryption.Decrypt(ciphertext, wrong, iv); err == nil && bytes.Equal(plain, bytes.Repeat([]byte{0x42}, 16)) {
		t.Fatal("Decrypt with wrong key recovered the plaintext")
	}
}

func TestSingleByteTamper(t *testing.T) {
	t.Parallel()

	key, iv := unhex(t, vectorKey), unhex(t, vectorIV)
	plaintext := pattern(100)

	ciphertext, err := encryption.Encrypt(plaintext, key, iv)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	for i := range ciphertext {
		tampered := bytes.Clone(ciphertext)
		tampered[i] ^= 0x01

		got, err := encryption.Decrypt(tampered, key, iv)

		switch {
		case err != nil && !errors.Is(err, encryption.ErrInvalidPadding):
			t.Fatalf("byte %d: error = %v, want ErrInvalidPadding", i, err)
		case err == nil && bytes.Equal(got, plaintext):
			t.Fatalf("byte %d: tampered ciphertext decrypted to the original", i)
		}
	}
}
