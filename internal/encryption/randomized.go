package encryption

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/idelchi/pwcrypt/internal/kdf"
	"github.com/idelchi/pwcrypt/internal/secret"
)

const (
	randomizedLabel = "pwcrypt/v1/cbc-hmac"
	envelopeTagSize = sha256.Size
)

// deriveRandomizedKeys splits the master key into an encryption and a MAC key.
func deriveRandomizedKeys(master []byte) ([]byte, []byte, error) {
	derived, err := kdf.Expand(master, randomizedLabel, 2*KeySize)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving randomized keys: %w", err)
	}

	return derived[:KeySize], derived[KeySize:], nil
}

// encryptRandomized writes IV | CBC ciphertext | HMAC(header | IV | ciphertext).
func (s *Sealer) encryptRandomized(reader io.Reader, writer io.Writer, header, master []byte) error {
	encKey, macKey, err := deriveRandomizedKeys(master)
	if err != nil {
		return err
	}
	defer secret.Wipe(encKey, macKey)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(header)

	initializationVector := make([]byte, IVSize)
	if _, err := io.ReadFull(s.rand, initializationVector); err != nil {
		return fmt.Errorf("generating IV: %w", err)
	}

	if _, err := writer.Write(initializationVector); err != nil {
		return fmt.Errorf("writing IV: %w", err)
	}

	mac.Write(initializationVector)

	if err := EncryptStream(reader, io.MultiWriter(writer, mac), encKey, initializationVector); err != nil {
		return fmt.Errorf("encrypting: %w", err)
	}

	if _, err := writer.Write(mac.Sum(nil)); err != nil {
		return fmt.Errorf("writing authentication tag: %w", err)
	}

	return nil
}

// decryptRandomized verifies the tag before the padding is looked at, so every
// modification is reported as the same authentication failure. Plaintext preceding
// the final buffer reaches writer before verification completes; callers must
// discard it on error.
func (s *Sealer) decryptRandomized(reader io.Reader, writer io.Writer, header, master []byte) error {
	encKey, macKey, err := deriveRandomizedKeys(master)
	if err != nil {
		return err
	}
	defer secret.Wipe(encKey, macKey)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(header)

	initializationVector := make([]byte, IVSize)
	if _, err := io.ReadFull(reader, initializationVector); err != nil {
		return fmt.Errorf("%w: reading IV: %w", ErrAuthentication, err)
	}

	mac.Write(initializationVector)

	dec, err := newDecryptWriter(writer, encKey, initializationVector)
	if err != nil {
		return err
	}

	tag := newHoldbackWriter(io.MultiWriter(mac, dec), envelopeTagSize)

	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := io.CopyBuffer(onlyWriter{tag}, reader, *buf); err != nil {
		dec.discard()

		return fmt.Errorf("reading ciphertext: %w", err)
	}

	if len(tag.held) != envelopeTagSize || !hmac.Equal(mac.Sum(nil), tag.held) {
		dec.discard()

		return ErrAuthentication
	}

	if err := dec.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthentication, err)
	}

	return nil
}

// holdbackWriter forwards everything but the last size bytes written to it.
type holdbackWriter struct {
	w    io.Writer
	held []byte
	size int
}

func newHoldbackWriter(w io.Writer, size int) *holdbackWriter {
	return &holdbackWriter{w: w, held: make([]byte, 0, size), size: size}
}

func (h *holdbackWriter) Write(p []byte) (int, error) {
	if len(h.held)+len(p) <= h.size {
		h.held = append(h.held, p...)

		return len(p), nil
	}

	excess := len(h.held) + len(p) - h.size
	fromHeld := min(excess, len(h.held))

	if fromHeld > 0 {
		if _, err := h.w.Write(h.held[:fromHeld]); err != nil {
			return 0, err
		}

		h.held = append(h.held[:0], h.held[fromHeld:]...)
	}

	fromInput := excess - fromHeld

	if _, err := h.w.Write(p[:fromInput]); err != nil {
		return 0, err
	}

	h.held = append(h.held, p[fromInput:]...)

	return len(p), nil
}
