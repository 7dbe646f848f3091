package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"

	"github.com/idelchi/pwcrypt/internal/secret"
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32
	// BlockSize is the AES block size in bytes.
	BlockSize = aes.BlockSize
	// IVSize is the CBC initialization vector size in bytes.
	IVSize = aes.BlockSize
)

// newBlock checks key and iv lengths and returns the AES block cipher.
func newBlock(key, iv []byte) (cipher.Block, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyLength, len(key), KeySize)
	}

	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidIVLength, len(iv), IVSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}

	return block, nil
}

// CiphertextLen returns the ciphertext length for n bytes of plaintext.
func CiphertextLen(n int) int {
	return n + BlockSize - n%BlockSize
}

// Encrypt encrypts plaintext with AES-256-CBC and PKCS#7 padding.
func Encrypt(plaintext, key, iv []byte) ([]byte, error) {
	var out bytes.Buffer

	out.Grow(CiphertextLen(len(plaintext)))

	if err := EncryptStream(bytes.NewReader(plaintext), &out, key, iv); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// Decrypt reverses Encrypt. It fails closed: on any error no plaintext is returned.
func Decrypt(ciphertext, key, iv []byte) ([]byte, error) {
	if _, err := newBlock(key, iv); err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%BlockSize != 0 {
		return nil, ErrInvalidBlockSize
	}

	var out bytes.Buffer

	out.Grow(len(ciphertext))

	if err := DecryptStream(bytes.NewReader(ciphertext), &out, key, iv); err != nil {
		secret.Wipe(out.Bytes())

		return nil, err
	}

	return out.Bytes(), nil
}

// EncryptStream reads plaintext from r until EOF and writes ciphertext to w.
func EncryptStream(r io.Reader, w io.Writer, key, iv []byte) error {
	enc, err := NewEncryptWriter(w, key, iv)
	if err != nil {
		return err
	}

	return pump(r, enc)
}

// DecryptStream reads ciphertext from r until EOF and writes plaintext to w.
// Plaintext of all but the final chunk is written before the padding is checked.
func DecryptStream(r io.Reader, w io.Writer, key, iv []byte) error {
	dec, err := NewDecryptWriter(w, key, iv)
	if err != nil {
		return err
	}

	return pump(r, dec)
}

// pump copies r into wc through a pooled buffer and closes wc.
func pump(r io.Reader, wc io.WriteCloser) error {
	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := io.CopyBuffer(onlyWriter{wc}, r, *buf); err != nil {
		wc.Close() //nolint:errcheck,gosec // the copy error takes precedence

		return err
	}

	return wc.Close()
}

// onlyWriter hides any ReadFrom method so io.CopyBuffer uses the supplied buffer.
type onlyWriter struct {
	io.Writer
}

// encryptWriter encrypts through a fixed buffer. Full buffers are encrypted and
// flushed as they fill; Close pads and flushes the remainder.
type encryptWriter struct {
	w      io.Writer
	mode   cipher.BlockMode
	buf    *[]byte
	n      int
	closed bool
}

// NewEncryptWriter returns a writer that encrypts everything written to it into w.
// Close must be called to emit the final padded block; it does not close w.
func NewEncryptWriter(w io.Writer, key, iv []byte) (io.WriteCloser, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}

	return &encryptWriter{
		w:    w,
		mode: cipher.NewCBCEncrypter(block, iv),
		buf:  getBuffer(),
	}, nil
}

func (e *encryptWriter) Write(p []byte) (int, error) {
	if e.closed {
		return 0, ErrClosed
	}

	written := 0

	for len(p) > 0 {
		buf := *e.buf

		copied := copy(buf[e.n:], p)
		e.n += copied
		p = p[copied:]

		if e.n == len(buf) {
			if err := e.flush(e.n); err != nil {
				return written, err
			}
		}

		written += copied
	}

	return written, nil
}

func (e *encryptWriter) flush(n int) error {
	buf := (*e.buf)[:n]

	e.mode.CryptBlocks(buf, buf)
	e.n = 0

	if _, err := e.w.Write(buf); err != nil {
		return fmt.Errorf("writing ciphertext: %w", err)
	}

	return nil
}

// Close pads and flushes the final block. Buffers never fill completely before
// Close, so there is always room for the padding.
func (e *encryptWriter) Close() error {
	if e.closed {
		return nil
	}

	e.closed = true
	defer putBuffer(e.buf)

	return e.flush(pkcs7PadInPlace(*e.buf, e.n, BlockSize))
}

// decryptWriter decrypts through a fixed buffer, always holding back the last
// block so that Close can strip the padding.
type decryptWriter struct {
	w      io.Writer
	mode   cipher.BlockMode
	buf    *[]byte
	n      int
	closed bool
}

// NewDecryptWriter returns a writer that decrypts everything written to it into w.
// Close validates and strips the padding; it does not close w.
func NewDecryptWriter(w io.Writer, key, iv []byte) (io.WriteCloser, error) {
	return newDecryptWriter(w, key, iv)
}

func newDecryptWriter(w io.Writer, key, iv []byte) (*decryptWriter, error) {
	block, err := newBlock(key, iv)
	if err != nil {
		return nil, err
	}

	return &decryptWriter{
		w:    w,
		mode: cipher.NewCBCDecrypter(block, iv),
		buf:  getBuffer(),
	}, nil
}

func (d *decryptWriter) Write(p []byte) (int, error) {
	if d.closed {
		return 0, ErrClosed
	}

	written := 0

	for len(p) > 0 {
		buf := *d.buf

		copied := copy(buf[d.n:], p)
		d.n += copied
		p = p[copied:]

		if d.n == len(buf) {
			keep := len(buf) - BlockSize
			chunk := buf[:keep]

			d.mode.CryptBlocks(chunk, chunk)

			if _, err := d.w.Write(chunk); err != nil {
				return written, fmt.Errorf("writing plaintext: %w", err)
			}

			d.n = copy(buf, buf[keep:])
		}

		written += copied
	}

	return written, nil
}

// discard releases the buffer without decrypting or writing the held-back data.
func (d *decryptWriter) discard() {
	if d.closed {
		return
	}

	d.closed = true
	putBuffer(d.buf)
}

// Close decrypts the held-back data and strips the padding.
func (d *decryptWriter) Close() error {
	if d.closed {
		return nil
	}

	d.closed = true
	defer putBuffer(d.buf)

	if d.n == 0 || d.n%BlockSize != 0 {
		return ErrInvalidBlockSize
	}

	tail := (*d.buf)[:d.n]

	d.mode.CryptBlocks(tail, tail)

	plain, err := pkcs7Unpad(tail, BlockSize)
	if err != nil {
		return err
	}

	if _, err := d.w.Write(plain); err != nil {
		return fmt.Errorf("writing plaintext: %w", err)
	}

	return nil
}
