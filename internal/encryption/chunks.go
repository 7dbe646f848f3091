package encryption

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/tink-crypto/tink-go/v2/tink"

	"github.com/idelchi/pwcrypt/internal/secret"
)

const (
	// chunkSize is the plaintext size of every deterministic chunk except the last.
	chunkSize = 64 * 1024
	// frameLenSize is the big-endian length prefix of a sealed chunk.
	frameLenSize = 4
	// chunkTrailerSize is the chunk index plus the final marker appended to the header.
	chunkTrailerSize = 8 + 1
)

// chunkAD is the associated data of a chunk: header | index | final.
// The header part is fixed, the trailer is rewritten for every chunk.
type chunkAD []byte

func newChunkAD(header []byte) chunkAD {
	ad := make(chunkAD, len(header)+chunkTrailerSize)
	copy(ad, header)

	return ad
}

func (ad chunkAD) at(index uint64, final bool) []byte {
	trailer := ad[len(ad)-chunkTrailerSize:]

	binary.BigEndian.PutUint64(trailer, index)

	trailer[8] = 0
	if final {
		trailer[8] = 1
	}

	return ad
}

// chunkWriter seals its input as length-prefixed AES-SIV chunks.
type chunkWriter struct {
	dst     io.Writer
	aead    tink.DeterministicAEAD
	ad      chunkAD
	pending []byte
	frame   []byte
	index   uint64
	closed  bool
}

func newChunkWriter(dst io.Writer, aead tink.DeterministicAEAD, header []byte) *chunkWriter {
	return &chunkWriter{
		dst:     dst,
		aead:    aead,
		ad:      newChunkAD(header),
		pending: make([]byte, 0, chunkSize),
	}
}

// Write buffers p and seals every chunk that is followed by more data.
func (cw *chunkWriter) Write(p []byte) (int, error) {
	if cw.closed {
		return 0, ErrClosed
	}

	total := len(p)

	for len(p) > 0 {
		// A full chunk waits for more input, the last one is sealed by Close.
		if len(cw.pending) == chunkSize {
			if err := cw.seal(false); err != nil {
				return total - len(p), err
			}
		}

		take := min(chunkSize-len(cw.pending), len(p))
		cw.pending = append(cw.pending, p[:take]...)
		p = p[take:]
	}

	return total, nil
}

// Close seals what is left, possibly nothing, as the final chunk.
func (cw *chunkWriter) Close() error {
	if cw.closed {
		return nil
	}

	cw.closed = true

	return cw.seal(true)
}

func (cw *chunkWriter) seal(final bool) error {
	sealed, err := cw.aead.EncryptDeterministically(cw.pending, cw.ad.at(cw.index, final))

	secret.Wipe(cw.pending)
	cw.pending = cw.pending[:0]

	if err != nil {
		return fmt.Errorf("sealing chunk %d: %w", cw.index, err)
	}

	cw.frame = binary.BigEndian.AppendUint32(cw.frame[:0], uint32(len(sealed))) //nolint:gosec // at most chunkSize+sivOverhead
	cw.frame = append(cw.frame, sealed...)

	if _, err := cw.dst.Write(cw.frame); err != nil {
		return fmt.Errorf("writing chunk %d: %w", cw.index, err)
	}

	cw.index++

	return nil
}

// chunkReader opens the chunks written by chunkWriter. The final marker is taken from
// the position in the stream, so cut or extended streams fail authentication.
type chunkReader struct {
	src   *bufio.Reader
	aead  tink.DeterministicAEAD
	ad    chunkAD
	frame []byte
	index uint64
	done  bool
}

func newChunkReader(src io.Reader, aead tink.DeterministicAEAD, header []byte) *chunkReader {
	return &chunkReader{
		src:  bufio.NewReader(src),
		aead: aead,
		ad:   newChunkAD(header),
	}
}

// next returns the plaintext of the following chunk, or io.EOF after the final one.
// The caller owns and wipes the returned slice.
func (cr *chunkReader) next() ([]byte, error) {
	if cr.done {
		return nil, io.EOF
	}

	var prefix [frameLenSize]byte
	if _, err := io.ReadFull(cr.src, prefix[:]); err != nil {
		return nil, truncated(err, "reading chunk size")
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size < sivOverhead || size > chunkSize+sivOverhead {
		return nil, fmt.Errorf("%w: chunk size %d out of range", ErrAuthentication, size)
	}

	cr.frame = slices.Grow(cr.frame[:0], int(size))[:size]
	if _, err := io.ReadFull(cr.src, cr.frame); err != nil {
		return nil, truncated(err, "reading chunk")
	}

	_, peekErr := cr.src.Peek(1)
	cr.done = errors.Is(peekErr, io.EOF)

	plain, err := cr.aead.DecryptDeterministically(cr.frame, cr.ad.at(cr.index, cr.done))
	if err != nil {
		return nil, ErrAuthentication
	}

	cr.index++

	return plain, nil
}

func truncated(err error, doing string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: stream truncated", ErrAuthentication)
	}

	return fmt.Errorf("%s: %w", doing, err)
}
