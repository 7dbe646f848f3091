package encryption

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/idelchi/pwcrypt/internal/secret"
)

// Option configures a Sealer.
type Option func(*Sealer)

// WithRand sets the source used for IVs.
func WithRand(r io.Reader) Option {
	return func(s *Sealer) {
		if r != nil {
			s.rand = r
		}
	}
}

// Sealer writes and reads sealed envelopes. It keeps no per-call state and is safe
// for concurrent use as long as its key source and randomness source are.
type Sealer struct {
	source KeySource
	mode   Mode
	rand   io.Reader
}

// NewSealer returns a Sealer producing envelopes in mode. Open accepts either mode.
func NewSealer(source KeySource, mode Mode, opts ...Option) (*Sealer, error) {
	switch mode {
	case ModeCBC, ModeSIV:
	default:
		return nil, fmt.Errorf("%w: unsupported envelope mode %d", ErrProcessing, mode)
	}

	sealer := &Sealer{
		source: source,
		mode:   mode,
		rand:   rand.Reader,
	}

	for _, opt := range opts {
		opt(sealer)
	}

	return sealer, nil
}

// Mode returns the mode new envelopes are sealed in.
func (s *Sealer) Mode() Mode {
	return s.mode
}

// Seal encrypts everything read from reader into a new envelope written to writer.
func (s *Sealer) Seal(reader io.Reader, writer io.Writer, executable bool) error {
	header := &Header{Mode: s.mode, Executable: executable}

	master, err := s.source.SealKey(header)
	if err != nil {
		return err
	}
	defer secret.Wipe(master)

	raw, err := header.MarshalBinary()
	if err != nil {
		return err
	}

	if _, err := writer.Write(raw); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	switch s.mode {
	case ModeSIV:
		return s.encryptDeterministic(reader, writer, raw, master)
	default:
		return s.encryptRandomized(reader, writer, raw, master)
	}
}

// Open decrypts an envelope read from reader into writer and returns its header.
// On error, anything already written to writer must be discarded.
func (s *Sealer) Open(reader io.Reader, writer io.Writer) (*Header, error) {
	header, raw, err := ReadHeader(reader)
	if err != nil {
		return nil, err
	}

	master, err := s.source.OpenKey(header)
	if err != nil {
		return nil, err
	}
	defer secret.Wipe(master)

	switch header.Mode {
	case ModeSIV:
		err = s.decryptDeterministic(reader, writer, raw, master)
	default:
		err = s.decryptRandomized(reader, writer, raw, master)
	}

	if err != nil {
		return nil, err
	}

	return header, nil
}
