package encryption

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/idelchi/pwcrypt/internal/kdf"
)

const (
	envelopeMagic   = "PWCR"
	envelopeVersion = byte(1)

	envelopeFlagExec = 0x01

	// envelopePrefixSize covers magic, version, flags, mode and kdf id.
	envelopePrefixSize = len(envelopeMagic) + 4
	// envelopeArgonSize covers time, memory, threads and salt length.
	envelopeArgonSize = 4 + 4 + 1 + 1
)

// Mode selects how the envelope body is encrypted.
type Mode byte

const (
	// ModeCBC is AES-256-CBC with a random IV, authenticated with HMAC-SHA256.
	ModeCBC Mode = 0x01
	// ModeSIV is chunked AES-SIV deterministic authenticated encryption.
	ModeSIV Mode = 0x02
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeCBC:
		return "cbc-hmac"
	case ModeSIV:
		return "siv"
	default:
		return fmt.Sprintf("unknown(%d)", byte(m))
	}
}

// KDF identifies how the master key of an envelope was obtained.
type KDF byte

const (
	// KDFNone means the master key was supplied directly.
	KDFNone KDF = 0x00
	// KDFArgon2id means the master key was derived from a password.
	KDFArgon2id KDF = 0x01
)

// Header is the cleartext, authenticated prefix of a sealed envelope.
type Header struct {
	Mode       Mode
	Executable bool
	KDF        KDF
	// Params holds the Argon2id cost parameters when KDF is KDFArgon2id.
	Params kdf.Params
	// Salt is the Argon2id salt when KDF is KDFArgon2id.
	Salt []byte
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(envelopeMagic)
	buf.WriteByte(envelopeVersion)

	var flags byte
	if h.Executable {
		flags |= envelopeFlagExec
	}

	buf.WriteByte(flags)
	buf.WriteByte(byte(h.Mode))
	buf.WriteByte(byte(h.KDF))

	switch h.KDF {
	case KDFNone:
	case KDFArgon2id:
		if len(h.Salt) == 0 || len(h.Salt) > 255 {
			return nil, fmt.Errorf("%w: salt length %d out of range", ErrProcessing, len(h.Salt))
		}

		var argon [envelopeArgonSize]byte

		binary.BigEndian.PutUint32(argon[0:4], h.Params.Time)
		binary.BigEndian.PutUint32(argon[4:8], h.Params.Memory)
		argon[8] = h.Params.Threads
		argon[9] = byte(len(h.Salt))

		buf.Write(argon[:])
		buf.Write(h.Salt)
	default:
		return nil, fmt.Errorf("%w: unsupported kdf %d", ErrProcessing, h.KDF)
	}

	return buf.Bytes(), nil
}

// ReadHeader reads and validates a header from r. It returns the raw header bytes,
// which the envelope body authenticates.
func ReadHeader(r io.Reader) (*Header, []byte, error) {
	prefix := make([]byte, envelopePrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, nil, fmt.Errorf("%w: reading header: %w", ErrProcessing, err)
	}

	if !bytes.Equal(prefix[:len(envelopeMagic)], []byte(envelopeMagic)) {
		return nil, nil, fmt.Errorf("%w: invalid envelope magic", ErrProcessing)
	}

	rest := prefix[len(envelopeMagic):]

	if version := rest[0]; version != envelopeVersion {
		return nil, nil, fmt.Errorf("%w: unsupported envelope version %d", ErrProcessing, version)
	}

	header := &Header{
		Executable: rest[1]&envelopeFlagExec != 0,
		Mode:       Mode(rest[2]),
		KDF:        KDF(rest[3]),
	}

	switch header.Mode {
	case ModeCBC, ModeSIV:
	default:
		return nil, nil, fmt.Errorf("%w: unsupported envelope mode %d", ErrProcessing, rest[2])
	}

	raw := prefix

	switch header.KDF {
	case KDFNone:
	case KDFArgon2id:
		argon := make([]byte, envelopeArgonSize)
		if _, err := io.ReadFull(r, argon); err != nil {
			return nil, nil, fmt.Errorf("%w: reading kdf parameters: %w", ErrProcessing, err)
		}

		salt := make([]byte, argon[9])
		if _, err := io.ReadFull(r, salt); err != nil {
			return nil, nil, fmt.Errorf("%w: reading salt: %w", ErrProcessing, err)
		}

		header.Params = kdf.Params{
			Time:    binary.BigEndian.Uint32(argon[0:4]),
			Memory:  binary.BigEndian.Uint32(argon[4:8]),
			Threads: argon[8],
			KeyLen:  KeySize,
			SaltLen: uint32(len(salt)),
		}
		header.Salt = salt

		if err := header.Params.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrProcessing, err)
		}

		raw = append(raw, argon...)
		raw = append(raw, salt...)
	default:
		return nil, nil, fmt.Errorf("%w: unsupported kdf %d", ErrProcessing, rest[3])
	}

	return header, raw, nil
}
