package password

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/idelchi/pwcrypt/internal/kdf"
)

// Algorithm is the only algorithm identifier produced and accepted.
const Algorithm = "argon2id"

const maxDigestLen = 1024

// ErrMalformedHash is returned when an encoded hash cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

//nolint:gochecknoglobals
var b64 = base64.RawStdEncoding

// Encoded is a parsed PHC string.
type Encoded struct {
	Params kdf.Params
	Salt   []byte
	Digest []byte
}

// String renders the PHC representation.
func (e *Encoded) String() string {
	return fmt.Sprintf("$%s$v=%d$%s$%s$%s",
		Algorithm,
		kdf.Version,
		e.Params,
		b64.EncodeToString(e.Salt),
		b64.EncodeToString(e.Digest),
	)
}

// Parse decodes a PHC string. Parameters are range-checked so that a stored hash
// cannot make verification allocate unbounded memory.
func Parse(encoded string) (*Encoded, error) {
	const fields = 6

	parts := strings.Split(encoded, "$")
	if len(parts) != fields || parts[0] != "" {
		return nil, fmt.Errorf("%w: expected %d '$'-separated fields", ErrMalformedHash, fields-1)
	}

	if parts[1] != Algorithm {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrMalformedHash, parts[1])
	}

	if parts[2] != "v="+strconv.Itoa(kdf.Version) {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrMalformedHash, parts[2])
	}

	params, err := parseParams(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding salt: %w", ErrMalformedHash, err)
	}

	digest, err := b64.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: decoding digest: %w", ErrMalformedHash, err)
	}

	if len(digest) > maxDigestLen {
		return nil, fmt.Errorf("%w: digest too long", ErrMalformedHash)
	}

	params.SaltLen = uint32(len(salt))   //nolint:gosec // bounded by Split on a string
	params.KeyLen = uint32(len(digest)) //nolint:gosec // bounded by maxDigestLen

	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}

	return &Encoded{Params: params, Salt: salt, Digest: digest}, nil
}

// parseParams reads "m=<KiB>,t=<passes>,p=<lanes>" in any order, each exactly once.
func parseParams(field string) (kdf.Params, error) {
	var (
		params kdf.Params
		seen   = map[string]bool{}
	)

	for _, pair := range strings.Split(field, ",") {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || seen[name] {
			return params, fmt.Errorf("%w: bad parameter %q", ErrMalformedHash, pair)
		}

		seen[name] = true

		bits := 32
		if name == "p" {
			bits = 8
		}

		number, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return params, fmt.Errorf("%w: parameter %q: %w", ErrMalformedHash, name, err)
		}

		switch name {
		case "m":
			params.Memory = uint32(number)
		case "t":
			params.Time = uint32(number)
		case "p":
			params.Threads = uint8(number)
		default:
			return params, fmt.Errorf("%w: unknown parameter %q", ErrMalformedHash, name)
		}
	}

	if len(seen) != 3 { //nolint:mnd
		return params, fmt.Errorf("%w: parameters m, t and p are required", ErrMalformedHash)
	}

	return params, nil
}
