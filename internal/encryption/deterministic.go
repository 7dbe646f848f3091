package encryption

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/tink-crypto/tink-go/v2/daead"
	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	aes_sivpb "github.com/tink-crypto/tink-go/v2/proto/aes_siv_go_proto"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"
	"github.com/tink-crypto/tink-go/v2/tink"

	"google.golang.org/protobuf/proto"

	"github.com/idelchi/pwcrypt/internal/kdf"
	"github.com/idelchi/pwcrypt/internal/secret"
)

const (
	deterministicLabel = "pwcrypt/v1/siv"
	// AesSivKeySize is the key size of AES-SIV (two AES-256 keys).
	AesSivKeySize = 64
	// sivOverhead is the synthetic IV prepended to every sealed chunk.
	sivOverhead = 16
)

// encryptDeterministic streams the input through chunked AES-SIV.
func (s *Sealer) encryptDeterministic(reader io.Reader, writer io.Writer, header, master []byte) error {
	primitive, err := newDeterministicAEAD(master)
	if err != nil {
		return err
	}

	chunks := newChunkWriter(writer, primitive, header)

	buf := getBuffer()
	defer putBuffer(buf)

	if _, err := io.CopyBuffer(onlyWriter{chunks}, reader, *buf); err != nil {
		return fmt.Errorf("sealing stream: %w", err)
	}

	return chunks.Close()
}

// decryptDeterministic writes the plaintext of every chunk up to the final one.
func (s *Sealer) decryptDeterministic(reader io.Reader, writer io.Writer, header, master []byte) error {
	primitive, err := newDeterministicAEAD(master)
	if err != nil {
		return err
	}

	chunks := newChunkReader(reader, primitive, header)

	for {
		plain, err := chunks.next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			return err
		}

		_, err = writer.Write(plain)

		secret.Wipe(plain)

		if err != nil {
			return fmt.Errorf("writing decrypted chunk: %w", err)
		}
	}
}

// newDeterministicAEAD derives the AES-SIV key from master and returns the Tink primitive.
func newDeterministicAEAD(master []byte) (tink.DeterministicAEAD, error) {
	key, err := kdf.Expand(master, deterministicLabel, AesSivKeySize)
	if err != nil {
		return nil, fmt.Errorf("deriving deterministic key: %w", err)
	}
	defer secret.Wipe(key)

	handle, err := newDeterministicAEADKeyHandle(key)
	if err != nil {
		return nil, fmt.Errorf("creating keyset handle: %w", err)
	}

	primitive, err := daead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("creating DeterministicAEAD: %w", err)
	}

	return primitive, nil
}

// newDeterministicAEADKeyHandle creates a Tink keyset handle for AES-SIV from raw key bytes.
func newDeterministicAEADKeyHandle(key []byte) (*keyset.Handle, error) {
	serializedKey, err := proto.Marshal(&aes_sivpb.AesSivKey{
		Version:  0,
		KeyValue: key,
	})
	if err != nil {
		return nil, fmt.Errorf("serializing AesSivKey: %w", err)
	}

	keySet := &tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{
			{
				KeyData: &tinkpb.KeyData{
					TypeUrl:         "type.googleapis.com/google.crypto.tink.AesSivKey",
					Value:           serializedKey,
					KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
				},
				Status:           tinkpb.KeyStatusType_ENABLED,
				KeyId:            1,
				OutputPrefixType: tinkpb.OutputPrefixType_RAW,
			},
		},
	}

	serializedKeyset, err := proto.Marshal(keySet)
	if err != nil {
		return nil, fmt.Errorf("serializing keyset: %w", err)
	}
	defer secret.Wipe(serializedKeyset)

	handle, err := insecurecleartextkeyset.Read(keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
	if err != nil {
		return nil, fmt.Errorf("reading keyset: %w", err)
	}

	return handle, nil
}
