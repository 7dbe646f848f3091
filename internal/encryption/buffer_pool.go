package encryption

import (
	"sync"

	"github.com/idelchi/pwcrypt/internal/secret"
)

// defaultBufferSize bounds the memory of a cipher writer. It is a multiple of BlockSize.
const defaultBufferSize = 32 * 1024

// bufferPool provides reusable buffers for the cipher writers and file copies.
//
//nolint:gochecknoglobals
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, defaultBufferSize)

		return &buf
	},
}

func getBuffer() *[]byte {
	buf, _ := bufferPool.Get().(*[]byte) //nolint:errcheck // pool only holds *[]byte

	return buf
}

// putBuffer wipes buf before returning it, since it may have held plaintext.
func putBuffer(buf *[]byte) {
	secret.Wipe(*buf)
	bufferPool.Put(buf)
}
