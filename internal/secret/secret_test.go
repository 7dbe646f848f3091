package secret_test

import (
	"bytes"
	"testing"

	"github.com/idelchi/pwcrypt/internal/secret"
)

func TestWipe(t *testing.T) {
	t.Parallel()

	first := []byte("hunter42")
	second := []byte{1, 2, 3}

	secret.Wipe(first, nil, second)

	if !bytes.Equal(first, make([]byte, len(first))) {
		t.Fatalf("first buffer not wiped: %v", first)
	}

	if !bytes.Equal(second, make([]byte, len(second))) {
		t.Fatalf("second buffer not wiped: %v", second)
	}
}

func TestLocked(t *testing.T) {
	t.Parallel()

	src := []byte("correct horse")

	locked := secret.NewLocked(src)

	if got := string(locked.Bytes()); got != "correct horse" {
		t.Fatalf("Bytes() = %q", got)
	}

	if locked.Len() != len("correct horse") {
		t.Fatalf("Len() = %d", locked.Len())
	}

	if !bytes.Equal(src, make([]byte, len(src))) {
		t.Fatal("source buffer not wiped after moving into guarded memory")
	}

	locked.Destroy()
	locked.Destroy()

	var empty *secret.Locked
	if empty.Bytes() != nil {
		t.Fatal("nil Locked should return nil bytes")
	}
}
