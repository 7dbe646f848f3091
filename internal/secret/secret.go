// Package secret holds helpers for keeping passwords and key material in memory
// for as short a span as possible.
package secret

import (
	"runtime"

	"github.com/awnumar/memguard"
)

// Wipe overwrites every buffer with zeros.
func Wipe(bufs ...[]byte) {
	for _, buf := range bufs {
		if len(buf) == 0 {
			continue
		}

		memguard.WipeBytes(buf)
		runtime.KeepAlive(buf)
	}
}

// Locked is a password held in guarded memory for the lifetime of a command.
type Locked struct {
	buf *memguard.LockedBuffer
}

// NewLocked moves src into guarded memory. src is wiped.
func NewLocked(src []byte) *Locked {
	return &Locked{buf: memguard.NewBufferFromBytes(src)}
}

// Bytes returns the guarded bytes. The slice is only valid until Destroy.
func (l *Locked) Bytes() []byte {
	if l == nil || l.buf == nil {
		return nil
	}

	return l.buf.Bytes()
}

// Len returns the number of guarded bytes.
func (l *Locked) Len() int {
	return len(l.Bytes())
}

// Destroy wipes and releases the guarded memory. Safe to call more than once.
func (l *Locked) Destroy() {
	if l == nil || l.buf == nil {
		return
	}

	l.buf.Destroy()
}
