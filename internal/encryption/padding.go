package encryption

import (
	"crypto/subtle"
)

// pkcs7PadInPlace writes PKCS#7 padding into buf after the first n bytes and
// returns the padded length. buf must have room for a full extra block.
func pkcs7PadInPlace(buf []byte, n, blockSize int) int {
	padding := blockSize - n%blockSize

	for i := n; i < n+padding; i++ {
		buf[i] = byte(padding)
	}

	return n + padding
}

// pkcs7Pad returns data with PKCS#7 padding appended. Aligned input gets a full block.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padded := make([]byte, len(data)+blockSize-len(data)%blockSize)
	copy(padded, data)
	pkcs7PadInPlace(padded, len(data), blockSize)

	return padded
}

// pkcs7Unpad strips PKCS#7 padding. The last block is inspected in constant time and
// every failure returns the same error.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	length := len(data)
	if length == 0 || length%blockSize != 0 {
		return nil, ErrInvalidBlockSize
	}

	last := data[length-blockSize:]
	padding := int(last[blockSize-1])

	good := subtle.ConstantTimeLessOrEq(1, padding) & subtle.ConstantTimeLessOrEq(padding, blockSize)

	for i := range blockSize {
		inPadding := subtle.ConstantTimeLessOrEq(i+1, padding)
		matches := subtle.ConstantTimeByteEq(last[blockSize-1-i], byte(padding))
		good &= subtle.ConstantTimeSelect(inPadding, matches, 1)
	}

	if good != 1 {
		return nil, ErrInvalidPadding
	}

	return data[:length-padding], nil
}
