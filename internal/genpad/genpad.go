// Package genpad produces a pseudo one-time pad using AES-128 in counter
// mode, so the same key reproduces the same pad bytes on demand instead of
// requiring a stored vault copy. It is not a true one-time pad, but is much
// faster to regenerate than reading a true entropy source for large pads.
package genpad

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"
)

// KeySize is the only key length this generator accepts.
const KeySize = 16

// MinLog2Size and MaxLog2Size bound the pad sizes Generate will produce,
// matching the practical range a single-process generator can produce in
// reasonable time.
const (
	MinLog2Size = 12
	MaxLog2Size = 40
)

// Generate writes 1<<log2Size bytes of AES-128-CTR keystream to w, using
// key as the cipher key and an all-zero IV. The keystream is deterministic:
// the same key always reproduces the same pad, so regenerating it at
// recovery time requires only the key, never a stored copy.
func Generate(w io.Writer, key [KeySize]byte, log2Size int) error {
	if log2Size < MinLog2Size || log2Size > MaxLog2Size {
		return fmt.Errorf("genpad: log2Size must be in [%d,%d]", MinLog2Size, MaxLog2Size)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return fmt.Errorf("genpad: new cipher: %w", err)
	}

	var iv [aes.BlockSize]byte
	stream := cipher.NewCTR(block, iv[:])

	size := uint64(1) << uint(log2Size)

	const chunkSize = 64 * 1024
	zero := make([]byte, chunkSize)
	out := make([]byte, chunkSize)

	for size > 0 {
		n := uint64(chunkSize)
		if n > size {
			n = size
		}

		stream.XORKeyStream(out[:n], zero[:n])

		if _, err := w.Write(out[:n]); err != nil {
			return fmt.Errorf("genpad: write: %w", err)
		}

		size -= n
	}

	return nil
}

// DecodeHexKey parses a 32-hex-digit string (optionally with a trailing
// newline, as produced by piping into `echo`) into a 16-byte key.
func DecodeHexKey(hexKey []byte) ([KeySize]byte, error) {
	var key [KeySize]byte

	hexKey = trimTrailingNewline(hexKey)

	if len(hexKey) != KeySize*2 {
		return key, fmt.Errorf("genpad: hex key must be %d hex digits, got %d", KeySize*2, len(hexKey))
	}

	for i := 0; i < KeySize; i++ {
		hi, err := hexNibble(hexKey[2*i])
		if err != nil {
			return key, err
		}

		lo, err := hexNibble(hexKey[2*i+1])
		if err != nil {
			return key, err
		}

		key[i] = hi<<4 | lo
	}

	return key, nil
}

func trimTrailingNewline(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\n' {
		return b[:len(b)-1]
	}

	return b
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("genpad: invalid hex digit %q", c)
	}
}
