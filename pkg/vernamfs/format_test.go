package vernamfs

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := Header{
		Magic:          Magic,
		Type:           VolumeTypeEncryptedFAT,
		Version:        packedVersion(1, 2, 3),
		Flags:          0,
		Length:         1 << 20,
		Padding:        4096,
		TableOffset:    4096,
		MaxFiles:       16,
		TableEntrySize: 64,
		TablePtr:       4096 + 64,
		DataOffset:     4096 + 16*64,
		DataPtr:        4096 + 16*64 + 4096,
	}

	buf := encodeHeader(h)
	if len(buf) != headerSize {
		t.Fatalf("encodeHeader: got %d bytes, want %d", len(buf), headerSize)
	}

	got, err := decodeHeader(buf)
	if err != nil {
		t.Fatalf("decodeHeader: %v", err)
	}

	if diff := cmp.Diff(h, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeHeaderBadMagic(t *testing.T) {
	t.Parallel()

	buf := make([]byte, headerSize)

	_, err := decodeHeader(buf)
	if err != ErrBadMagic {
		t.Fatalf("got %v, want ErrBadMagic", err)
	}
}

func TestDecodeHeaderTruncated(t *testing.T) {
	t.Parallel()

	buf := encodeHeader(Header{Magic: Magic})[:headerSize-1]

	_, err := decodeHeader(buf)
	if err != ErrTruncated {
		t.Fatalf("got %v, want ErrTruncated", err)
	}
}

func TestDecodeFATEntryPlain(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 64)
	putU64 := func(off int, v uint64) {
		for i := 0; i < 8; i++ {
			buf[off+i] = byte(v >> (8 * i))
		}
	}

	putU64(0, 12345)
	putU64(8, 99)
	copy(buf[16:], "/hello.txt")

	entry := decodeFATEntryPlain(buf)

	want := FATEntry{Name: "/hello.txt", Offset: 12345, Length: 99}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("decodeFATEntryPlain mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeFATEntryPlainNoNUL(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 32)
	for i := fatEntryFixedSize; i < len(buf); i++ {
		buf[i] = 'x'
	}

	entry := decodeFATEntryPlain(buf)
	if len(entry.Name) != len(buf)-fatEntryFixedSize {
		t.Fatalf("expected full-width name when no NUL present, got %q", entry.Name)
	}
}
