package vernamfs

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Backing is a memory-mapped view of a volume's bytes. It never performs
// unchecked pointer arithmetic: every access is bounds-checked against the
// mapping's length before it touches the mapping.
type Backing struct {
	f    *os.File
	data []byte
	path string
}

// Path returns the filesystem path the backing was opened from.
func (b *Backing) Path() string {
	return b.path
}

// OpenBacking memory-maps the file at path read-write, shared. The file
// must already exist and be at least as long as any operation the caller
// later performs against it; VernamFS never grows or creates the backing
// file itself — that is the job of the pad-producing utility (see
// internal/genpad) run before `vernamfs init`.
func OpenBacking(path string) (*Backing, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("vernamfs: open backing: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("vernamfs: stat backing: %w", err)
	}

	size := info.Size()
	if size == 0 {
		_ = f.Close()
		return nil, fmt.Errorf("vernamfs: backing file is empty: %w", ErrTooSmall)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("vernamfs: mmap backing: %w", err)
	}

	return &Backing{f: f, data: data, path: path}, nil
}

// Close unmaps and closes the backing file.
func (b *Backing) Close() error {
	var mmapErr, closeErr error

	if b.data != nil {
		mmapErr = unix.Munmap(b.data)
		b.data = nil
	}

	if b.f != nil {
		closeErr = b.f.Close()
		b.f = nil
	}

	if mmapErr != nil {
		return mmapErr
	}

	return closeErr
}

// Len returns the total mapped length in bytes.
func (b *Backing) Len() uint64 {
	return uint64(len(b.data))
}

// bounds reports whether [off, off+n) lies within the mapping.
func (b *Backing) bounds(off, n uint64) bool {
	if n == 0 {
		return off <= b.Len()
	}

	end := off + n
	if end < off {
		return false // overflow
	}

	return end <= b.Len()
}

// ReadAt returns a copy of the n bytes at offset off. It returns nil if the
// range is out of bounds.
func (b *Backing) ReadAt(off, n uint64) []byte {
	if !b.bounds(off, n) {
		return nil
	}

	out := make([]byte, n)
	copy(out, b.data[off:off+n])

	return out
}

// XorInAt XORs plain into the mapping at offset off, in place. Per the
// one-time-pad discipline, each byte in [off, off+len(plain)) must be
// touched by at most one such call over the volume's lifetime; this method
// does not itself track that (see design notes), it only bounds-checks.
func (b *Backing) XorInAt(off uint64, plain []byte) error {
	if !b.bounds(off, uint64(len(plain))) {
		return ErrTooSmall
	}

	dst := b.data[off : off+uint64(len(plain))]
	for i, c := range plain {
		dst[i] ^= c
	}

	return nil
}

// WriteAt writes buf verbatim (no XOR) at offset off. This is used only for
// the header, the one region stored in the clear.
func (b *Backing) WriteAt(off uint64, buf []byte) error {
	if !b.bounds(off, uint64(len(buf))) {
		return ErrTooSmall
	}

	copy(b.data[off:off+uint64(len(buf))], buf)

	return nil
}
