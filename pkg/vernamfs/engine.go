package vernamfs

import (
	"encoding/binary"
	"errors"
	"fmt"

	intfs "github.com/calvinalkan/vernamfs/internal/fs"
)

func errorsIsWouldBlock(err error) bool {
	return errors.Is(err, intfs.ErrWouldBlock)
}

// DefaultPadding is the alignment granule used when InitOptions.Padding is
// left zero: one memory page on the overwhelming majority of targets this
// package runs on.
const DefaultPadding = 4096

// InitOptions configures [Init].
type InitOptions struct {
	// Length is the total volume size in bytes. Must not exceed the
	// backing file's actual length.
	Length uint64

	// MaxFiles is the FAT entry capacity. Must be >= 1.
	MaxFiles uint32

	// MaxNameLength is the longest path Init must be able to store,
	// excluding the NUL terminator. Must be in [1,111].
	MaxNameLength int

	// Padding is the alignment granule for the table and data regions.
	// Zero means [DefaultPadding].
	Padding uint64

	// Force allows Init to overwrite an already-initialised volume.
	Force bool
}

// Engine is the single-writer handle used to create, mutate, and close out
// files in a volume. At most one file may be open (between OpenEntry and
// CloseEntry) at a time; see the state machine in component design §4.C.
type Engine struct {
	b   *Backing
	hdr Header

	locker *intfs.Locker
	lock   *intfs.Lock

	entryOpen    bool
	activeOffset uint64 // table_ptr at which the open entry's prefix lives
	activeLength uint64 // running byte count written to the open entry
}

// lockPath is the sibling flock file OpenEntry/CloseEntry use to gate the
// single outstanding write session across processes, not just within one.
func (e *Engine) lockPath() string {
	return e.b.Path() + ".lock"
}

// Init creates a fresh header on b per opts, or returns [ErrExists] if b
// already carries the VernamFS magic and opts.Force is false. It never
// touches the FAT or data regions; only the header is written, in the
// clear, at offset 0.
func Init(b *Backing, opts InitOptions) (*Engine, error) {
	if opts.MaxFiles < 1 {
		return nil, fmt.Errorf("max_files must be >= 1: %w", ErrBadParams)
	}

	if opts.MaxNameLength < 1 || opts.MaxNameLength > maxNameLengthLimit {
		return nil, fmt.Errorf("max_name_length must be in [1,%d]: %w", maxNameLengthLimit, ErrBadParams)
	}

	magicBuf := b.ReadAt(0, 8)
	if magicBuf == nil {
		return nil, fmt.Errorf("backing too small for header: %w", ErrTooSmall)
	}

	existing := binary.LittleEndian.Uint64(magicBuf)
	if existing == Magic && !opts.Force {
		return nil, ErrExists
	}

	padding := opts.Padding
	if padding == 0 {
		padding = DefaultPadding
	}

	if opts.Length == 0 || opts.Length > b.Len() {
		return nil, fmt.Errorf("length exceeds backing size: %w", ErrTooSmall)
	}

	entrySize, err := chooseTableEntrySize(opts.MaxNameLength)
	if err != nil {
		return nil, err
	}

	tableOffset, dataOffset, err := checkCapacity(opts.Length, opts.MaxFiles, entrySize, padding)
	if err != nil {
		return nil, err
	}

	hdr := Header{
		Magic:          Magic,
		Type:           VolumeTypeEncryptedFAT,
		Version:        packedVersion(formatVersionMajor, formatVersionMinor, formatVersionPatch),
		Flags:          0,
		Length:         opts.Length,
		Padding:        padding,
		TableOffset:    tableOffset,
		MaxFiles:       opts.MaxFiles,
		TableEntrySize: entrySize,
		TablePtr:       tableOffset,
		DataOffset:     dataOffset,
		DataPtr:        dataOffset,
	}

	if err := b.WriteAt(0, encodeHeader(hdr)); err != nil {
		return nil, err
	}

	return &Engine{b: b, hdr: hdr, locker: intfs.NewLocker(intfs.NewReal())}, nil
}

// Load opens an already-initialised volume for appending, reading the
// header in the clear and validating its magic. It performs no further
// validation of header contents; callers relying on a well-formed volume
// should treat any inconsistency as caller error, per spec.
func Load(b *Backing) (*Engine, error) {
	buf := b.ReadAt(0, headerSize)
	if buf == nil {
		return nil, fmt.Errorf("backing too small for header: %w", ErrTooSmall)
	}

	hdr, err := decodeHeader(buf)
	if err != nil {
		return nil, err
	}

	return &Engine{b: b, hdr: hdr, locker: intfs.NewLocker(intfs.NewReal())}, nil
}

// Header returns a copy of the engine's cached header.
func (e *Engine) Header() Header {
	return e.hdr
}

// Backing returns the underlying memory-mapped image, for callers (CLI
// commands) that need direct byte access alongside the engine, e.g. to
// frame a remote payload.
func (e *Engine) Backing() *Backing {
	return e.b
}

// OpenEntry reserves the next FAT entry for path. It XORs the entry's
// future content offset (the current data_ptr) into the fixed prefix at
// table_ptr, and the NUL-terminated name at table_ptr+16. The length field
// is left untouched until [Engine.CloseEntry].
func (e *Engine) OpenEntry(path string) error {
	if e.entryOpen {
		return ErrBusy
	}

	tableExtent := uint64(e.hdr.MaxFiles) * uint64(e.hdr.TableEntrySize)
	if e.hdr.TablePtr == e.hdr.TableOffset+tableExtent {
		return ErrNoSpace
	}

	nameCapacity := int(e.hdr.TableEntrySize) - fatEntryFixedSize
	if len(path)+1 > nameCapacity {
		return ErrNameTooLong
	}

	lock, err := e.locker.TryLock(e.lockPath())
	if err != nil {
		if errorsIsWouldBlock(err) {
			return ErrBusy
		}

		return fmt.Errorf("vernamfs: acquire write-session lock: %w", err)
	}

	offsetBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(offsetBuf, e.hdr.DataPtr)

	if err := e.b.XorInAt(e.hdr.TablePtr, offsetBuf); err != nil {
		_ = lock.Close()
		return err
	}

	nameBuf := make([]byte, len(path)+1) // NUL-terminated, unpadded tail left at OTP value
	copy(nameBuf, path)

	if err := e.b.XorInAt(e.hdr.TablePtr+16, nameBuf); err != nil {
		_ = lock.Close()
		return err
	}

	e.lock = lock
	e.entryOpen = true
	e.activeOffset = e.hdr.TablePtr
	e.activeLength = 0

	return nil
}

// Write XORs up to len(buf) bytes into the data region at the current
// data_ptr, truncating to whatever room remains. It returns [ErrNoSpace]
// only when zero bytes could be written.
func (e *Engine) Write(buf []byte) (int, error) {
	remaining := e.hdr.Length - e.hdr.DataPtr

	n := uint64(len(buf))
	if n > remaining {
		n = remaining
	}

	if n == 0 {
		return 0, ErrNoSpace
	}

	if err := e.b.XorInAt(e.hdr.DataPtr, buf[:n]); err != nil {
		return 0, err
	}

	e.hdr.DataPtr += n
	e.activeLength += n

	return int(n), nil
}

// CloseEntry finalises the open entry's length field, advances table_ptr
// past it, and rounds data_ptr up to the next padding boundary so the next
// file never shares a byte with this one.
func (e *Engine) CloseEntry() error {
	if !e.entryOpen {
		return nil
	}

	lengthBuf := make([]byte, 8)
	binary.LittleEndian.PutUint64(lengthBuf, e.activeLength)

	if err := e.b.XorInAt(e.activeOffset+8, lengthBuf); err != nil {
		return err
	}

	e.hdr.TablePtr += uint64(e.hdr.TableEntrySize)
	e.hdr.DataPtr = alignUp(e.hdr.DataPtr, e.hdr.Padding)

	e.entryOpen = false
	e.activeLength = 0

	if e.lock != nil {
		err := e.lock.Close()
		e.lock = nil

		if err != nil {
			return fmt.Errorf("vernamfs: release write-session lock: %w", err)
		}
	}

	return nil
}

// PersistHeader rewrites the header at offset 0 from the engine's cached
// copy. The host adapter and the shell's put call it after every
// CloseEntry.
func (e *Engine) PersistHeader() error {
	return e.b.WriteAt(0, encodeHeader(e.hdr))
}
