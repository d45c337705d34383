package vernamfs

import "encoding/binary"

// Magic is the 8-byte constant identifying a VernamFS volume: the ASCII
// bytes "VERNAMFS" read as a little-endian uint64.
const Magic uint64 = 0x53464d414e524556

// VolumeType identifies the on-disk variant. This package implements only
// the encrypted-FAT variant.
const VolumeTypeEncryptedFAT uint32 = 1

// Semantic version of the on-disk format this package writes.
const (
	formatVersionMajor = 1
	formatVersionMinor = 0
	formatVersionPatch = 0
)

// packedVersion folds a major.minor.patch triple into the 24-bit packed
// form Header.Version stores.
func packedVersion(major, minor, patch uint32) uint32 {
	return (major << 16) | (minor << 8) | patch
}

// headerSize is the exact byte length of the tightly-packed on-disk header.
//
//	magic(8) + type(4) + version(4) + flags(4) + length(8) + padding(8) +
//	table_offset(8) + max_files(4) + table_entry_size(4) + table_ptr(8) +
//	data_offset(8) + data_ptr(8)
const headerSize = 8 + 4 + 4 + 4 + 8 + 8 + 8 + 4 + 4 + 8 + 8 + 8

// Header is the volume header, stored in the clear at offset 0. Field
// order matches the on-disk layout exactly; see format.go's encode/decode
// for the byte offsets.
type Header struct {
	Magic           uint64
	Type            uint32
	Version         uint32
	Flags           uint32
	Length          uint64
	Padding         uint64
	TableOffset     uint64
	MaxFiles        uint32
	TableEntrySize  uint32
	TablePtr        uint64
	DataOffset      uint64
	DataPtr         uint64
}

// encodeHeader serialises h into a headerSize-byte little-endian buffer,
// fields in declaration order, no inter-field padding.
func encodeHeader(h Header) []byte {
	buf := make([]byte, headerSize)

	off := 0
	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[off:], v)
		off += 8
	}
	putU32 := func(v uint32) {
		binary.LittleEndian.PutUint32(buf[off:], v)
		off += 4
	}

	putU64(h.Magic)
	putU32(h.Type)
	putU32(h.Version)
	putU32(h.Flags)
	putU64(h.Length)
	putU64(h.Padding)
	putU64(h.TableOffset)
	putU32(h.MaxFiles)
	putU32(h.TableEntrySize)
	putU64(h.TablePtr)
	putU64(h.DataOffset)
	putU64(h.DataPtr)

	return buf
}

// decodeHeader parses a headerSize-byte buffer into a Header. It validates
// only that the first 8 bytes equal [Magic]; every further validation
// (bounds, alignment, entry size) is the caller's responsibility, per
// spec.
func decodeHeader(buf []byte) (Header, error) {
	if len(buf) < headerSize {
		return Header{}, ErrTruncated
	}

	magic := binary.LittleEndian.Uint64(buf[0:8])
	if magic != Magic {
		return Header{}, ErrBadMagic
	}

	var h Header

	off := 0
	getU64 := func() uint64 {
		v := binary.LittleEndian.Uint64(buf[off:])
		off += 8
		return v
	}
	getU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(buf[off:])
		off += 4
		return v
	}

	h.Magic = getU64()
	h.Type = getU32()
	h.Version = getU32()
	h.Flags = getU32()
	h.Length = getU64()
	h.Padding = getU64()
	h.TableOffset = getU64()
	h.MaxFiles = getU32()
	h.TableEntrySize = getU32()
	h.TablePtr = getU64()
	h.DataOffset = getU64()
	h.DataPtr = getU64()

	return h, nil
}

// FATEntry is the decoded, logical view of one file-allocation-table
// record: {name, offset, length}. The on-disk record is a fixed prefix
// (offset, length as two little-endian uint64s) followed by a
// NUL-terminated name padded to the entry's table_entry_size.
type FATEntry struct {
	Name   string
	Offset uint64
	Length uint64
}

// fatEntryFixedSize is the byte size of the {offset, length} prefix common
// to every table entry, before the inline name.
const fatEntryFixedSize = 8 + 8

// decodeFATEntryPlain parses a single plaintext (already-XORed) entry
// buffer of exactly entrySize bytes into a [FATEntry]. The name is read up
// to its NUL terminator, or the full remaining width if none is found
// (which indicates a corrupt or never-written entry).
func decodeFATEntryPlain(buf []byte) FATEntry {
	offset := binary.LittleEndian.Uint64(buf[0:8])
	length := binary.LittleEndian.Uint64(buf[8:16])

	nameBytes := buf[fatEntryFixedSize:]

	end := 0
	for end < len(nameBytes) && nameBytes[end] != 0 {
		end++
	}

	return FATEntry{
		Name:   string(nameBytes[:end]),
		Offset: offset,
		Length: length,
	}
}
