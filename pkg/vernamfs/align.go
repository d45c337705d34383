package vernamfs

// alignUp rounds v up to the next multiple of granule g. g must be > 0.
func alignUp(v, g uint64) uint64 {
	return ((v + g - 1) / g) * g
}

// Table entry sizes a volume may use. table_entry_size is always the
// smallest of these that can hold the requested max name length.
const (
	minTableEntrySize = 32
	maxTableEntrySize = 128
)

// maxNameLengthLimit is the largest max_name_length Init accepts: the
// biggest table entry size minus the fixed prefix and the NUL terminator.
const maxNameLengthLimit = maxTableEntrySize - fatEntryFixedSize - 1

// chooseTableEntrySize picks the smallest power-of-two entry size in
// {32,64,128} able to hold maxNameLength bytes plus a NUL terminator
// after the fixed {offset,length} prefix. Returns ErrBadParams if no such
// size exists.
func chooseTableEntrySize(maxNameLength int) (uint32, error) {
	if maxNameLength < 1 || maxNameLength > maxNameLengthLimit {
		return 0, ErrBadParams
	}

	for size := uint32(minTableEntrySize); size <= maxTableEntrySize; size *= 2 {
		if int(size)-fatEntryFixedSize-1 >= maxNameLength {
			return size, nil
		}
	}

	return 0, ErrBadParams
}

// checkCapacity verifies that a volume of the given total length has room
// for maxFiles entries of entrySize bytes plus at least one padding
// granule of data per file, once the table and data regions are aligned to
// padding. Returns the computed table_offset and data_offset, or
// ErrTooSmall if the volume is too small.
func checkCapacity(length uint64, maxFiles uint32, entrySize uint32, padding uint64) (tableOffset, dataOffset uint64, err error) {
	tableOffset = alignUp(headerSize, padding)
	tableExtent := alignUp(uint64(maxFiles)*uint64(entrySize), padding)
	minDataArea := uint64(maxFiles) * padding

	dataOffset = tableOffset + tableExtent

	if tableOffset+tableExtent+minDataArea > length {
		return 0, 0, ErrTooSmall
	}

	return tableOffset, dataOffset, nil
}
