package vernamfs

import "errors"

// Sentinel errors returned by vernamfs operations.
//
// Callers should use [errors.Is] to check error types.
var (
	// ErrBadMagic indicates the first 8 bytes of the volume do not match
	// the VernamFS magic constant.
	//
	// Recovery: the path is not a VernamFS volume, or was never initialised.
	// Use Init with force to overwrite it.
	ErrBadMagic = errors.New("vernamfs: bad magic")

	// ErrTooSmall indicates the volume is too small to hold what was asked
	// of it: at Init, or when a read or write falls outside the backing.
	// Decoding against a short vault reports [ErrVaultTooSmall] instead.
	//
	// Recovery: supply a larger length or fewer max files.
	ErrTooSmall = errors.New("vernamfs: too small")

	// ErrBadParams indicates an invalid combination of Init parameters.
	//
	// Recovery: fix max_files (>=1) or max_name_length (1..111) and retry.
	ErrBadParams = errors.New("vernamfs: bad params")

	// ErrExists indicates Init was called on an already-initialised volume
	// without force.
	//
	// Recovery: pass Force to overwrite, if that is really intended.
	ErrExists = errors.New("vernamfs: volume exists")

	// ErrNoSpace indicates the FAT or data region is exhausted.
	//
	// Recovery: none within this volume; recreate with more capacity.
	ErrNoSpace = errors.New("vernamfs: no space")

	// ErrNameTooLong indicates a path plus its NUL terminator exceeds the
	// volume's table entry capacity.
	//
	// Recovery: use a shorter name, or recreate the volume with a larger
	// max name length.
	ErrNameTooLong = errors.New("vernamfs: name too long")

	// ErrBusy indicates a second write session was attempted while one was
	// already outstanding.
	//
	// Recovery: retry once the first session closes.
	ErrBusy = errors.New("vernamfs: busy")

	// ErrReadOnlyRequested indicates the host adapter was asked to open a
	// path for reading, read-write, or append.
	//
	// Recovery: open write-only (O_WRONLY), as VernamFS volumes are never
	// readable through the mounted filesystem.
	ErrReadOnlyRequested = errors.New("vernamfs: read access not supported")

	// ErrTruncated indicates a short read while decoding a remote payload.
	//
	// Recovery: the payload stream was cut off; re-capture it.
	ErrTruncated = errors.New("vernamfs: truncated payload")

	// ErrUnsupported indicates an operation this filesystem never supports:
	// directory mutation, unlink, listing, or reading file content back.
	//
	// Recovery: none; this is a permanent restriction of VernamFS.
	ErrUnsupported = errors.New("vernamfs: unsupported operation")

	// ErrVaultTooSmall indicates the vault image is shorter than the byte
	// range a payload claims to describe.
	//
	// Recovery: supply the matching vault image.
	ErrVaultTooSmall = errors.New("vernamfs: vault too small for payload")

	// ErrMismatch indicates a remote payload's offset was framed against a
	// table_offset that disagrees with the vault's own header. This means
	// the remote and vault were initialised with different parameters.
	//
	// Recovery: pair the remote and vault from the same Init call.
	ErrMismatch = errors.New("vernamfs: remote/vault parameter mismatch")
)
