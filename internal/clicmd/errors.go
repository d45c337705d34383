package clicmd

import (
	"errors"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// exitCodeFor maps a returned error to a process exit code. ErrBusy,
// ErrNoSpace, ErrExists, ErrBadMagic and ErrMismatch each get a distinct,
// stable code so scripts can branch on failure kind without scraping
// stderr; anything else, including the other vernamfs sentinels, is a
// generic failure (1).
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, vernamfs.ErrBusy):
		return 16
	case errors.Is(err, vernamfs.ErrNoSpace):
		return 17
	case errors.Is(err, vernamfs.ErrExists):
		return 18
	case errors.Is(err, vernamfs.ErrBadMagic):
		return 19
	case errors.Is(err, vernamfs.ErrMismatch):
		return 20
	default:
		return 1
	}
}
