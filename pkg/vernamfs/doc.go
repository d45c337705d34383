// Package vernamfs implements the VernamFS storage engine: an append-only,
// write-once filesystem backed by a one-time pad (OTP).
//
// A volume is a file or block device whose bytes, before first use, are
// uniform random data (the pad). Past a small plaintext header, every byte
// of the volume is XORed with the plaintext it stores, exactly once over
// the volume's lifetime. The "remote" copy of a volume, after writes, holds
// only ciphertext; recovering plaintext requires XORing the remote's bytes
// against a second, pristine copy of the same pad (the "vault").
//
// # Layout
//
// Offset 0 holds the [Header] in the clear. The file-allocation table (FAT)
// follows at Header.TableOffset, holding Header.MaxFiles fixed-size
// records. The data region follows at Header.DataOffset, packing file
// contents back to back with padding-aligned gaps between files.
//
// # Basic usage
//
//	h, err := vernamfs.OpenBacking("/path/to/pad")
//	eng, err := vernamfs.Init(h, vernamfs.InitOptions{
//	    Length: size, MaxFiles: 64, MaxNameLength: 63,
//	})
//	eng.OpenEntry("/msg")
//	eng.Write([]byte("hello\n"))
//	eng.CloseEntry()
//	eng.PersistHeader()
//
// On the vault side, [DecodeFAT], [DecodeRange] and [RecoverAll] turn a
// [Payload] captured on the remote back into plaintext using a pristine
// copy of the same pad.
//
// # Concurrency
//
// The engine is single-writer, single-threaded: at most one [Engine.OpenEntry]
// may be outstanding at a time, enforced in-process and, via a sibling
// "<path>.lock" flock, across processes too.
package vernamfs
