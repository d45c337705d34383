package vernamfs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// DecodeFAT reconstructs the FAT entries carried in payload by XORing them
// against the matching bytes of a pristine vault image. payload.Offset
// must equal vault's table_offset (see [Engine.Header].TableOffset);
// otherwise [ErrMismatch] is returned, per the §9 open question on
// remote/vault parameter agreement.
func DecodeFAT(vault *Backing, vaultHdr Header, payload Payload) ([]FATEntry, error) {
	if payload.Offset != vaultHdr.TableOffset {
		return nil, ErrMismatch
	}

	if vaultHdr.TableEntrySize == 0 || payload.Length%uint64(vaultHdr.TableEntrySize) != 0 {
		return nil, fmt.Errorf("payload length %d not a multiple of entry size %d: %w", payload.Length, vaultHdr.TableEntrySize, ErrTruncated)
	}

	if !vault.bounds(payload.Offset, payload.Length) {
		return nil, ErrVaultTooSmall
	}

	entrySize := uint64(vaultHdr.TableEntrySize)
	count := payload.Length / entrySize

	entries := make([]FATEntry, 0, count)

	for i := uint64(0); i < count; i++ {
		remoteEntry := payload.Data[i*entrySize : (i+1)*entrySize]
		vaultEntry := vault.ReadAt(payload.Offset+i*entrySize, entrySize)

		plain := make([]byte, entrySize)
		for b := range plain {
			plain[b] = remoteEntry[b] ^ vaultEntry[b]
		}

		entries = append(entries, decodeFATEntryPlain(plain))
	}

	return entries, nil
}

// DecodeRange recovers the plaintext bytes of a data-range payload by
// XORing it against the matching range of a pristine vault image.
func DecodeRange(vault *Backing, payload Payload) ([]byte, error) {
	if !vault.bounds(payload.Offset, payload.Length) {
		return nil, ErrVaultTooSmall
	}

	vaultBytes := vault.ReadAt(payload.Offset, payload.Length)

	plain := make([]byte, payload.Length)
	for i := range plain {
		plain[i] = payload.Data[i] ^ vaultBytes[i]
	}

	return plain, nil
}

// RecoverAll reads the header from remote, decodes every allocated FAT
// entry against vault, and writes each file's recovered plaintext under
// outputDir, stripping the entry name's leading slash. outputDir is
// created if it does not already exist. When two entries share a name,
// later writes are appended to the same output file in FAT order, per
// spec.
//
// A FAT entry whose name decodes empty is included in the returned entries
// with an empty Name and is not written, but does not abort the recovery.
func RecoverAll(remote, vault *Backing, outputDir string) ([]FATEntry, error) {
	remoteHdr, err := Load(remote)
	if err != nil {
		return nil, err
	}

	vaultHdr, err := Load(vault)
	if err != nil {
		return nil, err
	}

	tableExtent := remoteHdr.Header().TablePtr - remoteHdr.Header().TableOffset
	fatPayload := Payload{
		Offset: remoteHdr.Header().TableOffset,
		Length: tableExtent,
		Data:   remote.ReadAt(remoteHdr.Header().TableOffset, tableExtent),
	}

	entries, err := DecodeFAT(vault, vaultHdr.Header(), fatPayload)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("vernamfs: create output dir: %w", err)
	}

	appended := make(map[string]bool)

	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}

		rangePayload := Payload{
			Offset: entry.Offset,
			Length: entry.Length,
			Data:   remote.ReadAt(entry.Offset, entry.Length),
		}

		plain, err := DecodeRange(vault, rangePayload)
		if err != nil {
			return entries, err
		}

		outPath := filepath.Join(outputDir, strings.TrimPrefix(entry.Name, "/"))

		if err := writeRecoveredFile(outPath, plain, appended[entry.Name]); err != nil {
			return entries, err
		}

		appended[entry.Name] = true
	}

	return entries, nil
}

// writeRecoveredFile writes (or, for a repeated name, appends to) the
// recovered content at path. First writes are atomic via
// [atomic.WriteFile]; subsequent writes for the same name within one
// RecoverAll run append directly, since the file already exists in place.
func writeRecoveredFile(path string, content []byte, appendExisting bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("vernamfs: create output subdir: %w", err)
	}

	if !appendExisting {
		return atomic.WriteFile(path, bytes.NewReader(content))
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("vernamfs: append recovered file: %w", err)
	}
	defer f.Close()

	_, err = f.Write(content)

	return err
}
