package vernamfs

import (
	"os"
	"path/filepath"
	"testing"
)

// newBacking creates a pad file of n bytes filled with fill and returns an
// opened *Backing plus its path.
func newBacking(t *testing.T, n int, fill byte) (*Backing, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pad")

	buf := make([]byte, n)
	for i := range buf {
		buf[i] = fill
	}

	if err := os.WriteFile(path, buf, 0o600); err != nil {
		t.Fatalf("write pad: %v", err)
	}

	b, err := OpenBacking(path)
	if err != nil {
		t.Fatalf("OpenBacking: %v", err)
	}

	t.Cleanup(func() { _ = b.Close() })

	return b, path
}

func TestInitThenInspect(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 64*1024, 0)

	e, err := Init(b, InitOptions{Length: 65536, MaxFiles: 4, MaxNameLength: 15, Force: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	hdr := e.Header()

	if hdr.Magic != Magic {
		t.Errorf("Magic = %#x, want %#x", hdr.Magic, Magic)
	}

	if hdr.TableOffset != 4096 {
		t.Errorf("TableOffset = %d, want 4096", hdr.TableOffset)
	}

	if hdr.DataOffset != 8192 {
		t.Errorf("DataOffset = %d, want 8192", hdr.DataOffset)
	}

	if hdr.TablePtr != 4096 {
		t.Errorf("TablePtr = %d, want 4096", hdr.TablePtr)
	}

	if hdr.DataPtr != 8192 {
		t.Errorf("DataPtr = %d, want 8192", hdr.DataPtr)
	}
}

func TestInitRefusesExistingWithoutForce(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 64*1024, 0)

	if _, err := Init(b, InitOptions{Length: 65536, MaxFiles: 4, MaxNameLength: 15, Force: true}); err != nil {
		t.Fatalf("first Init: %v", err)
	}

	if _, err := Init(b, InitOptions{Length: 65536, MaxFiles: 4, MaxNameLength: 15}); err != ErrExists {
		t.Fatalf("second Init: got %v, want ErrExists", err)
	}
}

func TestInitTooSmall(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 8192, 0)

	_, err := Init(b, InitOptions{Length: 8192, MaxFiles: 4, MaxNameLength: 15})
	if err != ErrTooSmall {
		t.Fatalf("got %v, want ErrTooSmall", err)
	}
}

func TestSingleFileRoundTrip(t *testing.T) {
	t.Parallel()

	const padSize = 64 * 1024

	pad := make([]byte, padSize)
	for i := range pad {
		pad[i] = byte(i * 7)
	}

	remotePath := filepath.Join(t.TempDir(), "remote")
	if err := os.WriteFile(remotePath, pad, 0o600); err != nil {
		t.Fatalf("write remote pad: %v", err)
	}

	vaultPath := filepath.Join(t.TempDir(), "vault")
	if err := os.WriteFile(vaultPath, pad, 0o600); err != nil {
		t.Fatalf("write vault pad: %v", err)
	}

	remote, err := OpenBacking(remotePath)
	if err != nil {
		t.Fatalf("OpenBacking remote: %v", err)
	}
	defer remote.Close()

	vault, err := OpenBacking(vaultPath)
	if err != nil {
		t.Fatalf("OpenBacking vault: %v", err)
	}
	defer vault.Close()

	e, err := Init(remote, InitOptions{Length: padSize, MaxFiles: 4, MaxNameLength: 15, Force: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	// The vault carries the same header as the remote; Init writes only the
	// header, so the vault's FAT and data bytes stay pristine pad.
	if _, err := Init(vault, InitOptions{Length: padSize, MaxFiles: 4, MaxNameLength: 15, Force: true}); err != nil {
		t.Fatalf("Init vault: %v", err)
	}

	if err := e.OpenEntry("/msg"); err != nil {
		t.Fatalf("OpenEntry: %v", err)
	}

	n, err := e.Write([]byte("hello\n"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	if n != 6 {
		t.Fatalf("Write returned %d, want 6", n)
	}

	if err := e.CloseEntry(); err != nil {
		t.Fatalf("CloseEntry: %v", err)
	}

	if err := e.PersistHeader(); err != nil {
		t.Fatalf("PersistHeader: %v", err)
	}

	hdr := e.Header()
	if hdr.TablePtr != 4128 {
		t.Errorf("TablePtr = %d, want 4128", hdr.TablePtr)
	}

	if hdr.DataPtr != 12288 {
		t.Errorf("DataPtr = %d, want 12288", hdr.DataPtr)
	}

	fatPayload := Payload{
		Offset: hdr.TableOffset,
		Length: hdr.TablePtr - hdr.TableOffset,
		Data:   remote.ReadAt(hdr.TableOffset, hdr.TablePtr-hdr.TableOffset),
	}

	if fatPayload.Offset != 4096 || fatPayload.Length != 32 {
		t.Fatalf("rls payload = {%d,%d}, want {4096,32}", fatPayload.Offset, fatPayload.Length)
	}

	vaultEngine, err := Load(vault)
	if err != nil {
		t.Fatalf("Load vault: %v", err)
	}

	entries, err := DecodeFAT(vault, vaultEngine.Header(), fatPayload)
	if err != nil {
		t.Fatalf("DecodeFAT: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	if entries[0].Name != "/msg" || entries[0].Offset != 8192 || entries[0].Length != 6 {
		t.Fatalf("entry = %+v, want {/msg,8192,6}", entries[0])
	}

	rangePayload := Payload{
		Offset: 8192,
		Length: 6,
		Data:   remote.ReadAt(8192, 6),
	}

	plain, err := DecodeRange(vault, rangePayload)
	if err != nil {
		t.Fatalf("DecodeRange: %v", err)
	}

	if string(plain) != "hello\n" {
		t.Fatalf("DecodeRange = %q, want %q", plain, "hello\n")
	}
}

func TestFATExhaustion(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 64*1024, 0)

	e, err := Init(b, InitOptions{Length: 65536, MaxFiles: 4, MaxNameLength: 15, Force: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	for _, name := range []string{"/a", "/b", "/c", "/d"} {
		if err := e.OpenEntry(name); err != nil {
			t.Fatalf("OpenEntry(%s): %v", name, err)
		}

		if _, err := e.Write([]byte{1}); err != nil {
			t.Fatalf("Write(%s): %v", name, err)
		}

		if err := e.CloseEntry(); err != nil {
			t.Fatalf("CloseEntry(%s): %v", name, err)
		}
	}

	wantTablePtr := uint64(4096 + 4*32)
	if e.Header().TablePtr != wantTablePtr {
		t.Fatalf("TablePtr = %d, want %d", e.Header().TablePtr, wantTablePtr)
	}

	if err := e.OpenEntry("/e"); err != ErrNoSpace {
		t.Fatalf("5th OpenEntry: got %v, want ErrNoSpace", err)
	}

	if e.Header().TablePtr != wantTablePtr {
		t.Fatalf("TablePtr changed after failed open: got %d, want %d", e.Header().TablePtr, wantTablePtr)
	}
}

func TestNameLengthEdge(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 64*1024, 0)

	e, err := Init(b, InitOptions{Length: 65536, MaxFiles: 4, MaxNameLength: 15, Force: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := e.OpenEntry("/12345678901234"); err != nil {
		t.Fatalf("15-char name: got %v, want nil", err)
	}

	if err := e.CloseEntry(); err != nil {
		t.Fatalf("CloseEntry: %v", err)
	}

	if err := e.OpenEntry("/123456789012345"); err != ErrNameTooLong {
		t.Fatalf("16-char name: got %v, want ErrNameTooLong", err)
	}
}

func TestSecondOpenFailsBusy(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 64*1024, 0)

	e, err := Init(b, InitOptions{Length: 65536, MaxFiles: 4, MaxNameLength: 15, Force: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := e.OpenEntry("/a"); err != nil {
		t.Fatalf("first OpenEntry: %v", err)
	}

	if err := e.OpenEntry("/b"); err != ErrBusy {
		t.Fatalf("second OpenEntry: got %v, want ErrBusy", err)
	}
}

func TestDataExhaustion(t *testing.T) {
	t.Parallel()

	// table_offset=4096, table_extent=align_up(1*32,4096)=4096, data_offset=8192.
	// min_data_area = max_files*padding = 4096, so length=12288 is exactly enough
	// for one file and leaves length-data_offset=4096 bytes of data region.
	b, _ := newBacking(t, 12288, 0)

	e, err := Init(b, InitOptions{Length: 12288, MaxFiles: 1, MaxNameLength: 15, Force: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := e.OpenEntry("/big"); err != nil {
		t.Fatalf("OpenEntry: %v", err)
	}

	buf := make([]byte, 5000)

	n, err := e.Write(buf)
	if err != nil {
		t.Fatalf("first Write: %v", err)
	}

	if n != 4096 {
		t.Fatalf("first Write = %d, want 4096", n)
	}

	_, err = e.Write(buf)
	if err != ErrNoSpace {
		t.Fatalf("second Write: got %v, want ErrNoSpace", err)
	}
}
