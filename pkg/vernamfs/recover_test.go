package vernamfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRecoverAllAppendsSameName(t *testing.T) {
	t.Parallel()

	const padSize = 64 * 1024

	pad := make([]byte, padSize)
	for i := range pad {
		pad[i] = byte(i * 13)
	}

	dir := t.TempDir()

	remotePath := filepath.Join(dir, "remote")
	if err := os.WriteFile(remotePath, pad, 0o600); err != nil {
		t.Fatalf("write remote: %v", err)
	}

	vaultPath := filepath.Join(dir, "vault")
	if err := os.WriteFile(vaultPath, pad, 0o600); err != nil {
		t.Fatalf("write vault: %v", err)
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

	for _, content := range []string{"A", "BB"} {
		if err := e.OpenEntry("/log"); err != nil {
			t.Fatalf("OpenEntry: %v", err)
		}

		if _, err := e.Write([]byte(content)); err != nil {
			t.Fatalf("Write: %v", err)
		}

		if err := e.CloseEntry(); err != nil {
			t.Fatalf("CloseEntry: %v", err)
		}
	}

	if err := e.PersistHeader(); err != nil {
		t.Fatalf("PersistHeader: %v", err)
	}

	outDir := filepath.Join(dir, "out")

	entries, err := RecoverAll(remote, vault, outDir)
	if err != nil {
		t.Fatalf("RecoverAll: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}

	got, err := os.ReadFile(filepath.Join(outDir, "log"))
	if err != nil {
		t.Fatalf("read recovered file: %v", err)
	}

	if string(got) != "ABB" {
		t.Fatalf("recovered content = %q, want %q", got, "ABB")
	}
}

func TestDecodeFATMismatch(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 64*1024, 0)

	e, err := Init(b, InitOptions{Length: 65536, MaxFiles: 4, MaxNameLength: 15, Force: true})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	payload := Payload{Offset: e.Header().TableOffset + 1, Length: 32, Data: make([]byte, 32)}

	_, err = DecodeFAT(b, e.Header(), payload)
	if err != ErrMismatch {
		t.Fatalf("got %v, want ErrMismatch", err)
	}
}

func TestDecodeRangeVaultTooSmall(t *testing.T) {
	t.Parallel()

	b, _ := newBacking(t, 1024, 0)

	payload := Payload{Offset: 900, Length: 200, Data: make([]byte, 200)}

	_, err := DecodeRange(b, payload)
	if err != ErrVaultTooSmall {
		t.Fatalf("got %v, want ErrVaultTooSmall", err)
	}
}
