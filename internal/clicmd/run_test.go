package clicmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

func writePad(t *testing.T, path string, n int, fill byte) {
	t.Helper()

	buf := make([]byte, n)
	for i := range buf {
		buf[i] = fill
	}

	require.NoError(t, os.WriteFile(path, buf, 0o600))
}

// runCLI invokes Run with stdin (an empty buffer if nil) and returns
// (stdout, stderr, exit code).
func runCLI(t *testing.T, stdin *bytes.Buffer, args ...string) (string, string, int) {
	t.Helper()

	var out, errOut bytes.Buffer

	if stdin == nil {
		stdin = &bytes.Buffer{}
	}

	code := Run(stdin, &out, &errOut, append([]string{"vernamfs"}, args...), nil)

	return out.String(), errOut.String(), code
}

func TestInitThenInfo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pad")
	writePad(t, path, 64*1024, 0)

	_, errOut, code := runCLI(t, nil, "init", path, "--length", "65536", "--max-files", "4", "--max-name-length", "15")
	require.Equal(t, 0, code, errOut)

	out, errOut, code := runCLI(t, nil, "info", path)
	require.Equal(t, 0, code, errOut)
	require.Contains(t, out, "max_files:        4")
	require.Contains(t, out, "files:            0 / 4")
}

func TestInitRequiresLength(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pad")
	writePad(t, path, 64*1024, 0)

	_, errOut, code := runCLI(t, nil, "init", path)
	require.NotEqual(t, 0, code)
	require.Contains(t, errOut, "--length")
}

func TestRecoverPipelineViaCLI(t *testing.T) {
	t.Parallel()

	const padSize = 64 * 1024

	pad := make([]byte, padSize)
	for i := range pad {
		pad[i] = byte(i * 5)
	}

	dir := t.TempDir()

	remotePath := filepath.Join(dir, "remote")
	require.NoError(t, os.WriteFile(remotePath, pad, 0o600))

	vaultPath := filepath.Join(dir, "vault")
	require.NoError(t, os.WriteFile(vaultPath, pad, 0o600))

	_, errOut, code := runCLI(t, nil, "init", remotePath, "--length", "65536", "--max-files", "4", "--max-name-length", "15")
	require.Equal(t, 0, code, errOut)

	backing, err := vernamfs.OpenBacking(remotePath)
	require.NoError(t, err)

	engine, err := vernamfs.Load(backing)
	require.NoError(t, err)

	localFile := filepath.Join(dir, "msg.txt")
	require.NoError(t, os.WriteFile(localFile, []byte("hello vault\n"), 0o600))
	require.NoError(t, shellPut(engine, "/msg", localFile))
	require.NoError(t, backing.Close())

	rlsOut, errOut, code := runCLI(t, nil, "rls", remotePath)
	require.Equal(t, 0, code, errOut)

	vlsOut, errOut, code := runCLI(t, bytes.NewBufferString(rlsOut), "vls", vaultPath)
	require.Equal(t, 0, code, errOut)
	require.Contains(t, vlsOut, "/msg")
	require.Contains(t, vlsOut, "length=12")

	outDir := filepath.Join(dir, "out")

	recoverOut, errOut, code := runCLI(t, nil, "recover", remotePath, vaultPath, outDir)
	require.Equal(t, 0, code, errOut)
	require.Contains(t, recoverOut, "recovered 1/1 files")

	got, err := os.ReadFile(filepath.Join(outDir, "msg"))
	require.NoError(t, err)
	require.Equal(t, "hello vault\n", string(got))
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, errOut, code := runCLI(t, nil, "bogus")
	require.NotEqual(t, 0, code)
	require.Contains(t, errOut, "unknown command")
}

func TestLoadConfigGlobalThenProjectPrecedence(t *testing.T) {
	t.Parallel()

	globalDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(globalDir, "vernamfs"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(globalDir, "vernamfs", "config.json"),
		[]byte(`{"max_files": 7, "max_name_length": 9}`),
		0o600,
	))

	env := []string{"XDG_CONFIG_HOME=" + globalDir}

	workDir := t.TempDir()

	// No project file: global config wins over defaults.
	cfg, err := LoadConfig(workDir, "", env)
	require.NoError(t, err)
	require.EqualValues(t, 7, cfg.MaxFiles)
	require.Equal(t, 9, cfg.MaxNameLength)

	// A project file overrides the global one field-by-field.
	require.NoError(t, os.WriteFile(
		filepath.Join(workDir, ConfigFileName),
		[]byte(`{"max_files": 20}`),
		0o600,
	))

	cfg, err = LoadConfig(workDir, "", env)
	require.NoError(t, err)
	require.EqualValues(t, 20, cfg.MaxFiles)
	require.Equal(t, 9, cfg.MaxNameLength)
}
