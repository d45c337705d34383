package clicmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// ShellCmd returns the shell command: an interactive REPL for appending
// files to a volume without mounting it.
func ShellCmd() *Command {
	fs := flag.NewFlagSet("shell", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "shell <path>",
		Short: "Interactive REPL for appending files to a volume",
		Long: "Opens path and accepts 'put <name> <local-file>', 'info', and 'exit'\n" +
			"commands, one open_entry/write*/close_entry cycle per put.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("shell: expected exactly one path argument")
			}

			backing, err := vernamfs.OpenBacking(args[0])
			if err != nil {
				return err
			}
			defer backing.Close()

			engine, err := vernamfs.Load(backing)
			if err != nil {
				return err
			}

			return runShell(o, engine, args[0])
		},
	}
}

func shellHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".vernamfs_history")
}

func runShell(o *IO, engine *vernamfs.Engine, path string) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)

	if f, err := os.Open(shellHistoryFile()); err == nil {
		_, _ = line.ReadHistory(f)
		_ = f.Close()
	}

	o.Printf("vernamfs shell - %s\n", path)
	o.Println("Type 'help' for available commands.")

	for {
		input, err := line.Prompt("vernamfs> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				o.Println("bye")
				break
			}

			return fmt.Errorf("shell: reading input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		line.AppendHistory(input)

		fields := strings.Fields(input)
		cmd := fields[0]
		cmdArgs := fields[1:]

		switch cmd {
		case "exit", "quit", "q":
			o.Println("bye")
			saveShellHistory(line)

			return nil

		case "help", "?":
			printShellHelp(o)

		case "info":
			printShellInfo(o, engine)

		case "put":
			if len(cmdArgs) != 2 {
				o.ErrPrintln("usage: put <name> <local-file>")
				continue
			}

			if err := shellPut(engine, cmdArgs[0], cmdArgs[1]); err != nil {
				o.ErrPrintln("error:", err)
			}

		default:
			o.ErrPrintln("unknown command:", cmd, "(try 'help')")
		}
	}

	saveShellHistory(line)

	return nil
}

func shellPut(engine *vernamfs.Engine, name, localPath string) error {
	f, err := os.Open(localPath) //nolint:gosec // path comes from the operator's own interactive input
	if err != nil {
		return err
	}
	defer f.Close()

	if err := engine.OpenEntry(name); err != nil {
		return err
	}

	buf := make([]byte, 64*1024)

	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			if _, writeErr := engine.Write(buf[:n]); writeErr != nil {
				_ = engine.CloseEntry()
				return writeErr
			}
		}

		if readErr == io.EOF {
			break
		}

		if readErr != nil {
			_ = engine.CloseEntry()
			return readErr
		}
	}

	if err := engine.CloseEntry(); err != nil {
		return err
	}

	return engine.PersistHeader()
}

func printShellInfo(o *IO, engine *vernamfs.Engine) {
	hdr := engine.Header()

	filesUsed := uint64(0)
	if hdr.TableEntrySize != 0 {
		filesUsed = (hdr.TablePtr - hdr.TableOffset) / uint64(hdr.TableEntrySize)
	}

	o.Printf("files: %d/%d   data: %d/%d bytes\n",
		filesUsed, hdr.MaxFiles, hdr.DataPtr-hdr.DataOffset, hdr.Length-hdr.DataOffset)
}

func printShellHelp(o *IO) {
	o.Println("Commands:")
	o.Println("  put <name> <local-file>   append local-file's content as <name>")
	o.Println("  info                      show FAT/data usage")
	o.Println("  help                      show this text")
	o.Println("  exit                      quit the shell")
}

func saveShellHistory(line *liner.State) {
	path := shellHistoryFile()
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil { //nolint:gosec // fixed, user-home-relative path
		_, _ = line.WriteHistory(f)
		_ = f.Close()
	}
}
