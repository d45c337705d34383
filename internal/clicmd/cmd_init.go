package clicmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// InitCmd returns the init command.
func InitCmd(cfg Config) *Command {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	length := fs.Uint64("length", 0, "Volume size in bytes (required)")
	maxFiles := fs.Uint32("max-files", cfg.MaxFiles, "FAT entry capacity")
	maxNameLength := fs.Int("max-name-length", cfg.MaxNameLength, "Longest path init must store")
	padding := fs.Uint64("padding", cfg.Padding, "Alignment granule for table and data regions")
	force := fs.Bool("force", false, "Overwrite an already-initialised volume")

	return &Command{
		Flags: fs,
		Usage: "init <path> [flags]",
		Short: "Create a fresh volume header on an existing pad file",
		Long: "Writes a VernamFS header at offset 0 of an existing pad file. The pad\n" +
			"file itself (the one-time-pad bytes) must already exist at the requested\n" +
			"size or larger; init never creates or grows it.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("init: expected exactly one path argument")
			}

			if *length == 0 {
				return fmt.Errorf("init: --length is required")
			}

			backing, err := vernamfs.OpenBacking(args[0])
			if err != nil {
				return err
			}
			defer backing.Close()

			engine, err := vernamfs.Init(backing, vernamfs.InitOptions{
				Length:        *length,
				MaxFiles:      *maxFiles,
				MaxNameLength: *maxNameLength,
				Padding:       *padding,
				Force:         *force,
			})
			if err != nil {
				return err
			}

			hdr := engine.Header()
			o.Printf("initialised %s: length=%d max_files=%d table_entry_size=%d padding=%d\n",
				args[0], hdr.Length, hdr.MaxFiles, hdr.TableEntrySize, hdr.Padding)

			return nil
		},
	}
}
