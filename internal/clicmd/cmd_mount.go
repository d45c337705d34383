package clicmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/internal/fsadapter"
	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// MountCmd returns the mount command.
func MountCmd() *Command {
	fs := flag.NewFlagSet("mount", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "mount <path> <mountpoint> [flags]",
		Short: "Attach the write-only host adapter",
		Long: "Mounts a volume as a FUSE filesystem at mountpoint. Every path except the\n" +
			"root appears as a write-only regular file; opening write-only and writing\n" +
			"sequentially appends a new file to the volume. Reads, listings, and\n" +
			"directory mutation are rejected.",
		Exec: func(ctx context.Context, o *IO, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("mount: expected <path> <mountpoint>")
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

			mounted, err := fsadapter.Mount(engine, args[1])
			if err != nil {
				return err
			}

			o.Printf("mounted %s at %s\n", args[0], args[1])

			return mounted.Join(ctx)
		},
	}
}
