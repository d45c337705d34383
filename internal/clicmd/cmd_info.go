package clicmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// InfoCmd returns the info command.
func InfoCmd() *Command {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	expert := fs.Bool("expert", false, "Show raw byte offsets alongside human-readable sizes")

	return &Command{
		Flags: fs,
		Usage: "info <path> [flags]",
		Short: "Print a volume's header",
		Long:  "Reads and prints the plaintext header of a volume. Never touches the FAT or data regions.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("info: expected exactly one path argument")
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

			hdr := engine.Header()

			o.Printf("type:             %d\n", hdr.Type)
			o.Printf("length:           %s\n", humanize.IBytes(hdr.Length))
			o.Printf("padding:          %s\n", humanize.IBytes(hdr.Padding))
			o.Printf("max_files:        %d\n", hdr.MaxFiles)
			o.Printf("table_entry_size: %d\n", hdr.TableEntrySize)

			filesUsed := uint64(0)
			if hdr.TableEntrySize != 0 {
				filesUsed = (hdr.TablePtr - hdr.TableOffset) / uint64(hdr.TableEntrySize)
			}

			o.Printf("files:            %d / %d\n", filesUsed, hdr.MaxFiles)
			o.Printf("data used:        %s / %s\n",
				humanize.IBytes(hdr.DataPtr-hdr.DataOffset), humanize.IBytes(hdr.Length-hdr.DataOffset))

			if *expert {
				o.Printf("table_offset:     %d\n", hdr.TableOffset)
				o.Printf("table_ptr:        %d\n", hdr.TablePtr)
				o.Printf("data_offset:      %d\n", hdr.DataOffset)
				o.Printf("data_ptr:         %d\n", hdr.DataPtr)
			}

			return nil
		},
	}
}
