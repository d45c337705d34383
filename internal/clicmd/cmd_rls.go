package clicmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// RlsCmd returns the rls (remote listing) command.
func RlsCmd() *Command {
	fs := flag.NewFlagSet("rls", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "rls <path>",
		Short: "Emit the FAT region as a remote payload on stdout",
		Long:  "Writes {table_offset, table_ptr-table_offset, FAT bytes} to stdout, for framing to the vault side's vls.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("rls: expected exactly one path argument")
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
			length := hdr.TablePtr - hdr.TableOffset

			payload := vernamfs.Payload{
				Offset: hdr.TableOffset,
				Length: length,
				Data:   backing.ReadAt(hdr.TableOffset, length),
			}

			return vernamfs.WritePayload(o.Out(), payload)
		},
	}
}
