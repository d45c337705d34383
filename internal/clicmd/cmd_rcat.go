package clicmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// RcatCmd returns the rcat (remote data-range extract) command.
func RcatCmd() *Command {
	fs := flag.NewFlagSet("rcat", flag.ContinueOnError)
	offset := fs.Uint64("offset", 0, "Starting byte offset in the volume (required)")
	length := fs.Uint64("length", 0, "Byte count to extract (required)")

	return &Command{
		Flags: fs,
		Usage: "rcat <path> --offset N --length N",
		Short: "Emit a data-range payload on stdout",
		Long:  "Writes {offset, length, backing[offset..offset+length]} to stdout, for framing to the vault side's vcat.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("rcat: expected exactly one path argument")
			}

			if !fs.Changed("offset") || !fs.Changed("length") {
				return fmt.Errorf("rcat: --offset and --length are required")
			}

			backing, err := vernamfs.OpenBacking(args[0])
			if err != nil {
				return err
			}
			defer backing.Close()

			data := backing.ReadAt(*offset, *length)
			if data == nil {
				return vernamfs.ErrTooSmall
			}

			payload := vernamfs.Payload{Offset: *offset, Length: *length, Data: data}

			return vernamfs.WritePayload(o.Out(), payload)
		},
	}
}
