package clicmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// VcatCmd returns the vcat (vault-side range decode) command.
func VcatCmd() *Command {
	fs := flag.NewFlagSet("vcat", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "vcat <vault-path>",
		Short: "Decode an rcat payload from stdin against a vault image",
		Long:  "Reads a framed data-range payload (as produced by rcat) from stdin and writes the recovered plaintext to stdout.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("vcat: expected exactly one vault path argument")
			}

			vault, err := vernamfs.OpenBacking(args[0])
			if err != nil {
				return err
			}
			defer vault.Close()

			payload, err := vernamfs.ReadPayload(o.In())
			if err != nil {
				return err
			}

			plain, err := vernamfs.DecodeRange(vault, payload)
			if err != nil {
				return err
			}

			_, err = o.Out().Write(plain)

			return err
		},
	}
}
