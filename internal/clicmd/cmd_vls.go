package clicmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// VlsCmd returns the vls (vault-side FAT decode) command.
func VlsCmd() *Command {
	fs := flag.NewFlagSet("vls", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "vls <vault-path>",
		Short: "Decode an rls payload from stdin against a vault image",
		Long:  "Reads a framed FAT payload (as produced by rls) from stdin and prints each decoded {name, offset, length}.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("vls: expected exactly one vault path argument")
			}

			vault, err := vernamfs.OpenBacking(args[0])
			if err != nil {
				return err
			}
			defer vault.Close()

			vaultEngine, err := vernamfs.Load(vault)
			if err != nil {
				return err
			}

			payload, err := vernamfs.ReadPayload(o.In())
			if err != nil {
				return err
			}

			entries, err := vernamfs.DecodeFAT(vault, vaultEngine.Header(), payload)
			if err != nil {
				return err
			}

			for _, e := range entries {
				o.Printf("%s\toffset=%d\tlength=%d\n", e.Name, e.Offset, e.Length)
			}

			return nil
		},
	}
}
