package clicmd

import (
	"context"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/pkg/vernamfs"
)

// RecoverCmd returns the recover command.
func RecoverCmd() *Command {
	fs := flag.NewFlagSet("recover", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "recover <remote-path> <vault-path> <output-dir>",
		Short: "Bulk-decode every file in a volume given its vault pad",
		Long: "Reads the header and FAT from remote-path, XORs every allocated file's\n" +
			"content against the matching range of vault-path, and writes each file\n" +
			"under output-dir, stripping the leading slash from its recorded name.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 3 {
				return fmt.Errorf("recover: expected <remote-path> <vault-path> <output-dir>")
			}

			remote, err := vernamfs.OpenBacking(args[0])
			if err != nil {
				return err
			}
			defer remote.Close()

			vault, err := vernamfs.OpenBacking(args[1])
			if err != nil {
				return err
			}
			defer vault.Close()

			entries, err := vernamfs.RecoverAll(remote, vault, args[2])
			if err != nil {
				return err
			}

			recovered := 0

			for _, e := range entries {
				if e.Name != "" {
					recovered++
				}
			}

			o.Printf("recovered %d/%d files to %s\n", recovered, len(entries), args[2])

			return nil
		},
	}
}
