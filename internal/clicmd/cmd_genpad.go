package clicmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/vernamfs/internal/genpad"
)

// GenpadCmd returns the genpad command.
func GenpadCmd() *Command {
	fs := flag.NewFlagSet("genpad", flag.ContinueOnError)
	zeroKey := fs.BoolP("zero-key", "z", false, "Use an all-zero key instead of reading one from stdin (testing only)")

	return &Command{
		Flags: fs,
		Usage: "genpad [-z] <log2size>",
		Short: "Generate a pseudo one-time pad with AES-128-CTR",
		Long: "Writes 1<<log2size bytes of AES-128-CTR keystream to stdout. log2size must\n" +
			"be in [12,40]. Unless -z is given, a 32-hex-digit key is read from stdin.\n" +
			"Because the keystream is deterministic in the key, the vault side never\n" +
			"needs to store a copy of the pad: it can regenerate it from the same key.",
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("genpad: expected exactly one log2size argument")
			}

			log2Size, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("genpad: invalid log2size: %w", err)
			}

			var key [genpad.KeySize]byte

			if *zeroKey {
				key = [genpad.KeySize]byte{}
			} else {
				hexKey := make([]byte, genpad.KeySize*2+1) // + optional trailing newline

				n, readErr := io.ReadFull(o.In(), hexKey)
				if readErr != nil && readErr != io.ErrUnexpectedEOF {
					return fmt.Errorf("genpad: read key: %w", readErr)
				}

				key, err = genpad.DecodeHexKey(hexKey[:n])
				if err != nil {
					return err
				}
			}

			return genpad.Generate(o.Out(), key, log2Size)
		},
	}
}
