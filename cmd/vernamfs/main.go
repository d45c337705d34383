// Command vernamfs provides the vernamfs CLI: volume lifecycle, the FUSE
// host adapter, remote/vault payload framing, and bulk recovery.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/calvinalkan/vernamfs/internal/clicmd"
)

func main() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	exitCode := clicmd.Run(os.Stdin, os.Stdout, os.Stderr, os.Args, sigCh)

	os.Exit(exitCode)
}
