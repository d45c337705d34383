package clicmd

import (
	"fmt"
	"io"
)

// IO carries the streams a [Command] reads from and writes to.
type IO struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// NewIO creates an IO reading from in and writing to out and errOut.
func NewIO(in io.Reader, out, errOut io.Writer) *IO {
	return &IO{in: in, out: out, errOut: errOut}
}

// Println writes to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted output to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// Out returns the raw stdout writer, for commands that frame binary payloads
// rather than formatted text.
func (o *IO) Out() io.Writer {
	return o.out
}

// In returns the raw stdin reader, for commands that consume a framed
// binary payload.
func (o *IO) In() io.Reader {
	return o.in
}
