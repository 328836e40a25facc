// Package fatal terminates the process on broken allocator invariants.
//
// The superblock layer runs beneath arbitrary callers, possibly inside its
// own recursive use, so it never hands a corrupted free list or a failed
// mapping back as an error. Faults print one diagnostic line to stderr and
// exit with ExitCode; deferred functions do not run.
package fatal

import (
	"fmt"
	"io"
	"os"
)

// ExitCode is the process exit status used for every fault.
const ExitCode = 3

// Prefix starts every diagnostic line.
const Prefix = "hoardkit: fatal: "

// Swapped by tests in this package only.
var (
	out  io.Writer = os.Stderr
	exit           = os.Exit
)

// Failf reports a fault and terminates the process. It does not return.
func Failf(format string, args ...any) {
	fmt.Fprintf(out, Prefix+format+"\n", args...)
	exit(ExitCode)
	// exit only returns when replaced in tests.
	panic(fmt.Sprintf(format, args...))
}

// Check terminates the process with msg when cond is false.
func Check(cond bool, msg string) {
	if !cond {
		Failf("%s", msg)
	}
}
