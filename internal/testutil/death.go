// Package testutil holds helpers shared by the allocator's package tests.
package testutil

import (
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hoardkit/internal/fatal"
)

// envDeathTest names the test a re-executed binary should let die.
const envDeathTest = "HOARDKIT_DEATH_TEST"

// ExpectFatal asserts that fn terminates the process through the fatal
// package and that the diagnostic contains want.
//
// The test binary is re-executed with only the current test selected. In
// that child ExpectFatal runs fn directly; everything the test did before
// the call (fixtures, allocations) is repeated there first. If fn returns,
// the child exits 0 and the parent fails.
//
// Example:
//
//	testutil.ExpectFatal(t, func() { h.Alloc() }, "exhausted")
func ExpectFatal(t *testing.T, fn func(), want string) {
	t.Helper()

	if os.Getenv(envDeathTest) == t.Name() {
		fn()
		os.Exit(0)
	}
	if testing.Short() {
		t.Skip("skipping death test in short mode")
	}

	cmd := exec.Command(os.Args[0], "-test.run="+runPattern(t.Name()), "-test.count=1")
	cmd.Env = append(os.Environ(), envDeathTest+"="+t.Name())
	out, err := cmd.CombinedOutput()

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr),
		"expected process to die, got err=%v\noutput:\n%s", err, out)
	require.Equal(t, fatal.ExitCode, exitErr.ExitCode(),
		"unexpected exit code\noutput:\n%s", out)
	require.Contains(t, string(out), fatal.Prefix, "missing fatal diagnostic")
	require.Contains(t, string(out), want, "diagnostic does not mention %q", want)
}

// runPattern anchors every element of a (sub)test name for -test.run.
func runPattern(name string) string {
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = "^" + regexp.QuoteMeta(p) + "$"
	}
	return strings.Join(parts, "/")
}
