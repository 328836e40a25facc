package fatal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture swaps out the exit path and returns the recorded exit code and output.
func capture(t *testing.T, fn func()) (code int, output string, panicked bool) {
	t.Helper()
	var buf bytes.Buffer
	code = -1
	origOut, origExit := out, exit
	out = &buf
	exit = func(c int) { code = c }
	t.Cleanup(func() { out, exit = origOut, origExit })

	func() {
		defer func() {
			if r := recover(); r != nil {
				panicked = true
			}
		}()
		fn()
	}()
	return code, buf.String(), panicked
}

func TestFailf_WritesDiagnosticAndExits(t *testing.T) {
	code, output, panicked := capture(t, func() {
		Failf("superblock %#x exhausted (%d blocks)", 0x10000, 42)
	})
	require.True(t, panicked, "Failf must not return")
	assert.Equal(t, ExitCode, code)
	assert.Equal(t, "hoardkit: fatal: superblock 0x10000 exhausted (42 blocks)\n", output)
}

func TestCheck_PassingConditionIsSilent(t *testing.T) {
	code, output, panicked := capture(t, func() {
		Check(true, "never printed")
	})
	assert.False(t, panicked)
	assert.Equal(t, -1, code)
	assert.Empty(t, output)
}

func TestCheck_FailingCondition(t *testing.T) {
	code, output, panicked := capture(t, func() {
		Check(false, "stack: pop on empty stack")
	})
	assert.True(t, panicked)
	assert.Equal(t, ExitCode, code)
	assert.Contains(t, output, "stack: pop on empty stack")
}
