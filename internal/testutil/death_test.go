package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joshuapare/hoardkit/internal/fatal"
)

func TestRunPattern(t *testing.T) {
	assert.Equal(t, "^TestAlloc$", runPattern("TestAlloc"))
	assert.Equal(t, "^TestAlloc$/^exhausted_32$", runPattern("TestAlloc/exhausted_32"))
	assert.Equal(t, `^TestX$/^a\.b$`, runPattern("TestX/a.b"))
}

func TestExpectFatal_Dies(t *testing.T) {
	ExpectFatal(t, func() {
		fatal.Failf("boom %d", 7)
	}, "boom 7")
}

func TestExpectFatal_Subtest(t *testing.T) {
	t.Run("nested name", func(t *testing.T) {
		ExpectFatal(t, func() {
			fatal.Check(false, "nested failure")
		}, "nested failure")
	})
}
