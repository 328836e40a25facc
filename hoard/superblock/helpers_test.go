//go:build linux

package superblock

import (
	"math/rand"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

const testBlockSize = 32

// newSuperblock maps a superblock that is unmapped when the test ends.
func newSuperblock(t *testing.T) Superblock {
	t.Helper()
	s := Make()
	require.False(t, s.IsNil())
	t.Cleanup(func() { Destroy(s) })
	return s
}

// newInited returns a superblock already initialized for blockSize.
func newInited(t *testing.T, blockSize uintptr) (Superblock, *Header) {
	t.Helper()
	s := newSuperblock(t)
	h := s.Header()
	h.Init(blockSize)
	return s, h
}

// fill writes v over every byte of the block at p.
func fill(p unsafe.Pointer, size uintptr, v byte) {
	mem := unsafe.Slice((*byte)(p), size)
	for i := range mem {
		mem[i] = v
	}
}

// requireFilled checks that every byte of the block at p equals v.
func requireFilled(t *testing.T, p unsafe.Pointer, size uintptr, v byte) {
	t.Helper()
	mem := unsafe.Slice((*byte)(p), size)
	for i := range mem {
		require.Equal(t, v, mem[i], "block %p byte %d", p, i)
	}
}

// allocAll checks out every block, verifying the count after each step.
func allocAll(t *testing.T, h *Header) []unsafe.Pointer {
	t.Helper()
	blocks := make([]unsafe.Pointer, 0, h.Size())
	for i := 0; i < h.Size(); i++ {
		require.Equal(t, i, h.BlocksAllocated())
		p := h.Alloc()
		fill(p, h.BlockSize(), 1)
		blocks = append(blocks, p)
	}
	return blocks
}

// loadRound fills the superblock, shuffles, frees half, then the rest,
// three times over.
func loadRound(t *testing.T, s Superblock, r *rand.Rand) {
	t.Helper()
	h := s.Header()
	for iter := 0; iter < 3; iter++ {
		blocks := allocAll(t, h)
		r.Shuffle(len(blocks), func(i, j int) { blocks[i], blocks[j] = blocks[j], blocks[i] })
		for _, p := range blocks {
			fill(p, h.BlockSize(), 1)
		}

		for n := 0; n < h.Size()/2; n++ {
			p := blocks[len(blocks)-1]
			blocks = blocks[:len(blocks)-1]
			h.Free(p)
		}
		for _, p := range blocks {
			fill(p, h.BlockSize(), 2)
		}
		for _, p := range blocks {
			h.Free(p)
		}
		require.True(t, h.Empty(), "iteration %d", iter)
	}
}
